package production

import (
	"gorm.io/gorm"

	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/internal/production/repository"
)

// ProvideProductRepository provides the product repository
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewGormProductRepository(db)
}

// ProvideBOMRepository provides the traced BOM repository used by the planning engine
func ProvideBOMRepository(db *gorm.DB) domain.BOMRepository {
	return repository.NewBOMRepositoryWithTracing(repository.NewGormBOMRepository(db))
}

// ProvideProductionOrderRepository provides the production order repository
func ProvideProductionOrderRepository(db *gorm.DB) domain.ProductionOrderRepository {
	return repository.NewGormProductionOrderRepository(db)
}

// ProvideWorkCenterRepository provides the work center repository
func ProvideWorkCenterRepository(db *gorm.DB) domain.WorkCenterRepository {
	return repository.NewGormWorkCenterRepository(db)
}
