package inventory

import (
	"gorm.io/gorm"

	"github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/internal/inventory/repository"
)

// ProvideMaterialRepository provides the traced material repository. Other
// contexts use it to move stock.
func ProvideMaterialRepository(db *gorm.DB) domain.MaterialRepository {
	return repository.NewMaterialRepositoryWithTracing(repository.NewGormMaterialRepository(db))
}

// ProvideMaterialTypeRepository provides the material type repository
func ProvideMaterialTypeRepository(db *gorm.DB) domain.MaterialTypeRepository {
	return repository.NewGormMaterialTypeRepository(db)
}

// ProvideUnitOfMeasureRepository provides the unit of measure repository
func ProvideUnitOfMeasureRepository(db *gorm.DB) domain.UnitOfMeasureRepository {
	return repository.NewGormUnitOfMeasureRepository(db)
}
