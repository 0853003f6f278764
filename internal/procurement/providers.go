package procurement

import (
	"gorm.io/gorm"

	"github.com/tair/manufacturing-erp/internal/procurement/domain"
	"github.com/tair/manufacturing-erp/internal/procurement/repository"
)

// ProvideSupplierRepository provides the supplier repository
func ProvideSupplierRepository(db *gorm.DB) domain.SupplierRepository {
	return repository.NewGormSupplierRepository(db)
}

// ProvidePurchaseOrderRepository provides the traced purchase order repository
func ProvidePurchaseOrderRepository(db *gorm.DB) domain.PurchaseOrderRepository {
	return repository.NewPurchaseOrderRepositoryWithTracing(repository.NewGormPurchaseOrderRepository(db))
}

// ProvidePurchaseOrderLineRepository provides the line repository
func ProvidePurchaseOrderLineRepository(db *gorm.DB) domain.PurchaseOrderLineRepository {
	return repository.NewGormPurchaseOrderLineRepository(db)
}

// ProvideProcessedEventRepository provides the inbound event log
func ProvideProcessedEventRepository(db *gorm.DB) domain.ProcessedEventRepository {
	return repository.NewGormProcessedEventRepository(db)
}
