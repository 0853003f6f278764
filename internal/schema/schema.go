// Package schema owns the table layout of every bounded context.
package schema

import (
	"fmt"

	"gorm.io/gorm"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
	procurement "github.com/tair/manufacturing-erp/internal/procurement/domain"
	production "github.com/tair/manufacturing-erp/internal/production/domain"
)

// Models returns every persisted model, parents before children
func Models() []interface{} {
	return []interface{}{
		&inventory.UnitOfMeasure{},
		&inventory.MaterialType{},
		&inventory.Material{},
		&production.WorkCenter{},
		&production.Product{},
		&production.BOMEntry{},
		&production.ProductionOrder{},
		&production.ProductionOperation{},
		&production.QualityCheck{},
		&procurement.Supplier{},
		&procurement.PurchaseOrder{},
		&procurement.PurchaseOrderLine{},
		&procurement.ProcessedEvent{},
	}
}

// Migrate creates or updates all tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
