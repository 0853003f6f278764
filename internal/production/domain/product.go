package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
)

// ProductStatus is the lifecycle state of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

// Product is a manufactured item with a bill of materials
type Product struct {
	ID               uint              `json:"id" gorm:"primaryKey"`
	SKU              string            `json:"sku" gorm:"size:64;uniqueIndex;not null"`
	Name             string            `json:"name" gorm:"size:255;not null"`
	Description      string            `json:"description"`
	Status           ProductStatus     `json:"status" gorm:"size:16;not null;default:'ACTIVE'"`
	BOMEntries       []BOMEntry        `json:"bom_entries,omitempty" gorm:"foreignKey:ProductID"`
	ProductionOrders []ProductionOrder `json:"production_orders,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// BOMEntry states how much of one material goes into one unit of a product
type BOMEntry struct {
	ID              uint                `json:"id" gorm:"primaryKey"`
	ProductID       uint                `json:"product_id" gorm:"not null;uniqueIndex:idx_bom_product_material"`
	Product         *Product            `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	MaterialID      uint                `json:"material_id" gorm:"not null;uniqueIndex:idx_bom_product_material;index"`
	Material        *inventory.Material `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
	QuantityNeeded  decimal.Decimal     `json:"quantity_needed" gorm:"type:decimal(12,4);not null"`
	WastePercentage decimal.Decimal     `json:"waste_percentage" gorm:"type:decimal(5,2);not null;default:0"`
	Notes           string              `json:"notes"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// TableName specifies the table name
func (BOMEntry) TableName() string {
	return "bom_entries"
}

var hundred = decimal.NewFromInt(100)

// WasteFactor is 1 + wastePercentage/100
func (e BOMEntry) WasteFactor() decimal.Decimal {
	return decimal.NewFromInt(1).Add(e.WastePercentage.Div(hundred))
}

// Requirement is the material needed to build units of the product,
// waste included.
func (e BOMEntry) Requirement(units int64) decimal.Decimal {
	return decimal.NewFromInt(units).Mul(e.QuantityNeeded).Mul(e.WasteFactor())
}

// ProductFilter narrows product listings
type ProductFilter struct {
	Status ProductStatus
	Limit  int
	Offset int
}

// ProductRepository defines the contract for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	// FindByID loads the product with its BOM entries and their materials
	FindByID(ctx context.Context, id uint) (*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uint) error
	CountBOMEntries(ctx context.Context, id uint) (int64, error)
	CountProductionOrders(ctx context.Context, id uint) (int64, error)
}

// BOMRepository defines the contract for bill of materials data access
type BOMRepository interface {
	Create(ctx context.Context, entry *BOMEntry) error
	FindByID(ctx context.Context, id uint) (*BOMEntry, error)
	FindByProduct(ctx context.Context, productID uint) ([]BOMEntry, error)
	// FindByMaterialWithOpenOrders loads every entry referencing the material
	// with its product and the product's orders whose status is in statuses.
	FindByMaterialWithOpenOrders(ctx context.Context, materialID uint, statuses []ProductionOrderStatus) ([]BOMEntry, error)
	Update(ctx context.Context, entry *BOMEntry) error
	Delete(ctx context.Context, id uint) error
}
