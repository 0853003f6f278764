package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MaterialStatus is the lifecycle state of a material
type MaterialStatus string

const (
	MaterialStatusActive   MaterialStatus = "ACTIVE"
	MaterialStatusInactive MaterialStatus = "INACTIVE"
)

// Valid reports whether s is a known status
func (s MaterialStatus) Valid() bool {
	return s == MaterialStatusActive || s == MaterialStatusInactive
}

// UnitOfMeasure is the unit a material is counted in (kg, m, pcs)
type UnitOfMeasure struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:64;uniqueIndex;not null"`
	Symbol    string    `json:"symbol" gorm:"size:16;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (UnitOfMeasure) TableName() string {
	return "units_of_measure"
}

// MaterialType groups materials (raw material, component, packaging)
type MaterialType struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:128;uniqueIndex;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (MaterialType) TableName() string {
	return "material_types"
}

// Material is a stocked item consumed by production
type Material struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	SKU               string          `json:"sku" gorm:"size:64;uniqueIndex;not null"`
	Name              string          `json:"name" gorm:"size:255;not null"`
	Description       string          `json:"description"`
	MaterialTypeID    uint            `json:"material_type_id" gorm:"not null;index"`
	MaterialType      *MaterialType   `json:"material_type,omitempty" gorm:"foreignKey:MaterialTypeID"`
	UnitOfMeasureID   uint            `json:"unit_of_measure_id" gorm:"not null;index"`
	UnitOfMeasure     *UnitOfMeasure  `json:"unit_of_measure,omitempty" gorm:"foreignKey:UnitOfMeasureID"`
	CostPerUnit       decimal.Decimal `json:"cost_per_unit" gorm:"type:decimal(12,2);not null;default:0"`
	CurrentStock      int64           `json:"current_stock" gorm:"not null;default:0"`
	MinimumStockLevel int64           `json:"minimum_stock_level" gorm:"not null;default:0"`
	Status            MaterialStatus  `json:"status" gorm:"size:16;not null;default:'ACTIVE'"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (Material) TableName() string {
	return "materials"
}

// UnitSymbol returns the unit symbol, or "" when the unit was not loaded
func (m *Material) UnitSymbol() string {
	if m.UnitOfMeasure == nil {
		return ""
	}
	return m.UnitOfMeasure.Symbol
}

// IsBelowMinimum reports whether on-hand stock is under the reorder level
func (m *Material) IsBelowMinimum() bool {
	return m.CurrentStock < m.MinimumStockLevel
}

// MaterialFilter narrows material listings
type MaterialFilter struct {
	Status         MaterialStatus
	MaterialTypeID uint
	Search         string
	Limit          int
	Offset         int
}

// MaterialRepository defines the contract for material data access
type MaterialRepository interface {
	Create(ctx context.Context, material *Material) error
	FindByID(ctx context.Context, id uint) (*Material, error)
	FindAll(ctx context.Context, filter MaterialFilter) ([]Material, error)
	FindBelowMinimum(ctx context.Context, limit, offset int) ([]Material, error)
	Update(ctx context.Context, material *Material) error
	Delete(ctx context.Context, id uint) error
	// AdjustStock adds delta to current stock in a single statement and
	// returns the updated material. Stock never goes below zero.
	AdjustStock(ctx context.Context, id uint, delta int64) (*Material, error)
	CountBOMReferences(ctx context.Context, id uint) (int64, error)
}

// MaterialTypeRepository defines the contract for material type data access
type MaterialTypeRepository interface {
	Create(ctx context.Context, materialType *MaterialType) error
	FindByID(ctx context.Context, id uint) (*MaterialType, error)
	FindAll(ctx context.Context) ([]MaterialType, error)
	Delete(ctx context.Context, id uint) error
	CountMaterials(ctx context.Context, id uint) (int64, error)
}

// UnitOfMeasureRepository defines the contract for unit data access
type UnitOfMeasureRepository interface {
	Create(ctx context.Context, unit *UnitOfMeasure) error
	FindByID(ctx context.Context, id uint) (*UnitOfMeasure, error)
	FindAll(ctx context.Context) ([]UnitOfMeasure, error)
	Delete(ctx context.Context, id uint) error
	CountMaterials(ctx context.Context, id uint) (int64, error)
}
