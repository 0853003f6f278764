package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProductionOrderStatus is the state of a production order
type ProductionOrderStatus string

const (
	OrderStatusPending    ProductionOrderStatus = "PENDING"
	OrderStatusInProgress ProductionOrderStatus = "IN_PROGRESS"
	OrderStatusActive     ProductionOrderStatus = "ACTIVE"
	OrderStatusOnHold     ProductionOrderStatus = "ON_HOLD"
	OrderStatusCompleted  ProductionOrderStatus = "COMPLETED"
	OrderStatusCancelled  ProductionOrderStatus = "CANCELLED"
)

var orderTransitions = map[ProductionOrderStatus][]ProductionOrderStatus{
	OrderStatusPending:    {OrderStatusInProgress, OrderStatusActive, OrderStatusOnHold, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusActive, OrderStatusOnHold, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusActive:     {OrderStatusInProgress, OrderStatusOnHold, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusOnHold:     {OrderStatusPending, OrderStatusInProgress, OrderStatusActive, OrderStatusCancelled},
}

// Valid reports whether s is a known status
func (s ProductionOrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusActive,
		OrderStatusOnHold, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next.
// COMPLETED and CANCELLED are terminal.
func (s ProductionOrderStatus) CanTransitionTo(next ProductionOrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DemandPolicy decides which production orders hold material stock
type DemandPolicy struct {
	IncludeActiveOrders bool
}

// OpenStatuses returns the statuses counted as open demand
func (p DemandPolicy) OpenStatuses() []ProductionOrderStatus {
	statuses := []ProductionOrderStatus{OrderStatusPending, OrderStatusInProgress}
	if p.IncludeActiveOrders {
		statuses = append(statuses, OrderStatusActive)
	}
	return statuses
}

// ProductionOrder schedules a quantity of a product for manufacture
type ProductionOrder struct {
	ID            uint                  `json:"id" gorm:"primaryKey"`
	OrderNumber   string                `json:"order_number" gorm:"size:32;uniqueIndex;not null"`
	ProductID     uint                  `json:"product_id" gorm:"not null;index"`
	Product       *Product              `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	WorkCenterID  *uint                 `json:"work_center_id" gorm:"index"`
	WorkCenter    *WorkCenter           `json:"work_center,omitempty" gorm:"foreignKey:WorkCenterID"`
	Quantity      int64                 `json:"quantity" gorm:"not null"`
	Status        ProductionOrderStatus `json:"status" gorm:"size:16;not null;default:'PENDING';index"`
	PlannedStart  *time.Time            `json:"planned_start"`
	PlannedEnd    *time.Time            `json:"planned_end"`
	ActualStart   *time.Time            `json:"actual_start"`
	ActualEnd     *time.Time            `json:"actual_end"`
	Notes         string                `json:"notes"`
	Operations    []ProductionOperation `json:"operations,omitempty" gorm:"foreignKey:ProductionOrderID"`
	QualityChecks []QualityCheck        `json:"quality_checks,omitempty" gorm:"foreignKey:ProductionOrderID"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TableName specifies the table name
func (ProductionOrder) TableName() string {
	return "production_orders"
}

// OperationStatus is the state of a routing step
type OperationStatus string

const (
	OperationStatusPending    OperationStatus = "PENDING"
	OperationStatusInProgress OperationStatus = "IN_PROGRESS"
	OperationStatusCompleted  OperationStatus = "COMPLETED"
)

// ProductionOperation is one routing step of a production order
type ProductionOperation struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	ProductionOrderID uint            `json:"production_order_id" gorm:"not null;index"`
	WorkCenterID      *uint           `json:"work_center_id" gorm:"index"`
	Sequence          int             `json:"sequence" gorm:"not null"`
	Name              string          `json:"name" gorm:"size:255;not null"`
	Status            OperationStatus `json:"status" gorm:"size:16;not null;default:'PENDING'"`
	PlannedMinutes    int             `json:"planned_minutes"`
	ActualMinutes     int             `json:"actual_minutes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (ProductionOperation) TableName() string {
	return "production_operations"
}

// QualityResult is the outcome of an inspection
type QualityResult string

const (
	QualityResultPending QualityResult = "PENDING"
	QualityResultPass    QualityResult = "PASS"
	QualityResultFail    QualityResult = "FAIL"
)

// QualityCheck records an inspection of a production order's output
type QualityCheck struct {
	ID                uint          `json:"id" gorm:"primaryKey"`
	ProductionOrderID uint          `json:"production_order_id" gorm:"not null;index"`
	Inspector         string        `json:"inspector" gorm:"size:128;not null"`
	Result            QualityResult `json:"result" gorm:"size:16;not null;default:'PENDING'"`
	SampleSize        int           `json:"sample_size"`
	DefectCount       int           `json:"defect_count"`
	Notes             string        `json:"notes"`
	CheckedAt         time.Time     `json:"checked_at"`
	CreatedAt         time.Time     `json:"created_at"`
}

// TableName specifies the table name
func (QualityCheck) TableName() string {
	return "quality_checks"
}

// WorkCenterStatus is the availability of a work center
type WorkCenterStatus string

const (
	WorkCenterStatusActive   WorkCenterStatus = "ACTIVE"
	WorkCenterStatusInactive WorkCenterStatus = "INACTIVE"
)

// WorkCenter is a machine or line that runs operations
type WorkCenter struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	Code            string           `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name            string           `json:"name" gorm:"size:255;not null"`
	Description     string           `json:"description"`
	CapacityPerHour decimal.Decimal  `json:"capacity_per_hour" gorm:"type:decimal(10,2);not null;default:0"`
	Status          WorkCenterStatus `json:"status" gorm:"size:16;not null;default:'ACTIVE'"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// TableName specifies the table name
func (WorkCenter) TableName() string {
	return "work_centers"
}

// OrderFilter narrows production order listings
type OrderFilter struct {
	Status    ProductionOrderStatus
	ProductID uint
	Limit     int
	Offset    int
}

// ProductionOrderRepository defines the contract for production order data access
type ProductionOrderRepository interface {
	Create(ctx context.Context, order *ProductionOrder) error
	// FindByID loads the order with its product, operations and quality checks
	FindByID(ctx context.Context, id uint) (*ProductionOrder, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]ProductionOrder, error)
	// LockByID loads the bare order row with SELECT ... FOR UPDATE. It must
	// run inside a transaction.
	LockByID(ctx context.Context, id uint) (*ProductionOrder, error)
	Update(ctx context.Context, order *ProductionOrder) error
	Delete(ctx context.Context, id uint) error
	AddOperation(ctx context.Context, op *ProductionOperation) error
	AddQualityCheck(ctx context.Context, check *QualityCheck) error
	CountOperations(ctx context.Context, id uint) (int64, error)
	CountQualityChecks(ctx context.Context, id uint) (int64, error)
}

// WorkCenterRepository defines the contract for work center data access
type WorkCenterRepository interface {
	Create(ctx context.Context, wc *WorkCenter) error
	FindByID(ctx context.Context, id uint) (*WorkCenter, error)
	FindAll(ctx context.Context, limit, offset int) ([]WorkCenter, error)
	Delete(ctx context.Context, id uint) error
	CountProductionOrders(ctx context.Context, id uint) (int64, error)
	CountOperations(ctx context.Context, id uint) (int64, error)
}
