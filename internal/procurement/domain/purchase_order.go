package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
)

// Supplier sells materials
type Supplier struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Code         string    `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	ContactEmail string    `json:"contact_email" gorm:"size:255"`
	Phone        string    `json:"phone" gorm:"size:64"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Supplier) TableName() string {
	return "suppliers"
}

// PurchaseOrderStatus is the state of a purchase order
type PurchaseOrderStatus string

const (
	POStatusDraft     PurchaseOrderStatus = "DRAFT"
	POStatusSubmitted PurchaseOrderStatus = "SUBMITTED"
	POStatusApproved  PurchaseOrderStatus = "APPROVED"
	POStatusReceived  PurchaseOrderStatus = "RECEIVED"
	POStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

var poTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	POStatusDraft:     {POStatusSubmitted, POStatusCancelled},
	POStatusSubmitted: {POStatusDraft, POStatusApproved, POStatusCancelled},
	POStatusApproved:  {POStatusReceived, POStatusCancelled},
}

// Valid reports whether s is a known status
func (s PurchaseOrderStatus) Valid() bool {
	switch s {
	case POStatusDraft, POStatusSubmitted, POStatusApproved, POStatusReceived, POStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next
func (s PurchaseOrderStatus) CanTransitionTo(next PurchaseOrderStatus) bool {
	for _, allowed := range poTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// LinesEditable reports whether lines may still be added, changed or removed
func (s PurchaseOrderStatus) LinesEditable() bool {
	return s == POStatusDraft || s == POStatusSubmitted
}

// Receivable reports whether goods may be booked against the order
func (s PurchaseOrderStatus) Receivable() bool {
	return s == POStatusApproved
}

// PurchaseOrder is an order placed with a supplier. TotalAmount is kept equal
// to the sum of its lines.
type PurchaseOrder struct {
	ID           uint                `json:"id" gorm:"primaryKey"`
	PONumber     string              `json:"po_number" gorm:"size:32;uniqueIndex;not null"`
	SupplierID   uint                `json:"supplier_id" gorm:"not null;index"`
	Supplier     *Supplier           `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Status       PurchaseOrderStatus `json:"status" gorm:"size:16;not null;default:'DRAFT';index"`
	OrderDate    time.Time           `json:"order_date"`
	ExpectedDate *time.Time          `json:"expected_date"`
	TotalAmount  decimal.Decimal     `json:"total_amount" gorm:"type:decimal(14,2);not null;default:0"`
	Notes        string              `json:"notes"`
	Lines        []PurchaseOrderLine `json:"lines,omitempty" gorm:"foreignKey:PurchaseOrderID"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// TableName specifies the table name
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// LineStatus is the receiving state of a purchase order line
type LineStatus string

const (
	LineStatusPending   LineStatus = "PENDING"
	LineStatusPartial   LineStatus = "PARTIAL"
	LineStatusReceived  LineStatus = "RECEIVED"
	LineStatusCancelled LineStatus = "CANCELLED"
)

// PurchaseOrderLine orders a quantity of one material at a unit price
type PurchaseOrderLine struct {
	ID               uint                `json:"id" gorm:"primaryKey"`
	PurchaseOrderID  uint                `json:"purchase_order_id" gorm:"not null;index"`
	MaterialID       uint                `json:"material_id" gorm:"not null;index"`
	Material         *inventory.Material `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
	Quantity         int64               `json:"quantity" gorm:"not null"`
	UnitPrice        decimal.Decimal     `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	ReceivedQuantity int64               `json:"received_quantity" gorm:"not null;default:0"`
	Status           LineStatus          `json:"status" gorm:"size:16;not null;default:'PENDING'"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// TableName specifies the table name
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// Subtotal is quantity × unit price
func (l PurchaseOrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Outstanding is the quantity still to be received
func (l PurchaseOrderLine) Outstanding() int64 {
	if l.ReceivedQuantity >= l.Quantity {
		return 0
	}
	return l.Quantity - l.ReceivedQuantity
}

// SumLines totals the lines exactly and rounds to cents
func SumLines(lines []PurchaseOrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total.Round(2)
}

// PurchaseOrderFilter narrows purchase order listings
type PurchaseOrderFilter struct {
	Status     PurchaseOrderStatus
	SupplierID uint
	Limit      int
	Offset     int
}

// SupplierRepository defines the contract for supplier data access
type SupplierRepository interface {
	Create(ctx context.Context, supplier *Supplier) error
	FindByID(ctx context.Context, id uint) (*Supplier, error)
	FindAll(ctx context.Context, limit, offset int) ([]Supplier, error)
	Update(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id uint) error
	CountPurchaseOrders(ctx context.Context, id uint) (int64, error)
}

// PurchaseOrderRepository defines the contract for purchase order data access
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *PurchaseOrder) error
	// FindByID loads the order with its supplier and lines
	FindByID(ctx context.Context, id uint) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, error)
	ListIDs(ctx context.Context) ([]uint, error)
	// LockByID loads the bare order row with SELECT ... FOR UPDATE. It must
	// run inside a transaction.
	LockByID(ctx context.Context, id uint) (*PurchaseOrder, error)
	UpdateTotal(ctx context.Context, id uint, total decimal.Decimal, at time.Time) error
	UpdateStatus(ctx context.Context, id uint, status PurchaseOrderStatus) error
	Delete(ctx context.Context, id uint) error
	CountLines(ctx context.Context, id uint) (int64, error)
}

// PurchaseOrderLineRepository defines the contract for line data access
type PurchaseOrderLineRepository interface {
	Create(ctx context.Context, line *PurchaseOrderLine) error
	FindByID(ctx context.Context, id uint) (*PurchaseOrderLine, error)
	FindByOrder(ctx context.Context, purchaseOrderID uint) ([]PurchaseOrderLine, error)
	Update(ctx context.Context, line *PurchaseOrderLine) error
	Delete(ctx context.Context, id uint) error
}
