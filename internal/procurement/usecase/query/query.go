package query

import (
	"context"

	"github.com/tair/manufacturing-erp/internal/procurement/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// GetPurchaseOrderHandler loads a purchase order with its supplier and lines
type GetPurchaseOrderHandler struct {
	repo domain.PurchaseOrderRepository
}

// NewGetPurchaseOrderHandler creates a new get purchase order handler
func NewGetPurchaseOrderHandler(repo domain.PurchaseOrderRepository) *GetPurchaseOrderHandler {
	return &GetPurchaseOrderHandler{repo: repo}
}

// Handle executes the query
func (h *GetPurchaseOrderHandler) Handle(ctx context.Context, id uint) (*domain.PurchaseOrder, error) {
	order, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Storage("failed to get purchase order", err)
	}
	return order, nil
}

// ListPurchaseOrdersQuery represents the query to list purchase orders
type ListPurchaseOrdersQuery struct {
	Status     domain.PurchaseOrderStatus
	SupplierID uint
	Limit      int
	Offset     int
}

// ListPurchaseOrdersHandler handles list purchase orders query
type ListPurchaseOrdersHandler struct {
	repo domain.PurchaseOrderRepository
}

// NewListPurchaseOrdersHandler creates a new list purchase orders handler
func NewListPurchaseOrdersHandler(repo domain.PurchaseOrderRepository) *ListPurchaseOrdersHandler {
	return &ListPurchaseOrdersHandler{repo: repo}
}

// Handle executes the query, newest orders first
func (h *ListPurchaseOrdersHandler) Handle(ctx context.Context, q ListPurchaseOrdersQuery) ([]domain.PurchaseOrder, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperror.Validation("unknown status %q", q.Status)
	}
	orders, err := h.repo.FindAll(ctx, domain.PurchaseOrderFilter{
		Status:     q.Status,
		SupplierID: q.SupplierID,
		Limit:      clampLimit(q.Limit),
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, apperror.Storage("failed to list purchase orders", err)
	}
	return orders, nil
}

// GetSupplierHandler loads one supplier
type GetSupplierHandler struct {
	repo domain.SupplierRepository
}

// NewGetSupplierHandler creates a new get supplier handler
func NewGetSupplierHandler(repo domain.SupplierRepository) *GetSupplierHandler {
	return &GetSupplierHandler{repo: repo}
}

// Handle executes the query
func (h *GetSupplierHandler) Handle(ctx context.Context, id uint) (*domain.Supplier, error) {
	supplier, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Storage("failed to get supplier", err)
	}
	return supplier, nil
}

// ListSuppliersHandler lists suppliers
type ListSuppliersHandler struct {
	repo domain.SupplierRepository
}

// NewListSuppliersHandler creates a new list suppliers handler
func NewListSuppliersHandler(repo domain.SupplierRepository) *ListSuppliersHandler {
	return &ListSuppliersHandler{repo: repo}
}

// Handle executes the query
func (h *ListSuppliersHandler) Handle(ctx context.Context, limit, offset int) ([]domain.Supplier, error) {
	suppliers, err := h.repo.FindAll(ctx, clampLimit(limit), offset)
	if err != nil {
		return nil, apperror.Storage("failed to list suppliers", err)
	}
	return suppliers, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}
