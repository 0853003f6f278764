package query

import (
	"context"

	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// GetProductHandler loads a product with its bill of materials
type GetProductHandler struct {
	repo domain.ProductRepository
}

func NewGetProductHandler(repo domain.ProductRepository) *GetProductHandler {
	return &GetProductHandler{repo: repo}
}

func (h *GetProductHandler) Handle(ctx context.Context, id uint) (*domain.Product, error) {
	product, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Storage("failed to get product", err)
	}
	return product, nil
}

// ListProductsQuery represents the query to list products
type ListProductsQuery struct {
	Status domain.ProductStatus
	Limit  int
	Offset int
}

// ListProductsHandler handles list products query
type ListProductsHandler struct {
	repo domain.ProductRepository
}

func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

func (h *ListProductsHandler) Handle(ctx context.Context, q ListProductsQuery) ([]domain.Product, error) {
	products, err := h.repo.FindAll(ctx, domain.ProductFilter{
		Status: q.Status,
		Limit:  clampLimit(q.Limit),
		Offset: q.Offset,
	})
	if err != nil {
		return nil, apperror.Storage("failed to list products", err)
	}
	return products, nil
}

// GetProductionOrderHandler loads an order with its operations and checks
type GetProductionOrderHandler struct {
	repo domain.ProductionOrderRepository
}

func NewGetProductionOrderHandler(repo domain.ProductionOrderRepository) *GetProductionOrderHandler {
	return &GetProductionOrderHandler{repo: repo}
}

func (h *GetProductionOrderHandler) Handle(ctx context.Context, id uint) (*domain.ProductionOrder, error) {
	order, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Storage("failed to get production order", err)
	}
	return order, nil
}

// ListProductionOrdersQuery represents the query to list production orders
type ListProductionOrdersQuery struct {
	Status    domain.ProductionOrderStatus
	ProductID uint
	Limit     int
	Offset    int
}

// ListProductionOrdersHandler handles list production orders query
type ListProductionOrdersHandler struct {
	repo domain.ProductionOrderRepository
}

func NewListProductionOrdersHandler(repo domain.ProductionOrderRepository) *ListProductionOrdersHandler {
	return &ListProductionOrdersHandler{repo: repo}
}

func (h *ListProductionOrdersHandler) Handle(ctx context.Context, q ListProductionOrdersQuery) ([]domain.ProductionOrder, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperror.Validation("unknown status %q", q.Status)
	}
	orders, err := h.repo.FindAll(ctx, domain.OrderFilter{
		Status:    q.Status,
		ProductID: q.ProductID,
		Limit:     clampLimit(q.Limit),
		Offset:    q.Offset,
	})
	if err != nil {
		return nil, apperror.Storage("failed to list production orders", err)
	}
	return orders, nil
}

// ListWorkCentersHandler lists work centers
type ListWorkCentersHandler struct {
	repo domain.WorkCenterRepository
}

func NewListWorkCentersHandler(repo domain.WorkCenterRepository) *ListWorkCentersHandler {
	return &ListWorkCentersHandler{repo: repo}
}

func (h *ListWorkCentersHandler) Handle(ctx context.Context, limit, offset int) ([]domain.WorkCenter, error) {
	centers, err := h.repo.FindAll(ctx, clampLimit(limit), offset)
	if err != nil {
		return nil, apperror.Storage("failed to list work centers", err)
	}
	return centers, nil
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
