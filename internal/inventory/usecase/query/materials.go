package query

import (
	"context"

	"github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// GetMaterialQuery represents the query to get a material
type GetMaterialQuery struct {
	ID uint
}

// GetMaterialHandler handles get material query
type GetMaterialHandler struct {
	repo domain.MaterialRepository
}

// NewGetMaterialHandler creates a new get material handler
func NewGetMaterialHandler(repo domain.MaterialRepository) *GetMaterialHandler {
	return &GetMaterialHandler{repo: repo}
}

// Handle executes the get material query
func (h *GetMaterialHandler) Handle(ctx context.Context, query GetMaterialQuery) (*domain.Material, error) {
	material, err := h.repo.FindByID(ctx, query.ID)
	if err != nil {
		return nil, apperror.Storage("failed to get material", err)
	}
	return material, nil
}

// ListMaterialsQuery represents the query to list materials
type ListMaterialsQuery struct {
	Status         domain.MaterialStatus
	MaterialTypeID uint
	Search         string
	Limit          int
	Offset         int
}

// ListMaterialsHandler handles list materials query
type ListMaterialsHandler struct {
	repo domain.MaterialRepository
}

// NewListMaterialsHandler creates a new list materials handler
func NewListMaterialsHandler(repo domain.MaterialRepository) *ListMaterialsHandler {
	return &ListMaterialsHandler{repo: repo}
}

// Handle executes the list materials query
func (h *ListMaterialsHandler) Handle(ctx context.Context, query ListMaterialsQuery) ([]domain.Material, error) {
	if query.Status != "" && !query.Status.Valid() {
		return nil, apperror.Validation("unknown status %q", query.Status)
	}

	materials, err := h.repo.FindAll(ctx, domain.MaterialFilter{
		Status:         query.Status,
		MaterialTypeID: query.MaterialTypeID,
		Search:         query.Search,
		Limit:          clampLimit(query.Limit),
		Offset:         query.Offset,
	})
	if err != nil {
		return nil, apperror.Storage("failed to list materials", err)
	}
	return materials, nil
}

// ListLowStockQuery represents the query to list materials under their minimum
type ListLowStockQuery struct {
	Limit  int
	Offset int
}

// ListLowStockHandler lists materials whose stock is below the minimum level
type ListLowStockHandler struct {
	repo domain.MaterialRepository
}

// NewListLowStockHandler creates a new low stock handler
func NewListLowStockHandler(repo domain.MaterialRepository) *ListLowStockHandler {
	return &ListLowStockHandler{repo: repo}
}

// Handle executes the low stock query
func (h *ListLowStockHandler) Handle(ctx context.Context, query ListLowStockQuery) ([]domain.Material, error) {
	materials, err := h.repo.FindBelowMinimum(ctx, clampLimit(query.Limit), query.Offset)
	if err != nil {
		return nil, apperror.Storage("failed to list low stock materials", err)
	}
	return materials, nil
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
