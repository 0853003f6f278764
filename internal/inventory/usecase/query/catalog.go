package query

import (
	"context"

	"github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// ListMaterialTypesHandler lists every material type
type ListMaterialTypesHandler struct {
	repo domain.MaterialTypeRepository
}

func NewListMaterialTypesHandler(repo domain.MaterialTypeRepository) *ListMaterialTypesHandler {
	return &ListMaterialTypesHandler{repo: repo}
}

func (h *ListMaterialTypesHandler) Handle(ctx context.Context) ([]domain.MaterialType, error) {
	types, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Storage("failed to list material types", err)
	}
	return types, nil
}

// ListUnitsHandler lists every unit of measure
type ListUnitsHandler struct {
	repo domain.UnitOfMeasureRepository
}

func NewListUnitsHandler(repo domain.UnitOfMeasureRepository) *ListUnitsHandler {
	return &ListUnitsHandler{repo: repo}
}

func (h *ListUnitsHandler) Handle(ctx context.Context) ([]domain.UnitOfMeasure, error) {
	units, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Storage("failed to list units of measure", err)
	}
	return units, nil
}
