package command

import (
	"context"
	"strings"

	"github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// CreateMaterialTypeCommand represents the command to create a material type
type CreateMaterialTypeCommand struct {
	Name        string
	Description string
}

// CreateMaterialTypeHandler handles create material type command
type CreateMaterialTypeHandler struct {
	repo domain.MaterialTypeRepository
}

// NewCreateMaterialTypeHandler creates a new create material type handler
func NewCreateMaterialTypeHandler(repo domain.MaterialTypeRepository) *CreateMaterialTypeHandler {
	return &CreateMaterialTypeHandler{repo: repo}
}

// Handle executes the create material type command
func (h *CreateMaterialTypeHandler) Handle(ctx context.Context, cmd CreateMaterialTypeCommand) (*domain.MaterialType, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}

	materialType := &domain.MaterialType{Name: name, Description: cmd.Description}
	if err := h.repo.Create(ctx, materialType); err != nil {
		return nil, apperror.Storage("failed to create material type", err)
	}
	return materialType, nil
}

// DeleteMaterialTypeHandler deletes material types no material uses
type DeleteMaterialTypeHandler struct {
	repo domain.MaterialTypeRepository
}

// NewDeleteMaterialTypeHandler creates a new delete material type handler
func NewDeleteMaterialTypeHandler(repo domain.MaterialTypeRepository) *DeleteMaterialTypeHandler {
	return &DeleteMaterialTypeHandler{repo: repo}
}

// Handle deletes the material type with the given id
func (h *DeleteMaterialTypeHandler) Handle(ctx context.Context, id uint) error {
	if _, err := h.repo.FindByID(ctx, id); err != nil {
		return apperror.Storage("failed to load material type", err)
	}

	refs, err := h.repo.CountMaterials(ctx, id)
	if err != nil {
		return apperror.Storage("failed to check material type references", err)
	}
	if refs > 0 {
		return apperror.InUse("material type", id, refs, "materials")
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return apperror.Storage("failed to delete material type", err)
	}
	return nil
}

// CreateUnitCommand represents the command to create a unit of measure
type CreateUnitCommand struct {
	Name   string
	Symbol string
}

// CreateUnitHandler handles create unit of measure command
type CreateUnitHandler struct {
	repo domain.UnitOfMeasureRepository
}

// NewCreateUnitHandler creates a new create unit handler
func NewCreateUnitHandler(repo domain.UnitOfMeasureRepository) *CreateUnitHandler {
	return &CreateUnitHandler{repo: repo}
}

// Handle executes the create unit command
func (h *CreateUnitHandler) Handle(ctx context.Context, cmd CreateUnitCommand) (*domain.UnitOfMeasure, error) {
	name := strings.TrimSpace(cmd.Name)
	symbol := strings.TrimSpace(cmd.Symbol)
	if name == "" || symbol == "" {
		return nil, apperror.Validation("name and symbol are required")
	}

	unit := &domain.UnitOfMeasure{Name: name, Symbol: symbol}
	if err := h.repo.Create(ctx, unit); err != nil {
		return nil, apperror.Storage("failed to create unit of measure", err)
	}
	return unit, nil
}

// DeleteUnitHandler deletes units no material uses
type DeleteUnitHandler struct {
	repo domain.UnitOfMeasureRepository
}

// NewDeleteUnitHandler creates a new delete unit handler
func NewDeleteUnitHandler(repo domain.UnitOfMeasureRepository) *DeleteUnitHandler {
	return &DeleteUnitHandler{repo: repo}
}

// Handle deletes the unit with the given id
func (h *DeleteUnitHandler) Handle(ctx context.Context, id uint) error {
	if _, err := h.repo.FindByID(ctx, id); err != nil {
		return apperror.Storage("failed to load unit of measure", err)
	}

	refs, err := h.repo.CountMaterials(ctx, id)
	if err != nil {
		return apperror.Storage("failed to check unit references", err)
	}
	if refs > 0 {
		return apperror.InUse("unit of measure", id, refs, "materials")
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return apperror.Storage("failed to delete unit of measure", err)
	}
	return nil
}
