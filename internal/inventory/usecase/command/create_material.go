package command

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// CreateMaterialCommand represents the command to create a material
type CreateMaterialCommand struct {
	SKU               string
	Name              string
	Description       string
	MaterialTypeID    uint
	UnitOfMeasureID   uint
	CostPerUnit       decimal.Decimal
	CurrentStock      int64
	MinimumStockLevel int64
	Status            domain.MaterialStatus
}

// CreateMaterialHandler handles create material command
type CreateMaterialHandler struct {
	repo  domain.MaterialRepository
	types domain.MaterialTypeRepository
	units domain.UnitOfMeasureRepository
}

// NewCreateMaterialHandler creates a new create material handler
func NewCreateMaterialHandler(
	repo domain.MaterialRepository,
	types domain.MaterialTypeRepository,
	units domain.UnitOfMeasureRepository,
) *CreateMaterialHandler {
	return &CreateMaterialHandler{repo: repo, types: types, units: units}
}

// Handle executes the create material command
func (h *CreateMaterialHandler) Handle(ctx context.Context, cmd CreateMaterialCommand) (*domain.Material, error) {
	cmd.SKU = strings.TrimSpace(cmd.SKU)
	cmd.Name = strings.TrimSpace(cmd.Name)
	if cmd.Status == "" {
		cmd.Status = domain.MaterialStatusActive
	}

	switch {
	case cmd.SKU == "":
		return nil, apperror.Validation("sku is required")
	case cmd.Name == "":
		return nil, apperror.Validation("name is required")
	case cmd.CostPerUnit.IsNegative():
		return nil, apperror.Validation("cost_per_unit cannot be negative")
	case cmd.CurrentStock < 0:
		return nil, apperror.Validation("current_stock cannot be negative")
	case cmd.MinimumStockLevel < 0:
		return nil, apperror.Validation("minimum_stock_level cannot be negative")
	case !cmd.Status.Valid():
		return nil, apperror.Validation("unknown status %q", cmd.Status)
	}

	if err := checkReferences(ctx, h.types, h.units, cmd.MaterialTypeID, cmd.UnitOfMeasureID); err != nil {
		return nil, err
	}

	material := &domain.Material{
		SKU:               cmd.SKU,
		Name:              cmd.Name,
		Description:       cmd.Description,
		MaterialTypeID:    cmd.MaterialTypeID,
		UnitOfMeasureID:   cmd.UnitOfMeasureID,
		CostPerUnit:       cmd.CostPerUnit.Round(2),
		CurrentStock:      cmd.CurrentStock,
		MinimumStockLevel: cmd.MinimumStockLevel,
		Status:            cmd.Status,
	}

	if err := h.repo.Create(ctx, material); err != nil {
		return nil, apperror.Storage("failed to create material", err)
	}

	return material, nil
}

// checkReferences turns a dangling type or unit id into a validation error
func checkReferences(
	ctx context.Context,
	types domain.MaterialTypeRepository,
	units domain.UnitOfMeasureRepository,
	typeID, unitID uint,
) error {
	if typeID == 0 {
		return apperror.Validation("material_type_id is required")
	}
	if unitID == 0 {
		return apperror.Validation("unit_of_measure_id is required")
	}
	if _, err := types.FindByID(ctx, typeID); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return apperror.Validation("material type %d does not exist", typeID)
		}
		return apperror.Storage("failed to load material type", err)
	}
	if _, err := units.FindByID(ctx, unitID); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return apperror.Validation("unit of measure %d does not exist", unitID)
		}
		return apperror.Storage("failed to load unit of measure", err)
	}
	return nil
}
