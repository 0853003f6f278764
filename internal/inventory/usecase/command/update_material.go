package command

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// UpdateMaterialCommand represents the command to update a material.
// Nil fields are left unchanged. Stock is changed through AdjustStockCommand.
type UpdateMaterialCommand struct {
	ID                uint
	SKU               *string
	Name              *string
	Description       *string
	MaterialTypeID    *uint
	UnitOfMeasureID   *uint
	CostPerUnit       *decimal.Decimal
	MinimumStockLevel *int64
	Status            *domain.MaterialStatus
}

// UpdateMaterialHandler handles update material command
type UpdateMaterialHandler struct {
	repo    domain.MaterialRepository
	types   domain.MaterialTypeRepository
	units   domain.UnitOfMeasureRepository
	evictor ReportEvictor
}

// NewUpdateMaterialHandler creates a new update material handler
func NewUpdateMaterialHandler(
	repo domain.MaterialRepository,
	types domain.MaterialTypeRepository,
	units domain.UnitOfMeasureRepository,
	evictor ReportEvictor,
) *UpdateMaterialHandler {
	return &UpdateMaterialHandler{repo: repo, types: types, units: units, evictor: evictor}
}

// Handle executes the update material command
func (h *UpdateMaterialHandler) Handle(ctx context.Context, cmd UpdateMaterialCommand) (*domain.Material, error) {
	material, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, apperror.Storage("failed to load material", err)
	}

	if cmd.SKU != nil {
		sku := strings.TrimSpace(*cmd.SKU)
		if sku == "" {
			return nil, apperror.Validation("sku cannot be empty")
		}
		material.SKU = sku
	}
	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return nil, apperror.Validation("name cannot be empty")
		}
		material.Name = name
	}
	if cmd.Description != nil {
		material.Description = *cmd.Description
	}
	if cmd.CostPerUnit != nil {
		if cmd.CostPerUnit.IsNegative() {
			return nil, apperror.Validation("cost_per_unit cannot be negative")
		}
		material.CostPerUnit = cmd.CostPerUnit.Round(2)
	}
	if cmd.MinimumStockLevel != nil {
		if *cmd.MinimumStockLevel < 0 {
			return nil, apperror.Validation("minimum_stock_level cannot be negative")
		}
		material.MinimumStockLevel = *cmd.MinimumStockLevel
	}
	if cmd.Status != nil {
		if !cmd.Status.Valid() {
			return nil, apperror.Validation("unknown status %q", *cmd.Status)
		}
		material.Status = *cmd.Status
	}
	if cmd.MaterialTypeID != nil || cmd.UnitOfMeasureID != nil {
		if cmd.MaterialTypeID != nil {
			material.MaterialTypeID = *cmd.MaterialTypeID
		}
		if cmd.UnitOfMeasureID != nil {
			material.UnitOfMeasureID = *cmd.UnitOfMeasureID
		}
		if err := checkReferences(ctx, h.types, h.units, material.MaterialTypeID, material.UnitOfMeasureID); err != nil {
			return nil, err
		}
	}

	if err := h.repo.Update(ctx, material); err != nil {
		return nil, apperror.Storage("failed to update material", err)
	}
	// name, sku and unit are part of the cached usage report
	evictReports(ctx, h.evictor, material.ID)

	updated, err := h.repo.FindByID(ctx, material.ID)
	if err != nil {
		return nil, apperror.Storage("failed to load material", err)
	}
	return updated, nil
}
