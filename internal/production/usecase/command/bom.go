package command

import (
	"context"

	"github.com/shopspring/decimal"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

var maxWaste = decimal.NewFromInt(100)

func validateBOMQuantities(quantityNeeded, wastePercentage decimal.Decimal) error {
	if quantityNeeded.IsNegative() {
		return apperror.Validation("quantity_needed cannot be negative")
	}
	if wastePercentage.IsNegative() || wastePercentage.GreaterThan(maxWaste) {
		return apperror.Validation("waste_percentage must be between 0 and 100")
	}
	return nil
}

// CreateBOMEntryCommand adds a material to a product's bill of materials
type CreateBOMEntryCommand struct {
	ProductID       uint
	MaterialID      uint
	QuantityNeeded  decimal.Decimal
	WastePercentage decimal.Decimal
	Notes           string
}

// CreateBOMEntryHandler handles create BOM entry command
type CreateBOMEntryHandler struct {
	products  domain.ProductRepository
	materials inventory.MaterialRepository
	boms      domain.BOMRepository
	evictor   *UsageEvictor
}

// NewCreateBOMEntryHandler creates a new create BOM entry handler
func NewCreateBOMEntryHandler(
	products domain.ProductRepository,
	materials inventory.MaterialRepository,
	boms domain.BOMRepository,
	evictor *UsageEvictor,
) *CreateBOMEntryHandler {
	return &CreateBOMEntryHandler{products: products, materials: materials, boms: boms, evictor: evictor}
}

// Handle executes the create BOM entry command
func (h *CreateBOMEntryHandler) Handle(ctx context.Context, cmd CreateBOMEntryCommand) (*domain.BOMEntry, error) {
	if err := validateBOMQuantities(cmd.QuantityNeeded, cmd.WastePercentage); err != nil {
		return nil, err
	}
	if _, err := h.products.FindByID(ctx, cmd.ProductID); err != nil {
		return nil, apperror.Storage("failed to load product", err)
	}
	if _, err := h.materials.FindByID(ctx, cmd.MaterialID); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.Validation("material %d does not exist", cmd.MaterialID)
		}
		return nil, apperror.Storage("failed to load material", err)
	}

	entry := &domain.BOMEntry{
		ProductID:       cmd.ProductID,
		MaterialID:      cmd.MaterialID,
		QuantityNeeded:  cmd.QuantityNeeded,
		WastePercentage: cmd.WastePercentage,
		Notes:           cmd.Notes,
	}
	if err := h.boms.Create(ctx, entry); err != nil {
		return nil, apperror.Storage("failed to create BOM entry", err)
	}

	h.evictor.Materials(ctx, entry.MaterialID)
	return entry, nil
}

// UpdateBOMEntryCommand changes the quantities of a BOM entry
type UpdateBOMEntryCommand struct {
	ID              uint
	QuantityNeeded  *decimal.Decimal
	WastePercentage *decimal.Decimal
	Notes           *string
}

// UpdateBOMEntryHandler handles update BOM entry command
type UpdateBOMEntryHandler struct {
	boms    domain.BOMRepository
	evictor *UsageEvictor
}

// NewUpdateBOMEntryHandler creates a new update BOM entry handler
func NewUpdateBOMEntryHandler(boms domain.BOMRepository, evictor *UsageEvictor) *UpdateBOMEntryHandler {
	return &UpdateBOMEntryHandler{boms: boms, evictor: evictor}
}

// Handle executes the update BOM entry command
func (h *UpdateBOMEntryHandler) Handle(ctx context.Context, cmd UpdateBOMEntryCommand) (*domain.BOMEntry, error) {
	entry, err := h.boms.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, apperror.Storage("failed to load BOM entry", err)
	}

	if cmd.QuantityNeeded != nil {
		entry.QuantityNeeded = *cmd.QuantityNeeded
	}
	if cmd.WastePercentage != nil {
		entry.WastePercentage = *cmd.WastePercentage
	}
	if cmd.Notes != nil {
		entry.Notes = *cmd.Notes
	}
	if err := validateBOMQuantities(entry.QuantityNeeded, entry.WastePercentage); err != nil {
		return nil, err
	}

	if err := h.boms.Update(ctx, entry); err != nil {
		return nil, apperror.Storage("failed to update BOM entry", err)
	}

	h.evictor.Materials(ctx, entry.MaterialID)
	return entry, nil
}

// DeleteBOMEntryHandler removes a material from a product's bill of materials
type DeleteBOMEntryHandler struct {
	boms    domain.BOMRepository
	evictor *UsageEvictor
}

// NewDeleteBOMEntryHandler creates a new delete BOM entry handler
func NewDeleteBOMEntryHandler(boms domain.BOMRepository, evictor *UsageEvictor) *DeleteBOMEntryHandler {
	return &DeleteBOMEntryHandler{boms: boms, evictor: evictor}
}

// Handle deletes the BOM entry with the given id
func (h *DeleteBOMEntryHandler) Handle(ctx context.Context, id uint) error {
	entry, err := h.boms.FindByID(ctx, id)
	if err != nil {
		return apperror.Storage("failed to load BOM entry", err)
	}
	if err := h.boms.Delete(ctx, id); err != nil {
		return apperror.Storage("failed to delete BOM entry", err)
	}

	h.evictor.Materials(ctx, entry.MaterialID)
	return nil
}
