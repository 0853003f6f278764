package command

import (
	"context"

	"github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// DeleteMaterialCommand represents the command to delete a material
type DeleteMaterialCommand struct {
	ID uint
}

// ReportEvictor drops reports other contexts cached for a material
type ReportEvictor interface {
	Materials(ctx context.Context, materialIDs ...uint)
}

func evictReports(ctx context.Context, evictor ReportEvictor, materialID uint) {
	if evictor != nil {
		evictor.Materials(ctx, materialID)
	}
}

// DeleteMaterialHandler handles delete material command
type DeleteMaterialHandler struct {
	repo    domain.MaterialRepository
	evictor ReportEvictor
}

// NewDeleteMaterialHandler creates a new delete material handler. evictor may be nil.
func NewDeleteMaterialHandler(repo domain.MaterialRepository, evictor ReportEvictor) *DeleteMaterialHandler {
	return &DeleteMaterialHandler{repo: repo, evictor: evictor}
}

// Handle deletes the material unless a BOM entry still references it
func (h *DeleteMaterialHandler) Handle(ctx context.Context, cmd DeleteMaterialCommand) error {
	if _, err := h.repo.FindByID(ctx, cmd.ID); err != nil {
		return apperror.Storage("failed to load material", err)
	}

	refs, err := h.repo.CountBOMReferences(ctx, cmd.ID)
	if err != nil {
		return apperror.Storage("failed to check material references", err)
	}
	if refs > 0 {
		return apperror.InUse("material", cmd.ID, refs, "BOM entries")
	}

	if err := h.repo.Delete(ctx, cmd.ID); err != nil {
		return apperror.Storage("failed to delete material", err)
	}
	evictReports(ctx, h.evictor, cmd.ID)
	return nil
}
