package command

import (
	"context"

	"github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/kafka"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/logger"
)

// StockEventPublisher announces materials that dropped below their minimum
type StockEventPublisher interface {
	PublishMaterialStockLow(ctx context.Context, event kafka.MaterialStockLowEvent) error
}

// AdjustStockCommand represents a manual stock correction
type AdjustStockCommand struct {
	MaterialID uint
	Delta      int64
	Reason     string
}

// AdjustStockHandler handles stock adjustments
type AdjustStockHandler struct {
	repo   domain.MaterialRepository
	events StockEventPublisher
}

// NewAdjustStockHandler creates a new adjust stock handler. events may be nil.
func NewAdjustStockHandler(repo domain.MaterialRepository, events StockEventPublisher) *AdjustStockHandler {
	return &AdjustStockHandler{repo: repo, events: events}
}

// Handle applies the delta atomically
func (h *AdjustStockHandler) Handle(ctx context.Context, cmd AdjustStockCommand) (*domain.Material, error) {
	if cmd.Delta == 0 {
		return nil, apperror.Validation("delta must not be zero")
	}

	material, err := h.repo.AdjustStock(ctx, cmd.MaterialID, cmd.Delta)
	if err != nil {
		return nil, apperror.Storage("failed to adjust stock", err)
	}

	logger.Info(ctx).
		Uint("material_id", material.ID).
		Int64("delta", cmd.Delta).
		Int64("current_stock", material.CurrentStock).
		Str("reason", cmd.Reason).
		Msg("Stock adjusted")

	if cmd.Delta < 0 && material.IsBelowMinimum() {
		NotifyStockLow(ctx, h.events, material)
	}
	return material, nil
}

// NotifyStockLow publishes a low stock event. Publishing failures are logged
// and never fail the stock movement.
func NotifyStockLow(ctx context.Context, events StockEventPublisher, material *domain.Material) {
	if events == nil {
		return
	}
	err := events.PublishMaterialStockLow(ctx, kafka.MaterialStockLowEvent{
		MaterialID:        material.ID,
		SKU:               material.SKU,
		Name:              material.Name,
		CurrentStock:      material.CurrentStock,
		MinimumStockLevel: material.MinimumStockLevel,
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("material_id", material.ID).Msg("Failed to publish stock low event")
	}
}
