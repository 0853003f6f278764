package query

import (
	"context"
	"math"

	"github.com/shopspring/decimal"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/logger"
	"github.com/tair/manufacturing-erp/pkg/numeric"
)

const availabilityFailure = "failed to check material availability"

// MaterialAvailabilityQuery asks whether RequiredQuantity of a material can
// be drawn without touching stock committed to open production
type MaterialAvailabilityQuery struct {
	MaterialID       uint
	RequiredQuantity float64
}

// MaterialAvailabilityHandler computes the stock position of a material
type MaterialAvailabilityHandler struct {
	materials inventory.MaterialRepository
	boms      domain.BOMRepository
	policy    domain.DemandPolicy
	metrics   *Metrics
}

// NewMaterialAvailabilityHandler creates a new availability handler. metrics may be nil.
func NewMaterialAvailabilityHandler(
	materials inventory.MaterialRepository,
	boms domain.BOMRepository,
	policy domain.DemandPolicy,
	metrics *Metrics,
) *MaterialAvailabilityHandler {
	return &MaterialAvailabilityHandler{materials: materials, boms: boms, policy: policy, metrics: metrics}
}

// Handle executes the availability query. A missing material is a NotFound
// error, never a zeroed result.
func (h *MaterialAvailabilityHandler) Handle(ctx context.Context, q MaterialAvailabilityQuery) (*domain.AvailabilityResult, error) {
	if math.IsNaN(q.RequiredQuantity) || math.IsInf(q.RequiredQuantity, 0) || q.RequiredQuantity < 0 {
		h.metrics.availability("invalid")
		return nil, apperror.Validation("required quantity must be a finite non-negative number")
	}

	material, err := h.materials.FindByID(ctx, q.MaterialID)
	if err != nil {
		h.metrics.availability("error")
		return nil, apperror.Storage(availabilityFailure, err)
	}

	entries, err := h.boms.FindByMaterialWithOpenOrders(ctx, material.ID, h.policy.OpenStatuses())
	if err != nil {
		h.metrics.availability("error")
		logger.Error(ctx).Err(err).Uint("material_id", material.ID).Msg("Failed to load BOM demand")
		return nil, apperror.Storage(availabilityFailure, err)
	}

	committed := CommittedQuantity(entries)
	available := decimal.NewFromInt(material.CurrentStock).Sub(committed)
	required := decimal.NewFromFloat(q.RequiredQuantity)

	isAvailable := available.GreaterThanOrEqual(required)
	shortfall := decimal.Zero
	if !isAvailable {
		shortfall = required.Sub(available)
	}

	result := &domain.AvailabilityResult{
		MaterialID:        material.ID,
		MaterialName:      material.Name,
		SKU:               material.SKU,
		Unit:              material.UnitSymbol(),
		CurrentStock:      material.CurrentStock,
		MinimumStockLevel: material.MinimumStockLevel,
		CommittedQuantity: toFloat(committed),
		AvailableStock:    toFloat(available),
		RequiredQuantity:  q.RequiredQuantity,
		IsAvailable:       isAvailable,
		IsBelowMinimum:    available.LessThan(decimal.NewFromInt(material.MinimumStockLevel)),
		Shortfall:         toFloat(shortfall),
	}

	if isAvailable {
		h.metrics.availability("available")
	} else {
		h.metrics.availability("shortfall")
	}

	logger.Debug(ctx).
		Uint("material_id", material.ID).
		Float64("committed", result.CommittedQuantity).
		Float64("available", result.AvailableStock).
		Float64("required", result.RequiredQuantity).
		Bool("is_available", result.IsAvailable).
		Msg("Material availability computed")

	return result, nil
}

// CommittedQuantity sums every entry's commitment to its product's loaded
// production orders. Callers load only open orders.
func CommittedQuantity(entries []domain.BOMEntry) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Requirement(pendingUnits(entry)))
	}
	return total
}

func pendingUnits(entry domain.BOMEntry) int64 {
	if entry.Product == nil {
		return 0
	}
	var units int64
	for _, order := range entry.Product.ProductionOrders {
		units += order.Quantity
	}
	return units
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := numeric.Float64(d)
	return f
}
