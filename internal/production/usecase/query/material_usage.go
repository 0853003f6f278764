package query

import (
	"context"

	"github.com/shopspring/decimal"

	inventory "github.com/tair/manufacturing-erp/internal/inventory/domain"
	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/cache"
	"github.com/tair/manufacturing-erp/pkg/logger"
)

// MaterialUsageQuery asks how much of a material open production will consume
type MaterialUsageQuery struct {
	MaterialID uint
}

// MaterialUsageHandler projects material consumption per product
type MaterialUsageHandler struct {
	materials inventory.MaterialRepository
	boms      domain.BOMRepository
	policy    domain.DemandPolicy
	cache     *cache.Cache
	metrics   *Metrics
}

// NewMaterialUsageHandler creates a new usage handler. cache and metrics may be nil.
func NewMaterialUsageHandler(
	materials inventory.MaterialRepository,
	boms domain.BOMRepository,
	policy domain.DemandPolicy,
	cache *cache.Cache,
	metrics *Metrics,
) *MaterialUsageHandler {
	return &MaterialUsageHandler{materials: materials, boms: boms, policy: policy, cache: cache, metrics: metrics}
}

// Handle executes the usage query
func (h *MaterialUsageHandler) Handle(ctx context.Context, q MaterialUsageQuery) (*domain.MaterialUsageReport, error) {
	key := domain.UsageCacheKey(q.MaterialID)

	var cached domain.MaterialUsageReport
	hit, err := h.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		logger.Warn(ctx).Err(err).Str("key", key).Msg("Usage cache read failed")
	case hit:
		h.metrics.cache("hit")
		return &cached, nil
	}
	if h.cache.Enabled() {
		h.metrics.cache("miss")
	}

	material, err := h.materials.FindByID(ctx, q.MaterialID)
	if err != nil {
		return nil, apperror.Storage("failed to load material usage", err)
	}

	entries, err := h.boms.FindByMaterialWithOpenOrders(ctx, material.ID, h.policy.OpenStatuses())
	if err != nil {
		return nil, apperror.Storage("failed to load material usage", err)
	}

	report := &domain.MaterialUsageReport{
		MaterialID:   material.ID,
		MaterialName: material.Name,
		SKU:          material.SKU,
		Unit:         material.UnitSymbol(),
		Products:     make([]domain.MaterialUsage, 0, len(entries)),
	}

	total := decimal.Zero
	for _, entry := range entries {
		pending := pendingUnits(entry)
		usage := entry.Requirement(pending).Round(2)
		total = total.Add(usage)

		line := domain.MaterialUsage{
			ProductID:         entry.ProductID,
			PendingProduction: pending,
			QuantityNeeded:    toFloat(entry.QuantityNeeded),
			WastePercentage:   toFloat(entry.WastePercentage),
			ProjectedUsage:    toFloat(usage),
		}
		if entry.Product != nil {
			line.ProductSKU = entry.Product.SKU
			line.ProductName = entry.Product.Name
		}
		report.Products = append(report.Products, line)
	}
	report.TotalProjectedUsage = toFloat(total.Round(2))

	if err := h.cache.Set(ctx, key, report); err != nil {
		logger.Warn(ctx).Err(err).Str("key", key).Msg("Usage cache write failed")
	}
	return report, nil
}
