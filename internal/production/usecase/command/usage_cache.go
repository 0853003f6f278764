package command

import (
	"context"

	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/pkg/cache"
	"github.com/tair/manufacturing-erp/pkg/logger"
)

// UsageEvictor drops cached usage reports whose inputs changed
type UsageEvictor struct {
	boms  domain.BOMRepository
	cache *cache.Cache
}

// NewUsageEvictor creates an evictor. A nil cache makes it a no-op.
func NewUsageEvictor(boms domain.BOMRepository, cache *cache.Cache) *UsageEvictor {
	return &UsageEvictor{boms: boms, cache: cache}
}

// Materials evicts the reports of the given materials
func (e *UsageEvictor) Materials(ctx context.Context, materialIDs ...uint) {
	if e == nil || !e.cache.Enabled() || len(materialIDs) == 0 {
		return
	}
	keys := make([]string, len(materialIDs))
	for i, id := range materialIDs {
		keys[i] = domain.UsageCacheKey(id)
	}
	if err := e.cache.Delete(ctx, keys...); err != nil {
		logger.Warn(ctx).Err(err).Strs("keys", keys).Msg("Failed to evict usage reports")
	}
}

// Product evicts the reports of every material in the product's BOM
func (e *UsageEvictor) Product(ctx context.Context, productID uint) {
	if e == nil || !e.cache.Enabled() {
		return
	}
	entries, err := e.boms.FindByProduct(ctx, productID)
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("product_id", productID).Msg("Failed to resolve usage reports to evict")
		return
	}
	ids := make([]uint, len(entries))
	for i, entry := range entries {
		ids[i] = entry.MaterialID
	}
	e.Materials(ctx, ids...)
}
