package query

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invrepo "github.com/tair/manufacturing-erp/internal/inventory/repository"
	invcommand "github.com/tair/manufacturing-erp/internal/inventory/usecase/command"
	"github.com/tair/manufacturing-erp/internal/production/domain"
	prodcommand "github.com/tair/manufacturing-erp/internal/production/usecase/command"
	"github.com/tair/manufacturing-erp/pkg/apperror"
	"github.com/tair/manufacturing-erp/pkg/cache"
)

func newRedisCache(t *testing.T) (*miniredis.Miniredis, *cache.Cache) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, cache.New(client, "erp", time.Minute)
}

func TestMaterialUsage_ServedFromCache(t *testing.T) {
	p := newPlant(t)
	srv, usageCache := newRedisCache(t)
	metrics := NewMetrics(prometheus.NewRegistry())

	m := p.material("WIRE", 10, 0)
	product := p.product("CABLE")
	p.bom(product.ID, m.ID, "3", "0")
	p.order(product.ID, 2, domain.OrderStatusPending)

	handler := NewMaterialUsageHandler(p.materials, p.boms, defaultPolicy, usageCache, metrics)
	ctx := context.Background()

	first, err := handler.Handle(ctx, MaterialUsageQuery{MaterialID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, 6.0, first.TotalProjectedUsage)
	assert.True(t, srv.Exists("erp:"+domain.UsageCacheKey(m.ID)))

	// a new order bypasses the evictor, so the cached report is returned
	p.order(product.ID, 5, domain.OrderStatusPending)
	second, err := handler.Handle(ctx, MaterialUsageQuery{MaterialID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.usageCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.usageCache.WithLabelValues("hit")))

	srv.FastForward(2 * time.Minute)
	expired, err := handler.Handle(ctx, MaterialUsageQuery{MaterialID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, 21.0, expired.TotalProjectedUsage)
}

func TestMaterialUsage_MaterialChangesEvictCachedReport(t *testing.T) {
	p := newPlant(t)
	srv, usageCache := newRedisCache(t)

	m := p.material("WIRE", 10, 0)
	product := p.product("CABLE")
	entry := p.bom(product.ID, m.ID, "3", "0")
	p.order(product.ID, 2, domain.OrderStatusPending)

	handler := NewMaterialUsageHandler(p.materials, p.boms, defaultPolicy, usageCache, nil)
	evictor := prodcommand.NewUsageEvictor(p.boms, usageCache)
	types := invrepo.NewGormMaterialTypeRepository(p.db)
	units := invrepo.NewGormUnitOfMeasureRepository(p.db)
	ctx := context.Background()

	report, err := handler.Handle(ctx, MaterialUsageQuery{MaterialID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, "Material WIRE", report.MaterialName)

	name := "Copper wire"
	_, err = invcommand.NewUpdateMaterialHandler(p.materials, types, units, evictor).Handle(ctx, invcommand.UpdateMaterialCommand{ID: m.ID, Name: &name})
	require.NoError(t, err)
	assert.False(t, srv.Exists("erp:"+domain.UsageCacheKey(m.ID)))

	report, err = handler.Handle(ctx, MaterialUsageQuery{MaterialID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, "Copper wire", report.MaterialName)

	require.NoError(t, p.db.Delete(entry).Error)
	require.NoError(t, invcommand.NewDeleteMaterialHandler(p.materials, evictor).Handle(ctx, invcommand.DeleteMaterialCommand{ID: m.ID}))

	_, err = handler.Handle(ctx, MaterialUsageQuery{MaterialID: m.ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
