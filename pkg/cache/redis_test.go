package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_WithoutClientIsANoop(t *testing.T) {
	c := New(nil, "usage", time.Minute)
	ctx := context.Background()

	assert.False(t, c.Enabled())
	require.NoError(t, c.Set(ctx, "material:1", map[string]int{"a": 1}))

	var dest map[string]int
	found, err := c.Get(ctx, "material:1", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, dest)

	require.NoError(t, c.Delete(ctx, "material:1"))
}

func TestCache_NilReceiver(t *testing.T) {
	var c *Cache
	assert.False(t, c.Enabled())
}

func TestCache_Key(t *testing.T) {
	c := New(nil, "erp:usage", 0)
	assert.Equal(t, "erp:usage:material:9", c.key("material:9"))
	assert.Equal(t, 30*time.Second, c.ttl)
}

func newTestCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), Config{Addr: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return srv, New(client, "erp", ttl)
}

func TestCache_SetGetDelete(t *testing.T) {
	srv, c := newTestCache(t, time.Minute)
	ctx := context.Background()
	require.True(t, c.Enabled())

	require.NoError(t, c.Set(ctx, "usage:1", map[string]float64{"total": 4.8}))
	assert.True(t, srv.Exists("erp:usage:1"))
	assert.Equal(t, time.Minute, srv.TTL("erp:usage:1"))

	var dest map[string]float64
	found, err := c.Get(ctx, "usage:1", &dest)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 4.8, dest["total"])

	require.NoError(t, c.Delete(ctx, "usage:1", "usage:2"))
	found, err = c.Get(ctx, "usage:1", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_EntriesExpire(t *testing.T) {
	srv, c := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "usage:1", 1))
	srv.FastForward(61 * time.Second)

	var dest int
	found, err := c.Get(ctx, "usage:1", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_CorruptValue(t *testing.T) {
	srv, c := newTestCache(t, time.Minute)
	require.NoError(t, srv.Set("erp:usage:1", "{not json"))

	var dest map[string]any
	found, err := c.Get(context.Background(), "usage:1", &dest)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := NewRedisClient(context.Background(), Config{Addr: addr})
	assert.Error(t, err)
}
