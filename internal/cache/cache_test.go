package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

func TestNilCacheIsNoop(t *testing.T) {
	var c *RedisCache
	ctx := context.Background()

	var dest []string
	found, _, err := c.Get(ctx, model.EntityEarning, "all", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, model.EntityEarning, 0, "all", []string{"a"}))
	require.NoError(t, c.Invalidate(ctx, model.EntityEarning))
	require.NoError(t, c.Close())
}

func TestListKey(t *testing.T) {
	assert.Equal(t, "payroll:list:earning:v3:status=pending", listKey(model.EntityEarning, 3, "status=pending"))
	assert.Equal(t, "payroll:ver:inventory", versionKey(model.EntityInventory))
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestRedisCache(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got []string
	found, version, err := c.Get(ctx, model.EntityInventory, "all", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, int64(0), version)

	require.NoError(t, c.Set(ctx, model.EntityInventory, version, "all", []string{"sword", "shield"}))

	found, _, err = c.Get(ctx, model.EntityInventory, "all", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"sword", "shield"}, got)

	require.NoError(t, c.Invalidate(ctx, model.EntityInventory))

	found, version, err = c.Get(ctx, model.EntityInventory, "all", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, int64(1), version)

	require.NoError(t, c.Set(ctx, model.EntityInventory, version, "all", []string{"bow"}))
	mr.FastForward(2 * time.Minute)

	found, _, err = c.Get(ctx, model.EntityInventory, "all", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_SetUnderOutdatedVersionIsNotServed(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var got []string
	found, version, err := c.Get(ctx, model.EntityEarning, "status=pending", &got)
	require.NoError(t, err)
	require.False(t, found)

	// Запись изменилась между чтением хранилища и записью в кэш.
	require.NoError(t, c.Invalidate(ctx, model.EntityEarning))
	require.NoError(t, c.Set(ctx, model.EntityEarning, version, "status=pending", []string{"stale"}))

	found, _, err = c.Get(ctx, model.EntityEarning, "status=pending", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_EntitiesAreIndependent(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, model.EntityGame, 0, "archived=false", []string{"Lost Ark"}))
	require.NoError(t, c.Invalidate(ctx, model.EntityEarning))

	var got []string
	found, _, err := c.Get(ctx, model.EntityGame, "archived=false", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"Lost Ark"}, got)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), addr, "", 0, time.Minute)
	require.Error(t, err)
}
