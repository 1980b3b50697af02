package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/cohorts-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewRedis(rdb)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestRedis(t)

	var got model.Cohort
	found, err := c.Get(ctx, "cohort:1", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "cohort:1", model.Cohort{ID: 1, Name: "Cohort A"}, time.Minute))
	assert.True(t, mr.Exists("cohort:1"))

	found, err = c.Get(ctx, "cohort:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, model.Cohort{ID: 1, Name: "Cohort A"}, got)
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "cohorts:all", []model.Cohort{{ID: 1, Name: "A"}}, time.Second))
	mr.FastForward(2 * time.Second)

	var got []model.Cohort
	found, err := c.Get(ctx, "cohorts:all", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCacheDelete(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, c.Delete(ctx, "a", "b", "missing"))
	require.NoError(t, c.Delete(ctx))

	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))
}

func TestRedisCacheCorruptValue(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestRedis(t)
	require.NoError(t, mr.Set("cohort:2", "{not json"))

	var got model.Cohort
	found, err := c.Get(ctx, "cohort:2", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	c := NewNoop()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	var got string
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Delete(ctx, "k"))
}
