package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stemsi/cohorts-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), &config.Config{RedisURL: "redis://" + mr.Addr() + "/0"}, zerolog.Nop())
	require.NoError(t, err)
	defer rdb.Close()

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))
}

func TestNewRedisClientErrors(t *testing.T) {
	_, err := NewRedisClient(context.Background(), &config.Config{RedisURL: "not a url"}, zerolog.Nop())
	assert.ErrorContains(t, err, "parse redis URL")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisClient(context.Background(), &config.Config{RedisURL: "redis://" + addr}, zerolog.Nop())
	assert.ErrorContains(t, err, "ping redis")
}

func TestNewPostgresPoolRejectsBadURL(t *testing.T) {
	_, err := NewPostgresPool(context.Background(), &config.Config{DatabaseURL: "postgres://%zz", MaxDBConns: 4}, zerolog.Nop())
	assert.ErrorContains(t, err, "parse database URL")
}

func TestNewMigratorRejectsMissingDirectory(t *testing.T) {
	_, err := NewMigrator("postgres://localhost/none?sslmode=disable", t.TempDir()+"/missing")
	assert.Error(t, err)
}
