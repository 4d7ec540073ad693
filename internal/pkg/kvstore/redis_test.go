package kvstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/shandysiswandi/smsotp/internal/pkg/kvstore"
	"github.com/shandysiswandi/smsotp/internal/pkg/kvstore/kvstoretest"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()

	if os.Getenv("DONT_USE_NETWORK") != "" {
		t.Skip("test requires network egress")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	url, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb
}

func TestRedis(t *testing.T) {
	rdb := startRedis(t)

	kvstoretest.Common(t, kvstore.NewRedis(rdb), nil)
}

func TestRedis_DeadlineKeepsMilliseconds(t *testing.T) {
	// Arrange
	ctx := context.Background()
	rdb := startRedis(t)
	s := kvstore.NewRedis(rdb)

	// Act
	require.NoError(t, s.Set(ctx, "ms", []byte("v"), time.Now().Add(1500*time.Millisecond)))

	// Assert
	ttl, err := rdb.PTTL(ctx, "ms").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 1200*time.Millisecond)
	assert.LessOrEqual(t, ttl, 1500*time.Millisecond)
}

func TestRedis_PastDeadline(t *testing.T) {
	ctx := context.Background()
	rdb := startRedis(t)
	s := kvstore.NewRedis(rdb)

	require.NoError(t, s.Set(ctx, "gone", []byte("v"), time.Now().Add(-time.Millisecond)))

	_, err := s.Get(ctx, "gone")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}
