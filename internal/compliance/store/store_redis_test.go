package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/internal/compliance/models"
	"tokengate/pkg/domain"
)

// unreachableRedis returns a client whose every command fails fast, so tests
// can exercise the degrade-to-backing-store path without a server.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:            "127.0.0.1:1",
		DialTimeout:     50 * time.Millisecond,
		ReadTimeout:     50 * time.Millisecond,
		WriteTimeout:    50 * time.Millisecond,
		MaxRetries:      -1,
		PoolSize:        1,
		MinIdleConns:    0,
		PoolTimeout:     50 * time.Millisecond,
		ConnMaxIdleTime: time.Second,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCachedStore_DegradesWhenCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	account := domain.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

	inner := New()
	cached := NewCached(inner, unreachableRedis(t))

	require.NoError(t, cached.SetFlag(ctx, account, models.FlagBlacklisted, true))

	flags, err := cached.Flags(ctx, account)
	require.NoError(t, err, "cache failures must not surface")
	assert.True(t, flags.Blacklisted)

	// Policy reads bypass the cache entirely.
	require.NoError(t, cached.SetPaused(ctx, true))
	policy, err := cached.Policy(ctx)
	require.NoError(t, err)
	assert.True(t, policy.Paused)
}

func TestCachedStore_WritesReachBackingStore(t *testing.T) {
	ctx := context.Background()
	accounts := []domain.Address{
		"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
	}

	inner := New()
	cached := NewCached(inner, unreachableRedis(t))

	require.NoError(t, cached.SetFlagBatch(ctx, accounts, models.FlagWhitelisted, true))

	for _, account := range accounts {
		flags, err := inner.Flags(ctx, account)
		require.NoError(t, err)
		assert.True(t, flags.Whitelisted)
	}
}
