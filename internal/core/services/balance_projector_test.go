package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/SscSPs/coinvest_backend/internal/adapters/cache"
	"github.com/SscSPs/coinvest_backend/internal/adapters/memory"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/core/services"
	"github.com/SscSPs/coinvest_backend/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyCache fails Invalidate while down is set.
type flakyCache struct {
	*cache.MemoryBalanceCache
	down        atomic.Bool
	invalidates atomic.Int32
}

func (c *flakyCache) Invalidate(ctx context.Context, keys ...domain.BalanceKey) error {
	c.invalidates.Add(1)
	if c.down.Load() {
		return errors.New("redis: connection refused")
	}
	return c.MemoryBalanceCache.Invalidate(ctx, keys...)
}

func TestBalanceProjector_FailedInvalidationNeverServesStale(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	flaky := &flakyCache{MemoryBalanceCache: cache.NewMemoryBalanceCache()}
	svc := services.NewServiceContainer(&config.Config{}, memory.NewRepositoryProvider(store), flaky)

	env := &ledgerEnv{store: store, svc: svc}
	require.NoError(t, env.register(ctx, userActor, adminActor))

	require.NoError(t, env.fund(ctx, "acc-1", domain.USDT, 100))
	b, err := svc.Balance.GetBalance(ctx, "acc-1", domain.USDT)
	require.NoError(t, err)
	assert.Equal(t, int64(100), b)

	flaky.down.Store(true)
	require.NoError(t, env.fund(ctx, "acc-1", domain.USDT, 50))

	// while the cache cannot be invalidated, reads fold the ledger
	b, err = svc.Balance.GetBalance(ctx, "acc-1", domain.USDT)
	require.NoError(t, err)
	assert.Equal(t, int64(150), b)

	flaky.down.Store(false)
	before := flaky.invalidates.Load()
	b, err = svc.Balance.GetBalance(ctx, "acc-1", domain.USDT)
	require.NoError(t, err)
	assert.Equal(t, int64(150), b)
	assert.Greater(t, flaky.invalidates.Load(), before, "recovered cache should be invalidated on the next read")

	entries, err := store.ListByAccount(ctx, "acc-1", domain.EntryFilter{})
	require.NoError(t, err)
	folded, err := domain.FoldBalance(entries)
	require.NoError(t, err)

	// once clean, the value is cached again and still matches the fold
	b, err = svc.Balance.GetBalance(ctx, "acc-1", domain.USDT)
	require.NoError(t, err)
	assert.Equal(t, folded, b)
	key := domain.BalanceKey{AccountID: "acc-1", Currency: domain.USDT}
	gen, err := flaky.Generation(ctx, key)
	require.NoError(t, err)
	cached, ok, err := flaky.Get(ctx, key, gen)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, folded, cached)
}
