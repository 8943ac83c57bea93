// Package cache implements the balance cache port. Every implementation
// stamps values with a per-key generation; invalidation bumps the
// generation so a fold that raced with an append can never be served.
package cache

import (
	"context"
	"sync"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
)

type memoryEntry struct {
	generation uint64
	balance    int64
}

// MemoryBalanceCache keeps balances in process.
type MemoryBalanceCache struct {
	mu          sync.Mutex
	generations map[domain.BalanceKey]uint64
	values      map[domain.BalanceKey]memoryEntry
}

func NewMemoryBalanceCache() *MemoryBalanceCache {
	return &MemoryBalanceCache{
		generations: make(map[domain.BalanceKey]uint64),
		values:      make(map[domain.BalanceKey]memoryEntry),
	}
}

var _ portsrepo.BalanceCache = (*MemoryBalanceCache)(nil)

func (c *MemoryBalanceCache) Generation(_ context.Context, key domain.BalanceKey) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key], nil
}

func (c *MemoryBalanceCache) Get(_ context.Context, key domain.BalanceKey, generation uint64) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok || v.generation != generation || c.generations[key] != generation {
		return 0, false, nil
	}
	return v.balance, true, nil
}

// Put stores balance only if no invalidation happened since generation was read.
func (c *MemoryBalanceCache) Put(_ context.Context, key domain.BalanceKey, generation uint64, balance int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key] != generation {
		return nil
	}
	c.values[key] = memoryEntry{generation: generation, balance: balance}
	return nil
}

func (c *MemoryBalanceCache) Invalidate(_ context.Context, keys ...domain.BalanceKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.generations[k]++
		delete(c.values, k)
	}
	return nil
}
