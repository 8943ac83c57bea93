package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	"github.com/go-redis/redis/v8"
)

const defaultKeyPrefix = "ledger:balance"

// putIfCurrent stores ARGV[2] under KEYS[2] only while the generation at
// KEYS[1] still equals ARGV[1].
const putIfCurrent = `
local gen = redis.call('GET', KEYS[1]) or '0'
if gen == ARGV[1] then
  redis.call('SET', KEYS[2], ARGV[1] .. ':' .. ARGV[2])
  return 1
end
return 0`

// RedisBalanceCache shares cached balances between replicas.
type RedisBalanceCache struct {
	client *redis.Client
	prefix string
}

func NewRedisBalanceCache(client *redis.Client, prefix string) *RedisBalanceCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisBalanceCache{client: client, prefix: prefix}
}

var _ portsrepo.BalanceCache = (*RedisBalanceCache)(nil)

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping: %v", apperrors.ErrStoreUnavailable, err)
	}
	return client, nil
}

func (c *RedisBalanceCache) genKey(key domain.BalanceKey) string {
	return c.prefix + ":" + key.AccountID + ":" + string(key.Currency) + ":gen"
}

func (c *RedisBalanceCache) valKey(key domain.BalanceKey) string {
	return c.prefix + ":" + key.AccountID + ":" + string(key.Currency) + ":val"
}

func (c *RedisBalanceCache) Generation(ctx context.Context, key domain.BalanceKey) (uint64, error) {
	raw, err := c.client.Get(ctx, c.genKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: redis get generation: %v", apperrors.ErrStoreUnavailable, err)
	}
	gen, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: corrupt generation %q for %s", apperrors.ErrInternal, raw, key)
	}
	return gen, nil
}

func (c *RedisBalanceCache) Get(ctx context.Context, key domain.BalanceKey, generation uint64) (int64, bool, error) {
	raw, err := c.client.Get(ctx, c.valKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: redis get balance: %v", apperrors.ErrStoreUnavailable, err)
	}
	genPart, balPart, found := strings.Cut(raw, ":")
	if !found {
		return 0, false, nil
	}
	gen, err := strconv.ParseUint(genPart, 10, 64)
	if err != nil || gen != generation {
		return 0, false, nil
	}
	balance, err := strconv.ParseInt(balPart, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return balance, true, nil
}

func (c *RedisBalanceCache) Put(ctx context.Context, key domain.BalanceKey, generation uint64, balance int64) error {
	err := c.client.Eval(ctx, putIfCurrent,
		[]string{c.genKey(key), c.valKey(key)},
		strconv.FormatUint(generation, 10), strconv.FormatInt(balance, 10),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: redis put balance: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Invalidate bumps every generation and drops the values in one MULTI/EXEC.
func (c *RedisBalanceCache) Invalidate(ctx context.Context, keys ...domain.BalanceKey) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, c.genKey(k))
			pipe.Del(ctx, c.valKey(k))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: redis invalidate: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}
