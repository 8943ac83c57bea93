package repositories

import (
	"context"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
)

// BalanceCache memoizes folded balances. Every key carries a generation that
// Invalidate bumps; a cached value is only served when stamped with the
// current generation, and Put is ignored if the generation moved meanwhile.
type BalanceCache interface {
	Generation(ctx context.Context, key domain.BalanceKey) (uint64, error)
	Get(ctx context.Context, key domain.BalanceKey, generation uint64) (int64, bool, error)
	Put(ctx context.Context, key domain.BalanceKey, generation uint64, balance int64) error
	Invalidate(ctx context.Context, keys ...domain.BalanceKey) error
}
