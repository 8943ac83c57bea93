package repositories

import (
	"context"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
)

// UnitOfWork serializes work per account. Everything done through the
// AccountTx passed to fn commits atomically when fn returns nil and is
// discarded otherwise. Append hooks fire after commit.
type UnitOfWork interface {
	WithinAccount(ctx context.Context, accountID string, fn func(tx AccountTx) error) error
}

// AccountTx is the transaction-scoped view of a single account.
type AccountTx interface {
	// Balance folds every committed and staged entry for the account in currency.
	Balance(ctx context.Context, currency domain.Currency) (int64, error)

	// AppendEntries stages entries for the account; ids, sequence and
	// timestamps are assigned when absent. Entries for other accounts are rejected.
	AppendEntries(ctx context.Context, entries ...domain.LedgerEntry) ([]domain.LedgerEntry, error)

	// FindRequest loads a request owned by the account.
	FindRequest(ctx context.Context, requestID string) (*domain.TransactionRequest, error)

	// UpdateRequest writes req only if the stored status still equals expected;
	// otherwise it returns apperrors.ErrConflict.
	UpdateRequest(ctx context.Context, req domain.TransactionRequest, expected domain.RequestStatus) error

	// FindPlan reads a plan on the unit's own connection.
	FindPlan(ctx context.Context, planID string) (*domain.InvestmentPlan, error)

	// FindPosition loads a position owned by the account.
	FindPosition(ctx context.Context, positionID string) (*domain.InvestmentPosition, error)

	// SavePosition inserts a new position.
	SavePosition(ctx context.Context, pos domain.InvestmentPosition) error

	// UpdatePosition writes pos only if the stored periods paid and status
	// still match; otherwise it returns apperrors.ErrConflict.
	UpdatePosition(ctx context.Context, pos domain.InvestmentPosition, expectedPeriods int, expectedStatus domain.PositionStatus) error
}
