package repositories

import (
	"context"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
)

// LedgerReader defines read operations over the append-only ledger.
type LedgerReader interface {
	// ListByAccount returns entries for an account in insertion order.
	// An unknown SinceID yields apperrors.ErrNotFound.
	ListByAccount(ctx context.Context, accountID string, filter domain.EntryFilter) ([]domain.LedgerEntry, error)

	// FindEntryByID retrieves a single entry.
	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)
}

// LedgerWriter defines the only write operations the ledger supports.
type LedgerWriter interface {
	// Append validates and durably stores one entry, returning its id.
	Append(ctx context.Context, entry domain.LedgerEntry) (string, error)

	// AppendBatch stores all entries or none of them.
	AppendBatch(ctx context.Context, entries []domain.LedgerEntry) ([]domain.LedgerEntry, error)
}

// LedgerMutationGuard exists so that callers attempting to rewrite history get
// a loud failure. Both methods always return apperrors.ErrImmutableLedger.
type LedgerMutationGuard interface {
	UpdateEntry(ctx context.Context, entry domain.LedgerEntry) error
	DeleteEntry(ctx context.Context, entryID string) error
}

// AppendHook is called synchronously after entries are committed and before
// the appending call returns.
type AppendHook func(ctx context.Context, keys []domain.BalanceKey)

// LedgerStore combines all ledger interfaces.
type LedgerStore interface {
	LedgerReader
	LedgerWriter
	LedgerMutationGuard

	// OnAppend registers a hook fired after every successful append.
	OnAppend(hook AppendHook)
}
