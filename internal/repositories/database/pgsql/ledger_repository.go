package pgsql

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	"github.com/SscSPs/coinvest_backend/internal/models"
	"github.com/SscSPs/coinvest_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ledgerColumns = `entry_id, seq, account_id, currency, amount, direction, source_kind, reference_id, memo, created_at, created_by`

const insertLedgerEntrySQL = `
	INSERT INTO ledger_entries (entry_id, account_id, currency, amount, direction, source_kind, reference_id, memo, created_at, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING seq`

// PgxLedgerRepository stores the append-only ledger and runs per-account units
// of work. Both share the append hooks so cache invalidation sees every write.
type PgxLedgerRepository struct {
	BaseRepository

	hooksMu sync.RWMutex
	hooks   []portsrepo.AppendHook
}

func newPgxLedgerRepository(pool *pgxpool.Pool, timeout time.Duration) *PgxLedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool, Timeout: timeout},
	}
}

var (
	_ portsrepo.LedgerStore = (*PgxLedgerRepository)(nil)
	_ portsrepo.UnitOfWork  = (*PgxLedgerRepository)(nil)
)

// OnAppend registers a hook fired after every successful append.
func (r *PgxLedgerRepository) OnAppend(hook portsrepo.AppendHook) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	r.hooks = append(r.hooks, hook)
}

func (r *PgxLedgerRepository) fireHooks(ctx context.Context, entries []domain.LedgerEntry) {
	keys := domain.BalanceKeys(entries)
	if len(keys) == 0 {
		return
	}
	r.hooksMu.RLock()
	hooks := append([]portsrepo.AppendHook(nil), r.hooks...)
	r.hooksMu.RUnlock()
	for _, h := range hooks {
		h(ctx, keys)
	}
}

// Append validates and stores a single entry.
func (r *PgxLedgerRepository) Append(ctx context.Context, entry domain.LedgerEntry) (string, error) {
	stored, err := r.AppendBatch(ctx, []domain.LedgerEntry{entry})
	if err != nil {
		return "", err
	}
	return stored[0].EntryID, nil
}

// AppendBatch inserts all entries in one transaction. The advisory locks of
// every account involved are taken first, in sorted order, so a batch never
// interleaves with a unit of work reading the same balances.
func (r *PgxLedgerRepository) AppendBatch(ctx context.Context, entries []domain.LedgerEntry) ([]domain.LedgerEntry, error) {
	prepared, err := domain.PrepareEntries(entries, nowUTC())
	if err != nil {
		return nil, err
	}

	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	accountIDs := make([]string, 0, len(prepared))
	for _, e := range prepared {
		accountIDs = append(accountIDs, e.AccountID)
	}

	err = r.inTx(opCtx, func(tx pgx.Tx) error {
		if err := lockAccounts(opCtx, tx, accountIDs...); err != nil {
			return err
		}
		return insertEntries(opCtx, tx, prepared)
	})
	if err != nil {
		return nil, err
	}

	r.fireHooks(ctx, prepared)
	return prepared, nil
}

// ListByAccount returns the account's entries ordered by sequence.
func (r *PgxLedgerRepository) ListByAccount(ctx context.Context, accountID string, filter domain.EntryFilter) ([]domain.LedgerEntry, error) {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var since int64
	if filter.SinceID != "" {
		err := r.Pool.QueryRow(opCtx,
			`SELECT seq FROM ledger_entries WHERE entry_id = $1 AND account_id = $2`,
			filter.SinceID, accountID,
		).Scan(&since)
		if err != nil {
			return nil, classifyError(err, "find entry "+filter.SinceID)
		}
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE account_id = $1 AND seq > $2`)
	args := []any{accountID, since}
	if filter.Currency != nil {
		args = append(args, string(*filter.Currency))
		fmt.Fprintf(&sb, " AND currency = $%d", len(args))
	}
	sb.WriteString(" ORDER BY seq")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := r.Pool.Query(opCtx, sb.String(), args...)
	if err != nil {
		return nil, classifyError(err, "list ledger entries")
	}
	modelEntries, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LedgerEntry])
	if err != nil {
		return nil, classifyError(err, "scan ledger entries")
	}
	return mapping.ToDomainLedgerEntrySlice(modelEntries), nil
}

// FindEntryByID retrieves a single entry.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	opCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.Pool.Query(opCtx, `SELECT `+ledgerColumns+` FROM ledger_entries WHERE entry_id = $1`, entryID)
	if err != nil {
		return nil, classifyError(err, "find entry "+entryID)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.LedgerEntry])
	if err != nil {
		return nil, classifyError(err, "find entry "+entryID)
	}
	e := mapping.ToDomainLedgerEntry(m)
	return &e, nil
}

// UpdateEntry always fails. The table trigger refuses the statement as well.
func (r *PgxLedgerRepository) UpdateEntry(_ context.Context, entry domain.LedgerEntry) error {
	return fmt.Errorf("%w: update of entry %s refused", apperrors.ErrImmutableLedger, entry.EntryID)
}

// DeleteEntry always fails.
func (r *PgxLedgerRepository) DeleteEntry(_ context.Context, entryID string) error {
	return fmt.Errorf("%w: delete of entry %s refused", apperrors.ErrImmutableLedger, entryID)
}

// insertEntries sends all inserts in one batch and records the assigned sequences.
func insertEntries(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		m := mapping.ToModelLedgerEntry(e)
		batch.Queue(insertLedgerEntrySQL,
			m.EntryID, m.AccountID, m.Currency, m.Amount, m.Direction,
			m.SourceKind, m.ReferenceID, m.Memo, m.CreatedAt, m.CreatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range entries {
		if err := br.QueryRow().Scan(&entries[i].Sequence); err != nil {
			_ = br.Close()
			return classifyError(err, "insert ledger entry "+entries[i].EntryID)
		}
	}
	if err := br.Close(); err != nil {
		return classifyError(err, "close ledger batch")
	}
	return nil
}

// lockAccounts takes transaction-scoped advisory locks in a stable order.
func lockAccounts(ctx context.Context, tx pgx.Tx, accountIDs ...string) error {
	ids := domain.LockOrder(accountIDs)
	for _, id := range ids {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, id); err != nil {
			return classifyError(err, "lock account "+id)
		}
	}
	return nil
}
