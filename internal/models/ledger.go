package models

import "time"

// LedgerEntry mirrors a row of the ledger_entries table. Rows are insert-only.
type LedgerEntry struct {
	EntryID     string    `db:"entry_id"`
	Sequence    int64     `db:"seq"`
	AccountID   string    `db:"account_id"`
	Currency    string    `db:"currency"`
	Amount      int64     `db:"amount"`
	Direction   string    `db:"direction"` // credit or debit
	SourceKind  string    `db:"source_kind"`
	ReferenceID string    `db:"reference_id"`
	Memo        *string   `db:"memo"` // Nullable
	CreatedAt   time.Time `db:"created_at"`
	CreatedBy   string    `db:"created_by"`
}
