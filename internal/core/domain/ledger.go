package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
	"github.com/google/uuid"
)

// Direction indicates whether an entry adds to or subtracts from a balance.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

func (d Direction) IsValid() bool {
	return d == Credit || d == Debit
}

// SourceKind records which business operation produced an entry.
type SourceKind string

const (
	SourceDeposit         SourceKind = "deposit"
	SourceWithdrawal      SourceKind = "withdrawal"
	SourceAdminAdjustment SourceKind = "admin_adjustment"
	SourceInvestment      SourceKind = "investment"
	SourceRoiPayout       SourceKind = "roi_payout"
)

func (k SourceKind) IsValid() bool {
	switch k {
	case SourceDeposit, SourceWithdrawal, SourceAdminAdjustment, SourceInvestment, SourceRoiPayout:
		return true
	}
	return false
}

// LedgerEntry is a single signed movement of funds. Once persisted it is never
// mutated or deleted; corrections are made with compensating entries.
type LedgerEntry struct {
	EntryID     string     `json:"entryID"`
	Sequence    int64      `json:"sequence"` // assigned by the store, monotonic in insertion order
	AccountID   string     `json:"accountID"`
	Currency    Currency   `json:"currency"`
	Amount      int64      `json:"amount"` // minor units, always positive
	Direction   Direction  `json:"direction"`
	SourceKind  SourceKind `json:"sourceKind"`
	ReferenceID string     `json:"referenceID"` // originating request/position, not unique
	Memo        string     `json:"memo,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CreatedBy   string     `json:"createdBy"`
}

// Validate checks the entry before it is appended.
func (e LedgerEntry) Validate() error {
	if e.Amount <= 0 {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidAmount, e.Amount)
	}
	if !e.Currency.IsValid() {
		return fmt.Errorf("%w: %q", apperrors.ErrUnsupportedCurrency, e.Currency)
	}
	if !e.Direction.IsValid() {
		return fmt.Errorf("%w: direction must be credit or debit, got %q", apperrors.ErrValidation, e.Direction)
	}
	if !e.SourceKind.IsValid() {
		return fmt.Errorf("%w: unknown source kind %q", apperrors.ErrValidation, e.SourceKind)
	}
	if strings.TrimSpace(e.AccountID) == "" {
		return fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(e.CreatedBy) == "" {
		return fmt.Errorf("%w: created by is required", apperrors.ErrValidation)
	}
	return nil
}

// SignedAmount returns +Amount for credits and -Amount for debits.
func (e LedgerEntry) SignedAmount() int64 {
	if e.Direction == Debit {
		return -e.Amount
	}
	return e.Amount
}

// BalanceKey identifies one (account, currency) balance.
type BalanceKey struct {
	AccountID string
	Currency  Currency
}

func (k BalanceKey) String() string {
	return k.AccountID + ":" + string(k.Currency)
}

// Key returns the balance this entry contributes to.
func (e LedgerEntry) Key() BalanceKey {
	return BalanceKey{AccountID: e.AccountID, Currency: e.Currency}
}

// EntryFilter narrows ListByAccount. SinceID, when set, returns entries
// strictly after that entry. Limit <= 0 means no limit.
type EntryFilter struct {
	Currency *Currency
	SinceID  string
	Limit    int
}

// AddSigned applies one entry to a running balance, failing on int64 overflow.
func AddSigned(balance int64, e LedgerEntry) (int64, error) {
	v := e.SignedAmount()
	if (v > 0 && balance > math.MaxInt64-v) || (v < 0 && balance < math.MinInt64-v) {
		return 0, fmt.Errorf("%w: balance overflow for %s", apperrors.ErrInternal, e.Key())
	}
	return balance + v, nil
}

// FoldBalance sums the signed amounts of entries: credits minus debits.
func FoldBalance(entries []LedgerEntry) (int64, error) {
	var balance int64
	for _, e := range entries {
		next, err := AddSigned(balance, e)
		if err != nil {
			return 0, err
		}
		balance = next
	}
	return balance, nil
}

// PrepareEntries fills entry IDs and timestamps, clears any caller-supplied
// sequence and validates each entry. Stores call it before writing anything.
func PrepareEntries(entries []LedgerEntry, now time.Time) ([]LedgerEntry, error) {
	if len(entries) == 0 {
		return nil, apperrors.NewValidationError("no entries to append")
	}
	out := make([]LedgerEntry, len(entries))
	for i, e := range entries {
		if e.EntryID == "" {
			e.EntryID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		e.Sequence = 0
		if err := e.Validate(); err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// LockOrder deduplicates account IDs and sorts them, the order in which
// multi-account writers must take locks.
func LockOrder(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// BalanceKeys lists the distinct balances touched by entries.
func BalanceKeys(entries []LedgerEntry) []BalanceKey {
	seen := make(map[BalanceKey]bool)
	keys := make([]BalanceKey, 0, len(entries))
	for _, e := range entries {
		k := e.Key()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}
