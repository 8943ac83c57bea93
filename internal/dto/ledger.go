package dto

import (
	"time"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/utils"
)

// LedgerEntryResponse defines the data returned for a ledger entry.
type LedgerEntryResponse struct {
	EntryID       string    `json:"entryID"`
	AccountID     string    `json:"accountID"`
	Currency      string    `json:"currency"`
	Amount        int64     `json:"amount"`
	DisplayAmount string    `json:"displayAmount"`
	Direction     string    `json:"direction"`
	SourceKind    string    `json:"sourceKind"`
	ReferenceID   string    `json:"referenceID"`
	Memo          string    `json:"memo,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
}

// ToLedgerEntryResponse converts a domain.LedgerEntry to its response DTO
func ToLedgerEntryResponse(e domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:       e.EntryID,
		AccountID:     e.AccountID,
		Currency:      string(e.Currency),
		Amount:        e.Amount,
		DisplayAmount: utils.FormatMinorUnits(e.Amount, e.Currency),
		Direction:     string(e.Direction),
		SourceKind:    string(e.SourceKind),
		ReferenceID:   e.ReferenceID,
		Memo:          e.Memo,
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
	}
}

// ToListLedgerEntryResponse converts a slice of entries.
func ToListLedgerEntryResponse(entries []domain.LedgerEntry) []LedgerEntryResponse {
	res := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = ToLedgerEntryResponse(e)
	}
	return res
}

// ListLedgerParams defines query parameters for listing ledger entries.
type ListLedgerParams struct {
	Currency  string `form:"currency" binding:"omitempty,currency"`
	Limit     int    `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken string `form:"nextToken"`
}

// ListLedgerResponse wraps a page of ledger entries.
type ListLedgerResponse struct {
	Entries   []LedgerEntryResponse `json:"entries"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// BalanceResponse is one (currency, balance) row with an optional display equivalent.
type BalanceResponse struct {
	Currency        string  `json:"currency"`
	Balance         int64   `json:"balance"`
	DisplayBalance  string  `json:"displayBalance"`
	EquivalentValue *string `json:"equivalentValue,omitempty"`
	EquivalentIn    string  `json:"equivalentIn,omitempty"`
}

// BalancesResponse lists every balance for an account.
type BalancesResponse struct {
	AccountID string            `json:"accountID"`
	Balances  []BalanceResponse `json:"balances"`
}
