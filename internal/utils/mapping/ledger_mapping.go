package mapping

import (
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/models"
)

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:     d.EntryID,
		Sequence:    d.Sequence,
		AccountID:   d.AccountID,
		Currency:    string(d.Currency),
		Amount:      d.Amount,
		Direction:   string(d.Direction),
		SourceKind:  string(d.SourceKind),
		ReferenceID: d.ReferenceID,
		Memo:        nullable(d.Memo),
		CreatedAt:   d.CreatedAt,
		CreatedBy:   d.CreatedBy,
	}
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:     m.EntryID,
		Sequence:    m.Sequence,
		AccountID:   m.AccountID,
		Currency:    domain.Currency(m.Currency),
		Amount:      m.Amount,
		Direction:   domain.Direction(m.Direction),
		SourceKind:  domain.SourceKind(m.SourceKind),
		ReferenceID: m.ReferenceID,
		Memo:        deref(m.Memo),
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
	}
}

// ToDomainLedgerEntrySlice converts a slice of model entries to domain entries
func ToDomainLedgerEntrySlice(ms []models.LedgerEntry) []domain.LedgerEntry {
	ds := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerEntry(m)
	}
	return ds
}
