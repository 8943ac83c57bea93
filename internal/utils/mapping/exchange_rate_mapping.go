package mapping

import (
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/SscSPs/coinvest_backend/internal/models"
)

// ToModelExchangeRate converts a domain ExchangeRate to a model ExchangeRate
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		FromCurrency: string(d.FromCurrency),
		ToCurrency:   string(d.ToCurrency),
		Rate:         d.Rate,
		UpdatedAt:    d.UpdatedAt,
		UpdatedBy:    d.UpdatedBy,
	}
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain ExchangeRate
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		FromCurrency: domain.Currency(m.FromCurrency),
		ToCurrency:   domain.Currency(m.ToCurrency),
		Rate:         m.Rate,
		UpdatedAt:    m.UpdatedAt,
		UpdatedBy:    m.UpdatedBy,
	}
}

// ToDomainDepositAddress converts an assigned pool row. Unassigned rows map
// to an address with an empty AccountID.
func ToDomainDepositAddress(m models.DepositAddress) domain.DepositAddress {
	d := domain.DepositAddress{
		Address:   m.Address,
		Asset:     domain.Currency(m.Asset),
		AccountID: deref(m.AccountID),
	}
	if m.AssignedAt != nil {
		d.AssignedAt = *m.AssignedAt
	}
	return d
}
