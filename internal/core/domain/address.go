package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositAddress is a pre-provisioned on-chain address assigned to one
// (account, asset) pair. Assignments are reused, never rotated.
type DepositAddress struct {
	Address    string    `json:"address"`
	Asset      Currency  `json:"asset"`
	AccountID  string    `json:"accountID"`
	AssignedAt time.Time `json:"assignedAt"`
}

// ExchangeRate is a stored display rate. It is never consulted by balance or
// sufficiency checks.
type ExchangeRate struct {
	FromCurrency Currency        `json:"fromCurrency"`
	ToCurrency   Currency        `json:"toCurrency"`
	Rate         decimal.Decimal `json:"rate"` // major units of To per major unit of From
	UpdatedAt    time.Time       `json:"updatedAt"`
	UpdatedBy    string          `json:"updatedBy"`
}
