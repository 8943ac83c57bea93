package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the display rate for one currency pair.
type ExchangeRate struct {
	FromCurrency string          `db:"from_currency"`
	ToCurrency   string          `db:"to_currency"`
	Rate         decimal.Decimal `db:"rate"`
	UpdatedAt    time.Time       `db:"updated_at"`
	UpdatedBy    string          `db:"updated_by"`
}

// DepositAddress mirrors a row of the deposit_addresses pool. AccountID and
// AssignedAt stay NULL until the address is claimed.
type DepositAddress struct {
	Address    string     `db:"address"`
	Asset      string     `db:"asset"`
	AccountID  *string    `db:"account_id"`
	AssignedAt *time.Time `db:"assigned_at"`
	CreatedAt  time.Time  `db:"created_at"`
}
