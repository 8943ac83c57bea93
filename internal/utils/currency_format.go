package utils

import (
	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MinorToDecimal converts an amount in minor units to major units.
// Example: 150000000 BTC sats returns 1.5
func MinorToDecimal(amount int64, currency domain.Currency) decimal.Decimal {
	return decimal.New(amount, -currency.Exponent())
}

// FormatMinorUnits renders an amount with the full precision of its currency.
// Example: 1234 USD cents returns "12.34"
// Example: 5 BTC sats returns "0.00000005"
func FormatMinorUnits(amount int64, currency domain.Currency) string {
	return MinorToDecimal(amount, currency).StringFixed(currency.Exponent())
}

// FormatWithPrecision formats an amount with the given precision
// This is a convenience function when you only have the precision value
func FormatWithPrecision(amount decimal.Decimal, precision int32) string {
	return amount.Round(precision).StringFixed(precision)
}
