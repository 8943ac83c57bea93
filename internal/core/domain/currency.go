package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/coinvest_backend/internal/apperrors"
)

// Currency is a member of the closed set of supported currencies.
// All amounts in a currency are int64 counts of its minor unit.
type Currency string

const (
	BTC  Currency = "BTC"  // satoshi
	ETH  Currency = "ETH"  // gwei
	USDT Currency = "USDT" // micro-tether
	USD  Currency = "USD"  // cent
	EUR  Currency = "EUR"  // cent
)

type currencyInfo struct {
	exponent int32
	crypto   bool
	name     string
}

var currencies = map[Currency]currencyInfo{
	BTC:  {exponent: 8, crypto: true, name: "Bitcoin"},
	ETH:  {exponent: 9, crypto: true, name: "Ether"},
	USDT: {exponent: 6, crypto: true, name: "Tether"},
	USD:  {exponent: 2, name: "US Dollar"},
	EUR:  {exponent: 2, name: "Euro"},
}

// AllCurrencies lists the supported currencies in a stable order.
func AllCurrencies() []Currency {
	return []Currency{BTC, ETH, USDT, USD, EUR}
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedCurrency, code)
	}
	return c, nil
}

func (c Currency) IsValid() bool {
	_, ok := currencies[c]
	return ok
}

// Exponent is the number of decimal places between the major and minor unit.
func (c Currency) Exponent() int32 {
	return currencies[c].exponent
}

// IsCrypto reports whether deposits in c need an on-chain deposit address.
func (c Currency) IsCrypto() bool {
	return currencies[c].crypto
}

func (c Currency) Name() string {
	return currencies[c].name
}

func (c Currency) String() string {
	return string(c)
}
