package utils

import (
	"testing"

	"github.com/SscSPs/coinvest_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMinorUnits(t *testing.T) {
	assert.Equal(t, "12.34", FormatMinorUnits(1234, domain.USD))
	assert.Equal(t, "0.00000005", FormatMinorUnits(5, domain.BTC))
	assert.Equal(t, "1.00000000", FormatMinorUnits(100000000, domain.BTC))
	assert.Equal(t, "-0.40", FormatMinorUnits(-40, domain.EUR))
	assert.Equal(t, "2.500000", FormatMinorUnits(2500000, domain.USDT))
}

func TestFormatWithPrecision(t *testing.T) {
	assert.Equal(t, "12.35", FormatWithPrecision(decimal.RequireFromString("12.3456"), 2))
	assert.Equal(t, "12", FormatWithPrecision(decimal.RequireFromString("12.3456"), 0))
}
