package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	f := NewFormatter("ARS")

	assert.Equal(t, "$1.234,50", f.Format(decimal.RequireFromString("1234.50")))
	assert.Equal(t, "$0,00", f.Format(decimal.Zero))
	assert.Equal(t, "$850.000,00", f.Format(decimal.NewFromInt(850000)))
}

func TestFormatSymbols(t *testing.T) {
	assert.Equal(t, "US$100,00", NewFormatter("USD").Format(decimal.NewFromInt(100)))
	assert.Equal(t, "€100,00", NewFormatter("EUR").Format(decimal.NewFromInt(100)))
	assert.Equal(t, "$100,00", NewFormatter("GBP").Format(decimal.NewFromInt(100)))
}

func TestFormatSigned(t *testing.T) {
	f := NewFormatter("ARS")
	amount := decimal.RequireFromString("1500.25")

	assert.Equal(t, "+$1.500,25", f.FormatSigned(amount, true))
	assert.Equal(t, "-$1.500,25", f.FormatSigned(amount, false))
}

func TestCode(t *testing.T) {
	assert.Equal(t, "ARS", NewFormatter("ARS").Code())
}
