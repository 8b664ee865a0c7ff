// Package currency renders monetary amounts for display using Spanish
// locale conventions (dot thousands separator, comma decimals).
package currency

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var symbols = map[string]string{
	"ARS": "$",
	"USD": "US$",
	"EUR": "€",
}

// Formatter formats amounts for one currency code.
type Formatter struct {
	printer *message.Printer
	symbol  string
	code    string
}

// NewFormatter builds a formatter for the given ISO code. Unknown codes
// fall back to a plain "$" symbol.
func NewFormatter(code string) *Formatter {
	symbol, ok := symbols[code]
	if !ok {
		symbol = "$"
	}
	return &Formatter{
		printer: message.NewPrinter(language.Spanish),
		symbol:  symbol,
		code:    code,
	}
}

// Format renders an amount with its currency symbol, two decimal places,
// and locale grouping, e.g. "$1.234,50".
func (f *Formatter) Format(amount decimal.Decimal) string {
	return f.symbol + f.printer.Sprint(number.Decimal(
		amount.InexactFloat64(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// FormatSigned renders income as "+$..." and everything else as "-$...".
func (f *Formatter) FormatSigned(amount decimal.Decimal, income bool) string {
	if income {
		return "+" + f.Format(amount)
	}
	return "-" + f.Format(amount)
}

// Code returns the ISO currency code the formatter was built for.
func (f *Formatter) Code() string {
	return f.code
}
