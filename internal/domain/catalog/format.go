package catalog

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var priceFormatter = message.NewPrinter(language.Spanish)

// FormatPrice renders a monetary amount the way the storefront displays
// prices: es-ES number formatting (comma decimal separator, dot thousands
// separator), exactly two decimals, and a trailing euro symbol. For
// example, 100 becomes "100,00 €".
func FormatPrice(amount decimal.Decimal) string {
	return priceFormatter.Sprintf("%.2f €", amount.InexactFloat64())
}
