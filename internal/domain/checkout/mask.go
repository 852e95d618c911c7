package checkout

import (
	"fmt"
	"strings"

	"github.com/pescastur/storefront/internal/domain/customer"
)

// maskTail replaces every character except the last keep with 'x'.
// Inputs shorter than keep are returned unchanged.
func maskTail(s string, keep int) string {
	runes := []rune(s)
	if len(runes) <= keep {
		return s
	}
	masked := strings.Repeat("x", len(runes)-keep)
	return masked + string(runes[len(runes)-keep:])
}

// MaskPayment renders the display-only banking block included in the
// confirmation email: holder and card number keep their last four
// characters, expiry and security code their last two.
func MaskPayment(p customer.PaymentDetails) string {
	return fmt.Sprintf(
		"Datos Bancarios:\nTitular: %s\nNúmero de Tarjeta: %s\nFecha de Expiración: %s\nCódigo de Seguridad: %s",
		maskTail(p.Holder, 4),
		maskTail(p.CardNumber, 4),
		maskTail(p.Expiry, 2),
		maskTail(p.CVC, 2),
	)
}
