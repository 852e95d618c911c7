// Package checkout turns a session's cart into a persisted order and a
// confirmation email. No payment processing happens here: card data is
// masked for display and never transmitted anywhere else.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pescastur/storefront/internal/domain/cart"
	"github.com/pescastur/storefront/internal/domain/customer"
	"github.com/pescastur/storefront/internal/domain/order"
)

// DefaultShippingFee is the flat shipping charge added to every order.
var DefaultShippingFee = decimal.RequireFromString("5.21")

// ErrEmptyCart is returned when checkout is attempted on an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// ValidationError indicates the customer or payment form failed the
// storefront's validation rules.
type ValidationError struct {
	Fields customer.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid checkout form: %s", e.Fields.Error())
}

// Mailer delivers the order confirmation email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	SessionID string
	Cart      *cart.Cart
	Customer  customer.Customer
	Payment   customer.PaymentDetails
}

// PlaceOrderResult holds the outcome of a successfully placed order.
// EmailSent is false when the order was persisted but the confirmation
// email could not be delivered.
type PlaceOrderResult struct {
	Order     *order.Order
	EmailSent bool
}

// Service encapsulates order placement business logic.
type Service struct {
	orders     order.Repository
	mailer     Mailer
	validation *customer.Validation
	shipping   decimal.Decimal

	now   func() time.Time
	newID func() string
}

// NewService creates a checkout Service. A non-positive shipping fee falls
// back to DefaultShippingFee.
func NewService(orders order.Repository, mailer Mailer, validation *customer.Validation, shipping decimal.Decimal) *Service {
	if !shipping.IsPositive() {
		shipping = DefaultShippingFee
	}
	return &Service{
		orders:     orders,
		mailer:     mailer,
		validation: validation,
		shipping:   shipping,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

// PlaceOrder validates the checkout form, freezes the cart into an order,
// persists it, sends the confirmation email, and clears the cart. An email
// delivery failure does not roll back the persisted order.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	items := req.Cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if fields := s.validation.Struct(req.Customer); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	if fields := s.validation.Struct(req.Payment); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	lines := make([]order.Line, len(items))
	for i, p := range items {
		lines[i] = order.Line{
			ProductUID: p.UID,
			Name:       p.Name,
			Quantity:   p.Quantity,
			UnitPrice:  p.Price,
		}
	}

	subtotal := req.Cart.Total()
	total := subtotal.Add(s.shipping).Round(2)
	details := req.Cart.Details()

	o := &order.Order{
		ID:            s.newID(),
		SessionID:     req.SessionID,
		CustomerDNI:   req.Customer.DNI,
		CustomerEmail: req.Customer.Email,
		Lines:         lines,
		Subtotal:      subtotal,
		Shipping:      s.shipping,
		Total:         total,
		Details:       details,
		CreatedAt:     s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	emailSent := true
	body := confirmationBody(req.Customer.Nombre, details, MaskPayment(req.Payment))
	if err := s.mailer.Send(ctx, req.Customer.Email, "Confirmación de Pedido: PescAstur", body); err != nil {
		emailSent = false
	}

	req.Cart.Clear()

	return &PlaceOrderResult{Order: o, EmailSent: emailSent}, nil
}

// confirmationBody renders the HTML confirmation email.
func confirmationBody(name, details, maskedPayment string) string {
	return fmt.Sprintf(`<h1>Confirmación de Pedido: PescAstur</h1>
<p>Estimado/a %s,</p>
<p>Gracias por tu pedido. Aquí tienes los detalles:</p>
<p>%s</p>
<p>Datos bancarios para la transferencia:</p>
<p>%s</p>
<p>Un cordial saludo,<br>El equipo de PescAstur</p>`, name, details, maskedPayment)
}
