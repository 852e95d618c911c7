package checkout

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pescastur/storefront/internal/domain/cart"
	"github.com/pescastur/storefront/internal/domain/customer"
	"github.com/pescastur/storefront/internal/domain/order"
	"github.com/pescastur/storefront/internal/domain/product"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	lastOrder *order.Order
	err       error
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	m.lastOrder = o
	return m.err
}

type mockMailer struct {
	to, subject, body string
	calls             int
	err               error
}

func (m *mockMailer) Send(_ context.Context, to, subject, body string) error {
	m.calls++
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

// --- Helpers ---

func newService(orders *mockOrderRepo, mailer *mockMailer) *Service {
	return NewService(orders, mailer, customer.NewValidation(), decimal.Zero)
}

func cartWithReel(qty int) *cart.Cart {
	c := cart.New()
	c.Add(product.Product{
		UID:      "p1",
		Name:     "Carrete de Pesca",
		Price:    decimal.NewFromInt(50),
		Stock:    15,
		Quantity: qty,
	})
	return c
}

func validRequest(c *cart.Cart) PlaceOrderRequest {
	return PlaceOrderRequest{
		SessionID: "sess-1",
		Cart:      c,
		Customer: customer.Customer{
			DNI:        "12345678Z",
			Nombre:     "Marta",
			Email:      "marta@example.com",
			Telefono:   "600123456",
			Direccion:  "Calle Uría 12",
			CodigoPost: "33003",
			Pais:       "España",
			Provincia:  "Asturias",
		},
		Payment: customer.PaymentDetails{
			Holder:     "Marta Fernández",
			CardNumber: "4532015112830366",
			Expiry:     "12/99",
			CVC:        "123",
		},
	}
}

// --- Tests ---

func TestPlaceOrder_EmptyCart(t *testing.T) {
	svc := newService(&mockOrderRepo{}, &mockMailer{})

	_, err := svc.PlaceOrder(context.Background(), validRequest(cart.New()))
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrder_InvalidCustomer(t *testing.T) {
	svc := newService(&mockOrderRepo{}, &mockMailer{})

	req := validRequest(cartWithReel(2))
	req.Customer.DNI = "12345678A"

	_, err := svc.PlaceOrder(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "DNI", vErr.Fields[0].Field)
}

func TestPlaceOrder_InvalidPayment(t *testing.T) {
	svc := newService(&mockOrderRepo{}, &mockMailer{})

	req := validRequest(cartWithReel(2))
	req.Payment.Expiry = "01/20"

	_, err := svc.PlaceOrder(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "expdate", vErr.Fields[0].Rule)
}

func TestPlaceOrder_Totals(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := newService(repo, &mockMailer{})

	c := cartWithReel(2)
	result, err := svc.PlaceOrder(context.Background(), validRequest(c))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(100).Equal(result.Order.Subtotal))
	assert.True(t, DefaultShippingFee.Equal(result.Order.Shipping))
	assert.True(t, decimal.RequireFromString("105.21").Equal(result.Order.Total))
	require.Len(t, result.Order.Lines, 1)
	assert.Equal(t, 2, result.Order.Lines[0].Quantity)
	assert.Same(t, repo.lastOrder, result.Order)
}

func TestPlaceOrder_ClearsCartAndSendsEmail(t *testing.T) {
	mailer := &mockMailer{}
	svc := newService(&mockOrderRepo{}, mailer)

	c := cartWithReel(2)
	result, err := svc.PlaceOrder(context.Background(), validRequest(c))
	require.NoError(t, err)

	assert.Equal(t, 0, c.Len())
	assert.True(t, result.EmailSent)
	assert.Equal(t, "marta@example.com", mailer.to)
	assert.Equal(t, "Confirmación de Pedido: PescAstur", mailer.subject)
	assert.Contains(t, mailer.body, "Carrete de Pesca - 2 unidades - $50€ c/u")
	assert.Contains(t, mailer.body, "xxxxxxxxxxxx0366")
	assert.NotContains(t, mailer.body, "4532015112830366")
}

func TestPlaceOrder_EmailFailureKeepsOrder(t *testing.T) {
	repo := &mockOrderRepo{}
	mailer := &mockMailer{err: errors.New("smtp down")}
	svc := newService(repo, mailer)

	c := cartWithReel(1)
	result, err := svc.PlaceOrder(context.Background(), validRequest(c))
	require.NoError(t, err)

	assert.False(t, result.EmailSent)
	assert.NotNil(t, repo.lastOrder)
	assert.Equal(t, 0, c.Len())
}

func TestPlaceOrder_RepoFailure(t *testing.T) {
	repo := &mockOrderRepo{err: errors.New("db down")}
	mailer := &mockMailer{}
	svc := newService(repo, mailer)

	c := cartWithReel(1)
	_, err := svc.PlaceOrder(context.Background(), validRequest(c))

	require.Error(t, err)
	assert.Equal(t, 0, mailer.calls)
	assert.Equal(t, 1, c.Len())
}
