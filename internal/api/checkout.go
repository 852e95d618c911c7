package api

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/pescastur/storefront/internal/domain/cart"
	"github.com/pescastur/storefront/internal/domain/checkout"
	"github.com/pescastur/storefront/internal/domain/customer"
)

// checkoutRequest is the checkout form payload.
type checkoutRequest struct {
	Customer customer.Customer       `json:"customer"`
	Payment  customer.PaymentDetails `json:"payment"`
}

// checkoutResponse reports the placed order.
type checkoutResponse struct {
	OrderID   string          `json:"order_id"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	Details   string          `json:"details"`
	EmailSent bool            `json:"email_sent"`
	CreatedAt time.Time       `json:"created_at"`
}

// placeOrder runs checkout for the session's cart.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var resp checkoutResponse
	err := h.sessions.With(r.Context(), sessionID(r.Context()), func(c *cart.Cart) error {
		result, err := h.checkout.PlaceOrder(r.Context(), checkout.PlaceOrderRequest{
			SessionID: sessionID(r.Context()),
			Cart:      c,
			Customer:  req.Customer,
			Payment:   req.Payment,
		})
		if err != nil {
			return err
		}

		resp = checkoutResponse{
			OrderID:   result.Order.ID,
			Subtotal:  result.Order.Subtotal,
			Shipping:  result.Order.Shipping,
			Total:     result.Order.Total,
			Details:   result.Order.Details,
			EmailSent: result.EmailSent,
			CreatedAt: result.Order.CreatedAt,
		}
		return nil
	})
	if err != nil {
		h.checkoutError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// checkoutError maps checkout domain errors to HTTP responses.
func (h *Handler) checkoutError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, checkout.ErrEmptyCart) {
		respondError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	var vErr *checkout.ValidationError
	if errors.As(err, &vErr) {
		respondError(w, http.StatusUnprocessableEntity, vErr.Error())
		return
	}

	h.internalError(w, r, err)
}
