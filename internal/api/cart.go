package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/pescastur/storefront/internal/domain/cart"
	"github.com/pescastur/storefront/internal/domain/catalog"
	"github.com/pescastur/storefront/internal/domain/product"
)

// cartItemResponse is one cart entry with its committed quantity.
type cartItemResponse struct {
	productResponse
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// cartResponse is the full cart view delivered to the UI.
type cartResponse struct {
	Items           []cartItemResponse `json:"items"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	DisplaySubtotal string             `json:"display_subtotal"`
}

func toCartResponse(c *cart.Cart) cartResponse {
	items := c.Items()
	out := cartResponse{
		Items:    make([]cartItemResponse, len(items)),
		Subtotal: c.Total(),
	}
	for i, p := range items {
		out.Items[i] = cartItemResponse{
			productResponse: toProductResponse(p),
			Quantity:        p.Quantity,
			LineTotal:       p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))),
		}
	}
	out.DisplaySubtotal = catalog.FormatPrice(out.Subtotal)
	return out
}

// getCart returns the session's current cart.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	var resp cartResponse
	err := h.sessions.View(r.Context(), sessionID(r.Context()), func(c *cart.Cart) error {
		resp = toCartResponse(c)
		return nil
	})
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// addCartItemRequest is the payload for committing a staged product.
type addCartItemRequest struct {
	UID      string `json:"uid"`
	Quantity int    `json:"quantity"`
}

// addCartItem commits a product to the cart. The stock-bound check lives
// here, at the listing boundary: the cart itself does not re-validate.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusUnprocessableEntity, "quantity must be at least 1")
		return
	}

	p, err := h.catalog.GetByUID(r.Context(), req.UID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		h.internalError(w, r, err)
		return
	}
	if req.Quantity > p.Stock {
		respondError(w, http.StatusUnprocessableEntity, "quantity exceeds available stock")
		return
	}

	item := *p
	item.Quantity = req.Quantity

	var resp cartResponse
	err = h.sessions.With(r.Context(), sessionID(r.Context()), func(c *cart.Cart) error {
		c.Add(item)
		resp = toCartResponse(c)
		return nil
	})
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// increaseCartItem raises an entry's quantity by one, bounded by the
// stock recorded on the entry.
func (h *Handler) increaseCartItem(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var resp cartResponse
	err := h.sessions.With(r.Context(), sessionID(r.Context()), func(c *cart.Cart) error {
		capped := false
		for _, p := range c.Items() {
			if p.UID == uid && p.Quantity >= p.Stock {
				capped = true
			}
		}
		if !capped {
			c.Increase(product.Product{UID: uid})
		}
		resp = toCartResponse(c)
		return nil
	})
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// decreaseCartItem lowers an entry's quantity by one; the entry is
// removed when it reaches zero. Absent entries are a no-op.
func (h *Handler) decreaseCartItem(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var resp cartResponse
	err := h.sessions.With(r.Context(), sessionID(r.Context()), func(c *cart.Cart) error {
		c.Reduce(product.Product{UID: uid})
		resp = toCartResponse(c)
		return nil
	})
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// removeCartItem deletes an entry entirely. Absent entries are a no-op.
func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var resp cartResponse
	err := h.sessions.With(r.Context(), sessionID(r.Context()), func(c *cart.Cart) error {
		c.Remove(product.Product{UID: uid})
		resp = toCartResponse(c)
		return nil
	})
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// clearCart empties the session's cart.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	var resp cartResponse
	err := h.sessions.With(r.Context(), sessionID(r.Context()), func(c *cart.Cart) error {
		c.Clear()
		resp = toCartResponse(c)
		return nil
	})
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
