// Package api exposes the storefront over HTTP: catalog listing with
// filters, per-session cart operations, and checkout.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/pescastur/storefront/internal/domain/catalog"
	"github.com/pescastur/storefront/internal/domain/checkout"
	"github.com/pescastur/storefront/internal/session"
)

// Handler wires the HTTP surface to the domain services.
type Handler struct {
	catalog  *catalog.Service
	sessions *session.Manager
	checkout *checkout.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(catalogSvc *catalog.Service, sessions *session.Manager, checkoutSvc *checkout.Service) *Handler {
	return &Handler{
		catalog:  catalogSvc,
		sessions: sessions,
		checkout: checkoutSvc,
	}
}

// Routes returns the chi router for the /api subtree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.withSession)

	r.Get("/products", h.listProducts)
	r.Get("/products/{uid}", h.getProduct)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addCartItem)
		r.Post("/items/{uid}/increase", h.increaseCartItem)
		r.Post("/items/{uid}/decrease", h.decreaseCartItem)
		r.Delete("/items/{uid}", h.removeCartItem)
	})

	r.Post("/checkout", h.placeOrder)
	return r
}

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	respondError(w, http.StatusInternalServerError, "internal error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
