package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/pescastur/storefront/internal/domain/catalog"
	"github.com/pescastur/storefront/internal/domain/product"
)

// productResponse is the JSON shape of one catalog product.
type productResponse struct {
	UID          string          `json:"uid"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	DisplayPrice string          `json:"display_price"`
	Discount     decimal.Decimal `json:"discount"`
	Stock        int             `json:"stock"`
	Rating       decimal.Decimal `json:"rating"`
	Comments     []string        `json:"comments,omitempty"`
	Image        string          `json:"image"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		UID:          p.UID,
		Name:         p.Name,
		Description:  p.Description,
		Brand:        p.Brand,
		Model:        p.Model,
		Category:     p.Category,
		Price:        p.Price,
		DisplayPrice: catalog.FormatPrice(p.Price),
		Discount:     p.Discount,
		Stock:        p.Stock,
		Rating:       p.AverageRating(),
		Comments:     p.Comments,
		Image:        p.Image,
	}
}

// listProducts returns the catalog, narrowed by the optional max_price,
// min_stock and category query parameters and sorted by name when
// sort=name is given.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	criteria, err := criteriaFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	f := catalog.NewFilter(products)
	f.Criteria = criteria
	f.Apply()
	if r.URL.Query().Get("sort") == "name" {
		f.SortByName()
	}

	results := f.Results()
	out := make([]productResponse, len(results))
	for i, p := range results {
		out[i] = toProductResponse(p)
	}
	respondJSON(w, http.StatusOK, out)
}

// getProduct returns a single product by UID.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	p, err := h.catalog.GetByUID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(*p))
}

func criteriaFromQuery(r *http.Request) (catalog.Criteria, error) {
	var c catalog.Criteria
	q := r.URL.Query()

	if v := q.Get("max_price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return c, errors.New("invalid max_price")
		}
		c.MaxPrice = price
	}
	if v := q.Get("min_stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return c, errors.New("invalid min_stock")
		}
		c.MinStock = stock
	}
	c.Category = q.Get("category")
	return c, nil
}
