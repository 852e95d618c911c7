package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
//
// Quantity is the per-session requested quantity: the listing UI stages it
// before the product is committed to a cart, and it carries the committed
// quantity once it is. Zero means "not yet staged". The catalog itself
// stores products with Quantity zero.
type Product struct {
	UID         string
	Name        string
	Description string
	Brand       string
	Model       string
	Category    string
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Discount    decimal.Decimal
	Stock       int
	Ratings     []int
	Comments    []string
	Image       string
	Quantity    int
}

// AverageRating returns the mean of the recorded rating scores, rounded to
// two decimal places, or zero when the product has no ratings yet.
func (p Product) AverageRating() decimal.Decimal {
	if len(p.Ratings) == 0 {
		return decimal.Zero
	}
	sum := 0
	for _, r := range p.Ratings {
		sum += r
	}
	return decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(p.Ratings)))).
		Round(2)
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByUID(ctx context.Context, uid string) (*Product, error)
	GetByUIDs(ctx context.Context, uids []string) ([]Product, error)
	BatchUpsert(ctx context.Context, products []Product) error
}
