// Package order defines the persisted record of a completed checkout.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Line is one cart entry frozen at checkout time.
type Line struct {
	ProductUID string          `json:"product_uid"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// Order represents a completed customer order.
type Order struct {
	ID            string
	SessionID     string
	CustomerDNI   string
	CustomerEmail string
	Lines         []Line
	Subtotal      decimal.Decimal
	Shipping      decimal.Decimal
	Total         decimal.Decimal
	Details       string
	CreatedAt     time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
}
