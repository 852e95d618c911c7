// Package cart implements the session-scoped shopping cart: a list of
// products each carrying its committed quantity, with derived totals and
// synchronous change notifications.
package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pescastur/storefront/internal/domain/product"
)

// Subscriber receives the full entry list after every cart mutation.
type Subscriber func(items []product.Product)

// Cart holds the products a user intends to purchase during one session.
//
// Entries merge by product UID: adding a product already present increases
// its quantity instead of duplicating the entry. Reducing or removing an
// absent entry is a silent no-op.
//
// A Cart has a single owner (one user session) and is not safe for
// concurrent use; callers that share a cart across goroutines must
// serialize access themselves.
type Cart struct {
	items []product.Product

	subs   map[int]Subscriber
	nextID int
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{subs: make(map[int]Subscriber)}
}

// Add puts a product into the cart. The product must carry a Quantity of at
// least 1, set by the caller. When an entry with the same UID already
// exists its quantity is incremented by the incoming quantity; otherwise
// the product is appended as a new entry. Quantity is not re-validated
// against stock here; the listing layer checks that before calling Add.
func (c *Cart) Add(p product.Product) {
	if i := c.index(p.UID); i >= 0 {
		c.items[i].Quantity += p.Quantity
	} else {
		c.items = append(c.items, p)
	}
	c.notify()
}

// Remove deletes the entry matching the product's UID. Absent entries are
// a no-op, but subscribers are still notified.
func (c *Cart) Remove(p product.Product) {
	if i := c.index(p.UID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	c.notify()
}

// Reduce decrements the matching entry's quantity by one. When the
// quantity would drop to zero the entry is removed entirely. Absent
// entries are a silent no-op.
func (c *Cart) Reduce(p product.Product) {
	i := c.index(p.UID)
	if i < 0 {
		return
	}
	c.items[i].Quantity--
	if c.items[i].Quantity <= 0 {
		c.Remove(p)
		return
	}
	c.notify()
}

// Increase increments the matching entry's quantity by one. No upper bound
// is enforced here; stock-bound checking is the caller's job. Absent
// entries are a silent no-op.
func (c *Cart) Increase(p product.Product) {
	i := c.index(p.UID)
	if i < 0 {
		return
	}
	c.items[i].Quantity++
	c.notify()
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.items = nil
	c.notify()
}

// Len returns the number of distinct entries in the cart.
func (c *Cart) Len() int {
	return len(c.items)
}

// Items returns a snapshot copy of the current entries.
func (c *Cart) Items() []product.Product {
	out := make([]product.Product, len(c.items))
	copy(out, c.items)
	return out
}

// Total returns the sum over all entries of unit price times quantity.
func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range c.items {
		sum = sum.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return sum
}

// Details renders a newline-joined human-readable summary, one line per
// entry: "<name> - <quantity> unidades - $<price>€ c/u". The format is a
// contract with the order-confirmation email.
func (c *Cart) Details() string {
	lines := make([]string, len(c.items))
	for i, p := range c.items {
		lines[i] = fmt.Sprintf("%s - %d unidades - $%s€ c/u", p.Name, p.Quantity, p.Price.String())
	}
	return strings.Join(lines, "\n")
}

// Subscribe registers fn to receive the full entry list after every
// mutation. Delivery is synchronous and ordered: fn runs within the
// mutating call stack and observes every state transition. The returned
// function unsubscribes.
func (c *Cart) Subscribe(fn Subscriber) (unsubscribe func()) {
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() { delete(c.subs, id) }
}

// Restore replaces the cart contents without notifying subscribers. It is
// used when rehydrating a session from a snapshot.
func (c *Cart) Restore(items []product.Product) {
	c.items = make([]product.Product, len(items))
	copy(c.items, items)
}

func (c *Cart) index(uid string) int {
	for i, p := range c.items {
		if p.UID == uid {
			return i
		}
	}
	return -1
}

func (c *Cart) notify() {
	for _, fn := range c.subs {
		fn(c.Items())
	}
}
