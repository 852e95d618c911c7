// Package catalog computes the visible product subset for the listing UI
// and provides the staging and formatting helpers that surround it.
package catalog

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pescastur/storefront/internal/domain/product"
)

// Criteria holds the current filter values. Zero values mean the
// corresponding constraint is absent: MaxPrice zero is "any price",
// MinStock zero is "any stock", Category empty is "all categories".
// Negative thresholds are not validated; that is the caller's contract.
type Criteria struct {
	MaxPrice decimal.Decimal
	MinStock int
	Category string
}

// matches reports whether p satisfies every present constraint. Category
// matching is exact string equality.
func (c Criteria) matches(p product.Product) bool {
	if c.MaxPrice.IsPositive() && p.Price.GreaterThan(c.MaxPrice) {
		return false
	}
	if c.MinStock > 0 && p.Stock < c.MinStock {
		return false
	}
	if c.Category != "" && p.Category != c.Category {
		return false
	}
	return true
}

// Filter owns the current filter criteria and the last computed result
// over a catalog supplied externally. It holds no other state and is not
// safe for concurrent use.
type Filter struct {
	Criteria Criteria

	catalog  []product.Product
	filtered []product.Product
	collator *collate.Collator
}

// NewFilter creates a Filter over the given catalog. The initial result is
// the full catalog (no constraints).
func NewFilter(catalog []product.Product) *Filter {
	f := &Filter{
		catalog:  catalog,
		collator: collate.New(language.Spanish),
	}
	f.Apply()
	return f
}

// SetCatalog replaces the underlying catalog and recomputes the result
// with the current criteria.
func (f *Filter) SetCatalog(catalog []product.Product) {
	f.catalog = catalog
	f.Apply()
}

// Apply recomputes the filtered view from the catalog and the current
// criteria. Catalog order is preserved; no sorting happens here.
func (f *Filter) Apply() []product.Product {
	f.filtered = f.filtered[:0]
	for _, p := range f.catalog {
		if f.Criteria.matches(p) {
			f.filtered = append(f.filtered, p)
		}
	}
	return f.Results()
}

// SortByName sorts the current filtered set in place by display name,
// ascending, using Spanish collation.
func (f *Filter) SortByName() {
	sort.SliceStable(f.filtered, func(i, j int) bool {
		return f.collator.CompareString(f.filtered[i].Name, f.filtered[j].Name) < 0
	})
}

// Results returns a snapshot copy of the last computed filtered set.
func (f *Filter) Results() []product.Product {
	out := make([]product.Product, len(f.filtered))
	copy(out, f.filtered)
	return out
}

// IncrementStaged raises the staged quantity by one, silently capping at
// the available stock.
func IncrementStaged(p *product.Product) {
	if p.Quantity < p.Stock {
		p.Quantity++
	}
}

// DecrementStaged lowers the staged quantity by one with a floor of 1:
// zero means "not yet added" and is never reached by decrementing.
func DecrementStaged(p *product.Product) {
	if p.Quantity > 1 {
		p.Quantity--
	}
}
