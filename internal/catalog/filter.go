package catalog

import (
	"strings"

	"github.com/keyshopvn/keyshop/internal/domain"
)

// Criteria describes a catalog filter. Zero values mean "no constraint";
// the price range applies to each product's cheapest variant.
type Criteria struct {
	Category string
	Query    string
	PriceMin *int64
	PriceMax *int64
}

// Filter returns the products matching the criteria, preserving input
// order. The input slice is never mutated.
func Filter(products []*domain.Product, c Criteria) []*domain.Product {
	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		if !matchCategory(p, c.Category) {
			continue
		}
		if !matchQuery(p, c.Query) {
			continue
		}
		if !matchPriceRange(p, c.PriceMin, c.PriceMax) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchCategory(p *domain.Product, category string) bool {
	if category == "" || category == domain.CategoryAll {
		return true
	}
	return p.Category == category
}

// matchQuery does a case-insensitive substring match against the product
// name or mechanism.
func matchQuery(p *domain.Product, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	needle := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Mechanism), needle)
}

func matchPriceRange(p *domain.Product, min, max *int64) bool {
	if min == nil && max == nil {
		return true
	}
	price := p.MinVariantPrice()
	if min != nil && price < *min {
		return false
	}
	if max != nil && price > *max {
		return false
	}
	return true
}
