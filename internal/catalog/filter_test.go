package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keyshopvn/keyshop/internal/domain"
)

func int64Ptr(v int64) *int64 { return &v }

func product(id, name, category string, prices ...int64) *domain.Product {
	p := &domain.Product{ID: id, Name: name, Category: category}
	for i, price := range prices {
		p.Variants = append(p.Variants, &domain.ProductVariant{
			ID:    id + "-v" + string(rune('a'+i)),
			Price: price,
		})
	}
	return p
}

func ids(products []*domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterNoCriteria(t *testing.T) {
	products := []*domain.Product{
		product("p1", "Windows 11 Pro", "os", 300000),
		product("p2", "Office 2021", "office", 500000),
	}

	got := Filter(products, Criteria{})
	assert.Equal(t, []string{"p1", "p2"}, ids(got))
}

func TestFilterCategory(t *testing.T) {
	products := []*domain.Product{
		product("p1", "Windows 11 Pro", "os", 300000),
		product("p2", "Office 2021", "office", 500000),
	}

	got := Filter(products, Criteria{Category: "office"})
	assert.Equal(t, []string{"p2"}, ids(got))

	got = Filter(products, Criteria{Category: domain.CategoryAll})
	assert.Equal(t, []string{"p1", "p2"}, ids(got))
}

func TestFilterQueryCaseInsensitive(t *testing.T) {
	products := []*domain.Product{
		product("p1", "Windows 11 Pro", "os", 300000),
		product("p2", "Office 2021", "office", 500000),
	}
	products[1].Mechanism = "kich hoat online"

	got := Filter(products, Criteria{Query: "windows"})
	assert.Equal(t, []string{"p1"}, ids(got))

	// Mechanism text is searched too.
	got = Filter(products, Criteria{Query: "ONLINE"})
	assert.Equal(t, []string{"p2"}, ids(got))

	got = Filter(products, Criteria{Query: "   "})
	assert.Len(t, got, 2, "blank query matches everything")
}

func TestFilterPriceRangeUsesCheapestVariant(t *testing.T) {
	products := []*domain.Product{
		product("p1", "Windows 11 Pro", "os", 300000, 150000),
		product("p2", "Office 2021", "office", 500000),
	}

	// p1's cheapest variant is 150000, below the minimum.
	got := Filter(products, Criteria{PriceMin: int64Ptr(200000)})
	assert.Equal(t, []string{"p2"}, ids(got))

	got = Filter(products, Criteria{PriceMax: int64Ptr(200000)})
	assert.Equal(t, []string{"p1"}, ids(got))

	got = Filter(products, Criteria{PriceMin: int64Ptr(100000), PriceMax: int64Ptr(200000)})
	assert.Equal(t, []string{"p1"}, ids(got))
}

func TestFilterPreservesOrderAndInput(t *testing.T) {
	products := []*domain.Product{
		product("p3", "C", "os", 100),
		product("p1", "A", "os", 100),
		product("p2", "B", "office", 100),
	}

	got := Filter(products, Criteria{Category: "os"})
	assert.Equal(t, []string{"p3", "p1"}, ids(got))
	assert.Len(t, products, 3, "input slice untouched")
}
