package catalog

import (
	"sort"

	"github.com/keyshopvn/keyshop/internal/domain"
)

// SortProducts orders the catalog by sort_order ascending, then
// created_at descending. Applied client-side after every fetch
// regardless of the data source's native order.
func SortProducts(products []*domain.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].SortOrder != products[j].SortOrder {
			return products[i].SortOrder < products[j].SortOrder
		}
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

// SortVariants orders a product's variants in place. A non-none global
// override wins over the product's own strategy.
func SortVariants(variants []*domain.ProductVariant, strategy domain.VariantSortStrategy, override domain.VariantSortOverride) {
	switch override {
	case domain.OverrideStock:
		sort.SliceStable(variants, func(i, j int) bool {
			return variants[i].StockCount() > variants[j].StockCount()
		})
		return
	case domain.OverrideBestselling:
		sort.SliceStable(variants, func(i, j int) bool {
			return variants[i].TotalSold > variants[j].TotalSold
		})
		return
	}

	switch strategy {
	case domain.SortPriceAsc:
		sort.SliceStable(variants, func(i, j int) bool {
			return variants[i].Price < variants[j].Price
		})
	case domain.SortPriceDesc:
		sort.SliceStable(variants, func(i, j int) bool {
			return variants[i].Price > variants[j].Price
		})
	case domain.SortDurationAsc:
		sort.SliceStable(variants, func(i, j int) bool {
			return variants[i].DurationDays < variants[j].DurationDays
		})
	case domain.SortDurationDesc:
		sort.SliceStable(variants, func(i, j int) bool {
			return variants[i].DurationDays > variants[j].DurationDays
		})
	case domain.SortBestselling:
		sort.SliceStable(variants, func(i, j int) bool {
			return variants[i].TotalSold > variants[j].TotalSold
		})
	case domain.SortStockAsc:
		sort.SliceStable(variants, func(i, j int) bool {
			return variants[i].StockCount() < variants[j].StockCount()
		})
	case domain.SortStockDesc:
		sort.SliceStable(variants, func(i, j int) bool {
			return variants[i].StockCount() > variants[j].StockCount()
		})
	default:
		// sort_order ascending, ties broken by price ascending
		sort.SliceStable(variants, func(i, j int) bool {
			if variants[i].SortOrder != variants[j].SortOrder {
				return variants[i].SortOrder < variants[j].SortOrder
			}
			return variants[i].Price < variants[j].Price
		})
	}
}
