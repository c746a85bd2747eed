package domain

import (
	"time"
)

// Product groups the purchasable variants of a single license-key title.
type Product struct {
	ID        string  `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Mechanism string  `json:"mechanism" db:"mechanism"`
	Category  string  `json:"category" db:"category"`
	GuideURL  *string `json:"guide_url" db:"guide_url"`
	SortOrder int     `json:"sort_order" db:"sort_order"`

	// VariantSortStrategy controls the default ordering of Variants
	// when no global override is active.
	VariantSortStrategy VariantSortStrategy `json:"variant_sort_strategy" db:"variant_sort_strategy"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Variants []*ProductVariant `json:"variants" db:"-"`
}

// ProductVariant is a purchasable SKU under a product with its own
// price, stock, duration and delivery mode.
type ProductVariant struct {
	ID        string `json:"id" db:"id"`
	ProductID string `json:"product_id" db:"product_id"`
	ShortName string `json:"short_name" db:"short_name"`

	// Pricing. Price is in the smallest currency unit; DiscountPercent
	// is the variant-level listed discount (0-100).
	Price           int64 `json:"price" db:"price"`
	DiscountPercent int   `json:"discount_percent" db:"discount_percent"`

	// Stock is nil when the variant has no tracked key pool. Display
	// treats nil as 0; the purchase gate distinguishes the two.
	Stock *int `json:"stock" db:"stock"`

	// DurationDays of 0 means the key never expires.
	DurationDays     int     `json:"duration_days" db:"duration_days"`
	IsManualDelivery bool    `json:"is_manual_delivery" db:"is_manual_delivery"`
	TotalSold        int     `json:"total_sold" db:"total_sold"`
	SortOrder        int     `json:"sort_order" db:"sort_order"`
	GuideURL         *string `json:"guide_url" db:"guide_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// VariantSortStrategy enumerates per-product variant orderings.
type VariantSortStrategy string

const (
	SortDefault      VariantSortStrategy = "default"
	SortPriceAsc     VariantSortStrategy = "price_asc"
	SortPriceDesc    VariantSortStrategy = "price_desc"
	SortDurationAsc  VariantSortStrategy = "duration_asc"
	SortDurationDesc VariantSortStrategy = "duration_desc"
	SortBestselling  VariantSortStrategy = "bestselling"
	SortStockAsc     VariantSortStrategy = "stock_asc"
	SortStockDesc    VariantSortStrategy = "stock_desc"
)

// VariantSortOverride is the global UI sort control. A non-none value
// takes precedence over every product's own strategy.
type VariantSortOverride string

const (
	OverrideNone        VariantSortOverride = ""
	OverrideStock       VariantSortOverride = "stock"
	OverrideBestselling VariantSortOverride = "bestselling"
)

// CategoryAll matches every category in catalog filters.
const CategoryAll = "all"

// ProductRepository defines operations for catalog data access
type ProductRepository interface {
	// List returns all products with nested variants via the primary
	// aggregate query.
	List() ([]*Product, error)
	// ListJoined is the plain join-style fallback used when the
	// aggregate query fails. Output shape is identical.
	ListJoined() ([]*Product, error)
	// GetVariant resolves a variant together with its owning product.
	GetVariant(variantID string) (*ProductVariant, *Product, error)
}

// CatalogQuery is the browse input: filters plus the global sort override.
type CatalogQuery struct {
	Category     string
	Query        string
	PriceMin     *int64
	PriceMax     *int64
	SortOverride VariantSortOverride
}

// CatalogUsecase serves filtered, sorted catalog views.
type CatalogUsecase interface {
	Browse(q CatalogQuery) ([]*Product, error)
	InvalidateCache()
}

// IsValidSortStrategy checks if the strategy is a known one
func IsValidSortStrategy(s VariantSortStrategy) bool {
	switch s {
	case SortDefault, SortPriceAsc, SortPriceDesc, SortDurationAsc,
		SortDurationDesc, SortBestselling, SortStockAsc, SortStockDesc:
		return true
	}
	return s == ""
}

// StockCount returns the display stock, treating an untracked pool as 0.
func (v *ProductVariant) StockCount() int {
	if v == nil || v.Stock == nil {
		return 0
	}
	return *v.Stock
}

// HasTrackedStock reports whether the variant carries a key-pool count.
func (v *ProductVariant) HasTrackedStock() bool {
	return v != nil && v.Stock != nil
}

// EffectiveGuideURL resolves the variant guide URL, inheriting the
// product-level one when the variant has none.
func (v *ProductVariant) EffectiveGuideURL(p *Product) *string {
	if v != nil && v.GuideURL != nil && *v.GuideURL != "" {
		return v.GuideURL
	}
	if p != nil && p.GuideURL != nil && *p.GuideURL != "" {
		return p.GuideURL
	}
	return nil
}

// MinVariantPrice returns the cheapest variant price, 0 for an empty list.
func (p *Product) MinVariantPrice() int64 {
	if p == nil || len(p.Variants) == 0 {
		return 0
	}
	min := p.Variants[0].Price
	for _, v := range p.Variants[1:] {
		if v.Price < min {
			min = v.Price
		}
	}
	return min
}
