package usecase

import (
	"fmt"

	"github.com/keyshopvn/keyshop/internal/catalog"
	"github.com/keyshopvn/keyshop/internal/domain"
	"github.com/keyshopvn/keyshop/pkg/logger"
	"github.com/keyshopvn/keyshop/pkg/metrics"
)

// CatalogCache is the cache surface the catalog flow needs from Redis.
type CatalogCache interface {
	CacheCatalog(products []*domain.Product) error
	GetCatalog() ([]*domain.Product, error)
	InvalidateCatalog() error
}

type catalogUsecase struct {
	productRepo domain.ProductRepository
	cache       CatalogCache
}

// NewCatalogUsecase creates a new catalog use case
func NewCatalogUsecase(productRepo domain.ProductRepository, cache CatalogCache) domain.CatalogUsecase {
	return &catalogUsecase{
		productRepo: productRepo,
		cache:       cache,
	}
}

// Browse returns the filtered, sorted catalog view. Fetch order is cache,
// then the aggregate query, then the joined fallback. Whatever the source,
// products are re-sorted locally so ordering never depends on the query.
func (uc *catalogUsecase) Browse(q domain.CatalogQuery) ([]*domain.Product, error) {
	products, err := uc.fetch()
	if err != nil {
		return nil, err
	}

	products = catalog.Filter(products, catalog.Criteria{
		Category: q.Category,
		Query:    q.Query,
		PriceMin: q.PriceMin,
		PriceMax: q.PriceMax,
	})

	catalog.SortProducts(products)
	for _, p := range products {
		catalog.SortVariants(p.Variants, p.VariantSortStrategy, q.SortOverride)
	}

	return products, nil
}

// InvalidateCache drops the cached catalog so the next browse refetches.
// Called after every successful purchase since stock counts changed.
func (uc *catalogUsecase) InvalidateCache() {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.InvalidateCatalog(); err != nil {
		logger.Warn("Failed to invalidate catalog cache", logger.ErrorField(err))
	}
}

func (uc *catalogUsecase) fetch() ([]*domain.Product, error) {
	if uc.cache != nil {
		cached, err := uc.cache.GetCatalog()
		if err == nil && cached != nil {
			metrics.RecordCatalogFetch("cache")
			return cached, nil
		}
	}

	products, err := uc.productRepo.List()
	if err == nil {
		metrics.RecordCatalogFetch("primary")
		uc.cacheResult(products)
		return products, nil
	}

	logger.Warn("Aggregate catalog query failed, falling back to join",
		logger.ErrorField(err),
	)

	products, joinErr := uc.productRepo.ListJoined()
	if joinErr != nil {
		metrics.RecordCatalogFetch("failed")
		return nil, fmt.Errorf("failed to fetch catalog: %w", joinErr)
	}

	metrics.RecordCatalogFetch("fallback")
	uc.cacheResult(products)
	return products, nil
}

func (uc *catalogUsecase) cacheResult(products []*domain.Product) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.CacheCatalog(products); err != nil {
		logger.Warn("Failed to cache catalog", logger.ErrorField(err))
	}
}
