package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyshopvn/keyshop/internal/domain"
)

type fakeCatalogRepo struct {
	listProducts   []*domain.Product
	listErr        error
	joinedProducts []*domain.Product
	joinedErr      error

	listCalls   int
	joinedCalls int
}

func (f *fakeCatalogRepo) List() ([]*domain.Product, error) {
	f.listCalls++
	return f.listProducts, f.listErr
}

func (f *fakeCatalogRepo) ListJoined() ([]*domain.Product, error) {
	f.joinedCalls++
	return f.joinedProducts, f.joinedErr
}

func (f *fakeCatalogRepo) GetVariant(string) (*domain.ProductVariant, *domain.Product, error) {
	return nil, nil, domain.ErrVariantNotFound
}

type fakeCatalogCache struct {
	cached      []*domain.Product
	getErr      error
	stores      int
	invalidated int
}

func (f *fakeCatalogCache) CacheCatalog(products []*domain.Product) error {
	f.stores++
	f.cached = products
	return nil
}

func (f *fakeCatalogCache) GetCatalog() ([]*domain.Product, error) {
	return f.cached, f.getErr
}

func (f *fakeCatalogCache) InvalidateCatalog() error {
	f.invalidated++
	f.cached = nil
	return nil
}

func catalogProduct(id, category string, sortOrder int, price int64) *domain.Product {
	return &domain.Product{
		ID:        id,
		Name:      id,
		Category:  category,
		SortOrder: sortOrder,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Variants: []*domain.ProductVariant{
			{ID: id + "-v1", ProductID: id, Price: price},
		},
	}
}

func TestBrowsePrimarySourceAndResort(t *testing.T) {
	repo := &fakeCatalogRepo{listProducts: []*domain.Product{
		catalogProduct("p2", "os", 2, 100),
		catalogProduct("p1", "os", 1, 100),
	}}
	cache := &fakeCatalogCache{}
	uc := NewCatalogUsecase(repo, cache)

	products, err := uc.Browse(domain.CatalogQuery{})
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID, "re-sorted by sort_order regardless of fetch order")
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 0, repo.joinedCalls)
	assert.Equal(t, 1, cache.stores)
}

func TestBrowseCacheHitSkipsDatabase(t *testing.T) {
	repo := &fakeCatalogRepo{}
	cache := &fakeCatalogCache{cached: []*domain.Product{catalogProduct("p1", "os", 1, 100)}}
	uc := NewCatalogUsecase(repo, cache)

	products, err := uc.Browse(domain.CatalogQuery{})
	require.NoError(t, err)

	assert.Len(t, products, 1)
	assert.Equal(t, 0, repo.listCalls)
}

func TestBrowseFallsBackToJoined(t *testing.T) {
	repo := &fakeCatalogRepo{
		listErr:        errors.New("aggregate query failed"),
		joinedProducts: []*domain.Product{catalogProduct("p1", "os", 1, 100)},
	}
	uc := NewCatalogUsecase(repo, &fakeCatalogCache{})

	products, err := uc.Browse(domain.CatalogQuery{})
	require.NoError(t, err)

	assert.Len(t, products, 1)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, repo.joinedCalls)
}

func TestBrowseBothSourcesFail(t *testing.T) {
	repo := &fakeCatalogRepo{
		listErr:   errors.New("aggregate query failed"),
		joinedErr: errors.New("join query failed"),
	}
	uc := NewCatalogUsecase(repo, &fakeCatalogCache{})

	_, err := uc.Browse(domain.CatalogQuery{})
	assert.Error(t, err)
}

func TestBrowseAppliesFilterAndOverride(t *testing.T) {
	p := catalogProduct("p1", "os", 1, 100)
	p.Variants = []*domain.ProductVariant{
		{ID: "v1", TotalSold: 3},
		{ID: "v2", TotalSold: 9},
	}
	repo := &fakeCatalogRepo{listProducts: []*domain.Product{
		p,
		catalogProduct("p2", "office", 2, 100),
	}}
	uc := NewCatalogUsecase(repo, nil)

	products, err := uc.Browse(domain.CatalogQuery{
		Category:     "os",
		SortOverride: domain.OverrideBestselling,
	})
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "v2", products[0].Variants[0].ID)
}

func TestInvalidateCache(t *testing.T) {
	cache := &fakeCatalogCache{cached: []*domain.Product{catalogProduct("p1", "os", 1, 100)}}
	uc := NewCatalogUsecase(&fakeCatalogRepo{}, cache)

	uc.InvalidateCache()
	assert.Equal(t, 1, cache.invalidated)
	assert.Nil(t, cache.cached)
}
