package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/keyshopvn/keyshop/internal/domain"
	"github.com/keyshopvn/keyshop/pkg/logger"
	"github.com/keyshopvn/keyshop/pkg/observability"
	"github.com/keyshopvn/keyshop/pkg/xresponse"
)

// CatalogHandler handles catalog browsing HTTP requests
type CatalogHandler struct {
	catalogUC domain.CatalogUsecase
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogUC domain.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC}
}

// ListProducts returns the filtered, sorted catalog.
// Query params: category, q, price_min, price_max, sort.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	query := domain.CatalogQuery{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}

	var ok bool
	if query.PriceMin, ok = parsePriceParam(c, "price_min"); !ok {
		return
	}
	if query.PriceMax, ok = parsePriceParam(c, "price_max"); !ok {
		return
	}

	switch sort := c.Query("sort"); sort {
	case string(domain.OverrideNone):
	case string(domain.OverrideStock), string(domain.OverrideBestselling):
		query.SortOverride = domain.VariantSortOverride(sort)
	default:
		xresponse.BadRequest(c, "Invalid sort value")
		return
	}

	products, err := h.catalogUC.Browse(query)
	if err != nil {
		logger.Error("Failed to browse catalog", logger.ErrorField(err))
		observability.RecordSystemError(c, "catalog_fetch", "catalog_handler", err)
		xresponse.InternalServerError(c, "Failed to load catalog")
		return
	}

	xresponse.Success(c, "Catalog loaded", gin.H{
		"products": products,
		"count":    len(products),
	})
}

func parsePriceParam(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		xresponse.BadRequest(c, "Invalid "+name+" value")
		return nil, false
	}
	return &value, true
}
