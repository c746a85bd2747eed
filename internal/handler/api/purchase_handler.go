package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/keyshopvn/keyshop/internal/domain"
	"github.com/keyshopvn/keyshop/internal/purchase"
	"github.com/keyshopvn/keyshop/pkg/logger"
	"github.com/keyshopvn/keyshop/pkg/observability"
	"github.com/keyshopvn/keyshop/pkg/xresponse"
)

// PurchaseHandler handles purchase-related HTTP requests
type PurchaseHandler struct {
	purchaseUC domain.PurchaseUsecase
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseUC domain.PurchaseUsecase) *PurchaseHandler {
	return &PurchaseHandler{purchaseUC: purchaseUC}
}

// PurchaseOrderRequest represents request for placing an order
type PurchaseOrderRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// GetQuote returns the discount breakdown for a variant. Works without
// authentication; a guest sees the variant discount only.
func (h *PurchaseHandler) GetQuote(c *gin.Context) {
	variantID := c.Param("id")
	userID, _ := GetCurrentUserID(c)

	quote, err := h.purchaseUC.Quote(userID, variantID)
	if err != nil {
		if errors.Is(err, domain.ErrVariantNotFound) {
			xresponse.VariantNotFound(c, "Variant not found")
			return
		}
		logger.Error("Failed to compute quote",
			logger.String("variant_id", variantID),
			logger.ErrorField(err),
		)
		observability.RecordSystemError(c, "quote", "purchase_handler", err)
		xresponse.InternalServerError(c, "Failed to compute quote")
		return
	}

	xresponse.Success(c, "Quote computed", quote)
}

// PlaceOrder runs the purchase workflow for the authenticated user.
func (h *PurchaseHandler) PlaceOrder(c *gin.Context) {
	var req PurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid request body", logger.ErrorField(err))
		xresponse.BadRequest(c, "Invalid request format")
		return
	}

	userID, exists := GetCurrentUserID(c)
	if !exists {
		xresponse.NotAuthenticated(c, "Please log in to purchase")
		return
	}

	if req.Quantity == 0 {
		req.Quantity = 1
	}

	result, err := h.purchaseUC.Purchase(userID, req.VariantID, req.Quantity)
	if err != nil {
		h.respondPurchaseError(c, req.VariantID, err)
		return
	}

	xresponse.Success(c, "Purchase completed", result)
}

func (h *PurchaseHandler) respondPurchaseError(c *gin.Context, variantID string, err error) {
	var insufficient *domain.InsufficientBalanceError
	var remote *domain.RemoteTransactionError
	var illegal *purchase.IllegalTransitionError

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		xresponse.NotAuthenticated(c, "Please log in to purchase")
	case errors.Is(err, domain.ErrVariantNotFound):
		xresponse.VariantNotFound(c, "Variant not found")
	case errors.Is(err, domain.ErrStockUnavailable):
		xresponse.StockUnavailable(c, "Stock is not tracked for this variant")
	case errors.Is(err, domain.ErrOutOfStock):
		xresponse.OutOfStock(c, "Variant is out of stock")
	case errors.As(err, &insufficient):
		xresponse.InsufficientBalance(c, insufficient.Error(), insufficient.TopUpSuggestion())
	case errors.As(err, &remote):
		// Collaborator message goes to the client verbatim.
		xresponse.PurchaseFailed(c, remote.Error())
	case errors.As(err, &illegal):
		xresponse.BadRequest(c, illegal.Error())
	default:
		logger.Error("Purchase failed unexpectedly",
			logger.String("variant_id", variantID),
			logger.ErrorField(err),
		)
		observability.RecordSystemError(c, "purchase", "purchase_handler", err)
		xresponse.InternalServerError(c, "Purchase failed")
	}
}
