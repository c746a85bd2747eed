package usecase

import (
	"errors"
	"fmt"

	"github.com/keyshopvn/keyshop/internal/domain"
	"github.com/keyshopvn/keyshop/internal/pricing"
	"github.com/keyshopvn/keyshop/internal/purchase"
	"github.com/keyshopvn/keyshop/pkg/logger"
	"github.com/keyshopvn/keyshop/pkg/metrics"
	"github.com/keyshopvn/keyshop/pkg/utils"
)

// UserCache is the read-through cache surface for buyer lookups.
type UserCache interface {
	CacheUser(user *domain.User) error
	GetUser(userID string) (*domain.User, error)
	InvalidateUser(userID string) error
}

type purchaseUsecase struct {
	userRepo    domain.UserRepository
	productRepo domain.ProductRepository
	gateway     domain.PurchaseGateway
	queue       domain.NotificationQueue
	catalogUC   domain.CatalogUsecase
	userCache   UserCache
	settings    pricing.Settings
}

// NewPurchaseUsecase creates a new purchase use case
func NewPurchaseUsecase(
	userRepo domain.UserRepository,
	productRepo domain.ProductRepository,
	gateway domain.PurchaseGateway,
	queue domain.NotificationQueue,
	catalogUC domain.CatalogUsecase,
	userCache UserCache,
	settings pricing.Settings,
) domain.PurchaseUsecase {
	return &purchaseUsecase{
		userRepo:    userRepo,
		productRepo: productRepo,
		gateway:     gateway,
		queue:       queue,
		catalogUC:   catalogUC,
		userCache:   userCache,
		settings:    settings,
	}
}

// Quote computes the discount breakdown for a variant. An empty userID
// quotes the guest price.
func (uc *purchaseUsecase) Quote(userID, variantID string) (*domain.Quote, error) {
	variant, _, err := uc.productRepo.GetVariant(variantID)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	if userID != "" {
		user, err = uc.loadUser(userID)
		if err != nil {
			return nil, err
		}
	}

	b := pricing.ComputePercent(user, variant, uc.settings)
	return &domain.Quote{
		VariantID:             variant.ID,
		ListedPrice:           variant.Price,
		UnitPrice:             pricing.UnitPrice(user, variant, uc.settings),
		VariantDiscount:       b.VariantDiscount,
		RankDiscount:          b.RankDiscount,
		ReferralCountDiscount: b.ReferralCountDiscount,
		AccumulatedDiscount:   b.AccumulatedDiscount,
		IntegratedPercent:     b.IntegratedPercent,
		BuyerPercent:          b.BuyerPercent,
		CappedAt10:            b.CappedAt10,
		MaxQuantity:           purchase.MaxQuantity(variant),
	}, nil
}

// Purchase drives the full workflow for one order: local validation and
// the affordability gate, the remote transaction, result reconciliation,
// and the fire-and-forget notifications.
func (uc *purchaseUsecase) Purchase(userID, variantID string, quantity int) (*domain.PurchaseResult, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := uc.loadUser(userID)
	if err != nil {
		return nil, domain.ErrNotAuthenticated
	}

	variant, product, err := uc.productRepo.GetVariant(variantID)
	if err != nil {
		return nil, err
	}

	session := purchase.NewSession(uc.settings)
	if err := session.Apply(purchase.Buy{User: user, Variant: variant, Product: product}); err != nil {
		return nil, err
	}
	if err := session.Apply(purchase.Confirm{}); err != nil {
		return nil, err
	}
	if err := session.Apply(purchase.SetQuantity{Quantity: quantity}); err != nil {
		return nil, err
	}
	if err := session.Apply(purchase.Submit{}); err != nil {
		return nil, err
	}

	resp, err := uc.gateway.Purchase(&domain.PurchaseRequest{
		VariantID: variant.ID,
		UserID:    user.ID,
		Quantity:  session.Quantity(),
	})
	if err != nil || resp == nil || !resp.Success {
		return nil, uc.recordFailure(session, variant, resp, err)
	}

	result := uc.buildResult(session, resp, variant, product)
	if err := session.Apply(purchase.Succeed{Result: result}); err != nil {
		return nil, err
	}

	uc.afterSuccess(session, user, variant, result)
	return result, nil
}

func (uc *purchaseUsecase) loadUser(userID string) (*domain.User, error) {
	if uc.userCache != nil {
		if cached, err := uc.userCache.GetUser(userID); err == nil && cached != nil {
			return cached, nil
		}
	}

	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if uc.userCache != nil {
		if err := uc.userCache.CacheUser(user); err != nil {
			logger.Warn("Failed to cache user",
				logger.String("user_id", userID),
				logger.ErrorField(err),
			)
		}
	}

	return user, nil
}

// recordFailure moves the session back to Confirming and wraps the remote
// failure. The collaborator message is surfaced verbatim when present.
func (uc *purchaseUsecase) recordFailure(session *purchase.Session, variant *domain.ProductVariant, resp *domain.PurchaseResponse, cause error) error {
	message := ""
	if resp != nil && resp.Message != "" {
		message = resp.Message
	}

	remoteErr := &domain.RemoteTransactionError{Message: message, Err: cause}
	if err := session.Apply(purchase.Fail{Err: remoteErr}); err != nil {
		logger.Error("Failed to record purchase failure", logger.ErrorField(err))
	}

	logger.Warn("Purchase rejected by gateway",
		logger.String("variant_id", variant.ID),
		logger.String("message", remoteErr.Error()),
		logger.ErrorField(cause),
	)
	metrics.RecordPurchase("failed", deliveryLabel(variant), 0)

	return remoteErr
}

func (uc *purchaseUsecase) buildResult(session *purchase.Session, resp *domain.PurchaseResponse, variant *domain.ProductVariant, product *domain.Product) *domain.PurchaseResult {
	quantity := session.Quantity()

	totalPrice := resp.TotalPrice
	if totalPrice <= 0 {
		unit := session.UnitPrice()
		if resp.FinalUnitPrice != nil && *resp.FinalUnitPrice > 0 {
			unit = *resp.FinalUnitPrice
		}
		totalPrice = unit * int64(quantity)
	}

	return &domain.PurchaseResult{
		Keys:           purchase.ResolveKeys(resp),
		GuideURL:       purchase.ResolveGuideURL(resp, variant, product),
		ManualDelivery: variant.IsManualDelivery,
		OrderCode:      purchase.ResolveOrderCode(resp, variant.IsManualDelivery),
		TotalPrice:     totalPrice,
		Quantity:       quantity,
		VariantID:      variant.ID,
		ShortName:      variant.ShortName,
	}
}

// afterSuccess runs every post-purchase side effect. Nothing here can
// fail the purchase: the remote transaction already committed.
func (uc *purchaseUsecase) afterSuccess(session *purchase.Session, user *domain.User, variant *domain.ProductVariant, result *domain.PurchaseResult) {
	metrics.RecordPurchase("success", deliveryLabel(variant), result.TotalPrice)

	sender := &domain.SenderContext{
		Username: user.Username,
		FullName: user.DisplayName(),
	}

	// Every success raises both the priced order message and the
	// price-free restock request.
	uc.enqueue(&domain.Notification{
		Kind: domain.NotifyOrderPlaced,
		Message: fmt.Sprintf("Đơn hàng mới\nSản phẩm: %s\nSố lượng: %d\nThành tiền: %s\nMã đơn: %s",
			result.ShortName, result.Quantity, utils.FormatVND(result.TotalPrice), result.OrderCode),
		Sender: sender,
	})
	uc.enqueue(&domain.Notification{
		Kind: domain.NotifyRestockRequest,
		Message: fmt.Sprintf("Yêu cầu bổ sung kho\nSản phẩm: %s\nSố lượng đã bán: %d\nMã đơn: %s",
			result.ShortName, result.Quantity, result.OrderCode),
		Sender: sender,
	})

	if result.ManualDelivery {
		// Manual orders hand off to support for fulfilment.
		if err := session.Apply(purchase.Handoff{}); err != nil {
			logger.Error("Failed to hand off manual order", logger.ErrorField(err))
		}
		uc.enqueue(&domain.Notification{
			Kind: domain.NotifySupportHandoff,
			Message: fmt.Sprintf("Đơn thủ công chờ giao key\nMã đơn: %s\nSản phẩm: %s x%d",
				result.OrderCode, result.ShortName, result.Quantity),
			Sender: sender,
		})
	} else {
		remaining := variant.StockCount() - result.Quantity
		if remaining <= result.Quantity {
			uc.enqueue(&domain.Notification{
				Kind: domain.NotifyLowStockAlert,
				Message: fmt.Sprintf("Sắp hết hàng: %s\nTồn kho còn lại: %d",
					result.ShortName, remaining),
			})
		}
	}

	// Stock and balance both changed on the remote side.
	if uc.catalogUC != nil {
		uc.catalogUC.InvalidateCache()
	}
	if uc.userCache != nil {
		if err := uc.userCache.InvalidateUser(user.ID); err != nil {
			logger.Warn("Failed to invalidate user cache",
				logger.String("user_id", user.ID),
				logger.ErrorField(err),
			)
		}
	}
}

// enqueue pushes a notification without letting a queue failure surface.
func (uc *purchaseUsecase) enqueue(n *domain.Notification) {
	if uc.queue == nil {
		return
	}
	if err := uc.queue.EnqueueNotification(n); err != nil {
		logger.Warn("Failed to enqueue notification",
			logger.String("kind", n.Kind),
			logger.ErrorField(err),
		)
		metrics.RecordNotification(n.Kind, "enqueue_failed")
	}
}

func deliveryLabel(variant *domain.ProductVariant) string {
	if variant.IsManualDelivery {
		return "manual"
	}
	return "auto"
}

// IsLocalPurchaseError reports whether the error was resolved before any
// remote call, so handlers can map it to a client response.
func IsLocalPurchaseError(err error) bool {
	var insufficient *domain.InsufficientBalanceError
	var illegal *purchase.IllegalTransitionError
	return errors.Is(err, domain.ErrNotAuthenticated) ||
		errors.Is(err, domain.ErrOutOfStock) ||
		errors.Is(err, domain.ErrStockUnavailable) ||
		errors.Is(err, domain.ErrVariantNotFound) ||
		errors.As(err, &insufficient) ||
		errors.As(err, &illegal)
}
