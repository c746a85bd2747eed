package domain

import (
	"errors"
	"fmt"
)

// PurchaseRequest is the payload sent to the remote purchase transaction.
// The remote service atomically reserves stock and debits the balance.
type PurchaseRequest struct {
	VariantID string `json:"variantId"`
	UserID    string `json:"userId"`
	Quantity  int    `json:"quantity"`
}

// PurchaseResponse is the success shape of the remote purchase RPC. Every
// optional field may be absent; consumers must tolerate any subset.
type PurchaseResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message,omitempty"`
	TotalPrice     int64    `json:"total_price"`
	FinalUnitPrice *int64   `json:"final_unit_price,omitempty"`
	KeyValues      []string `json:"key_values,omitempty"`
	KeyValue       *string  `json:"key_value,omitempty"`
	GuideURL       *string  `json:"guide_url,omitempty"`
	OrderCodes     []string `json:"order_codes,omitempty"`
	TransactionID  *string  `json:"transaction_id,omitempty"`
	TransactionIDs []string `json:"transaction_ids,omitempty"`
}

// PurchaseResult is the client-visible outcome of a completed purchase.
type PurchaseResult struct {
	Keys           []string `json:"keys"`
	GuideURL       *string  `json:"guide_url,omitempty"`
	ManualDelivery bool     `json:"manual_delivery"`
	OrderCode      string   `json:"order_code"`
	TotalPrice     int64    `json:"total_price"`
	Quantity       int      `json:"quantity"`
	VariantID      string   `json:"variant_id"`
	ShortName      string   `json:"short_name"`
}

// PurchaseGateway is the remote transactional collaborator. It is the
// sole source of truth for whether a purchase actually executed.
type PurchaseGateway interface {
	Purchase(req *PurchaseRequest) (*PurchaseResponse, error)
}

// PurchaseUsecase sequences the client-visible purchase steps around the
// gateway call.
type PurchaseUsecase interface {
	Quote(userID, variantID string) (*Quote, error)
	Purchase(userID, variantID string, quantity int) (*PurchaseResult, error)
}

// Quote exposes the computed discount breakdown for a (user, variant) pair.
type Quote struct {
	VariantID             string `json:"variant_id"`
	ListedPrice           int64  `json:"listed_price"`
	UnitPrice             int64  `json:"unit_price"`
	VariantDiscount       int    `json:"variant_discount"`
	RankDiscount          int    `json:"rank_discount"`
	ReferralCountDiscount int    `json:"referral_count_discount"`
	AccumulatedDiscount   int    `json:"accumulated_discount"`
	IntegratedPercent     int    `json:"integrated_percent"`
	BuyerPercent          int    `json:"buyer_percent"`
	CappedAt10            bool   `json:"capped_at_10"`
	MaxQuantity           int    `json:"max_quantity"`
}

// Notification kinds represent the outbound fire-and-forget channels.
const (
	NotifyOrderPlaced    = "ORDER_PLACED"
	NotifyRestockRequest = "RESTOCK_REQUEST"
	NotifyLowStockAlert  = "LOW_STOCK_ALERT"
	NotifySupportHandoff = "SUPPORT_HANDOFF"
)

// SenderContext identifies the buyer on whose behalf a message is sent.
type SenderContext struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// Notification is a queued outbound message. Delivery failure is never
// observable to the purchase workflow.
type Notification struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Sender  *SenderContext `json:"sender,omitempty"`
}

// Notifier delivers a formatted text message to the configured channel.
type Notifier interface {
	Send(n *Notification) error
}

// NotificationQueue decouples enqueueing side effects from delivery.
type NotificationQueue interface {
	EnqueueNotification(n *Notification) error
	DequeueNotification() (*Notification, error)
}

// Local validation errors. These are resolved without a network call and
// are never surfaced as system faults.
var (
	ErrNotAuthenticated = errors.New("authentication required")
	ErrOutOfStock       = errors.New("variant is out of stock")
	ErrStockUnavailable = errors.New("stock is not tracked for this variant")
	ErrVariantNotFound  = errors.New("variant not found")
)

// MinTopUpAmount is the smallest top-up the interactive flow offers when
// the balance falls short.
const MinTopUpAmount = 10000

// InsufficientBalanceError carries the exact shortfall so the UI can
// offer a top-up shortcut.
type InsufficientBalanceError struct {
	Required  int64
	Balance   int64
	Shortfall int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need %d, have %d", e.Required, e.Balance)
}

// TopUpSuggestion returns the shortfall rounded up to the minimum top-up.
func (e *InsufficientBalanceError) TopUpSuggestion() int64 {
	if e.Shortfall < MinTopUpAmount {
		return MinTopUpAmount
	}
	return e.Shortfall
}

// RemoteTransactionError wraps a failure reported by the purchase gateway.
// The collaborator message is surfaced verbatim when present.
type RemoteTransactionError struct {
	Message string
	Err     error
}

// RemoteFailureFallback is shown when the gateway gives no message.
const RemoteFailureFallback = "Giao dịch thất bại, vui lòng thử lại sau."

func (e *RemoteTransactionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return RemoteFailureFallback
}

func (e *RemoteTransactionError) Unwrap() error {
	return e.Err
}
