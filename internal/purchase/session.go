package purchase

import (
	"fmt"

	"github.com/keyshopvn/keyshop/internal/domain"
	"github.com/keyshopvn/keyshop/internal/pricing"
)

// State enumerates the purchase workflow states.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateConfirming
	StatePurchasing
	StateSucceeded
	StateSupportHandoff
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateConfirming:
		return "confirming"
	case StatePurchasing:
		return "purchasing"
	case StateSucceeded:
		return "succeeded"
	case StateSupportHandoff:
		return "support_handoff"
	}
	return "unknown"
}

// MaxPerOrder bounds the quantity of a single purchase.
const MaxPerOrder = 10

// MaxQuantity returns the purchasable upper bound for a variant.
func MaxQuantity(v *domain.ProductVariant) int {
	stock := v.StockCount()
	if stock > MaxPerOrder {
		return MaxPerOrder
	}
	return stock
}

// Event is a workflow input. All transitions go through Session.Apply so
// illegal moves (e.g. a quantity change mid-purchase) are rejected in one
// place.
type Event interface {
	isEvent()
}

// Buy starts a selection from the catalog.
type Buy struct {
	User    *domain.User
	Variant *domain.ProductVariant
	Product *domain.Product
}

// Confirm opens the confirmation step with quantity 1.
type Confirm struct{}

// SetQuantity adjusts the quantity; out-of-bound values are clamped.
type SetQuantity struct {
	Quantity int
}

// Submit runs the local affordability gate and enters Purchasing.
type Submit struct{}

// Succeed records the reconciled remote result.
type Succeed struct {
	Result *domain.PurchaseResult
}

// Fail records a remote failure and returns the flow to Confirming.
type Fail struct {
	Err error
}

// Handoff moves a manual-delivery success to the support channel.
type Handoff struct{}

// Cancel discards all transient selection state.
type Cancel struct{}

func (Buy) isEvent()         {}
func (Confirm) isEvent()     {}
func (SetQuantity) isEvent() {}
func (Submit) isEvent()      {}
func (Succeed) isEvent()     {}
func (Fail) isEvent()        {}
func (Handoff) isEvent()     {}
func (Cancel) isEvent()      {}

// IllegalTransitionError reports an event applied in the wrong state.
type IllegalTransitionError struct {
	State State
	Event string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("event %s not allowed in state %s", e.Event, e.State)
}

// Session is one user's purchase workflow. It holds a locally captured
// copy of the selection; nothing here is shared across sessions.
type Session struct {
	state    State
	settings pricing.Settings

	user    *domain.User
	variant *domain.ProductVariant
	product *domain.Product

	quantity int
	result   *domain.PurchaseResult
	lastErr  error
}

// NewSession creates an idle session with the given discount settings.
func NewSession(settings pricing.Settings) *Session {
	return &Session{state: StateIdle, settings: settings}
}

func (s *Session) State() State                    { return s.state }
func (s *Session) Quantity() int                   { return s.quantity }
func (s *Session) Variant() *domain.ProductVariant { return s.variant }
func (s *Session) Result() *domain.PurchaseResult  { return s.result }

// LastError returns the most recent remote failure, retained across the
// fallback to Confirming so the user can see why the attempt failed.
func (s *Session) LastError() error { return s.lastErr }

// UnitPrice is the per-unit charge for the current selection.
func (s *Session) UnitPrice() int64 {
	return pricing.UnitPrice(s.user, s.variant, s.settings)
}

// Apply is the single transition function. It returns an error when a
// guard rejects the event; guard failures leave the state unchanged.
func (s *Session) Apply(ev Event) error {
	switch e := ev.(type) {
	case Buy:
		return s.applyBuy(e)
	case Confirm:
		if s.state != StateSelecting {
			return s.illegal("confirm")
		}
		s.quantity = 1
		s.state = StateConfirming
		return nil
	case SetQuantity:
		if s.state != StateConfirming {
			return s.illegal("set_quantity")
		}
		s.quantity = clampQuantity(e.Quantity, MaxQuantity(s.variant))
		return nil
	case Submit:
		return s.applySubmit()
	case Succeed:
		if s.state != StatePurchasing {
			return s.illegal("succeed")
		}
		s.result = e.Result
		s.lastErr = nil
		s.state = StateSucceeded
		return nil
	case Fail:
		if s.state != StatePurchasing {
			return s.illegal("fail")
		}
		// Back to Confirming, not Idle, so the user can retry or cancel.
		s.lastErr = e.Err
		s.state = StateConfirming
		return nil
	case Handoff:
		if s.state != StateSucceeded || s.result == nil || !s.result.ManualDelivery {
			return s.illegal("handoff")
		}
		s.state = StateSupportHandoff
		return nil
	case Cancel:
		if s.state == StatePurchasing {
			return s.illegal("cancel")
		}
		s.reset()
		return nil
	}
	return s.illegal(fmt.Sprintf("%T", ev))
}

func (s *Session) applyBuy(e Buy) error {
	if s.state != StateIdle {
		return s.illegal("buy")
	}
	if e.User == nil || !e.User.IsActive {
		// Route to the auth prompt; the session stays Idle.
		return domain.ErrNotAuthenticated
	}
	if e.Variant == nil {
		return domain.ErrVariantNotFound
	}
	if !e.Variant.HasTrackedStock() {
		return domain.ErrStockUnavailable
	}
	if e.Variant.StockCount() <= 0 {
		return domain.ErrOutOfStock
	}

	s.user = e.User
	s.variant = e.Variant
	s.product = e.Product
	s.state = StateSelecting
	return nil
}

func (s *Session) applySubmit() error {
	if s.state != StateConfirming {
		return s.illegal("submit")
	}

	required := s.UnitPrice() * int64(s.quantity)
	if !s.user.HasSufficientBalance(required) {
		return &domain.InsufficientBalanceError{
			Required:  required,
			Balance:   s.user.Balance,
			Shortfall: required - s.user.Balance,
		}
	}

	s.state = StatePurchasing
	return nil
}

func (s *Session) illegal(event string) error {
	return &IllegalTransitionError{State: s.state, Event: event}
}

func (s *Session) reset() {
	s.state = StateIdle
	s.user = nil
	s.variant = nil
	s.product = nil
	s.quantity = 0
	s.result = nil
	s.lastErr = nil
}

func clampQuantity(q, max int) int {
	if q < 1 {
		return 1
	}
	if max >= 1 && q > max {
		return max
	}
	return q
}
