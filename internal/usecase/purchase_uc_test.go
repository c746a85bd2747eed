package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyshopvn/keyshop/internal/domain"
	"github.com/keyshopvn/keyshop/internal/pricing"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) GetByID(id string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (f *fakeUserRepo) GetByUsername(username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

type fakeProductRepo struct {
	variant *domain.ProductVariant
	product *domain.Product
}

func (f *fakeProductRepo) List() ([]*domain.Product, error)       { return nil, nil }
func (f *fakeProductRepo) ListJoined() ([]*domain.Product, error) { return nil, nil }

func (f *fakeProductRepo) GetVariant(variantID string) (*domain.ProductVariant, *domain.Product, error) {
	if f.variant == nil || f.variant.ID != variantID {
		return nil, nil, domain.ErrVariantNotFound
	}
	return f.variant, f.product, nil
}

type fakeGateway struct {
	resp  *domain.PurchaseResponse
	err   error
	calls []*domain.PurchaseRequest
}

func (f *fakeGateway) Purchase(req *domain.PurchaseRequest) (*domain.PurchaseResponse, error) {
	f.calls = append(f.calls, req)
	return f.resp, f.err
}

type fakeQueue struct {
	enqueued []*domain.Notification
}

func (f *fakeQueue) EnqueueNotification(n *domain.Notification) error {
	f.enqueued = append(f.enqueued, n)
	return nil
}

func (f *fakeQueue) DequeueNotification() (*domain.Notification, error) { return nil, nil }

func (f *fakeQueue) kinds() []string {
	out := make([]string, 0, len(f.enqueued))
	for _, n := range f.enqueued {
		out = append(out, n.Kind)
	}
	return out
}

type fakeCatalogUC struct {
	invalidated int
}

func (f *fakeCatalogUC) Browse(q domain.CatalogQuery) ([]*domain.Product, error) { return nil, nil }
func (f *fakeCatalogUC) InvalidateCache()                                        { f.invalidated++ }

type purchaseFixture struct {
	userRepo    *fakeUserRepo
	productRepo *fakeProductRepo
	gateway     *fakeGateway
	queue       *fakeQueue
	catalogUC   *fakeCatalogUC
	uc          domain.PurchaseUsecase
}

func newPurchaseFixture(user *domain.User, variant *domain.ProductVariant, product *domain.Product, gateway *fakeGateway) *purchaseFixture {
	f := &purchaseFixture{
		userRepo:    &fakeUserRepo{users: map[string]*domain.User{}},
		productRepo: &fakeProductRepo{variant: variant, product: product},
		gateway:     gateway,
		queue:       &fakeQueue{},
		catalogUC:   &fakeCatalogUC{},
	}
	if user != nil {
		f.userRepo.users[user.ID] = user
	}
	f.uc = NewPurchaseUsecase(
		f.userRepo, f.productRepo, f.gateway, f.queue, f.catalogUC, nil,
		pricing.DefaultSettings(),
	)
	return f
}

func testBuyer() *domain.User {
	return &domain.User{
		ID:       "u-1",
		Username: "buyer",
		FullName: strPtr("Nguyen Van A"),
		Balance:  1000000,
		Rank:     domain.RankNewbie,
		IsActive: true,
	}
}

func testVariant(stock int, manual bool) *domain.ProductVariant {
	return &domain.ProductVariant{
		ID:               "v-1",
		ProductID:        "p-1",
		ShortName:        "Win11 Pro",
		Price:            100000,
		Stock:            intPtr(stock),
		IsManualDelivery: manual,
	}
}

func TestPurchaseSuccessAutoDelivery(t *testing.T) {
	gateway := &fakeGateway{resp: &domain.PurchaseResponse{
		Success:    true,
		TotalPrice: 200000,
		KeyValues:  []string{"KEY-1", "KEY-2"},
		OrderCodes: []string{"OD777"},
	}}
	f := newPurchaseFixture(testBuyer(), testVariant(10, false), &domain.Product{ID: "p-1"}, gateway)

	result, err := f.uc.Purchase("u-1", "v-1", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"KEY-1", "KEY-2"}, result.Keys)
	assert.Equal(t, "OD777", result.OrderCode)
	assert.Equal(t, int64(200000), result.TotalPrice)
	assert.Equal(t, 2, result.Quantity)
	assert.False(t, result.ManualDelivery)

	require.Len(t, gateway.calls, 1)
	assert.Equal(t, "v-1", gateway.calls[0].VariantID)
	assert.Equal(t, "u-1", gateway.calls[0].UserID)
	assert.Equal(t, 2, gateway.calls[0].Quantity)

	// Both mandatory messages go out; only the order one carries a price.
	assert.Equal(t, []string{domain.NotifyOrderPlaced, domain.NotifyRestockRequest}, f.queue.kinds())
	assert.Contains(t, f.queue.enqueued[0].Message, "200.000đ")
	assert.NotContains(t, f.queue.enqueued[1].Message, "Thành tiền")
	require.NotNil(t, f.queue.enqueued[0].Sender)
	assert.Equal(t, "Nguyen Van A", f.queue.enqueued[0].Sender.FullName)

	assert.Equal(t, 1, f.catalogUC.invalidated)
}

func TestPurchaseLowStockAlert(t *testing.T) {
	// Stock 7, quantity 4: remaining 3 <= 4 triggers the alert.
	gateway := &fakeGateway{resp: &domain.PurchaseResponse{Success: true, TotalPrice: 400000}}
	f := newPurchaseFixture(testBuyer(), testVariant(7, false), nil, gateway)

	_, err := f.uc.Purchase("u-1", "v-1", 4)
	require.NoError(t, err)

	assert.Equal(t, []string{domain.NotifyOrderPlaced, domain.NotifyRestockRequest, domain.NotifyLowStockAlert}, f.queue.kinds())
}

func TestPurchaseNoLowStockAlertWhenPlenty(t *testing.T) {
	gateway := &fakeGateway{resp: &domain.PurchaseResponse{Success: true, TotalPrice: 100000}}
	f := newPurchaseFixture(testBuyer(), testVariant(10, false), nil, gateway)

	_, err := f.uc.Purchase("u-1", "v-1", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{domain.NotifyOrderPlaced, domain.NotifyRestockRequest}, f.queue.kinds())
}

func TestPurchaseManualDelivery(t *testing.T) {
	gateway := &fakeGateway{resp: &domain.PurchaseResponse{
		Success:   true,
		KeyValues: []string{"Mã đơn hàng: MANU42"},
	}}
	f := newPurchaseFixture(testBuyer(), testVariant(2, true), nil, gateway)

	result, err := f.uc.Purchase("u-1", "v-1", 1)
	require.NoError(t, err)

	assert.True(t, result.ManualDelivery)
	assert.Equal(t, "MANU42", result.OrderCode)

	// The two mandatory messages still go out; handoff is added and the
	// low-stock alert is not.
	assert.Equal(t, []string{domain.NotifyOrderPlaced, domain.NotifyRestockRequest, domain.NotifySupportHandoff}, f.queue.kinds())
	assert.NotContains(t, f.queue.enqueued[1].Message, "Thành tiền",
		"restock request carries no price")
}

func TestPurchaseTotalPriceFallsBackToLocalComputation(t *testing.T) {
	gateway := &fakeGateway{resp: &domain.PurchaseResponse{Success: true}}
	f := newPurchaseFixture(testBuyer(), testVariant(10, false), nil, gateway)

	result, err := f.uc.Purchase("u-1", "v-1", 3)
	require.NoError(t, err)

	// No remote total: unit price (no discounts) times quantity.
	assert.Equal(t, int64(300000), result.TotalPrice)
}

func TestPurchaseGatewayRejectionVerbatimMessage(t *testing.T) {
	gateway := &fakeGateway{resp: &domain.PurchaseResponse{
		Success: false,
		Message: "Kho không đủ số lượng",
	}}
	f := newPurchaseFixture(testBuyer(), testVariant(10, false), nil, gateway)

	_, err := f.uc.Purchase("u-1", "v-1", 1)
	var remote *domain.RemoteTransactionError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "Kho không đủ số lượng", remote.Error())

	assert.Empty(t, f.queue.enqueued)
	assert.Equal(t, 0, f.catalogUC.invalidated)
}

func TestPurchaseGatewayCallErrorSurfacesCause(t *testing.T) {
	cause := errors.New("keyhub returned status 502")
	gateway := &fakeGateway{err: cause}
	f := newPurchaseFixture(testBuyer(), testVariant(10, false), nil, gateway)

	_, err := f.uc.Purchase("u-1", "v-1", 1)
	var remote *domain.RemoteTransactionError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "keyhub returned status 502", remote.Error())
	assert.ErrorIs(t, remote, cause)
}

func TestPurchaseGatewaySilentFailureFallbackMessage(t *testing.T) {
	// No message and no call error: the generic fallback is all we have.
	gateway := &fakeGateway{resp: &domain.PurchaseResponse{Success: false}}
	f := newPurchaseFixture(testBuyer(), testVariant(10, false), nil, gateway)

	_, err := f.uc.Purchase("u-1", "v-1", 1)
	var remote *domain.RemoteTransactionError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, domain.RemoteFailureFallback, remote.Error())
}

func TestPurchaseInsufficientBalanceBlocksGateway(t *testing.T) {
	poor := testBuyer()
	poor.Balance = 40000

	variant := testVariant(10, false)
	variant.Price = 50000
	variant.DiscountPercent = 10

	gateway := &fakeGateway{}
	f := newPurchaseFixture(poor, variant, nil, gateway)

	_, err := f.uc.Purchase("u-1", "v-1", 1)
	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(45000), insufficient.Required)

	assert.Empty(t, gateway.calls, "affordability gate precedes the remote call")
}

func TestPurchaseQuantityClampedBeforeGateway(t *testing.T) {
	gateway := &fakeGateway{resp: &domain.PurchaseResponse{Success: true, TotalPrice: 1}}
	f := newPurchaseFixture(testBuyer(), testVariant(3, false), nil, gateway)

	result, err := f.uc.Purchase("u-1", "v-1", 50)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Quantity)
	require.Len(t, gateway.calls, 1)
	assert.Equal(t, 3, gateway.calls[0].Quantity)
}

func TestPurchaseLocalGuards(t *testing.T) {
	f := newPurchaseFixture(testBuyer(), testVariant(10, false), nil, &fakeGateway{})

	_, err := f.uc.Purchase("", "v-1", 1)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = f.uc.Purchase("ghost", "v-1", 1)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

	_, err = f.uc.Purchase("u-1", "missing", 1)
	assert.ErrorIs(t, err, domain.ErrVariantNotFound)

	untracked := testVariant(0, false)
	untracked.Stock = nil
	f = newPurchaseFixture(testBuyer(), untracked, nil, &fakeGateway{})
	_, err = f.uc.Purchase("u-1", "v-1", 1)
	assert.ErrorIs(t, err, domain.ErrStockUnavailable)

	f = newPurchaseFixture(testBuyer(), testVariant(0, false), nil, &fakeGateway{})
	_, err = f.uc.Purchase("u-1", "v-1", 1)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
}

func TestQuoteGuest(t *testing.T) {
	variant := testVariant(5, false)
	variant.DiscountPercent = 10
	f := newPurchaseFixture(nil, variant, nil, &fakeGateway{})

	quote, err := f.uc.Quote("", "v-1")
	require.NoError(t, err)

	assert.Equal(t, int64(100000), quote.ListedPrice)
	assert.Equal(t, int64(90000), quote.UnitPrice)
	assert.Equal(t, 10, quote.IntegratedPercent)
	assert.Equal(t, 0, quote.BuyerPercent)
	assert.Equal(t, 5, quote.MaxQuantity)
}

func TestQuoteAuthenticated(t *testing.T) {
	user := testBuyer()
	user.Rank = domain.RankKimCuong
	user.ReferralCount = 8
	user.ReferredBy = strPtr("u-0")

	variant := testVariant(50, false)
	variant.DiscountPercent = 15

	f := newPurchaseFixture(user, variant, nil, &fakeGateway{})

	quote, err := f.uc.Quote("u-1", "v-1")
	require.NoError(t, err)

	assert.Equal(t, 10, quote.AccumulatedDiscount)
	assert.True(t, quote.CappedAt10)
	assert.Equal(t, 25, quote.IntegratedPercent)
	assert.Equal(t, 1, quote.BuyerPercent)
	assert.Equal(t, int64(74250), quote.UnitPrice)
	assert.Equal(t, 10, quote.MaxQuantity)
}

func TestIsLocalPurchaseError(t *testing.T) {
	assert.True(t, IsLocalPurchaseError(domain.ErrOutOfStock))
	assert.True(t, IsLocalPurchaseError(&domain.InsufficientBalanceError{}))
	assert.False(t, IsLocalPurchaseError(&domain.RemoteTransactionError{}))
	assert.False(t, IsLocalPurchaseError(errors.New("boom")))
}
