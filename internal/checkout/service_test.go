package checkout

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/internal/cart"
	"github.com/rebootmart/rebootmart-backend/internal/catalog"
	"github.com/rebootmart/rebootmart-backend/internal/discounts"
	"github.com/rebootmart/rebootmart-backend/internal/orders"
	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
	"github.com/rebootmart/rebootmart-backend/pkg/razorpay"
	"github.com/rebootmart/rebootmart-backend/pkg/types"
)

type fakeCartRepo struct {
	cart    *models.Cart
	cleared bool
}

func (f *fakeCartRepo) WithTx(_ *gorm.DB) cart.Repository { return f }

func (f *fakeCartRepo) GetOrCreate(_ context.Context, _ uuid.UUID) (*models.Cart, error) {
	return f.cart, nil
}

func (f *fakeCartRepo) FindWithItems(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	if f.cart == nil || f.cart.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.cart, nil
}

func (f *fakeCartRepo) AddItem(_ context.Context, _, _ uuid.UUID) error { return nil }

func (f *fakeCartRepo) SetItemQuantity(_ context.Context, _, _ uuid.UUID, _ int) (int64, error) {
	return 0, nil
}

func (f *fakeCartRepo) RemoveItem(_ context.Context, _, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeCartRepo) Clear(_ context.Context, _ uuid.UUID) error {
	f.cleared = true
	return nil
}

type fakeCatalogRepo struct {
	products map[uuid.UUID]models.Product
}

func (f *fakeCatalogRepo) List(_ context.Context, _ catalog.ListFilters, _ pagination.Params) ([]models.Product, string, error) {
	return nil, "", nil
}

func (f *fakeCatalogRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakeCatalogRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeOrdersRepo struct {
	orders    map[uuid.UUID]*models.Order
	lines     map[uuid.UUID][]models.OrderLineItem
	events    map[uuid.UUID][]models.OrderStatusEvent
	updateErr error
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{
		orders: map[uuid.UUID]*models.Order{},
		lines:  map[uuid.UUID][]models.OrderLineItem{},
		events: map[uuid.UUID][]models.OrderStatusEvent{},
	}
}

func (f *fakeOrdersRepo) WithTx(_ *gorm.DB) orders.Repository { return f }

func (f *fakeOrdersRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeOrdersRepo) CreateLineItems(_ context.Context, items []models.OrderLineItem) error {
	if len(items) > 0 {
		f.lines[items[0].OrderID] = items
	}
	return nil
}

func (f *fakeOrdersRepo) AppendStatusEvent(_ context.Context, event *models.OrderStatusEvent) error {
	f.events[event.OrderID] = append(f.events[event.OrderID], *event)
	return nil
}

func (f *fakeOrdersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *o
	copied.LineItems = f.lines[id]
	copied.StatusEvents = f.events[id]
	return &copied, nil
}

func (f *fakeOrdersRepo) FindByRazorpayOrderID(_ context.Context, _ string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrdersRepo) ListByUser(_ context.Context, _ uuid.UUID, _ pagination.Params) ([]models.Order, string, error) {
	return nil, "", nil
}

func (f *fakeOrdersRepo) ListAll(_ context.Context, _ pagination.Params) ([]models.Order, string, error) {
	return nil, "", nil
}

func (f *fakeOrdersRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	o, ok := f.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["razorpay_order_id"].(string); ok {
		o.RazorpayOrderID = &v
	}
	if v, ok := updates["status"].(enums.OrderStatus); ok {
		o.Status = v
	}
	if v, ok := updates["payment_status"].(enums.PaymentStatus); ok {
		o.PaymentStatus = v
	}
	return nil
}

type fakeVerifier struct {
	byCode        map[string]int64
	verifiedPaise int64
}

func (f *fakeVerifier) Verify(_ context.Context, code string, totalPaise int64) (*discounts.Verification, error) {
	f.verifiedPaise = totalPaise
	amount, ok := f.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid code")
	}
	if amount > totalPaise {
		amount = totalPaise
	}
	return &discounts.Verification{Code: strings.ToUpper(code), DiscountPaise: amount}, nil
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type fakeGateway struct {
	createErr error
	created   []razorpay.CreateOrderParams
}

func (f *fakeGateway) CreateOrder(_ context.Context, params razorpay.CreateOrderParams) (*razorpay.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, params)
	return &razorpay.Order{ID: "order_rzp_42", Amount: params.AmountPaise, Currency: "INR"}, nil
}

func (f *fakeGateway) CheckoutRedirectURL(orderID, callbackURL string) string {
	return "https://checkout.example.com/embedded?order_id=" + orderID + "&callback_url=" + callbackURL
}

func testAddress() types.Address {
	return types.Address{
		Name:       "Asha Rao",
		Phone:      "9999999999",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
		Country:    "IN",
	}
}

type fixture struct {
	svc      Service
	carts    *fakeCartRepo
	orders   *fakeOrdersRepo
	gw       *fakeGateway
	verifier *fakeVerifier
	userID   uuid.UUID
}

// one laptop at ₹50,000 in the cart
func newFixture(t *testing.T) *fixture {
	t.Helper()

	userID := uuid.New()
	productID := uuid.New()
	carts := &fakeCartRepo{cart: &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items:  []models.CartItem{{CartID: uuid.New(), ProductID: productID, Quantity: 1}},
	}}
	products := &fakeCatalogRepo{products: map[uuid.UUID]models.Product{
		productID: {
			ID:         productID,
			Name:       "ThinkPad T14 Gen 3",
			Brand:      "Lenovo",
			Category:   enums.ProductCategoryLaptop,
			PricePaise: 5_000_000,
			MRPPaise:   6_500_000,
			Quantity:   3,
			InStock:    true,
			IsActive:   true,
		},
	}}
	ordersRepo := newFakeOrdersRepo()
	gw := &fakeGateway{}
	verifier := &fakeVerifier{byCode: map[string]int64{"SAVE5000": 500_000}}
	logg := logger.New(logger.Options{ServiceName: "checkout-test", Level: zerolog.ErrorLevel, Output: io.Discard})

	svc, err := NewService(carts, products, verifier, ordersRepo, fakeTx{}, gw, 1800, "https://shop.example.com/payment/callback", logg)
	require.NoError(t, err)

	return &fixture{svc: svc, carts: carts, orders: ordersRepo, gw: gw, verifier: verifier, userID: userID}
}

func TestCheckoutCreatesPendingOrder(t *testing.T) {
	fx := newFixture(t)

	result, err := fx.svc.Checkout(context.Background(), Input{
		UserID:          fx.userID,
		ShippingAddress: testAddress(),
	})
	require.NoError(t, err)

	require.Equal(t, enums.OrderStatusPending, result.Order.Status)
	require.Equal(t, int64(5_000_000), result.Order.SubtotalPaise)
	require.Equal(t, int64(900_000), result.Order.TaxPaise)
	require.Equal(t, int64(5_900_000), result.Order.TotalPaise)
	require.Len(t, result.Order.LineItems, 1)
	require.Equal(t, "ThinkPad T14 Gen 3", result.Order.LineItems[0].Name)
	require.Len(t, result.Order.StatusHistory, 1, "initial history entry written at creation")
	require.NotNil(t, result.Order.RazorpayOrderID)
	require.Contains(t, result.RedirectURL, "order_id=order_rzp_42")
	require.True(t, fx.carts.cleared, "cart cleared after checkout")

	require.Len(t, fx.gw.created, 1)
	require.Equal(t, int64(5_900_000), fx.gw.created[0].AmountPaise)
}

func TestCheckoutAppliesDiscount(t *testing.T) {
	fx := newFixture(t)

	result, err := fx.svc.Checkout(context.Background(), Input{
		UserID:          fx.userID,
		ShippingAddress: testAddress(),
		DiscountCode:    "SAVE5000",
	})
	require.NoError(t, err)

	require.Equal(t, int64(500_000), result.Order.DiscountPaise)
	require.Equal(t, int64(5_400_000), result.Order.TotalPaise)
	require.NotNil(t, result.Order.DiscountCode)
	require.Equal(t, "SAVE5000", *result.Order.DiscountCode)
}

func TestCheckoutVerifiesCodeAgainstTaxInclusiveTotal(t *testing.T) {
	fx := newFixture(t)

	// Rs 50,000 subtotal at 18% GST: codes must see the Rs 59,000 total,
	// not the subtotal, or minimum-order thresholds between the two would
	// wrongly reject the order.
	_, err := fx.svc.Checkout(context.Background(), Input{
		UserID:          fx.userID,
		ShippingAddress: testAddress(),
		DiscountCode:    "SAVE5000",
	})
	require.NoError(t, err)
	require.Equal(t, int64(5_900_000), fx.verifier.verifiedPaise)
}

func TestCheckoutRejectsInvalidDiscount(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Checkout(context.Background(), Input{
		UserID:          fx.userID,
		ShippingAddress: testAddress(),
		DiscountCode:    "NOPE",
	})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	require.Empty(t, fx.orders.orders, "no order persisted")
}

func TestCheckoutRejectsIncompleteAddress(t *testing.T) {
	fx := newFixture(t)

	addr := testAddress()
	addr.PostalCode = ""
	_, err := fx.svc.Checkout(context.Background(), Input{UserID: fx.userID, ShippingAddress: addr})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	fx := newFixture(t)
	fx.carts.cart.Items = nil

	_, err := fx.svc.Checkout(context.Background(), Input{UserID: fx.userID, ShippingAddress: testAddress()})
	coded := pkgerrors.As(err)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
	require.Contains(t, coded.Message(), "cart is empty")
}

func TestCheckoutRejectsInsufficientStock(t *testing.T) {
	fx := newFixture(t)
	fx.carts.cart.Items[0].Quantity = 5 // only 3 on hand

	_, err := fx.svc.Checkout(context.Background(), Input{UserID: fx.userID, ShippingAddress: testAddress()})
	coded := pkgerrors.As(err)
	require.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
	require.Contains(t, coded.Message(), "insufficient stock")
	require.False(t, fx.carts.cleared)
}

func TestCheckoutGatewayFailureMarksOrderFailed(t *testing.T) {
	fx := newFixture(t)
	fx.gw.createErr = fmt.Errorf("gateway unreachable")

	_, err := fx.svc.Checkout(context.Background(), Input{UserID: fx.userID, ShippingAddress: testAddress()})
	require.Error(t, err)

	require.Len(t, fx.orders.orders, 1)
	for id, order := range fx.orders.orders {
		require.Equal(t, enums.OrderStatusFailed, order.Status)
		require.Len(t, fx.orders.events[id], 2, "placement entry plus failure entry")
	}
	require.False(t, fx.carts.cleared, "buyer keeps the cart to retry checkout")
}

func TestCheckoutReferenceRecordFailureKeepsCart(t *testing.T) {
	fx := newFixture(t)
	fx.orders.updateErr = fmt.Errorf("connection reset")

	_, err := fx.svc.Checkout(context.Background(), Input{UserID: fx.userID, ShippingAddress: testAddress()})
	require.Equal(t, pkgerrors.CodeInternal, pkgerrors.As(err).Code())
	require.False(t, fx.carts.cleared, "buyer keeps the cart to retry checkout")
}
