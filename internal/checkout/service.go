package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/internal/cart"
	"github.com/rebootmart/rebootmart-backend/internal/catalog"
	"github.com/rebootmart/rebootmart-backend/internal/discounts"
	"github.com/rebootmart/rebootmart-backend/internal/orders"
	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
	"github.com/rebootmart/rebootmart-backend/pkg/money"
	"github.com/rebootmart/rebootmart-backend/pkg/razorpay"
	"github.com/rebootmart/rebootmart-backend/pkg/types"
)

// Input is the buyer's checkout submission. The discount code is optional.
type Input struct {
	UserID          uuid.UUID
	ShippingAddress types.Address
	DiscountCode    string
}

// Result pairs the persisted order with the hosted checkout redirect.
type Result struct {
	Order       *orders.OrderDTO `json:"order"`
	RedirectURL string           `json:"redirect_url"`
}

// Service turns a cart into a pending order and a payment redirect.
type Service interface {
	Checkout(ctx context.Context, input Input) (*Result, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type discountVerifier interface {
	Verify(ctx context.Context, code string, orderTotalPaise int64) (*discounts.Verification, error)
}

// paymentGateway is the slice of the Razorpay client checkout needs.
type paymentGateway interface {
	CreateOrder(ctx context.Context, params razorpay.CreateOrderParams) (*razorpay.Order, error)
	CheckoutRedirectURL(orderID, callbackURL string) string
}

type service struct {
	carts       cart.Repository
	products    catalog.Repository
	discounts   discountVerifier
	orders      orders.Repository
	tx          txRunner
	gateway     paymentGateway
	taxRateBps  int
	callbackURL string
	logg        *logger.Logger
}

// NewService builds the checkout service.
func NewService(
	carts cart.Repository,
	products catalog.Repository,
	verifier discountVerifier,
	orderRepo orders.Repository,
	tx txRunner,
	gateway paymentGateway,
	taxRateBps int,
	callbackURL string,
	logg *logger.Logger,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("discount verifier required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if taxRateBps < 0 {
		return nil, fmt.Errorf("tax rate cannot be negative")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:       carts,
		products:    products,
		discounts:   verifier,
		orders:      orderRepo,
		tx:          tx,
		gateway:     gateway,
		taxRateBps:  taxRateBps,
		callbackURL: callbackURL,
		logg:        logg,
	}, nil
}

// Checkout snapshots the cart into a pending order, creates the gateway
// order, and returns the hosted checkout redirect. The order row, line
// snapshot, and initial history entry share one transaction; the gateway call
// happens after commit so a gateway outage never leaves a half-written order.
// The cart is cleared only once the gateway order is recorded: a failed
// gateway leg marks the order Failed and the buyer keeps the cart to retry.
func (s *service) Checkout(ctx context.Context, input Input) (*Result, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ShippingAddress.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}

	userCart, err := s.carts.FindWithItems(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(userCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines, subtotal, err := s.snapshotLines(ctx, userCart.Items)
	if err != nil {
		return nil, err
	}

	var discountPaise int64
	var discountCode *string
	if code := strings.TrimSpace(input.DiscountCode); code != "" {
		// codes are checked against the tax-inclusive total
		grossPaise := subtotal + money.Tax(subtotal, s.taxRateBps)
		verification, err := s.discounts.Verify(ctx, code, grossPaise)
		if err != nil {
			return nil, err
		}
		discountPaise = verification.DiscountPaise
		discountCode = &verification.Code
	}

	totals, err := money.ComputeTotals(subtotal, s.taxRateBps, discountPaise)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "compute totals")
	}

	order := &models.Order{
		UserID:          input.UserID,
		Status:          enums.OrderStatusPending,
		SubtotalPaise:   totals.SubtotalPaise,
		TaxPaise:        totals.TaxPaise,
		DiscountPaise:   totals.DiscountPaise,
		TotalPaise:      totals.TotalPaise,
		DiscountCode:    discountCode,
		ShippingAddress: input.ShippingAddress,
		PaymentStatus:   enums.PaymentStatusCreated,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		created, err := orderRepo.Create(ctx, order)
		if err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = created.ID
		}
		if err := orderRepo.CreateLineItems(ctx, lines); err != nil {
			return err
		}
		note := "order placed"
		return orderRepo.AppendStatusEvent(ctx, &models.OrderStatusEvent{
			OrderID: created.ID,
			Status:  enums.OrderStatusPending,
			Note:    &note,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, razorpay.CreateOrderParams{
		AmountPaise: totals.TotalPaise,
		Receipt:     order.ID.String(),
	})
	if err != nil {
		s.markFailed(ctx, order.ID, "payment gateway order creation failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment order")
	}

	if err := s.orders.Update(ctx, order.ID, map[string]any{"razorpay_order_id": gatewayOrder.ID}); err != nil {
		s.markFailed(ctx, order.ID, "recording payment order reference failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment order")
	}

	// the order is committed to the gateway; a leftover cart only risks a
	// duplicate checkout, so a failed clear is logged, not surfaced
	if err := s.carts.Clear(ctx, userCart.ID); err != nil {
		s.logg.Error(ctx, fmt.Sprintf("clearing cart %s after checkout", userCart.ID), err)
	}

	placed, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	return &Result{
		Order:       orders.ToDTO(placed),
		RedirectURL: s.gateway.CheckoutRedirectURL(gatewayOrder.ID, s.callbackURL),
	}, nil
}

// snapshotLines prices the cart against the live catalog and freezes each
// line. Missing or deactivated products fail the checkout rather than being
// silently dropped.
func (s *service) snapshotLines(ctx context.Context, items []models.CartItem) ([]models.OrderLineItem, int64, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]models.OrderLineItem, 0, len(items))
	var subtotal int64
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, 0, pkgerrors.New(pkgerrors.CodeStateConflict,
				"a cart item is no longer available; remove it and try again")
		}
		if !product.InStock || product.Quantity < item.Quantity {
			return nil, 0, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("insufficient stock for %s", product.Name))
		}

		var imageURL *string
		if len(product.Images) > 0 {
			url := product.Images[0].URL
			imageURL = &url
		}
		productID := product.ID
		lineTotal := product.PricePaise * int64(item.Quantity)
		lines = append(lines, models.OrderLineItem{
			ProductID:      &productID,
			Name:           product.Name,
			Brand:          product.Brand,
			Category:       product.Category,
			ImageURL:       imageURL,
			UnitPricePaise: product.PricePaise,
			Quantity:       item.Quantity,
			LineTotalPaise: lineTotal,
		})
		subtotal += lineTotal
	}
	return lines, subtotal, nil
}

// markFailed closes out an order whose gateway leg failed, best effort.
func (s *service) markFailed(ctx context.Context, orderID uuid.UUID, reason string) {
	updates := map[string]any{
		"status":         enums.OrderStatusFailed,
		"payment_status": enums.PaymentStatusFailed,
	}
	if err := s.orders.Update(ctx, orderID, updates); err != nil {
		s.logg.Error(ctx, fmt.Sprintf("marking order %s failed", orderID), err)
		return
	}
	note := reason
	if err := s.orders.AppendStatusEvent(ctx, &models.OrderStatusEvent{
		OrderID: orderID,
		Status:  enums.OrderStatusFailed,
		Note:    &note,
	}); err != nil {
		s.logg.Error(ctx, fmt.Sprintf("recording failure event for order %s", orderID), err)
	}
}
