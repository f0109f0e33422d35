package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/internal/catalog"
	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/money"
)

// Service exposes the per-user cart operations. Every method requires an
// authenticated user; controllers enforce that before calling in.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	Add(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
}

type service struct {
	repo       Repository
	products   catalog.Repository
	taxRateBps int
}

// NewService builds the cart service.
func NewService(repo Repository, products catalog.Repository, taxRateBps int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if taxRateBps < 0 {
		return nil, fmt.Errorf("tax rate cannot be negative")
	}
	return &service{repo: repo, products: products, taxRateBps: taxRateBps}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.buildDTO(ctx, cart.UserID)
}

func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.InStock || product.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is out of stock")
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.AddItem(ctx, cart.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return s.buildDTO(ctx, userID)
}

// UpdateQuantity sets an absolute quantity. Values below 1 are rejected and
// the stored quantity is left untouched.
func (s *service) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	affected, err := s.repo.SetItemQuantity(ctx, cart.ID, productID, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}
	return s.buildDTO(ctx, userID)
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	affected, err := s.repo.RemoveItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}
	return s.buildDTO(ctx, userID)
}

// buildDTO reprices the cart from live catalog rows. Totals are never stored;
// they are quoted fresh on every read.
func (s *service) buildDTO(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindWithItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}

	dto := &CartDTO{ID: cart.ID, Items: []CartItemDTO{}}
	if len(cart.Items) == 0 {
		return dto, nil
	}

	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	productRows, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	byID := make(map[uuid.UUID]models.Product, len(productRows))
	for _, row := range productRows {
		byID[row.ID] = row
	}

	var subtotal int64
	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			// product was deactivated after it was added
			continue
		}
		lineTotal := product.PricePaise * int64(item.Quantity)
		subtotal += lineTotal

		lineDTO := CartItemDTO{
			ProductID:      product.ID,
			Name:           product.Name,
			Brand:          product.Brand,
			Category:       product.Category,
			UnitPricePaise: product.PricePaise,
			Quantity:       item.Quantity,
			LineTotalPaise: lineTotal,
			InStock:        product.InStock && product.Quantity > 0,
		}
		if len(product.Images) > 0 {
			url := product.Images[0].URL
			lineDTO.ThumbnailURL = &url
		}
		dto.Items = append(dto.Items, lineDTO)
	}

	totals, err := money.ComputeTotals(subtotal, s.taxRateBps, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute cart totals")
	}
	dto.Quote = totals
	return dto, nil
}
