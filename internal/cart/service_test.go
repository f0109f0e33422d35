package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/internal/catalog"
	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
)

type fakeCartRepo struct {
	cart  models.Cart
	items map[uuid.UUID]int
}

func newFakeCartRepo(userID uuid.UUID) *fakeCartRepo {
	return &fakeCartRepo{
		cart:  models.Cart{ID: uuid.New(), UserID: userID},
		items: map[uuid.UUID]int{},
	}
}

func (f *fakeCartRepo) WithTx(_ *gorm.DB) Repository { return f }

func (f *fakeCartRepo) GetOrCreate(_ context.Context, _ uuid.UUID) (*models.Cart, error) {
	c := f.cart
	return &c, nil
}

func (f *fakeCartRepo) FindWithItems(_ context.Context, _ uuid.UUID) (*models.Cart, error) {
	c := f.cart
	c.Items = nil
	for productID, qty := range f.items {
		c.Items = append(c.Items, models.CartItem{CartID: c.ID, ProductID: productID, Quantity: qty})
	}
	return &c, nil
}

func (f *fakeCartRepo) AddItem(_ context.Context, _, productID uuid.UUID) error {
	f.items[productID]++
	return nil
}

func (f *fakeCartRepo) SetItemQuantity(_ context.Context, _, productID uuid.UUID, quantity int) (int64, error) {
	if _, ok := f.items[productID]; !ok {
		return 0, nil
	}
	f.items[productID] = quantity
	return 1, nil
}

func (f *fakeCartRepo) RemoveItem(_ context.Context, _, productID uuid.UUID) (int64, error) {
	if _, ok := f.items[productID]; !ok {
		return 0, nil
	}
	delete(f.items, productID)
	return 1, nil
}

func (f *fakeCartRepo) Clear(_ context.Context, _ uuid.UUID) error {
	f.items = map[uuid.UUID]int{}
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

func testProduct(pricePaise int64) models.Product {
	return models.Product{
		ID:         uuid.New(),
		Name:       "Dell U2723QE",
		Brand:      "Dell",
		Category:   enums.ProductCategoryMonitor,
		MRPPaise:   pricePaise * 2,
		PricePaise: pricePaise,
		Quantity:   5,
		InStock:    true,
	}
}

func newTestService(t *testing.T, products ...models.Product) (Service, *fakeCartRepo, *fakeCatalogRepo) {
	t.Helper()
	userID := uuid.New()
	cartRepo := newFakeCartRepo(userID)
	catalogRepo := &fakeCatalogRepo{products: map[uuid.UUID]models.Product{}}
	for _, p := range products {
		catalogRepo.products[p.ID] = p
	}
	svc, err := NewService(cartRepo, catalogRepo, 1800)
	require.NoError(t, err)
	return svc, cartRepo, catalogRepo
}

func TestAddInsertsThenIncrements(t *testing.T) {
	product := testProduct(1_000_00)
	svc, repo, _ := newTestService(t, product)
	userID := repo.cart.UserID
	ctx := context.Background()

	dto, err := svc.Add(ctx, userID, product.ID)
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	require.Equal(t, 1, dto.Items[0].Quantity)

	dto, err = svc.Add(ctx, userID, product.ID)
	require.NoError(t, err)
	require.Equal(t, 2, dto.Items[0].Quantity)
}

func TestAddRejectsOutOfStock(t *testing.T) {
	product := testProduct(1_000_00)
	product.Quantity = 0
	svc, repo, _ := newTestService(t, product)

	_, err := svc.Add(context.Background(), repo.cart.UserID, product.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestUpdateQuantityBelowOneLeavesCartUnchanged(t *testing.T) {
	product := testProduct(1_000_00)
	svc, repo, _ := newTestService(t, product)
	userID := repo.cart.UserID
	ctx := context.Background()

	_, err := svc.Add(ctx, userID, product.ID)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, userID, product.ID, 0)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
	require.Equal(t, 1, repo.items[product.ID], "stored quantity untouched")
}

func TestUpdateQuantityMissingLine(t *testing.T) {
	product := testProduct(1_000_00)
	svc, repo, _ := newTestService(t, product)

	_, err := svc.UpdateQuantity(context.Background(), repo.cart.UserID, product.ID, 2)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestQuoteUses18PercentTax(t *testing.T) {
	// Rs 50,000 at 18% GST quotes Rs 59,000.
	product := testProduct(5_000_000)
	svc, repo, _ := newTestService(t, product)
	userID := repo.cart.UserID
	ctx := context.Background()

	dto, err := svc.Add(ctx, userID, product.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5_000_000), dto.Quote.SubtotalPaise)
	require.Equal(t, int64(900_000), dto.Quote.TaxPaise)
	require.Equal(t, int64(5_900_000), dto.Quote.TotalPaise)
}

func TestRemove(t *testing.T) {
	product := testProduct(1_000_00)
	svc, repo, _ := newTestService(t, product)
	userID := repo.cart.UserID
	ctx := context.Background()

	_, err := svc.Add(ctx, userID, product.ID)
	require.NoError(t, err)

	dto, err := svc.Remove(ctx, userID, product.ID)
	require.NoError(t, err)
	require.Empty(t, dto.Items)

	_, err = svc.Remove(ctx, userID, product.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRequiresAuthenticatedUser(t *testing.T) {
	product := testProduct(1_000_00)
	svc, _, _ := newTestService(t, product)

	_, err := svc.Add(context.Background(), uuid.Nil, product.ID)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}
