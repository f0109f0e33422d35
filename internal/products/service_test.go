package products

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/pkg/cloudinary"
	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
	"github.com/rebootmart/rebootmart-backend/pkg/types"
)

type stubRepo struct {
	products map[uuid.UUID]*models.Product
	images   map[uuid.UUID][]models.ProductImage
}

func newStubRepo(products ...*models.Product) *stubRepo {
	repo := &stubRepo{
		products: map[uuid.UUID]*models.Product{},
		images:   map[uuid.UUID][]models.ProductImage{},
	}
	for _, p := range products {
		repo.products[p.ID] = p
		repo.images[p.ID] = p.Images
	}
	return repo
}

func (s *stubRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubRepo) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	product.ID = uuid.New()
	s.products[product.ID] = product
	return product, nil
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	copied.Images = s.images[id]
	return &copied, nil
}

func (s *stubRepo) List(_ context.Context, _ pagination.Params) ([]models.Product, string, error) {
	var out []models.Product
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, "", nil
}

func (s *stubRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	p, ok := s.products[id]
	if !ok {
		return 0, nil
	}
	if v, ok := updates["name"].(string); ok {
		p.Name = v
	}
	if v, ok := updates["price_paise"].(int64); ok {
		p.PricePaise = v
	}
	if v, ok := updates["quantity"].(int); ok {
		p.Quantity = v
	}
	if v, ok := updates["in_stock"].(bool); ok {
		p.InStock = v
	}
	if v, ok := updates["is_active"].(bool); ok {
		p.IsActive = v
	}
	if v, ok := updates["specs"].(types.Specs); ok {
		p.Specs = v
	}
	return 1, nil
}

func (s *stubRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := s.products[id]; !ok {
		return 0, nil
	}
	delete(s.products, id)
	delete(s.images, id)
	return 1, nil
}

func (s *stubRepo) AddImage(_ context.Context, image *models.ProductImage) error {
	image.ID = uuid.New()
	s.images[image.ProductID] = append(s.images[image.ProductID], *image)
	return nil
}

func (s *stubRepo) FindImage(_ context.Context, productID, imageID uuid.UUID) (*models.ProductImage, error) {
	for _, image := range s.images[productID] {
		if image.ID == imageID {
			return &image, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) DeleteImage(_ context.Context, productID, imageID uuid.UUID) (int64, error) {
	kept := s.images[productID][:0]
	var removed int64
	for _, image := range s.images[productID] {
		if image.ID == imageID {
			removed++
			continue
		}
		kept = append(kept, image)
	}
	s.images[productID] = kept
	return removed, nil
}

type stubMedia struct {
	uploadErr error
	deleteErr error
	deleted   []string
}

func (s *stubMedia) UploadProductImage(_ context.Context, filename string, _ []byte) (*cloudinary.Asset, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return &cloudinary.Asset{
		PublicID:  "rebootmart/products/" + filename,
		SecureURL: "https://cdn.example.com/" + filename,
	}, nil
}

func (s *stubMedia) Delete(_ context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return s.deleteErr
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "products-test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func laptopProduct() *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		Name:     "XPS 13 9310",
		Brand:    "Dell",
		Category: enums.ProductCategoryLaptop,
		Specs: types.Specs{Laptop: &types.LaptopSpec{
			Processor: "i7-1185G7",
			RAM:       "16GB",
			Storage:   "512GB SSD",
		}},
		MRPPaise:   8_000_000,
		PricePaise: 6_400_000,
		Quantity:   2,
		InStock:    true,
		IsActive:   true,
		Images: []models.ProductImage{
			{ID: uuid.New(), URL: "https://cdn.example.com/a.jpg", PublicID: "rebootmart/products/a", Position: 0},
			{ID: uuid.New(), URL: "https://cdn.example.com/b.jpg", PublicID: "rebootmart/products/b", Position: 1},
		},
	}
}

func newService(t *testing.T, repo Repository, m *stubMedia) Service {
	t.Helper()
	svc, err := NewService(repo, m, testLogger())
	require.NoError(t, err)
	return svc
}

func TestCreateValidatesSpecsAgainstCategory(t *testing.T) {
	svc := newService(t, newStubRepo(), &stubMedia{})

	_, err := svc.Create(context.Background(), CreateInput{
		Name:       "U2723QE",
		Brand:      "Dell",
		Category:   enums.ProductCategoryMonitor,
		Specs:      types.Specs{Laptop: &types.LaptopSpec{Processor: "i5"}},
		MRPPaise:   4_000_000,
		PricePaise: 3_000_000,
	})
	coded := pkgerrors.As(err)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
	require.Contains(t, coded.Message(), "specs do not match category")
}

func TestCreateSetsStockFromQuantity(t *testing.T) {
	svc := newService(t, newStubRepo(), &stubMedia{})

	created, err := svc.Create(context.Background(), CreateInput{
		Name:       "ThinkVision P27h",
		Brand:      "Lenovo",
		Category:   enums.ProductCategoryMonitor,
		Specs:      types.Specs{Monitor: &types.MonitorSpec{ScreenSize: "27\"", Resolution: "2560x1440"}},
		MRPPaise:   3_500_000,
		PricePaise: 2_400_000,
		Quantity:   0,
	})
	require.NoError(t, err)
	require.False(t, created.InStock)
}

func TestGetComputesDiscountPercent(t *testing.T) {
	// MRP Rs 80,000 at Rs 64,000 lists at 20% off, on the console as well
	// as the storefront.
	product := laptopProduct()
	repo := newStubRepo(product)
	svc := newService(t, repo, &stubMedia{})

	got, err := svc.Get(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, 20, got.DiscountPercent)

	page, err := svc.List(context.Background(), pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, 20, page.Items[0].DiscountPercent)
}

func TestUpdateMergesSpecs(t *testing.T) {
	product := laptopProduct()
	repo := newStubRepo(product)
	svc := newService(t, repo, &stubMedia{})

	ram := "32GB"
	updated, err := svc.Update(context.Background(), product.ID, UpdateInput{
		Specs: &types.SpecsPatch{Laptop: &types.LaptopSpecPatch{RAM: &ram}},
	})
	require.NoError(t, err)
	require.Equal(t, "32GB", updated.Specs.Laptop.RAM)
	require.Equal(t, "i7-1185G7", updated.Specs.Laptop.Processor, "untouched fields kept")
	require.Equal(t, "512GB SSD", updated.Specs.Laptop.Storage)
}

func TestUpdateRejectsCrossCategorySpecs(t *testing.T) {
	product := laptopProduct()
	repo := newStubRepo(product)
	svc := newService(t, repo, &stubMedia{})

	size := "27\""
	_, err := svc.Update(context.Background(), product.ID, UpdateInput{
		Specs: &types.SpecsPatch{Monitor: &types.MonitorSpecPatch{ScreenSize: &size}},
	})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateRequiresFields(t *testing.T) {
	product := laptopProduct()
	svc := newService(t, newStubRepo(product), &stubMedia{})

	_, err := svc.Update(context.Background(), product.ID, UpdateInput{})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDeleteAttemptsEveryImage(t *testing.T) {
	product := laptopProduct()
	repo := newStubRepo(product)
	m := &stubMedia{deleteErr: fmt.Errorf("cdn outage")}
	svc := newService(t, repo, m)

	err := svc.Delete(context.Background(), product.ID)
	require.NoError(t, err, "media failures never fail the delete")
	require.Empty(t, repo.products)
	require.Len(t, m.deleted, 2, "every image attempted despite failures")
}

func TestSetStock(t *testing.T) {
	product := laptopProduct()
	repo := newStubRepo(product)
	svc := newService(t, repo, &stubMedia{})

	qty := 0
	inStock := false
	updated, err := svc.SetStock(context.Background(), product.ID, StockInput{Quantity: &qty, InStock: &inStock})
	require.NoError(t, err)
	require.Equal(t, 0, updated.Quantity)
	require.False(t, updated.InStock)

	negative := -1
	_, err = svc.SetStock(context.Background(), product.ID, StockInput{Quantity: &negative})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestAddImageAppendsAfterExisting(t *testing.T) {
	product := laptopProduct()
	repo := newStubRepo(product)
	svc := newService(t, repo, &stubMedia{})

	updated, err := svc.AddImage(context.Background(), product.ID, "c.jpg", []byte{0x01})
	require.NoError(t, err)
	require.Len(t, updated.Images, 3)
	require.Equal(t, 2, updated.Images[2].Position)
}

func TestDeleteImageRemovesRow(t *testing.T) {
	product := laptopProduct()
	repo := newStubRepo(product)
	m := &stubMedia{}
	svc := newService(t, repo, m)

	err := svc.DeleteImage(context.Background(), product.ID, product.Images[0].ID)
	require.NoError(t, err)
	require.Len(t, repo.images[product.ID], 1)
	require.Equal(t, []string{"rebootmart/products/a"}, m.deleted)
}

func TestDeleteImageUnknownID(t *testing.T) {
	product := laptopProduct()
	svc := newService(t, newStubRepo(product), &stubMedia{})

	err := svc.DeleteImage(context.Background(), product.ID, uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
