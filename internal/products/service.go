package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/internal/media"
	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
	"github.com/rebootmart/rebootmart-backend/pkg/types"
)

// CreateInput carries the admin create form. Specs must populate the variant
// matching Category.
type CreateInput struct {
	Name        string
	Brand       string
	Category    enums.ProductCategory
	Description string
	Condition   string
	Specs       types.Specs
	MRPPaise    int64
	PricePaise  int64
	Quantity    int
}

// UpdateInput carries optional admin edits; nil fields are left unchanged.
// Specs is a partial merge, not a replacement.
type UpdateInput struct {
	Name        *string
	Brand       *string
	Description *string
	Condition   *string
	Specs       *types.SpecsPatch
	MRPPaise    *int64
	PricePaise  *int64
	IsActive    *bool
}

// StockInput toggles availability; nil fields are left unchanged.
type StockInput struct {
	Quantity *int
	InStock  *bool
}

// ProductPage is one cursor page of the admin listing.
type ProductPage struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// Service is the admin inventory console.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, params pagination.Params) (*ProductPage, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, input StockInput) (*ProductDTO, error)
	AddImage(ctx context.Context, id uuid.UUID, filename string, data []byte) (*ProductDTO, error)
	DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error
}

type service struct {
	repo  Repository
	media media.Service
	logg  *logger.Logger
}

// NewService builds the admin product service.
func NewService(repo Repository, mediaSvc media.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if mediaSvc == nil {
		return nil, fmt.Errorf("media service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, media: mediaSvc, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	brand := strings.TrimSpace(input.Brand)
	if name == "" || brand == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and brand are required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown category %q", input.Category))
	}
	if !input.Specs.MatchesCategory(input.Category) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("specs do not match category %s", input.Category))
	}
	if input.PricePaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.MRPPaise < input.PricePaise {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mrp cannot be below the selling price")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	product := &models.Product{
		Name:        name,
		Brand:       brand,
		Category:    input.Category,
		Description: strings.TrimSpace(input.Description),
		Condition:   strings.TrimSpace(input.Condition),
		Specs:       input.Specs,
		MRPPaise:    input.MRPPaise,
		PricePaise:  input.PricePaise,
		Quantity:    input.Quantity,
		InStock:     input.Quantity > 0,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return ToDTO(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	return s.loadDTO(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ProductPage, error) {
	rows, nextCursor, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	items := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *ToDTO(&rows[i]))
	}
	return &ProductPage{Items: items, NextCursor: nextCursor}, nil
}

// Update applies a partial edit. A spec patch merges into the stored variant:
// fields the patch leaves nil keep their existing values.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Brand != nil {
		if strings.TrimSpace(*input.Brand) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand cannot be empty")
		}
		updates["brand"] = strings.TrimSpace(*input.Brand)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Condition != nil {
		updates["condition"] = strings.TrimSpace(*input.Condition)
	}
	if input.PricePaise != nil {
		if *input.PricePaise <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price_paise"] = *input.PricePaise
	}
	if input.MRPPaise != nil {
		updates["mrp_paise"] = *input.MRPPaise
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Specs != nil {
		merged := product.Specs
		merged.Merge(*input.Specs)
		if !merged.MatchesCategory(product.Category) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("specs do not match category %s", product.Category))
		}
		updates["specs"] = merged
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if _, err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.loadDTO(ctx, id)
}

// Delete removes the listing and then attempts every associated image
// deletion. Media failures are aggregated and logged but never fail the
// delete; the row is already gone.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	var cleanupErr error
	for _, image := range product.Images {
		if err := s.media.Delete(ctx, image.PublicID); err != nil {
			cleanupErr = multierr.Append(cleanupErr, fmt.Errorf("image %s: %w", image.PublicID, err))
		}
	}
	if cleanupErr != nil {
		s.logg.Error(ctx, fmt.Sprintf("cleaning up images for deleted product %s", id), cleanupErr)
	}
	return nil
}

func (s *service) SetStock(ctx context.Context, id uuid.UUID, input StockInput) (*ProductDTO, error) {
	updates := map[string]any{}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		updates["quantity"] = *input.Quantity
	}
	if input.InStock != nil {
		updates["in_stock"] = *input.InStock
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.loadDTO(ctx, id)
}

// AddImage uploads to the image store and appends the asset after the
// existing images.
func (s *service) AddImage(ctx context.Context, id uuid.UUID, filename string, data []byte) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	asset, err := s.media.UploadProductImage(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	image := &models.ProductImage{
		ProductID: product.ID,
		URL:       asset.SecureURL,
		PublicID:  asset.PublicID,
		Position:  len(product.Images),
	}
	if err := s.repo.AddImage(ctx, image); err != nil {
		// orphaned upload, reclaim best effort
		if cleanupErr := s.media.Delete(ctx, asset.PublicID); cleanupErr != nil {
			s.logg.Error(ctx, fmt.Sprintf("reclaiming orphaned upload %s", asset.PublicID), cleanupErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach image")
	}
	return s.loadDTO(ctx, id)
}

func (s *service) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error {
	if productID == uuid.Nil || imageID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product and image ids required")
	}

	image, err := s.repo.FindImage(ctx, productID, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image")
	}

	if err := s.media.Delete(ctx, image.PublicID); err != nil {
		return err
	}

	if _, err := s.repo.DeleteImage(ctx, productID, imageID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image")
	}
	return nil
}

func (s *service) loadDTO(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDTO(product), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
