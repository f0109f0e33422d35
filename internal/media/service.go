package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rebootmart/rebootmart-backend/pkg/cloudinary"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
)

// Store is the slice of the Cloudinary client the media service needs.
type Store interface {
	Upload(ctx context.Context, filename string, data []byte) (*cloudinary.Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

// Service applies the upload policy in front of the image store: client
// mistakes (bad type, oversized file) come back as validation errors, store
// outages as dependency errors.
type Service interface {
	UploadProductImage(ctx context.Context, filename string, data []byte) (*cloudinary.Asset, error)
	Delete(ctx context.Context, publicID string) error
}

type service struct {
	store Store
}

// NewService builds the media service.
func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("image store required")
	}
	return &service{store: store}, nil
}

func (s *service) UploadProductImage(ctx context.Context, filename string, data []byte) (*cloudinary.Asset, error) {
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image file is empty")
	}

	asset, err := s.store.Upload(ctx, filename, data)
	if err != nil {
		if errors.Is(err, cloudinary.ErrUnsupportedImageType) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "only jpeg, png, and webp images are accepted")
		}
		if errors.Is(err, cloudinary.ErrImageTooLarge) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image exceeds the size limit")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}
	return asset, nil
}

func (s *service) Delete(ctx context.Context, publicID string) error {
	if strings.TrimSpace(publicID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "image reference required")
	}
	if err := s.store.Destroy(ctx, publicID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image")
	}
	return nil
}
