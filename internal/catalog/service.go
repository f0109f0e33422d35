package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
)

const (
	compareMin = 2
	compareMax = 4
)

// Service exposes the public catalog operations.
type Service interface {
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*ProductPage, error)
	Detail(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
	Compare(ctx context.Context, ids []uuid.UUID) ([]ProductDetail, error)
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*ProductPage, error) {
	if filters.Category != nil && !filters.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown category %q", *filters.Category))
	}

	rows, nextCursor, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	items := make([]ProductSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, toSummary(row))
	}
	return &ProductPage{Items: items, NextCursor: nextCursor}, nil
}

func (s *service) Detail(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
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

	detail := toDetail(*product)
	return &detail, nil
}

func (s *service) Compare(ctx context.Context, ids []uuid.UUID) ([]ProductDetail, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		if id == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	if len(unique) < compareMin || len(unique) > compareMax {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("compare requires between %d and %d distinct products", compareMin, compareMax))
	}

	rows, err := s.repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	if len(rows) != len(unique) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "one or more products not found")
	}

	byID := make(map[uuid.UUID]ProductDetail, len(rows))
	for _, row := range rows {
		byID[row.ID] = toDetail(row)
	}

	// preserve the caller's ordering
	details := make([]ProductDetail, 0, len(unique))
	for _, id := range unique {
		details = append(details, byID[id])
	}
	return details, nil
}
