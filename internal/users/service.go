package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
)

const maxBulkTagUsers = 500

// TagInput is one bulk tag operation: a tag set applied across a user id set.
type TagInput struct {
	UserIDs []uuid.UUID
	Tags    []string
}

// UserPage is one cursor page of the admin user listing.
type UserPage struct {
	Items      []UserDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// UserDTO is the admin-facing user shape; the password hash never leaves
// the service.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     *string   `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Tags      []string  `json:"tags"`
	IsActive  bool      `json:"is_active"`
}

// Service is the admin user tooling: listing and bulk tagging for push
// segmentation.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*UserPage, error)
	BulkAddTags(ctx context.Context, input TagInput) (int64, error)
	BulkRemoveTags(ctx context.Context, input TagInput) (int64, error)
}

type service struct {
	repo Repository
}

// NewService builds the user service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return toDTO(user), nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*UserPage, error) {
	rows, nextCursor, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	items := make([]UserDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *toDTO(&rows[i]))
	}
	return &UserPage{Items: items, NextCursor: nextCursor}, nil
}

func (s *service) BulkAddTags(ctx context.Context, input TagInput) (int64, error) {
	ids, tags, err := normalizeTagInput(input)
	if err != nil {
		return 0, err
	}
	affected, err := s.repo.AddTags(ctx, ids, tags)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add tags")
	}
	return affected, nil
}

func (s *service) BulkRemoveTags(ctx context.Context, input TagInput) (int64, error) {
	ids, tags, err := normalizeTagInput(input)
	if err != nil {
		return 0, err
	}
	affected, err := s.repo.RemoveTags(ctx, ids, tags)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove tags")
	}
	return affected, nil
}

// normalizeTagInput dedupes ids and tags, trimming blank tags. Tags are
// free text; no taxonomy is enforced.
func normalizeTagInput(input TagInput) ([]uuid.UUID, []string, error) {
	if len(input.UserIDs) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one user id required")
	}
	if len(input.UserIDs) > maxBulkTagUsers {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("at most %d users per operation", maxBulkTagUsers))
	}

	seenIDs := make(map[uuid.UUID]struct{}, len(input.UserIDs))
	ids := make([]uuid.UUID, 0, len(input.UserIDs))
	for _, id := range input.UserIDs {
		if id == uuid.Nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "user id cannot be empty")
		}
		if _, ok := seenIDs[id]; ok {
			continue
		}
		seenIDs[id] = struct{}{}
		ids = append(ids, id)
	}

	seenTags := make(map[string]struct{}, len(input.Tags))
	tags := make([]string, 0, len(input.Tags))
	for _, tag := range input.Tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seenTags[trimmed]; ok {
			continue
		}
		seenTags[trimmed] = struct{}{}
		tags = append(tags, trimmed)
	}
	if len(tags) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one tag required")
	}
	return ids, tags, nil
}

func toDTO(u *models.User) *UserDTO {
	return &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Tags:      append([]string{}, u.Tags...),
		IsActive:  u.IsActive,
	}
}
