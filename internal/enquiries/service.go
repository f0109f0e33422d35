package enquiries

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
)

const maxMessageLength = 5000

// CreateInput is the public contact form.
type CreateInput struct {
	Name    string
	Email   string
	Phone   *string
	Subject string
	Message string
}

// EnquiryPage is one cursor page of the admin listing.
type EnquiryPage struct {
	Items      []models.Enquiry `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// Service takes storefront enquiries and lets admins work through them.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Enquiry, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*EnquiryPage, error)
	Resolve(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the enquiry service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("enquiry repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Enquiry, error) {
	name := strings.TrimSpace(input.Name)
	subject := strings.TrimSpace(input.Subject)
	message := strings.TrimSpace(input.Message)
	email := strings.TrimSpace(input.Email)

	if name == "" || subject == "" || message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, subject, and message are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(message) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("message must be at most %d characters", maxMessageLength))
	}

	enquiry := &models.Enquiry{
		Name:    name,
		Email:   email,
		Phone:   input.Phone,
		Subject: subject,
		Message: message,
	}
	created, err := s.repo.Create(ctx, enquiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create enquiry")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*EnquiryPage, error) {
	rows, nextCursor, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list enquiries")
	}
	return &EnquiryPage{Items: rows, NextCursor: nextCursor}, nil
}

func (s *service) Resolve(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "enquiry id required")
	}
	affected, err := s.repo.MarkResolved(ctx, id, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve enquiry")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "enquiry not found or already resolved")
	}
	return nil
}
