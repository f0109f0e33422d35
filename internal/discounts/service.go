package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/rebootmart/rebootmart-backend/pkg/db"
	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/money"
)

// Verification is the result of applying a code to the tax-inclusive order
// total. Verification is stateless: nothing is reserved, so concurrent
// checkouts can both redeem the same code.
type Verification struct {
	Code          string `json:"code"`
	DiscountPaise int64  `json:"discount_paise"`
	Message       string `json:"message"`
}

// CreateInput carries admin-supplied fields for a new code.
type CreateInput struct {
	Code             string
	Type             enums.DiscountType
	ValuePaise       int64
	ValuePercent     int
	MaxDiscountPaise *int64
	MinOrderPaise    int64
	ExpiresAt        *time.Time
}

// UpdateInput carries optional admin edits; nil fields are left unchanged.
type UpdateInput struct {
	MinOrderPaise    *int64
	MaxDiscountPaise *int64
	ExpiresAt        *time.Time
	IsActive         *bool
}

// Service verifies codes at checkout and manages them for admins.
type Service interface {
	Verify(ctx context.Context, code string, orderTotalPaise int64) (*Verification, error)
	Create(ctx context.Context, input CreateInput) (*models.DiscountCode, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.DiscountCode, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the discount service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Verify checks a code against the tax-inclusive order total. Minimum-order
// thresholds and percent discounts are both evaluated on that amount.
func (s *service) Verify(ctx context.Context, code string, orderTotalPaise int64) (*Verification, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code required")
	}
	if orderTotalPaise < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total cannot be negative")
	}

	dc, err := s.repo.FindByCode(ctx, trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount code")
	}
	if !dc.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid code")
	}
	if dc.ExpiresAt != nil && !dc.ExpiresAt.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code expired")
	}
	if orderTotalPaise < dc.MinOrderPaise {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("order minimum of %d paise not met", dc.MinOrderPaise))
	}

	amount := discountAmount(dc, orderTotalPaise)
	return &Verification{
		Code:          dc.Code,
		DiscountPaise: amount,
		Message:       fmt.Sprintf("code %s applied", dc.Code),
	}, nil
}

func discountAmount(dc *models.DiscountCode, totalPaise int64) int64 {
	var amount int64
	switch dc.Type {
	case enums.DiscountTypeFlat:
		amount = dc.ValuePaise
	case enums.DiscountTypePercent:
		amount = money.PercentOf(totalPaise, decimal.NewFromInt(int64(dc.ValuePercent)))
		if dc.MaxDiscountPaise != nil && amount > *dc.MaxDiscountPaise {
			amount = *dc.MaxDiscountPaise
		}
	}
	if amount > totalPaise {
		amount = totalPaise
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.DiscountCode, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown discount type %q", input.Type))
	}
	switch input.Type {
	case enums.DiscountTypeFlat:
		if input.ValuePaise <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "flat codes need a positive value")
		}
	case enums.DiscountTypePercent:
		if input.ValuePercent < 1 || input.ValuePercent > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 1 and 100")
		}
	}
	if input.MinOrderPaise < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order cannot be negative")
	}

	dc := &models.DiscountCode{
		Code:             code,
		Type:             input.Type,
		ValuePaise:       input.ValuePaise,
		ValuePercent:     input.ValuePercent,
		MaxDiscountPaise: input.MaxDiscountPaise,
		MinOrderPaise:    input.MinOrderPaise,
		ExpiresAt:        input.ExpiresAt,
		IsActive:         true,
	}
	created, err := s.repo.Create(ctx, dc)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create discount code")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount id required")
	}

	updates := map[string]any{}
	if input.MinOrderPaise != nil {
		if *input.MinOrderPaise < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "minimum order cannot be negative")
		}
		updates["min_order_paise"] = *input.MinOrderPaise
	}
	if input.MaxDiscountPaise != nil {
		updates["max_discount_paise"] = *input.MaxDiscountPaise
	}
	if input.ExpiresAt != nil {
		updates["expires_at"] = *input.ExpiresAt
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update discount code")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "discount code not found")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount id required")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete discount code")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "discount code not found")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.DiscountCode, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discount codes")
	}
	return rows, nil
}
