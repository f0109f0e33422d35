package discounts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
)

type stubRepo struct {
	codes map[string]models.DiscountCode
}

func newStubRepo(codes ...models.DiscountCode) *stubRepo {
	repo := &stubRepo{codes: map[string]models.DiscountCode{}}
	for _, dc := range codes {
		repo.codes[strings.ToUpper(dc.Code)] = dc
	}
	return repo
}

func (s *stubRepo) FindByCode(_ context.Context, code string) (*models.DiscountCode, error) {
	dc, ok := s.codes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &dc, nil
}

func (s *stubRepo) Create(_ context.Context, dc *models.DiscountCode) (*models.DiscountCode, error) {
	dc.ID = uuid.New()
	s.codes[strings.ToUpper(dc.Code)] = *dc
	return dc, nil
}

func (s *stubRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	for key, dc := range s.codes {
		if dc.ID == id {
			if v, ok := updates["is_active"].(bool); ok {
				dc.IsActive = v
			}
			if v, ok := updates["min_order_paise"].(int64); ok {
				dc.MinOrderPaise = v
			}
			s.codes[key] = dc
			return 1, nil
		}
	}
	return 0, nil
}

func (s *stubRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	for key, dc := range s.codes {
		if dc.ID == id {
			delete(s.codes, key)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *stubRepo) List(_ context.Context) ([]models.DiscountCode, error) {
	var out []models.DiscountCode
	for _, dc := range s.codes {
		out = append(out, dc)
	}
	return out, nil
}

func flatCode(code string, valuePaise, minOrderPaise int64) models.DiscountCode {
	return models.DiscountCode{
		ID:            uuid.New(),
		Code:          code,
		Type:          enums.DiscountTypeFlat,
		ValuePaise:    valuePaise,
		MinOrderPaise: minOrderPaise,
		IsActive:      true,
	}
}

func newTestService(t *testing.T, codes ...models.DiscountCode) Service {
	t.Helper()
	svc, err := NewService(newStubRepo(codes...))
	require.NoError(t, err)
	return svc
}

func TestVerifyFlatCode(t *testing.T) {
	// SAVE5000 takes Rs 5,000 off orders of Rs 25,000 or more.
	svc := newTestService(t, flatCode("SAVE5000", 500_000, 2_500_000))

	v, err := svc.Verify(context.Background(), "save5000", 5_000_000)
	require.NoError(t, err)
	require.Equal(t, int64(500_000), v.DiscountPaise)
}

func TestVerifyInvalidCode(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Verify(context.Background(), "NOPE", 100)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
	require.Contains(t, coded.Message(), "invalid code")
}

func TestVerifyExpiredCode(t *testing.T) {
	dc := flatCode("OLD", 100, 0)
	past := time.Now().Add(-time.Hour)
	dc.ExpiresAt = &past
	svc := newTestService(t, dc)

	_, err := svc.Verify(context.Background(), "OLD", 1_000)
	require.Contains(t, pkgerrors.As(err).Message(), "expired")
}

func TestVerifyMinimumNotMet(t *testing.T) {
	svc := newTestService(t, flatCode("SAVE5000", 500_000, 2_500_000))

	_, err := svc.Verify(context.Background(), "SAVE5000", 2_000_000)
	require.Contains(t, pkgerrors.As(err).Message(), "minimum")
}

func TestVerifyMinimumUsesTaxInclusiveTotal(t *testing.T) {
	// Rs 55,000 minimum: a Rs 50,000 subtotal order clears it once 18% GST
	// is included (Rs 59,000 total). Callers pass the tax-inclusive amount.
	svc := newTestService(t, flatCode("FESTIVE", 500_000, 5_500_000))

	v, err := svc.Verify(context.Background(), "FESTIVE", 5_900_000)
	require.NoError(t, err)
	require.Equal(t, int64(500_000), v.DiscountPaise)

	_, err = svc.Verify(context.Background(), "FESTIVE", 5_000_000)
	require.Contains(t, pkgerrors.As(err).Message(), "minimum")
}

func TestVerifyInactiveCodeLooksInvalid(t *testing.T) {
	dc := flatCode("PAUSED", 100, 0)
	dc.IsActive = false
	svc := newTestService(t, dc)

	_, err := svc.Verify(context.Background(), "PAUSED", 1_000)
	require.Contains(t, pkgerrors.As(err).Message(), "invalid code")
}

func TestVerifyPercentCodeWithCap(t *testing.T) {
	capPaise := int64(100_000)
	dc := models.DiscountCode{
		ID:               uuid.New(),
		Code:             "TEN",
		Type:             enums.DiscountTypePercent,
		ValuePercent:     10,
		MaxDiscountPaise: &capPaise,
		IsActive:         true,
	}
	svc := newTestService(t, dc)

	v, err := svc.Verify(context.Background(), "TEN", 500_000)
	require.NoError(t, err)
	require.Equal(t, int64(50_000), v.DiscountPaise)

	v, err = svc.Verify(context.Background(), "TEN", 5_000_000)
	require.NoError(t, err)
	require.Equal(t, capPaise, v.DiscountPaise, "cap limits large orders")
}

func TestVerifyFlatCodeNeverExceedsTotal(t *testing.T) {
	svc := newTestService(t, flatCode("BIG", 10_000, 0))

	v, err := svc.Verify(context.Background(), "BIG", 4_000)
	require.NoError(t, err)
	require.Equal(t, int64(4_000), v.DiscountPaise)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Code: "X", Type: enums.DiscountTypeFlat, ValuePaise: 0})
	require.NotNil(t, pkgerrors.As(err))

	_, err = svc.Create(ctx, CreateInput{Code: "X", Type: enums.DiscountTypePercent, ValuePercent: 101})
	require.NotNil(t, pkgerrors.As(err))

	created, err := svc.Create(ctx, CreateInput{Code: "new10", Type: enums.DiscountTypePercent, ValuePercent: 10})
	require.NoError(t, err)
	require.Equal(t, "NEW10", created.Code, "codes stored upper-cased")
}
