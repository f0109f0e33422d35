package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rebootmart/rebootmart-backend/api/responses"
	"github.com/rebootmart/rebootmart-backend/api/validators"
	discountsvc "github.com/rebootmart/rebootmart-backend/internal/discounts"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
)

type createDiscountRequest struct {
	Code             string     `json:"code" validate:"required"`
	Type             string     `json:"type" validate:"required"`
	ValuePaise       int64      `json:"value_paise,omitempty" validate:"omitempty,min=1"`
	ValuePercent     int        `json:"value_percent,omitempty" validate:"omitempty,min=1,max=100"`
	MaxDiscountPaise *int64     `json:"max_discount_paise,omitempty" validate:"omitempty,min=1"`
	MinOrderPaise    int64      `json:"min_order_paise,omitempty" validate:"omitempty,min=0"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

type updateDiscountRequest struct {
	MinOrderPaise    *int64     `json:"min_order_paise,omitempty" validate:"omitempty,min=0"`
	MaxDiscountPaise *int64     `json:"max_discount_paise,omitempty" validate:"omitempty,min=1"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	IsActive         *bool      `json:"is_active,omitempty"`
}

// AdminCreateDiscount registers a new code.
func AdminCreateDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var body createDiscountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discountType, err := enums.ParseDiscountType(strings.TrimSpace(body.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type"))
			return
		}

		code, err := svc.Create(r.Context(), discountsvc.CreateInput{
			Code:             body.Code,
			Type:             discountType,
			ValuePaise:       body.ValuePaise,
			ValuePercent:     body.ValuePercent,
			MaxDiscountPaise: body.MaxDiscountPaise,
			MinOrderPaise:    body.MinOrderPaise,
			ExpiresAt:        body.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, code)
	}
}

// AdminListDiscounts returns every code, active or not.
func AdminListDiscounts(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		codes, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, codes)
	}
}

// AdminUpdateDiscount applies a partial edit to a code.
func AdminUpdateDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		id, err := pathUUID(r, chi.URLParam(r, "discountID"), "discount id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateDiscountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Update(r.Context(), id, discountsvc.UpdateInput{
			MinOrderPaise:    body.MinOrderPaise,
			MaxDiscountPaise: body.MaxDiscountPaise,
			ExpiresAt:        body.ExpiresAt,
			IsActive:         body.IsActive,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// AdminDeleteDiscount retires a code.
func AdminDeleteDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		id, err := pathUUID(r, chi.URLParam(r, "discountID"), "discount id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
