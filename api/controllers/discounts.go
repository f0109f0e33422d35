package controllers

import (
	"net/http"

	"github.com/rebootmart/rebootmart-backend/api/responses"
	"github.com/rebootmart/rebootmart-backend/api/validators"
	discountsvc "github.com/rebootmart/rebootmart-backend/internal/discounts"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
)

type verifyDiscountRequest struct {
	Code       string `json:"code" validate:"required"`
	TotalPaise int64  `json:"total_paise" validate:"required,min=1"`
}

// VerifyDiscount checks a code against the tax-inclusive cart total without
// consuming it.
func VerifyDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var body verifyDiscountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		verification, err := svc.Verify(r.Context(), body.Code, body.TotalPaise)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, verification)
	}
}
