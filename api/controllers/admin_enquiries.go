package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rebootmart/rebootmart-backend/api/responses"
	enquirysvc "github.com/rebootmart/rebootmart-backend/internal/enquiries"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
)

// AdminListEnquiries pages through the contact inbox, optionally filtered
// by resolution state.
func AdminListEnquiries(svc enquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enquiry service unavailable"))
			return
		}

		params, err := pageParamsFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := enquirysvc.ListFilters{}
		if raw := strings.TrimSpace(r.URL.Query().Get("resolved")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid resolved value"))
				return
			}
			filters.Resolved = &value
		}

		page, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// AdminResolveEnquiry marks one enquiry handled; resolving twice is an error.
func AdminResolveEnquiry(svc enquirysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enquiry service unavailable"))
			return
		}

		id, err := pathUUID(r, chi.URLParam(r, "enquiryID"), "enquiry id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Resolve(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "resolved"})
	}
}
