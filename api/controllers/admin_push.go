package controllers

import (
	"net/http"
	"strings"

	"github.com/rebootmart/rebootmart-backend/api/responses"
	"github.com/rebootmart/rebootmart-backend/api/validators"
	pushsvc "github.com/rebootmart/rebootmart-backend/internal/push"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
)

type sendPushRequest struct {
	Title       string   `json:"title" validate:"required"`
	Body        string   `json:"body" validate:"required"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	ButtonLabel *string  `json:"button_label,omitempty"`
	ButtonURL   *string  `json:"button_url,omitempty" validate:"omitempty,url"`
	Audience    string   `json:"audience" validate:"required"`
	Tags        []string `json:"tags,omitempty"`
}

// AdminSendPush composes and dispatches a notification, recording the
// outcome in the send log either way.
func AdminSendPush(svc pushsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "push service unavailable"))
			return
		}

		sentByID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body sendPushRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		audience, err := enums.ParsePushAudience(strings.TrimSpace(body.Audience))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid audience"))
			return
		}

		message, err := svc.Send(r.Context(), pushsvc.SendInput{
			Title:       body.Title,
			Body:        body.Body,
			ImageURL:    body.ImageURL,
			ButtonLabel: body.ButtonLabel,
			ButtonURL:   body.ButtonURL,
			Audience:    audience,
			Tags:        body.Tags,
			SentByID:    sentByID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// AdminListPushHistory pages through the send log, newest first.
func AdminListPushHistory(svc pushsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "push service unavailable"))
			return
		}

		params, err := pageParamsFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}
