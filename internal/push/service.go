package push

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
	"github.com/rebootmart/rebootmart-backend/pkg/onesignal"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
)

// segmentTagKey is the device tag the push tooling targets. Admin-applied
// user tags are synced to this key by the clients.
const segmentTagKey = "segment"

// SendInput is the admin push composition form.
type SendInput struct {
	Title       string
	Body        string
	ImageURL    *string
	ButtonLabel *string
	ButtonURL   *string
	Audience    enums.PushAudience
	Tags        []string
	SentByID    uuid.UUID
}

// MessagePage is one cursor page of the send log.
type MessagePage struct {
	Items      []models.PushMessage `json:"items"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

// Service dispatches notifications and keeps the send log. A delivery
// failure is recorded on the message and surfaced; it is never retried.
type Service interface {
	Send(ctx context.Context, input SendInput) (*models.PushMessage, error)
	List(ctx context.Context, params pagination.Params) (*MessagePage, error)
}

// sender is the slice of the OneSignal client the push service needs.
type sender interface {
	Send(ctx context.Context, n onesignal.Notification) (*onesignal.SendResult, error)
}

type service struct {
	repo   Repository
	client sender
	logg   *logger.Logger
}

// NewService builds the push service.
func NewService(repo Repository, client sender, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("push repository required")
	}
	if client == nil {
		return nil, fmt.Errorf("push sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, client: client, logg: logg}, nil
}

func (s *service) Send(ctx context.Context, input SendInput) (*models.PushMessage, error) {
	title := strings.TrimSpace(input.Title)
	body := strings.TrimSpace(input.Body)
	if title == "" || body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and body are required")
	}
	if !input.Audience.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown audience %q", input.Audience))
	}
	if input.SentByID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if (input.ButtonLabel == nil) != (input.ButtonURL == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action button needs both a label and a url")
	}

	tags := normalizeTags(input.Tags)
	if input.Audience == enums.PushAudienceTagged && len(tags) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tagged audience needs at least one tag")
	}
	if input.Audience == enums.PushAudienceAll {
		tags = nil
	}

	notification := onesignal.Notification{
		Heading: title,
		Content: body,
		TagKey:  segmentTagKey,
	}
	if input.ImageURL != nil {
		notification.ImageURL = *input.ImageURL
	}
	if input.ButtonLabel != nil {
		notification.Buttons = []onesignal.Button{{
			ID:   "action",
			Text: *input.ButtonLabel,
			URL:  *input.ButtonURL,
		}}
	}
	if len(tags) > 0 {
		notification.TagFilters = tags
	}

	message := &models.PushMessage{
		Title:       title,
		Body:        body,
		ImageURL:    input.ImageURL,
		ButtonLabel: input.ButtonLabel,
		ButtonURL:   input.ButtonURL,
		Audience:    input.Audience,
		Tags:        pq.StringArray(tags),
		SentByID:    input.SentByID,
	}

	result, sendErr := s.client.Send(ctx, notification)
	if sendErr != nil {
		errText := sendErr.Error()
		message.DeliveryError = &errText
	} else {
		message.ProviderID = &result.ID
		message.Recipients = result.Recipients
	}

	stored, err := s.repo.Create(ctx, message)
	if err != nil {
		if sendErr != nil {
			s.logg.Error(ctx, "recording failed push send", err)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, sendErr, "push delivery failed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record push send")
	}

	if sendErr != nil {
		return stored, pkgerrors.Wrap(pkgerrors.CodeDependency, sendErr, "push delivery failed")
	}
	return stored, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*MessagePage, error) {
	rows, nextCursor, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list push messages")
	}
	return &MessagePage{Items: rows, NextCursor: nextCursor}, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
