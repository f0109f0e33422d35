package push

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
	"github.com/rebootmart/rebootmart-backend/pkg/onesignal"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
)

type stubRepo struct {
	messages []models.PushMessage
}

func (s *stubRepo) Create(_ context.Context, message *models.PushMessage) (*models.PushMessage, error) {
	message.ID = uuid.New()
	s.messages = append(s.messages, *message)
	return message, nil
}

func (s *stubRepo) List(_ context.Context, _ pagination.Params) ([]models.PushMessage, string, error) {
	return s.messages, "", nil
}

type stubSender struct {
	sendErr error
	sent    []onesignal.Notification
}

func (s *stubSender) Send(_ context.Context, n onesignal.Notification) (*onesignal.SendResult, error) {
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.sent = append(s.sent, n)
	return &onesignal.SendResult{ID: "notif-1", Recipients: 42}, nil
}

func newTestService(t *testing.T, repo *stubRepo, client *stubSender) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "push-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(repo, client, logg)
	require.NoError(t, err)
	return svc
}

func broadcastInput() SendInput {
	return SendInput{
		Title:    "Monsoon sale",
		Body:     "Up to 40% off refurbished laptops",
		Audience: enums.PushAudienceAll,
		SentByID: uuid.New(),
	}
}

func TestSendBroadcast(t *testing.T) {
	repo := &stubRepo{}
	client := &stubSender{}
	svc := newTestService(t, repo, client)

	message, err := svc.Send(context.Background(), broadcastInput())
	require.NoError(t, err)
	require.NotNil(t, message.ProviderID)
	require.Equal(t, "notif-1", *message.ProviderID)
	require.Equal(t, 42, message.Recipients)
	require.Nil(t, message.DeliveryError)

	require.Len(t, client.sent, 1)
	require.Empty(t, client.sent[0].TagFilters, "broadcast carries no tag filters")
}

func TestSendTaggedAudience(t *testing.T) {
	repo := &stubRepo{}
	client := &stubSender{}
	svc := newTestService(t, repo, client)

	input := broadcastInput()
	input.Audience = enums.PushAudienceTagged
	input.Tags = []string{" vip ", "vip", "clearance"}

	_, err := svc.Send(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, []string{"vip", "clearance"}, client.sent[0].TagFilters)
	require.Equal(t, "segment", client.sent[0].TagKey)
}

func TestSendTaggedRequiresTags(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubSender{})

	input := broadcastInput()
	input.Audience = enums.PushAudienceTagged
	_, err := svc.Send(context.Background(), input)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestSendButtonNeedsLabelAndURL(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubSender{})

	label := "Shop now"
	input := broadcastInput()
	input.ButtonLabel = &label
	_, err := svc.Send(context.Background(), input)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestSendDeliveryFailureRecordedAndSurfaced(t *testing.T) {
	repo := &stubRepo{}
	client := &stubSender{sendErr: &onesignal.APIError{StatusCode: 400, Messages: []string{"invalid app_id"}}}
	svc := newTestService(t, repo, client)

	message, err := svc.Send(context.Background(), broadcastInput())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	require.NotNil(t, message, "failed send still logged")
	require.NotNil(t, message.DeliveryError)
	require.Contains(t, *message.DeliveryError, "invalid app_id")
	require.Len(t, repo.messages, 1)
}
