package webhooks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	ordersvc "github.com/rebootmart/rebootmart-backend/internal/orders"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
)

type stubOrdersService struct {
	applyFn func(ctx context.Context, body []byte, signature string) error
}

func (s *stubOrdersService) ListMine(context.Context, uuid.UUID, pagination.Params) (*ordersvc.OrderPage, error) {
	return &ordersvc.OrderPage{}, nil
}

func (s *stubOrdersService) GetMine(context.Context, uuid.UUID, uuid.UUID) (*ordersvc.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubOrdersService) ListAll(context.Context, pagination.Params) (*ordersvc.OrderPage, error) {
	return &ordersvc.OrderPage{}, nil
}

func (s *stubOrdersService) Get(context.Context, uuid.UUID) (*ordersvc.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubOrdersService) VerifyPayment(context.Context, ordersvc.VerifyPaymentInput) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{}, nil
}

func (s *stubOrdersService) ApplyWebhook(ctx context.Context, body []byte, signature string) error {
	if s.applyFn != nil {
		return s.applyFn(ctx, body, signature)
	}
	return nil
}

func (s *stubOrdersService) Transition(context.Context, ordersvc.TransitionInput) (*ordersvc.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed")
}

func webhookTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "webhooks-test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func TestRazorpayWebhookRequiresSignature(t *testing.T) {
	svc := &stubOrdersService{
		applyFn: func(context.Context, []byte, string) error {
			t.Fatal("service should not run without a signature")
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", strings.NewReader(`{"event":"payment.captured"}`))
	resp := httptest.NewRecorder()
	RazorpayWebhook(svc, webhookTestLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRazorpayWebhookForwardsRawBody(t *testing.T) {
	var gotBody string
	var gotSignature string
	svc := &stubOrdersService{
		applyFn: func(_ context.Context, body []byte, signature string) error {
			gotBody = string(body)
			gotSignature = signature
			return nil
		},
	}

	payload := `{"event":"payment.captured","payload":{}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", strings.NewReader(payload))
	req.Header.Set("X-Razorpay-Signature", "hmac-hex")
	resp := httptest.NewRecorder()
	RazorpayWebhook(svc, webhookTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotBody != payload {
		t.Fatalf("body altered before verification: %q", gotBody)
	}
	if gotSignature != "hmac-hex" {
		t.Fatalf("unexpected signature %q", gotSignature)
	}
}

func TestRazorpayWebhookSurfacesBadSignature(t *testing.T) {
	svc := &stubOrdersService{
		applyFn: func(context.Context, []byte, string) error {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", strings.NewReader(`{}`))
	req.Header.Set("X-Razorpay-Signature", "wrong")
	resp := httptest.NewRecorder()
	RazorpayWebhook(svc, webhookTestLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
