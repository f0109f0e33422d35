package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	pkgerrors "github.com/rebootmart/rebootmart-backend/pkg/errors"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
	"github.com/rebootmart/rebootmart-backend/pkg/pagination"
	"github.com/rebootmart/rebootmart-backend/pkg/razorpay"
)

// Webhook event names emitted by the gateway.
const (
	webhookPaymentCaptured = "payment.captured"
	webhookPaymentFailed   = "payment.failed"
)

// Service covers buyer order reads, payment settlement, and admin transitions.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error)
	GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	ListAll(ctx context.Context, params pagination.Params) (*OrderPage, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*OrderDTO, error)
	ApplyWebhook(ctx context.Context, body []byte, signature string) error
	Transition(ctx context.Context, input TransitionInput) (*OrderDTO, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	gateway paymentGateway
	logg    *logger.Logger
}

// NewService builds the order service.
func NewService(repo Repository, tx txRunner, gateway paymentGateway, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, gateway: gateway, logg: logg}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, nextCursor, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildPage(rows, nextCursor), nil
}

func (s *service) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return ToDTO(order), nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*OrderPage, error) {
	rows, nextCursor, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildPage(rows, nextCursor), nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToDTO(order), nil
}

// VerifyPayment settles an order from the client-side checkout callback. The
// caller posts the gateway order id, payment id, and signature; missing
// references are rejected before any gateway call.
func (s *service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*OrderDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.RazorpayOrderID) == "" ||
		strings.TrimSpace(input.RazorpayPaymentID) == "" ||
		strings.TrimSpace(input.Signature) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing transaction reference")
	}

	order, err := s.repo.FindByRazorpayOrderID(ctx, input.RazorpayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != input.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	// settled earlier via webhook or a previous poll
	if order.Status == enums.OrderStatusPaid {
		return ToDTO(order), nil
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s and can no longer be verified", order.Status))
	}

	signatureOK := s.gateway.VerifyPaymentSignature(input.RazorpayOrderID, input.RazorpayPaymentID, input.Signature)

	payment, err := s.gateway.FetchPayment(ctx, input.RazorpayPaymentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch payment")
	}

	if !signatureOK {
		if payment.Status == razorpay.PaymentStatusCaptured {
			// money moved but the callback cannot be trusted
			s.flagOrder(ctx, order.ID, "needs_manual_refund", input.RazorpayPaymentID,
				"signature verification failed after capture")
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				"payment captured but verification failed; a manual refund has been flagged")
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment verification failed")
	}

	switch payment.Status {
	case razorpay.PaymentStatusCaptured:
		if err := s.settle(ctx, order, input.RazorpayPaymentID, enums.OrderStatusPaid, "payment captured"); err != nil {
			// payment succeeded but our records did not; surface, never retry
			s.flagOrder(ctx, order.ID, "needs_support", input.RazorpayPaymentID,
				"order update failed after successful payment")
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err,
				"payment received but order update failed; contact support")
		}
	case razorpay.PaymentStatusFailed:
		if err := s.settle(ctx, order, input.RazorpayPaymentID, enums.OrderStatusFailed, "payment failed"); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment failure")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodePaymentPending, "payment pending, retry verification")
	}

	refreshed, err := s.loadOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return ToDTO(refreshed), nil
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ApplyWebhook settles orders from gateway callbacks. Unknown events are
// acknowledged without effect so the gateway stops resending them.
func (s *service) ApplyWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature mismatch")
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook payload")
	}

	entity := envelope.Payload.Payment.Entity
	if envelope.Event != webhookPaymentCaptured && envelope.Event != webhookPaymentFailed {
		return nil
	}
	if entity.OrderID == "" || entity.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing transaction reference")
	}

	order, err := s.repo.FindByRazorpayOrderID(ctx, entity.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	// replayed delivery
	if order.Status != enums.OrderStatusPending {
		return nil
	}

	target := enums.OrderStatusPaid
	note := "payment captured (webhook)"
	if envelope.Event == webhookPaymentFailed {
		target = enums.OrderStatusFailed
		note = "payment failed (webhook)"
	}

	if err := s.settle(ctx, order, entity.ID, target, note); err != nil {
		if target == enums.OrderStatusPaid {
			s.flagOrder(ctx, order.ID, "needs_support", entity.ID,
				"order update failed after successful payment")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply webhook")
	}
	return nil
}

// Transition applies an admin status change, enforcing the transition table.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown status %q", input.Next))
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(input.Next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition from %s to %s", order.Status, input.Next))
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, order.ID, map[string]any{"status": input.Next}); err != nil {
			return err
		}
		actorRole := input.ActorRole
		return repo.AppendStatusEvent(ctx, &models.OrderStatusEvent{
			OrderID:   order.ID,
			Status:    input.Next,
			Note:      input.Note,
			ActorID:   &input.ActorID,
			ActorRole: &actorRole,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition order")
	}

	refreshed, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	return ToDTO(refreshed), nil
}

// settle moves a pending order to paid or failed in one transaction,
// recording the payment reference and appending the history entry.
func (s *service) settle(ctx context.Context, order *models.Order, paymentID string, target enums.OrderStatus, note string) error {
	paymentStatus := enums.PaymentStatusCaptured
	if target == enums.OrderStatusFailed {
		paymentStatus = enums.PaymentStatusFailed
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		updates := map[string]any{
			"status":              target,
			"payment_status":      paymentStatus,
			"razorpay_payment_id": paymentID,
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return err
		}
		noteCopy := note
		return repo.AppendStatusEvent(ctx, &models.OrderStatusEvent{
			OrderID: order.ID,
			Status:  target,
			Note:    &noteCopy,
		})
	})
}

// flagOrder marks a distinguished failure on the order, best effort.
func (s *service) flagOrder(ctx context.Context, orderID uuid.UUID, column, paymentID, reason string) {
	updates := map[string]any{column: true, "razorpay_payment_id": paymentID}
	if err := s.repo.Update(ctx, orderID, updates); err != nil {
		s.logg.Error(ctx, fmt.Sprintf("flagging order %s (%s)", orderID, column), err)
		return
	}
	note := reason
	if err := s.repo.AppendStatusEvent(ctx, &models.OrderStatusEvent{
		OrderID: orderID,
		Status:  enums.OrderStatusPending,
		Note:    &note,
	}); err != nil {
		s.logg.Error(ctx, fmt.Sprintf("recording flag event for order %s", orderID), err)
	}
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func buildPage(rows []models.Order, nextCursor string) *OrderPage {
	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *ToDTO(&rows[i]))
	}
	return &OrderPage{Items: items, NextCursor: nextCursor}
}
