package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	"github.com/rebootmart/rebootmart-backend/pkg/types"
)

// LineItemDTO is one snapshotted order line.
type LineItemDTO struct {
	ID             uuid.UUID             `json:"id"`
	ProductID      *uuid.UUID            `json:"product_id,omitempty"`
	Name           string                `json:"name"`
	Brand          string                `json:"brand"`
	Category       enums.ProductCategory `json:"category"`
	ImageURL       *string               `json:"image_url,omitempty"`
	UnitPricePaise int64                 `json:"unit_price_paise"`
	Quantity       int                   `json:"quantity"`
	LineTotalPaise int64                 `json:"line_total_paise"`
}

// StatusEventDTO is one entry in the order's append-only history.
type StatusEventDTO struct {
	Status    enums.OrderStatus `json:"status"`
	Note      *string           `json:"note,omitempty"`
	ActorRole *string           `json:"actor_role,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// OrderDTO is the buyer- and admin-facing order shape.
type OrderDTO struct {
	ID                uuid.UUID           `json:"id"`
	UserID            uuid.UUID           `json:"user_id"`
	Status            enums.OrderStatus   `json:"status"`
	SubtotalPaise     int64               `json:"subtotal_paise"`
	TaxPaise          int64               `json:"tax_paise"`
	DiscountPaise     int64               `json:"discount_paise"`
	TotalPaise        int64               `json:"total_paise"`
	DiscountCode      *string             `json:"discount_code,omitempty"`
	ShippingAddress   types.Address       `json:"shipping_address"`
	RazorpayOrderID   *string             `json:"razorpay_order_id,omitempty"`
	PaymentStatus     enums.PaymentStatus `json:"payment_status"`
	NeedsManualRefund bool                `json:"needs_manual_refund"`
	NeedsSupport      bool                `json:"needs_support"`
	LineItems         []LineItemDTO       `json:"line_items,omitempty"`
	StatusHistory     []StatusEventDTO    `json:"status_history,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
}

// OrderPage is one cursor page of orders.
type OrderPage struct {
	Items      []OrderDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// VerifyPaymentInput is the client-side verification callback payload.
type VerifyPaymentInput struct {
	UserID            uuid.UUID
	RazorpayOrderID   string
	RazorpayPaymentID string
	Signature         string
}

// TransitionInput carries an admin-driven status change.
type TransitionInput struct {
	OrderID   uuid.UUID
	Next      enums.OrderStatus
	Note      *string
	ActorID   uuid.UUID
	ActorRole string
}

// ToDTO maps a stored order, with whatever associations were loaded, onto
// the response shape.
func ToDTO(o *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:                o.ID,
		UserID:            o.UserID,
		Status:            o.Status,
		SubtotalPaise:     o.SubtotalPaise,
		TaxPaise:          o.TaxPaise,
		DiscountPaise:     o.DiscountPaise,
		TotalPaise:        o.TotalPaise,
		DiscountCode:      o.DiscountCode,
		ShippingAddress:   o.ShippingAddress,
		RazorpayOrderID:   o.RazorpayOrderID,
		PaymentStatus:     o.PaymentStatus,
		NeedsManualRefund: o.NeedsManualRefund,
		NeedsSupport:      o.NeedsSupport,
		CreatedAt:         o.CreatedAt,
	}
	for _, item := range o.LineItems {
		dto.LineItems = append(dto.LineItems, LineItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			Brand:          item.Brand,
			Category:       item.Category,
			ImageURL:       item.ImageURL,
			UnitPricePaise: item.UnitPricePaise,
			Quantity:       item.Quantity,
			LineTotalPaise: item.LineTotalPaise,
		})
	}
	for _, event := range o.StatusEvents {
		dto.StatusHistory = append(dto.StatusHistory, StatusEventDTO{
			Status:    event.Status,
			Note:      event.Note,
			ActorRole: event.ActorRole,
			CreatedAt: event.CreatedAt,
		})
	}
	return dto
}
