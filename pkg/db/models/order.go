package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	"github.com/rebootmart/rebootmart-backend/pkg/types"
)

// Order is the buyer-facing order. Line items and totals are snapshotted at
// checkout and never recomputed from the catalog afterwards.
//
// NeedsManualRefund marks a captured payment whose signature verification
// failed; NeedsSupport marks a successful payment whose order update failed.
// Both are surfaced, never auto-resolved.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status            enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	SubtotalPaise     int64               `gorm:"column:subtotal_paise;not null"`
	TaxPaise          int64               `gorm:"column:tax_paise;not null"`
	DiscountPaise     int64               `gorm:"column:discount_paise;not null;default:0"`
	TotalPaise        int64               `gorm:"column:total_paise;not null"`
	DiscountCode      *string             `gorm:"column:discount_code"`
	ShippingAddress   types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	RazorpayOrderID   *string             `gorm:"column:razorpay_order_id;index"`
	RazorpayPaymentID *string             `gorm:"column:razorpay_payment_id"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;not null;default:'created'"`
	NeedsManualRefund bool                `gorm:"column:needs_manual_refund;not null;default:false"`
	NeedsSupport      bool                `gorm:"column:needs_support;not null;default:false"`
	LineItems         []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusEvents      []OrderStatusEvent  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
