package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rebootmart/rebootmart-backend/pkg/enums"
)

// DiscountCode is an admin-managed promotion. Flat codes carry ValuePaise;
// percent codes carry ValuePercent with an optional cap. Redemption is not
// reserved: two concurrent checkouts can both apply the same code.
type DiscountCode struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code             string             `gorm:"column:code;not null;uniqueIndex"`
	Type             enums.DiscountType `gorm:"column:type;not null"`
	ValuePaise       int64              `gorm:"column:value_paise;not null;default:0"`
	ValuePercent     int                `gorm:"column:value_percent;not null;default:0"`
	MaxDiscountPaise *int64             `gorm:"column:max_discount_paise"`
	MinOrderPaise    int64              `gorm:"column:min_order_paise;not null;default:0"`
	ExpiresAt        *time.Time         `gorm:"column:expires_at"`
	IsActive         bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
