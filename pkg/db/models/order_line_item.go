package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rebootmart/rebootmart-backend/pkg/enums"
)

// OrderLineItem captures the snapshot of each item at checkout time. The
// product reference is nullable so listings can be deleted without losing
// order history.
type OrderLineItem struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      *uuid.UUID            `gorm:"column:product_id;type:uuid"`
	Name           string                `gorm:"column:name;not null"`
	Brand          string                `gorm:"column:brand;not null"`
	Category       enums.ProductCategory `gorm:"column:category;not null"`
	ImageURL       *string               `gorm:"column:image_url"`
	UnitPricePaise int64                 `gorm:"column:unit_price_paise;not null"`
	Quantity       int                   `gorm:"column:quantity;not null"`
	LineTotalPaise int64                 `gorm:"column:line_total_paise;not null"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
}
