package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rebootmart/rebootmart-backend/pkg/enums"
)

// OrderStatusEvent is one entry in the append-only order history. Rows are
// inserted at creation and on every transition and never updated.
type OrderStatusEvent struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;not null"`
	Note      *string           `gorm:"column:note"`
	ActorID   *uuid.UUID        `gorm:"column:actor_id;type:uuid"`
	ActorRole *string           `gorm:"column:actor_role"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
