package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rebootmart/rebootmart-backend/pkg/enums"
)

// PushMessage records a composed push send and its outcome. Failures are
// stored and surfaced; there is no retry.
type PushMessage struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string             `gorm:"column:title;not null"`
	Body          string             `gorm:"column:body;not null"`
	ImageURL      *string            `gorm:"column:image_url"`
	ButtonLabel   *string            `gorm:"column:button_label"`
	ButtonURL     *string            `gorm:"column:button_url"`
	Audience      enums.PushAudience `gorm:"column:audience;not null"`
	Tags          pq.StringArray     `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	SentByID      uuid.UUID          `gorm:"column:sent_by_id;type:uuid;not null"`
	ProviderID    *string            `gorm:"column:provider_id"`
	Recipients    int                `gorm:"column:recipients;not null;default:0"`
	DeliveryError *string            `gorm:"column:delivery_error"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
}
