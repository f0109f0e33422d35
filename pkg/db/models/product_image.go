package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductImage is one ordered image on a listing. PublicID is the storage
// handle used for deletion.
type ProductImage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	URL       string    `gorm:"column:url;not null"`
	PublicID  string    `gorm:"column:public_id;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
