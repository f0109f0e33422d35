package models

import (
	"time"

	"github.com/google/uuid"
)

// Enquiry is a contact-form submission from the storefront.
type Enquiry struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string     `gorm:"column:name;not null"`
	Email      string     `gorm:"column:email;not null"`
	Phone      *string    `gorm:"column:phone"`
	Subject    string     `gorm:"column:subject;not null"`
	Message    string     `gorm:"column:message;not null"`
	Resolved   bool       `gorm:"column:resolved;not null;default:false"`
	ResolvedAt *time.Time `gorm:"column:resolved_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
