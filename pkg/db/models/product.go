package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	"github.com/rebootmart/rebootmart-backend/pkg/types"
)

// Product represents one refurbished listing. Prices are integer paise; the
// discount percent shown on listings is derived from MRP vs price, never
// stored.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string                `gorm:"column:name;not null"`
	Brand       string                `gorm:"column:brand;not null"`
	Category    enums.ProductCategory `gorm:"column:category;not null"`
	Description string                `gorm:"column:description;not null;default:''"`
	Condition   string                `gorm:"column:condition;not null;default:''"`
	Specs       types.Specs           `gorm:"column:specs;type:jsonb;serializer:json"`
	MRPPaise    int64                 `gorm:"column:mrp_paise;not null"`
	PricePaise  int64                 `gorm:"column:price_paise;not null"`
	Quantity    int                   `gorm:"column:quantity;not null;default:0"`
	InStock     bool                  `gorm:"column:in_stock;not null;default:true"`
	IsActive    bool                  `gorm:"column:is_active;not null;default:true"`
	Images      []ProductImage        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
