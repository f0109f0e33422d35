package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	"github.com/rebootmart/rebootmart-backend/pkg/money"
	"github.com/rebootmart/rebootmart-backend/pkg/types"
)

// ProductDTO is the inventory console response shape: the stored row plus
// the derived listing discount percent.
type ProductDTO struct {
	ID              uuid.UUID             `json:"id"`
	Name            string                `json:"name"`
	Brand           string                `json:"brand"`
	Category        enums.ProductCategory `json:"category"`
	Description     string                `json:"description"`
	Condition       string                `json:"condition"`
	Specs           types.Specs           `json:"specs"`
	MRPPaise        int64                 `json:"mrp_paise"`
	PricePaise      int64                 `json:"price_paise"`
	DiscountPercent int                   `json:"discount_percent"`
	Quantity        int                   `json:"quantity"`
	InStock         bool                  `json:"in_stock"`
	IsActive        bool                  `json:"is_active"`
	Images          []ImageDTO            `json:"images"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// ImageDTO is one ordered gallery image, public id included so the console
// can issue per-image deletes.
type ImageDTO struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	PublicID string    `json:"public_id"`
	Position int       `json:"position"`
}

// ToDTO maps a stored product onto the console shape.
func ToDTO(p *models.Product) *ProductDTO {
	images := make([]ImageDTO, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ImageDTO{ID: img.ID, URL: img.URL, PublicID: img.PublicID, Position: img.Position})
	}
	return &ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		Brand:           p.Brand,
		Category:        p.Category,
		Description:     p.Description,
		Condition:       p.Condition,
		Specs:           p.Specs,
		MRPPaise:        p.MRPPaise,
		PricePaise:      p.PricePaise,
		DiscountPercent: money.DiscountPercent(p.MRPPaise, p.PricePaise),
		Quantity:        p.Quantity,
		InStock:         p.InStock,
		IsActive:        p.IsActive,
		Images:          images,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
