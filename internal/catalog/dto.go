package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/rebootmart/rebootmart-backend/pkg/db/models"
	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	"github.com/rebootmart/rebootmart-backend/pkg/money"
	"github.com/rebootmart/rebootmart-backend/pkg/types"
)

// ProductSummary is the listing-card shape returned by List and Compare.
type ProductSummary struct {
	ID              uuid.UUID             `json:"id"`
	Name            string                `json:"name"`
	Brand           string                `json:"brand"`
	Category        enums.ProductCategory `json:"category"`
	PricePaise      int64                 `json:"price_paise"`
	MRPPaise        int64                 `json:"mrp_paise"`
	DiscountPercent int                   `json:"discount_percent"`
	InStock         bool                  `json:"in_stock"`
	ThumbnailURL    *string               `json:"thumbnail_url,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

// ProductDetail is the full public listing shape.
type ProductDetail struct {
	ProductSummary
	Description string      `json:"description"`
	Condition   string      `json:"condition"`
	Specs       types.Specs `json:"specs"`
	Images      []ImageDTO  `json:"images"`
}

// ImageDTO is one ordered listing image.
type ImageDTO struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	Position int       `json:"position"`
}

// ProductPage is one cursor page of listings.
type ProductPage struct {
	Items      []ProductSummary `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

func toSummary(p models.Product) ProductSummary {
	summary := ProductSummary{
		ID:              p.ID,
		Name:            p.Name,
		Brand:           p.Brand,
		Category:        p.Category,
		PricePaise:      p.PricePaise,
		MRPPaise:        p.MRPPaise,
		DiscountPercent: money.DiscountPercent(p.MRPPaise, p.PricePaise),
		InStock:         p.InStock && p.Quantity > 0,
		CreatedAt:       p.CreatedAt,
	}
	if len(p.Images) > 0 {
		url := p.Images[0].URL
		summary.ThumbnailURL = &url
	}
	return summary
}

func toDetail(p models.Product) ProductDetail {
	images := make([]ImageDTO, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ImageDTO{ID: img.ID, URL: img.URL, Position: img.Position})
	}
	return ProductDetail{
		ProductSummary: toSummary(p),
		Description:    p.Description,
		Condition:      p.Condition,
		Specs:          p.Specs,
		Images:         images,
	}
}
