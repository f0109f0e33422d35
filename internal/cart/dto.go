package cart

import (
	"github.com/google/uuid"

	"github.com/rebootmart/rebootmart-backend/pkg/enums"
	"github.com/rebootmart/rebootmart-backend/pkg/money"
)

// CartItemDTO is one repriced line in the cart response.
type CartItemDTO struct {
	ProductID      uuid.UUID             `json:"product_id"`
	Name           string                `json:"name"`
	Brand          string                `json:"brand"`
	Category       enums.ProductCategory `json:"category"`
	UnitPricePaise int64                 `json:"unit_price_paise"`
	Quantity       int                   `json:"quantity"`
	LineTotalPaise int64                 `json:"line_total_paise"`
	InStock        bool                  `json:"in_stock"`
	ThumbnailURL   *string               `json:"thumbnail_url,omitempty"`
}

// CartDTO is the full cart response, including a fresh quote.
type CartDTO struct {
	ID    uuid.UUID     `json:"id"`
	Items []CartItemDTO `json:"items"`
	Quote money.Totals  `json:"quote"`
}
