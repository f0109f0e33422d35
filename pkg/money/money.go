package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are stored as int64 paise. Tax rates are basis points (1800 = 18%).

// Totals is the price breakdown computed at quote and checkout time.
type Totals struct {
	SubtotalPaise int64 `json:"subtotal_paise"`
	TaxPaise      int64 `json:"tax_paise"`
	DiscountPaise int64 `json:"discount_paise"`
	TotalPaise    int64 `json:"total_paise"`
}

// ComputeTotals derives tax and the grand total from a subtotal, a tax rate
// in basis points, and an already-resolved discount amount.
// total = subtotal + round(subtotal*rate) - discount, clamped at zero.
func ComputeTotals(subtotalPaise int64, taxRateBps int, discountPaise int64) (Totals, error) {
	if subtotalPaise < 0 {
		return Totals{}, fmt.Errorf("subtotal cannot be negative")
	}
	if taxRateBps < 0 {
		return Totals{}, fmt.Errorf("tax rate cannot be negative")
	}
	if discountPaise < 0 {
		return Totals{}, fmt.Errorf("discount cannot be negative")
	}

	tax := Tax(subtotalPaise, taxRateBps)
	total := subtotalPaise + tax - discountPaise
	if total < 0 {
		total = 0
	}

	return Totals{
		SubtotalPaise: subtotalPaise,
		TaxPaise:      tax,
		DiscountPaise: discountPaise,
		TotalPaise:    total,
	}, nil
}

// Tax returns round(subtotal * rate), rounding half away from zero.
func Tax(subtotalPaise int64, taxRateBps int) int64 {
	return decimal.NewFromInt(subtotalPaise).
		Mul(decimal.NewFromInt(int64(taxRateBps))).
		Div(decimal.NewFromInt(10_000)).
		Round(0).
		IntPart()
}

// PercentOf returns round(amount * percent / 100).
func PercentOf(amountPaise int64, percent decimal.Decimal) int64 {
	return decimal.NewFromInt(amountPaise).
		Mul(percent).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// DiscountPercent computes the displayed markdown for a listing:
// round((mrp - price) / mrp * 100). Zero when MRP is unset or not above price.
func DiscountPercent(mrpPaise, pricePaise int64) int {
	if mrpPaise <= 0 || pricePaise < 0 || pricePaise >= mrpPaise {
		return 0
	}
	percent := decimal.NewFromInt(mrpPaise - pricePaise).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(mrpPaise)).
		Round(0)
	return int(percent.IntPart())
}
