// Package pricing computes cart totals. All arithmetic is int64 minor
// currency units; decimals appear only at the percentage rounding boundary.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Line is a priced cart line. UnitPriceCents must already be resolved
// against the current product or variant record.
type Line struct {
	ProductID      string
	VariantID      *string
	Quantity       int
	UnitPriceCents int64
}

// Discount is an already-resolved checkout discount.
type Discount struct {
	Kind        domain.PromotionKind
	Percent     int
	AmountCents int64
}

// ShippingConfig carries the threshold policy; it is configuration, never
// a constant in this layer.
type ShippingConfig struct {
	FreeThresholdCents int64
	FeeCents           int64
}

type Totals struct {
	SubtotalCents int64 `json:"subtotalCents"`
	DiscountCents int64 `json:"discountCents"`
	ShippingCents int64 `json:"shippingCents"`
	TotalCents    int64 `json:"totalCents"`
}

// ComputeTotals is pure: identical inputs always yield identical totals.
func ComputeTotals(lines []Line, discount *Discount, cfg ShippingConfig) (Totals, error) {
	var subtotal int64
	for i, l := range lines {
		if l.Quantity < 1 {
			return Totals{}, fmt.Errorf("line %d: quantity %d: %w", i, l.Quantity, domain.ErrInvalidLine)
		}
		if l.UnitPriceCents <= 0 {
			return Totals{}, fmt.Errorf("line %d: unresolved unit price: %w", i, domain.ErrInvalidLine)
		}
		subtotal += l.UnitPriceCents * int64(l.Quantity)
	}

	var discounted int64
	if discount != nil {
		switch discount.Kind {
		case domain.PromotionPercentage:
			discounted = PercentOf(subtotal, discount.Percent)
		case domain.PromotionFixedAmount:
			discounted = discount.AmountCents
			if discounted > subtotal {
				discounted = subtotal
			}
		default:
			return Totals{}, fmt.Errorf("unknown discount kind %q: %w", discount.Kind, domain.ErrInvalidLine)
		}
	}

	var shipping int64
	if subtotal-discounted < cfg.FreeThresholdCents {
		shipping = cfg.FeeCents
	}

	total := subtotal - discounted + shipping
	if total < 0 {
		total = 0
	}

	return Totals{
		SubtotalCents: subtotal,
		DiscountCents: discounted,
		ShippingCents: shipping,
		TotalCents:    total,
	}, nil
}

// PercentOf returns round-half-up of amount*pct/100.
func PercentOf(amountCents int64, pct int) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
