package domain

import "time"

type PromotionKind string

const (
	PromotionPercentage  PromotionKind = "percentage"
	PromotionFixedAmount PromotionKind = "fixed_amount"
)

// PromotionState is derived from the promotion window at read time and is
// never stored, so stored status and clock can not diverge.
type PromotionState string

const (
	PromotionScheduled PromotionState = "scheduled"
	PromotionActive    PromotionState = "active"
	PromotionFinished  PromotionState = "finished"
)

type Promotion struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Kind PromotionKind `json:"kind"`
	// Percent is used for percentage promotions (0-100).
	Percent int `json:"percent,omitempty"`
	// AmountCents is used for fixed-amount promotions.
	AmountCents int64     `json:"amountCents,omitempty"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	ProductIDs  []string  `json:"productIds,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StateAt classifies the promotion against the given clock.
func (p Promotion) StateAt(now time.Time) PromotionState {
	switch {
	case now.Before(p.StartsAt):
		return PromotionScheduled
	case now.After(p.EndsAt):
		return PromotionFinished
	default:
		return PromotionActive
	}
}

// DiscountCode is a checkout-time code, distinct from product promotions:
// it discounts the cart total rather than a product price.
type DiscountCode struct {
	Code        string        `json:"code"`
	Kind        PromotionKind `json:"kind"`
	Percent     int           `json:"percent,omitempty"`
	AmountCents int64         `json:"amountCents,omitempty"`
	Active      bool          `json:"active"`
}
