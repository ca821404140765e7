package domain

import "time"

type Cart struct {
	ID         string     `json:"id"`
	CustomerID *string    `json:"customerId,omitempty"`
	SessionKey string     `json:"-"`
	Lines      []CartLine `json:"lines"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CartLine keys on (product, variant); duplicate adds merge by quantity.
// UnitPriceCents is the price snapshot taken when the line was added; it is
// display-only and re-resolved against the product record at pricing time.
type CartLine struct {
	ID             string    `json:"id"`
	CartID         string    `json:"cartId"`
	ProductID      string    `json:"productId"`
	VariantID      *string   `json:"variantId,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	CreatedAt      time.Time `json:"createdAt"`
}
