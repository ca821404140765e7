package domain

import "time"

type Product struct {
	ID          string `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"priceCents"`
	// OriginalPriceCents is set iff an active promotion holds the price.
	OriginalPriceCents *int64    `json:"originalPriceCents,omitempty"`
	Currency           string    `json:"currency"`
	Stock              int       `json:"stock"`
	Variants           []Variant `json:"variants,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Variant carries its own price override and stock. Promotions act only on
// the owning product, so variants have no original-price field.
type Variant struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"createdAt"`
}
