package product

import (
	"context"

	"storefront/internal/domain"
)

type CreateProductInput struct {
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	Stock       int
}

// UpdateProductInput fields are applied only when non-nil.
type UpdateProductInput struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Stock       *int
}

type VariantInput struct {
	SKU        string
	Name       string
	PriceCents int64
	Stock      int
}

type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetVariant(ctx context.Context, id string) (*domain.Variant, error)
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in UpdateProductInput) (*domain.Product, error)
	AddVariant(ctx context.Context, productID string, in VariantInput) (*domain.Variant, error)

	// ApplyPromotionPrice snapshots the canonical price into
	// original_price_cents and writes the discounted price in one
	// conditional statement; it fails with ErrPromotionConflict when the
	// snapshot is already held by another promotion.
	ApplyPromotionPrice(ctx context.Context, productID string, promoPriceCents int64) error
	// RevertPromotionPrice restores the snapshot and clears it. A product
	// without a snapshot is a no-op, which makes reverts idempotent.
	RevertPromotionPrice(ctx context.Context, productID string) error
}
