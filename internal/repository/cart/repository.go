package cart

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	GetBySessionKey(ctx context.Context, sessionKey string) (*domain.Cart, error)
	Create(ctx context.Context, sessionKey string, customerID *string) (*domain.Cart, error)

	// UpsertLine inserts a line or, when a line for the same
	// (product, variant) key exists, adds the quantity to it.
	UpsertLine(ctx context.Context, cartID, productID string, variantID *string, quantity int, unitPriceCents int64) error
	SetLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	DeleteLine(ctx context.Context, cartID, lineID string) error
	Clear(ctx context.Context, cartID string) error
}
