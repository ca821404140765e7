package order

import (
	"context"

	"storefront/internal/domain"
)

type CreateOrderItem struct {
	ProductID      string
	VariantID      *string
	Quantity       int
	UnitPriceCents int64
}

type CreateOrderInput struct {
	CustomerID        *string
	Status            domain.OrderStatus
	TotalCents        int64
	ShippingCents     int64
	DiscountCents     int64
	PaymentMethod     string
	ExternalReference string
	Address           domain.Address
	Items             []CreateOrderItem
}

type Repository interface {
	// CreateFromPayment materializes the order, its items and the stock
	// decrements in one transaction. When an order with the same external
	// reference already exists, nothing is written and the existing order is
	// returned alongside ErrDuplicateWebhook; duplicate webhook deliveries
	// serialize on the unique external_reference index.
	CreateFromPayment(ctx context.Context, in CreateOrderInput) (*domain.Order, error)

	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByExternalReference(ctx context.Context, ref string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)

	// Transition moves the order to the given status under a row lock,
	// rejecting illegal lifecycle steps. With restock set, the order's
	// item quantities are returned to product/variant stock in the same
	// transaction as the status write.
	Transition(ctx context.Context, id string, to domain.OrderStatus, restock bool) (*domain.Order, error)

	// Delete hard-deletes the order and cascades its items. Admin only.
	Delete(ctx context.Context, id string) error
}
