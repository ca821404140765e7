package customer

import (
	"context"

	"storefront/internal/domain"
)

type GuestAddressInput struct {
	FullName   string
	Street     string
	City       string
	Region     string
	PostalCode string
	Country    string
	Phone      string
}

type Repository interface {
	GetAddress(ctx context.Context, id string) (*domain.Address, error)
	// CreateGuestAddress persists an ad hoc checkout address with no
	// owning customer.
	CreateGuestAddress(ctx context.Context, in GuestAddressInput) (*domain.Address, error)
}
