package domain

import "time"

// OrderStatus values are the wire-visible Spanish vocabulary the storefront
// already exposes to users.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDIENTE"
	StatusProcessing OrderStatus = "PROCESANDO"
	StatusShipped    OrderStatus = "ENVIADO"
	StatusDelivered  OrderStatus = "ENTREGADO"
	StatusCancelled  OrderStatus = "CANCELADO"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	// ENTREGADO and CANCELADO are terminal.
	StatusDelivered: {},
	StatusCancelled: {},
}

// ValidOrderStatus reports whether s is one of the five known statuses.
func ValidOrderStatus(s OrderStatus) bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID         string      `json:"id"`
	CustomerID *string     `json:"customerId,omitempty"`
	Status     OrderStatus `json:"status"`

	TotalCents    int64 `json:"totalCents"`
	ShippingCents int64 `json:"shippingCents"`
	DiscountCents int64 `json:"discountCents"`

	PaymentMethod string `json:"paymentMethod"`
	// ExternalReference is the gateway payment id, unique per order; it is
	// the idempotency key for webhook reconciliation.
	ExternalReference string `json:"externalReference"`

	Address   Address     `json:"address"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// OrderItem snapshots the unit price at purchase time; it never changes
// after creation.
type OrderItem struct {
	ID             string  `json:"id"`
	OrderID        string  `json:"orderId"`
	ProductID      string  `json:"productId"`
	VariantID      *string `json:"variantId,omitempty"`
	Quantity       int     `json:"quantity"`
	UnitPriceCents int64   `json:"unitPriceCents"`
}
