// Package gateway holds the payment-gateway port and its adapters. The
// checkout service builds one gateway-agnostic request; each adapter owns
// the translation to its provider's wire format.
package gateway

import "context"

type PaymentStatus string

const (
	StatusApproved PaymentStatus = "approved"
	StatusPending  PaymentStatus = "pending"
	StatusRejected PaymentStatus = "rejected"
)

// LineItem always carries product/variant ids; identity is never inferred
// from display names.
type LineItem struct {
	ProductID      string  `json:"productId"`
	VariantID      *string `json:"variantId,omitempty"`
	Name           string  `json:"name,omitempty"`
	Quantity       int     `json:"quantity"`
	UnitPriceCents int64   `json:"unitPriceCents"`
}

// Metadata travels to the provider and back unchanged; the reconciler
// depends on it to rebuild the order without guessing.
type Metadata struct {
	CustomerID    *string `json:"customerId,omitempty"`
	AddressID     string  `json:"addressId"`
	ShippingCents int64   `json:"shippingCents"`
	DiscountCents int64   `json:"discountCents"`
}

type PaymentIntentRequest struct {
	Reference     string
	Currency      string
	LineItems     []LineItem
	ShippingCents int64
	DiscountCents int64
	TotalCents    int64
	SuccessURL    string
	CancelURL     string
	Metadata      Metadata
}

// Session is the provider's opaque checkout handle.
type Session struct {
	ID          string
	RedirectURL string
}

// Notification is a raw inbound webhook before verification.
type Notification struct {
	Body      []byte
	Signature string
	// PaymentID is the provider-side payment id for adapters that verify
	// by re-fetching the payment record.
	PaymentID string
}

// Payment is the normalized, verified payment record.
type Payment struct {
	ExternalReference string
	Status            PaymentStatus
	AmountCents       int64
	Currency          string
	LineItems         []LineItem
	Metadata          Metadata
}

type Gateway interface {
	Name() string
	CreateSession(ctx context.Context, req PaymentIntentRequest) (*Session, error)
	VerifyNotification(ctx context.Context, n Notification) (*Payment, error)
}
