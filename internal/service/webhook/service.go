package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/notify"
	orderrepo "storefront/internal/repository/order"
)

// Service reconciles gateway notifications into durable orders:
// verify, dedup, materialize in one transaction, then notify best-effort.
type Service struct {
	gateways  map[string]gateway.Gateway
	orders    orderRepo
	customers addressRepo
	notifier  notify.Notifier
	logger    *log.Logger
}

type orderRepo interface {
	CreateFromPayment(ctx context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error)
}

type addressRepo interface {
	GetAddress(ctx context.Context, id string) (*domain.Address, error)
}

func New(gateways []gateway.Gateway, orders orderRepo, customers addressRepo, notifier notify.Notifier, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	byName := make(map[string]gateway.Gateway, len(gateways))
	for _, gw := range gateways {
		byName[gw.Name()] = gw
	}
	return &Service{gateways: byName, orders: orders, customers: customers, notifier: notifier, logger: logger}
}

// Outcome distinguishes the three success shapes a delivery can take.
type Outcome struct {
	Order *domain.Order
	// Created is false when the reference was already materialized by an
	// earlier delivery.
	Created bool
	// Dropped marks a non-approved notification that was acknowledged
	// without side effects.
	Dropped bool
}

func (s *Service) Process(ctx context.Context, gatewayName string, n gateway.Notification) (*Outcome, error) {
	gw, ok := s.gateways[gatewayName]
	if !ok {
		return nil, fmt.Errorf("unknown gateway %q: %w", gatewayName, domain.ErrGatewayVerification)
	}

	payment, err := gw.VerifyNotification(ctx, n)
	if err != nil {
		return nil, err
	}

	// Gateways resend pending/rejected notifications; acknowledge and drop.
	if payment.Status != gateway.StatusApproved {
		s.logger.Printf("webhook: ref=%s status=%s dropped", payment.ExternalReference, payment.Status)
		return &Outcome{Dropped: true}, nil
	}

	addr, err := s.customers.GetAddress(ctx, payment.Metadata.AddressID)
	if err != nil {
		return nil, fmt.Errorf("resolve address %q: %w", payment.Metadata.AddressID, err)
	}

	items := make([]orderrepo.CreateOrderItem, 0, len(payment.LineItems))
	for _, li := range payment.LineItems {
		if li.ProductID == "" || li.Quantity < 1 {
			return nil, fmt.Errorf("ref=%s malformed line item %+v: %w", payment.ExternalReference, li, domain.ErrInvalidLine)
		}
		items = append(items, orderrepo.CreateOrderItem{
			ProductID:      li.ProductID,
			VariantID:      li.VariantID,
			Quantity:       li.Quantity,
			UnitPriceCents: li.UnitPriceCents,
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("ref=%s has no line items: %w", payment.ExternalReference, domain.ErrInvalidLine)
	}

	ord, err := s.orders.CreateFromPayment(ctx, orderrepo.CreateOrderInput{
		CustomerID:        payment.Metadata.CustomerID,
		Status:            domain.StatusProcessing,
		TotalCents:        payment.AmountCents,
		ShippingCents:     payment.Metadata.ShippingCents,
		DiscountCents:     payment.Metadata.DiscountCents,
		PaymentMethod:     gatewayName,
		ExternalReference: payment.ExternalReference,
		Address:           *addr,
		Items:             items,
	})
	if errors.Is(err, domain.ErrDuplicateWebhook) {
		// Redelivery of an already materialized payment is a success.
		s.logger.Printf("webhook: ref=%s already materialized as order %s", payment.ExternalReference, ord.ID)
		return &Outcome{Order: ord}, nil
	}
	if err != nil {
		// The whole materialization rolled back; the gateway will redeliver.
		return nil, err
	}

	if err := s.notifier.OrderConfirmed(ctx, ord); err != nil {
		// Best-effort: a failed notification never unwinds the order.
		s.logger.Printf("webhook: notify order %s failed: %v", ord.ID, err)
	}

	return &Outcome{Order: ord, Created: true}, nil
}
