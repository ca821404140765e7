package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/pricing"
	customerrepo "storefront/internal/repository/customer"
)

// Service turns a validated cart into a gateway session. It writes no order;
// order creation is deferred to the webhook reconciler so an abandoned
// checkout leaves nothing behind.
type Service struct {
	products   productRepo
	customers  customerRepo
	codes      discountCodeRepo
	gateways   map[string]gateway.Gateway
	shipping   pricing.ShippingConfig
	currency   string
	successURL string
	cancelURL  string
	logger     *log.Logger
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetVariant(ctx context.Context, id string) (*domain.Variant, error)
}

type customerRepo interface {
	GetAddress(ctx context.Context, id string) (*domain.Address, error)
	CreateGuestAddress(ctx context.Context, in customerrepo.GuestAddressInput) (*domain.Address, error)
}

type discountCodeRepo interface {
	GetDiscountCode(ctx context.Context, code string) (*domain.DiscountCode, error)
}

type Config struct {
	Shipping   pricing.ShippingConfig
	Currency   string
	SuccessURL string
	CancelURL  string
}

func New(products productRepo, customers customerRepo, codes discountCodeRepo, gateways []gateway.Gateway, cfg Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	byName := make(map[string]gateway.Gateway, len(gateways))
	for _, gw := range gateways {
		byName[gw.Name()] = gw
	}
	return &Service{
		products:   products,
		customers:  customers,
		codes:      codes,
		gateways:   byName,
		shipping:   cfg.Shipping,
		currency:   cfg.Currency,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		logger:     logger,
	}
}

type LineInput struct {
	ProductID string  `json:"productId"`
	VariantID *string `json:"variantId,omitempty"`
	Quantity  int     `json:"quantity"`
}

type GuestAddressInput struct {
	FullName   string `json:"fullName"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type Input struct {
	Lines             []LineInput        `json:"lines"`
	ShippingAddressID string             `json:"shippingAddressId,omitempty"`
	GuestAddress      *GuestAddressInput `json:"guestAddress,omitempty"`
	DiscountCode      string             `json:"discountCode,omitempty"`
	PaymentMethod     string             `json:"paymentMethod"`

	// CustomerID comes from the session, never from the request body.
	CustomerID *string `json:"-"`
}

type Result struct {
	Reference   string         `json:"reference"`
	RedirectURL string         `json:"redirectUrl"`
	Totals      pricing.Totals `json:"totals"`
}

func (s *Service) Start(ctx context.Context, in Input) (*Result, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("empty cart: %w", domain.ErrInvalidLine)
	}
	gw, ok := s.gateways[in.PaymentMethod]
	if !ok {
		return nil, fmt.Errorf("unknown payment method %q", in.PaymentMethod)
	}

	items, pricingLines, err := s.resolveLines(ctx, in.Lines)
	if err != nil {
		return nil, err
	}

	addr, err := s.resolveAddress(ctx, in)
	if err != nil {
		return nil, err
	}

	discount, err := s.resolveDiscount(ctx, in.DiscountCode)
	if err != nil {
		return nil, err
	}

	totals, err := pricing.ComputeTotals(pricingLines, discount, s.shipping)
	if err != nil {
		return nil, err
	}

	reference := "ord_" + uuid.NewString()
	req := gateway.PaymentIntentRequest{
		Reference:     reference,
		Currency:      s.currency,
		LineItems:     items,
		ShippingCents: totals.ShippingCents,
		DiscountCents: totals.DiscountCents,
		TotalCents:    totals.TotalCents,
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
		Metadata: gateway.Metadata{
			CustomerID:    in.CustomerID,
			AddressID:     addr.ID,
			ShippingCents: totals.ShippingCents,
			DiscountCents: totals.DiscountCents,
		},
	}

	session, err := gw.CreateSession(ctx, req)
	if err != nil {
		s.logger.Printf("checkout: create session ref=%s gateway=%s error=%v", reference, gw.Name(), err)
		return nil, fmt.Errorf("create gateway session: %w", err)
	}

	return &Result{Reference: reference, RedirectURL: session.RedirectURL, Totals: totals}, nil
}

// resolveLines re-reads every product and variant; client-supplied prices
// are never trusted. Stock is checked per (product, variant) key with
// quantities summed across lines.
func (s *Service) resolveLines(ctx context.Context, lines []LineInput) ([]gateway.LineItem, []pricing.Line, error) {
	needed := map[string]int{}
	items := make([]gateway.LineItem, 0, len(lines))
	pricingLines := make([]pricing.Line, 0, len(lines))

	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, nil, fmt.Errorf("product %s quantity %d: %w", line.ProductID, line.Quantity, domain.ErrInvalidLine)
		}

		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil, fmt.Errorf("product %s: %w", line.ProductID, domain.ErrProductNotFound)
			}
			return nil, nil, err
		}

		unitPrice := p.PriceCents
		name := p.Name
		available := p.Stock
		stockKey := line.ProductID

		if line.VariantID != nil {
			v, err := s.products.GetVariant(ctx, *line.VariantID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, nil, fmt.Errorf("variant %s: %w", *line.VariantID, domain.ErrProductNotFound)
				}
				return nil, nil, err
			}
			if v.ProductID != line.ProductID {
				return nil, nil, fmt.Errorf("variant %s does not belong to product %s: %w", *line.VariantID, line.ProductID, domain.ErrProductNotFound)
			}
			unitPrice = v.PriceCents
			name = p.Name + " " + v.Name
			available = v.Stock
			stockKey = line.ProductID + "/" + *line.VariantID
		}

		needed[stockKey] += line.Quantity
		if needed[stockKey] > available {
			return nil, nil, fmt.Errorf("product %s: need %d, have %d: %w", line.ProductID, needed[stockKey], available, domain.ErrInsufficientStock)
		}

		items = append(items, gateway.LineItem{
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			Name:           name,
			Quantity:       line.Quantity,
			UnitPriceCents: unitPrice,
		})
		pricingLines = append(pricingLines, pricing.Line{
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			Quantity:       line.Quantity,
			UnitPriceCents: unitPrice,
		})
	}
	return items, pricingLines, nil
}

func (s *Service) resolveAddress(ctx context.Context, in Input) (*domain.Address, error) {
	if in.ShippingAddressID != "" {
		addr, err := s.customers.GetAddress(ctx, in.ShippingAddressID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("address %s: %w", in.ShippingAddressID, domain.ErrInvalidAddress)
			}
			return nil, err
		}
		// A stored address must belong to the requesting customer.
		if addr.CustomerID != nil && (in.CustomerID == nil || *addr.CustomerID != *in.CustomerID) {
			return nil, fmt.Errorf("address %s: %w", in.ShippingAddressID, domain.ErrInvalidAddress)
		}
		return addr, nil
	}

	if in.GuestAddress == nil {
		return nil, fmt.Errorf("shipping address required: %w", domain.ErrInvalidAddress)
	}
	candidate := domain.Address{
		FullName:   in.GuestAddress.FullName,
		Street:     in.GuestAddress.Street,
		City:       in.GuestAddress.City,
		PostalCode: in.GuestAddress.PostalCode,
		Country:    in.GuestAddress.Country,
	}
	if !candidate.Complete() {
		return nil, fmt.Errorf("guest address incomplete: %w", domain.ErrInvalidAddress)
	}
	return s.customers.CreateGuestAddress(ctx, customerrepo.GuestAddressInput{
		FullName:   in.GuestAddress.FullName,
		Street:     in.GuestAddress.Street,
		City:       in.GuestAddress.City,
		Region:     in.GuestAddress.Region,
		PostalCode: in.GuestAddress.PostalCode,
		Country:    in.GuestAddress.Country,
		Phone:      in.GuestAddress.Phone,
	})
}

func (s *Service) resolveDiscount(ctx context.Context, code string) (*pricing.Discount, error) {
	if code == "" {
		return nil, nil
	}
	dc, err := s.codes.GetDiscountCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("discount code %q: %w", code, domain.ErrNotFound)
		}
		return nil, err
	}
	if !dc.Active {
		return nil, fmt.Errorf("discount code %q inactive: %w", code, domain.ErrNotFound)
	}
	return &pricing.Discount{Kind: dc.Kind, Percent: dc.Percent, AmountCents: dc.AmountCents}, nil
}
