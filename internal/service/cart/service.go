package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

type Service struct {
	repo     cartRepo
	products productRepo
	shipping pricing.ShippingConfig
}

type cartRepo interface {
	GetBySessionKey(ctx context.Context, sessionKey string) (*domain.Cart, error)
	Create(ctx context.Context, sessionKey string, customerID *string) (*domain.Cart, error)
	UpsertLine(ctx context.Context, cartID, productID string, variantID *string, quantity int, unitPriceCents int64) error
	SetLineQuantity(ctx context.Context, cartID, lineID string, quantity int) error
	DeleteLine(ctx context.Context, cartID, lineID string) error
	Clear(ctx context.Context, cartID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetVariant(ctx context.Context, id string) (*domain.Variant, error)
}

func New(repo cartRepo, products productRepo, shipping pricing.ShippingConfig) *Service {
	return &Service{repo: repo, products: products, shipping: shipping}
}

// View is a cart with totals recomputed against current product prices.
// Stored line snapshots are never used for the money figures.
type View struct {
	Cart   domain.Cart    `json:"cart"`
	Totals pricing.Totals `json:"totals"`
}

// NewSessionKey issues the durable per-session cart key.
func NewSessionKey() string {
	return uuid.NewString()
}

func (s *Service) GetOrCreate(ctx context.Context, sessionKey string, customerID *string) (*View, error) {
	cart, err := s.repo.GetBySessionKey(ctx, sessionKey)
	if errors.Is(err, domain.ErrNotFound) {
		cart, err = s.repo.Create(ctx, sessionKey, customerID)
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *Service) AddLine(ctx context.Context, sessionKey, productID string, variantID *string, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, domain.ErrInvalidLine)
	}

	unitPrice, err := s.resolveUnitPrice(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartForSession(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertLine(ctx, cart.ID, productID, variantID, quantity, unitPrice); err != nil {
		return nil, err
	}
	return s.refresh(ctx, sessionKey)
}

// SetQuantity rejects zero and negative quantities; removing a line is an
// explicit RemoveLine call.
func (s *Service) SetQuantity(ctx context.Context, sessionKey, lineID string, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, domain.ErrInvalidLine)
	}
	cart, err := s.cartForSession(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetLineQuantity(ctx, cart.ID, lineID, quantity); err != nil {
		return nil, err
	}
	return s.refresh(ctx, sessionKey)
}

func (s *Service) RemoveLine(ctx context.Context, sessionKey, lineID string) (*View, error) {
	cart, err := s.cartForSession(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteLine(ctx, cart.ID, lineID); err != nil {
		return nil, err
	}
	return s.refresh(ctx, sessionKey)
}

func (s *Service) Clear(ctx context.Context, sessionKey string) (*View, error) {
	cart, err := s.cartForSession(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return nil, err
	}
	return s.refresh(ctx, sessionKey)
}

func (s *Service) cartForSession(ctx context.Context, sessionKey string) (*domain.Cart, error) {
	cart, err := s.repo.GetBySessionKey(ctx, sessionKey)
	if errors.Is(err, domain.ErrNotFound) {
		return s.repo.Create(ctx, sessionKey, nil)
	}
	return cart, err
}

func (s *Service) refresh(ctx context.Context, sessionKey string) (*View, error) {
	cart, err := s.repo.GetBySessionKey(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *Service) resolveUnitPrice(ctx context.Context, productID string, variantID *string) (int64, error) {
	if variantID != nil {
		v, err := s.products.GetVariant(ctx, *variantID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return 0, fmt.Errorf("variant %s: %w", *variantID, domain.ErrProductNotFound)
			}
			return 0, err
		}
		if v.ProductID != productID {
			return 0, fmt.Errorf("variant %s does not belong to product %s: %w", *variantID, productID, domain.ErrProductNotFound)
		}
		return v.PriceCents, nil
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("product %s: %w", productID, domain.ErrProductNotFound)
		}
		return 0, err
	}
	return p.PriceCents, nil
}

// view recomputes totals from current prices on every read; a price change
// between mutations is always reflected.
func (s *Service) view(ctx context.Context, cart *domain.Cart) (*View, error) {
	if len(cart.Lines) == 0 {
		return &View{Cart: *cart}, nil
	}
	lines := make([]pricing.Line, 0, len(cart.Lines))
	for i := range cart.Lines {
		line := &cart.Lines[i]
		unitPrice, err := s.resolveUnitPrice(ctx, line.ProductID, line.VariantID)
		if err != nil {
			return nil, err
		}
		line.UnitPriceCents = unitPrice
		lines = append(lines, pricing.Line{
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			Quantity:       line.Quantity,
			UnitPriceCents: unitPrice,
		})
	}
	totals, err := pricing.ComputeTotals(lines, nil, s.shipping)
	if err != nil {
		return nil, err
	}
	return &View{Cart: *cart, Totals: totals}, nil
}
