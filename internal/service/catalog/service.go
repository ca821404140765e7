package catalog

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productrepo.CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in productrepo.UpdateProductInput) (*domain.Product, error)
	AddVariant(ctx context.Context, productID string, in productrepo.VariantInput) (*domain.Variant, error)
}

// Service is the admin-facing product and variant surface.
type Service struct {
	repo repository
}

func New(repo repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in productrepo.CreateProductInput) (*domain.Product, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, fmt.Errorf("sku and name are required: %w", domain.ErrInvalidLine)
	}
	if in.PriceCents <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", domain.ErrInvalidLine)
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("stock must not be negative: %w", domain.ErrInvalidLine)
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id string, in productrepo.UpdateProductInput) (*domain.Product, error) {
	if in.PriceCents != nil && *in.PriceCents <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", domain.ErrInvalidLine)
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, fmt.Errorf("stock must not be negative: %w", domain.ErrInvalidLine)
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) AddVariant(ctx context.Context, productID string, in productrepo.VariantInput) (*domain.Variant, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, fmt.Errorf("sku and name are required: %w", domain.ErrInvalidLine)
	}
	if in.PriceCents <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", domain.ErrInvalidLine)
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("stock must not be negative: %w", domain.ErrInvalidLine)
	}
	return s.repo.AddVariant(ctx, productID, in)
}
