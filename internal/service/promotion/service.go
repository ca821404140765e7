package promotion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	promotionrepo "storefront/internal/repository/promotion"
)

type Service struct {
	repo     promoRepo
	products productRepo
	logger   *log.Logger
	now      func() time.Time
}

type promoRepo interface {
	Create(ctx context.Context, in promotionrepo.CreatePromotionInput) (*domain.Promotion, error)
	GetByID(ctx context.Context, id string) (*domain.Promotion, error)
	List(ctx context.Context) ([]domain.Promotion, error)
	Delete(ctx context.Context, id string) error
	ListFinished(ctx context.Context, now time.Time) ([]domain.Promotion, error)
	Unlink(ctx context.Context, promotionID string) error
	AveragePercentOff(ctx context.Context, now time.Time) (float64, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ApplyPromotionPrice(ctx context.Context, productID string, promoPriceCents int64) error
	RevertPromotionPrice(ctx context.Context, productID string) error
}

func New(repo promoRepo, products productRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, products: products, logger: logger, now: time.Now}
}

type CreateInput struct {
	Name        string               `json:"name"`
	Kind        domain.PromotionKind `json:"kind"`
	Percent     int                  `json:"percent"`
	AmountCents int64                `json:"amountCents"`
	StartsAt    time.Time            `json:"startsAt"`
	EndsAt      time.Time            `json:"endsAt"`
	ProductIDs  []string             `json:"productIds"`
}

// View is a promotion with its state derived at read time.
type View struct {
	domain.Promotion
	State domain.PromotionState `json:"state"`
}

// PriceAfter computes the promoted price from the pre-promotion price:
// percentage promotions round half up, fixed-amount promotions floor at zero.
func PriceAfter(originalCents int64, promo domain.Promotion) int64 {
	switch promo.Kind {
	case domain.PromotionPercentage:
		return decimal.NewFromInt(originalCents).
			Mul(decimal.NewFromInt(int64(100 - promo.Percent))).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	case domain.PromotionFixedAmount:
		price := originalCents - promo.AmountCents
		if price < 0 {
			price = 0
		}
		return price
	default:
		return originalCents
	}
}

// Create validates the promotion, stores it and applies the price change to
// every target product. A conflict on any target undoes the already-applied
// targets and removes the promotion, so a rejected create leaves no trace.
func (s *Service) Create(ctx context.Context, in CreateInput) (*View, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("name required")
	}
	switch in.Kind {
	case domain.PromotionPercentage:
		if in.Percent < 0 || in.Percent > 100 {
			return nil, fmt.Errorf("percent %d out of range", in.Percent)
		}
	case domain.PromotionFixedAmount:
		if in.AmountCents <= 0 {
			return nil, errors.New("amountCents must be positive")
		}
	default:
		return nil, fmt.Errorf("unknown promotion kind %q", in.Kind)
	}
	if !in.EndsAt.After(in.StartsAt) {
		return nil, errors.New("endsAt must be after startsAt")
	}

	// Pre-check targets so an obvious conflict never writes anything.
	for _, productID := range in.ProductIDs {
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("product %s: %w", productID, domain.ErrProductNotFound)
			}
			return nil, err
		}
		if p.OriginalPriceCents != nil {
			return nil, fmt.Errorf("product %s already promoted: %w", productID, domain.ErrPromotionConflict)
		}
	}

	promo, err := s.repo.Create(ctx, promotionrepo.CreatePromotionInput{
		Name:        in.Name,
		Kind:        in.Kind,
		Percent:     in.Percent,
		AmountCents: in.AmountCents,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		ProductIDs:  in.ProductIDs,
	})
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, promo); err != nil {
		return nil, err
	}

	return &View{Promotion: *promo, State: promo.StateAt(s.now())}, nil
}

func (s *Service) apply(ctx context.Context, promo *domain.Promotion) error {
	var applied []string
	for _, productID := range promo.ProductIDs {
		p, err := s.products.GetByID(ctx, productID)
		if err == nil {
			err = s.products.ApplyPromotionPrice(ctx, productID, PriceAfter(p.PriceCents, *promo))
		}
		if err != nil {
			// Undo the targets applied so far and drop the promotion.
			for _, undoneID := range applied {
				if revErr := s.products.RevertPromotionPrice(ctx, undoneID); revErr != nil {
					s.logger.Printf("promotion %s: undo product %s: %v", promo.ID, undoneID, revErr)
				}
			}
			if delErr := s.repo.Delete(ctx, promo.ID); delErr != nil {
				s.logger.Printf("promotion %s: delete after failed apply: %v", promo.ID, delErr)
			}
			return err
		}
		applied = append(applied, productID)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	promo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &View{Promotion: *promo, State: promo.StateAt(s.now())}, nil
}

func (s *Service) List(ctx context.Context) ([]View, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]View, 0, len(promos))
	for _, p := range promos {
		views = append(views, View{Promotion: p, State: p.StateAt(now)})
	}
	return views, nil
}

// Delete reverts prices on every associated product, then removes the
// promotion and its join rows.
func (s *Service) Delete(ctx context.Context, id string) error {
	promo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	for _, productID := range promo.ProductIDs {
		if err := s.products.RevertPromotionPrice(ctx, productID); err != nil {
			return fmt.Errorf("revert product %s: %w", productID, err)
		}
	}
	return s.repo.Delete(ctx, id)
}

// SweepExpired reverts prices held by promotions whose window has closed,
// then unlinks each swept promotion from its products. Once unlinked the
// promotion drops out of ListFinished, so a later sweep cannot revert a
// newer promotion that has since taken over a product's price.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	finished, err := s.repo.ListFinished(ctx, s.now())
	if err != nil {
		return 0, err
	}
	swept := 0
	for _, promo := range finished {
		for _, productID := range promo.ProductIDs {
			if err := s.products.RevertPromotionPrice(ctx, productID); err != nil {
				return swept, fmt.Errorf("promotion %s product %s: %w", promo.ID, productID, err)
			}
		}
		if err := s.repo.Unlink(ctx, promo.ID); err != nil {
			return swept, fmt.Errorf("promotion %s unlink: %w", promo.ID, err)
		}
		swept++
	}
	return swept, nil
}

type Stats struct {
	// AveragePercentOff covers active percentage promotions only;
	// fixed-amount promotions do not enter the average.
	AveragePercentOff float64 `json:"averagePercentOff"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	avg, err := s.repo.AveragePercentOff(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return &Stats{AveragePercentOff: avg}, nil
}
