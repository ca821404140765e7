package promotion

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type CreatePromotionInput struct {
	Name        string
	Kind        domain.PromotionKind
	Percent     int
	AmountCents int64
	StartsAt    time.Time
	EndsAt      time.Time
	ProductIDs  []string
}

type Repository interface {
	Create(ctx context.Context, in CreatePromotionInput) (*domain.Promotion, error)
	GetByID(ctx context.Context, id string) (*domain.Promotion, error)
	List(ctx context.Context) ([]domain.Promotion, error)
	Delete(ctx context.Context, id string) error

	// ListFinished returns promotions whose window has closed and that
	// still hold product links, for the expiry sweep. A promotion whose
	// links were removed by Unlink no longer appears.
	ListFinished(ctx context.Context, now time.Time) ([]domain.Promotion, error)

	// Unlink removes a promotion's product links once its price holds
	// have been released, so later sweeps skip it.
	Unlink(ctx context.Context, promotionID string) error

	// AveragePercentOff averages percent across active percentage
	// promotions only; fixed-amount promotions are excluded from the
	// aggregate.
	AveragePercentOff(ctx context.Context, now time.Time) (float64, error)

	GetDiscountCode(ctx context.Context, code string) (*domain.DiscountCode, error)
}
