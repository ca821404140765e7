package order

import (
	"context"
	"fmt"
	"io"
	"log"

	"storefront/internal/domain"
	"storefront/internal/notify"
)

type repository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Transition(ctx context.Context, id string, to domain.OrderStatus, restock bool) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

// Service drives the order lifecycle after materialization.
type Service struct {
	repo     repository
	notifier notify.Notifier
	logger   *log.Logger
}

func New(repo repository, notifier notify.Notifier, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

// Transition advances the order to the requested status. Cancelling also
// returns the order's quantities to stock in the same transaction as the
// status write.
func (s *Service) Transition(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(to) {
		return nil, fmt.Errorf("unknown status %q: %w", to, domain.ErrIllegalTransition)
	}

	restock := to == domain.StatusCancelled
	ord, err := s.repo.Transition(ctx, id, to, restock)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.OrderStatusChanged(ctx, ord); err != nil {
		s.logger.Printf("order: notify status change for %s failed: %v", ord.ID, err)
	}
	return ord, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
