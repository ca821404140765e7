// Package notify is the buyer-notification port. Template rendering and
// delivery live outside this core; the default implementation only logs,
// which also makes notification best-effort visible in operator output.
package notify

import (
	"context"
	"io"
	"log"

	"storefront/internal/domain"
)

type Notifier interface {
	OrderConfirmed(ctx context.Context, order *domain.Order) error
	OrderStatusChanged(ctx context.Context, order *domain.Order) error
}

type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) OrderConfirmed(_ context.Context, order *domain.Order) error {
	n.logger.Printf("notify: order %s confirmed ref=%s total=%d", order.ID, order.ExternalReference, order.TotalCents)
	return nil
}

func (n *LogNotifier) OrderStatusChanged(_ context.Context, order *domain.Order) error {
	n.logger.Printf("notify: order %s status=%s", order.ID, order.Status)
	return nil
}
