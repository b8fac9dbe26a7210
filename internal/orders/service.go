package orders

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anishff444/nepwears/internal/domain"
)

// API is the subset of the backend client used for order reads.
type API interface {
	OrderHistory(ctx context.Context) ([]domain.Order, error)
	OrderStatus(ctx context.Context, orderID string) (*domain.Order, error)
}

// Service reads the shopper's orders.
type Service struct {
	api    API
	logger *slog.Logger
}

// NewService creates an order service.
func NewService(client API, logger *slog.Logger) *Service {
	return &Service{api: client, logger: logger}
}

// History returns the shopper's orders. A failed read is logged and yields an
// empty list.
func (s *Service) History(ctx context.Context) []domain.Order {
	orders, err := s.api.OrderHistory(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.WarnContext(ctx, "failed to load order history", slog.String("error", err.Error()))
		}
		return []domain.Order{}
	}
	if orders == nil {
		return []domain.Order{}
	}
	return orders
}

// Status returns order orderID with its payment and fulfilment status.
func (s *Service) Status(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.api.OrderStatus(ctx, orderID)
}
