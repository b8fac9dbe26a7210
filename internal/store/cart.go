// Package store holds the per-session cart state. A CartStore caches the
// server's cart; its snapshot changes only by wholesale replacement after a
// successful round-trip or by a local Clear.
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/anishff444/nepwears/internal/domain"
)

var cartActions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_cart_actions_total",
		Help: "Cart store actions by outcome (ok, error, canceled, stale)",
	},
	[]string{"action", "outcome"},
)

// CartAPI is the subset of the backend client the store needs.
type CartAPI interface {
	GetCart(ctx context.Context) ([]domain.LineItem, error)
	AddToCart(ctx context.Context, productID string) ([]domain.LineItem, error)
	RemoveFromCart(ctx context.Context, productID string) ([]domain.LineItem, error)
}

// Snapshot is a consistent copy of the store's state.
type Snapshot struct {
	Items     []domain.LineItem
	Total     float64
	ItemCount int
	IsOpen    bool
	IsLoading bool
	LastError error
}

// CartStore is safe for concurrent use. Network calls are not serialized;
// every call takes a ticket and its response is applied only if no
// later-issued call has already been applied. Responses that arrive after
// the caller's context is done are discarded.
type CartStore struct {
	api    CartAPI
	logger *slog.Logger

	mu      sync.Mutex
	items   []domain.LineItem
	open    bool
	loading int
	lastErr error
	issued  uint64
	applied uint64
}

// NewCartStore creates an empty store backed by api.
func NewCartStore(api CartAPI, logger *slog.Logger) *CartStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartStore{api: api, logger: logger}
}

// FetchCart loads the cart from the server. A failed fetch empties the local
// cart and is logged; the error is not returned.
func (s *CartStore) FetchCart(ctx context.Context) {
	ticket := s.begin()
	items, err := s.api.GetCart(ctx)

	if ctxErr := ctx.Err(); ctxErr != nil {
		s.discard(ticket, "fetch", ctxErr)
		return
	}
	if err != nil {
		s.logger.WarnContext(ctx, "fetch cart failed", slog.String("error", err.Error()))
		s.finish(ticket, "fetch", nil, err)
		return
	}
	s.finish(ticket, "fetch", items, nil)
}

// AddItem adds one unit of productID. On failure the cart is left as it was
// and the error is returned.
func (s *CartStore) AddItem(ctx context.Context, productID string) error {
	return s.mutate(ctx, "add", productID, s.api.AddToCart)
}

// RemoveItem removes the whole line for productID.
func (s *CartStore) RemoveItem(ctx context.Context, productID string) error {
	return s.mutate(ctx, "remove", productID, s.api.RemoveFromCart)
}

func (s *CartStore) mutate(
	ctx context.Context,
	action, productID string,
	fn func(context.Context, string) ([]domain.LineItem, error),
) error {
	ticket := s.begin()
	items, err := fn(ctx, productID)

	if ctxErr := ctx.Err(); ctxErr != nil {
		s.discard(ticket, action, ctxErr)
		return ctxErr
	}
	if err != nil {
		s.logger.WarnContext(ctx, "cart "+action+" failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		s.fail(ticket, action, err)
		return err
	}
	s.finish(ticket, action, items, nil)
	return nil
}

// begin issues a ticket and marks the store loading.
func (s *CartStore) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.loading++
	return s.issued
}

// finish replaces the snapshot with items if ticket is newer than the last
// applied one. err is recorded as the last error (nil clears it).
func (s *CartStore) finish(ticket uint64, action string, items []domain.LineItem, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--

	if ticket <= s.applied {
		cartActions.WithLabelValues(action, "stale").Inc()
		return
	}
	s.applied = ticket
	s.items = slices.Clone(items)
	s.lastErr = err

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	cartActions.WithLabelValues(action, outcome).Inc()
}

// fail records err without touching the snapshot.
func (s *CartStore) fail(ticket uint64, action string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	if ticket > s.applied {
		s.lastErr = err
	}
	cartActions.WithLabelValues(action, "error").Inc()
}

func (s *CartStore) discard(ticket uint64, action string, err error) {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
	cartActions.WithLabelValues(action, "canceled").Inc()
	s.logger.Debug("cart response discarded",
		slog.String("action", action),
		slog.Uint64("ticket", ticket),
		slog.String("reason", err.Error()),
	)
}

// Clear empties the local cart without calling the server. Responses to
// calls issued before Clear are dropped.
func (s *CartStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.lastErr = nil
	s.applied = s.issued
}

// Open shows the cart drawer.
func (s *CartStore) Open() {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
}

// Close hides the cart drawer.
func (s *CartStore) Close() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

// Toggle flips the drawer visibility.
func (s *CartStore) Toggle() {
	s.mu.Lock()
	s.open = !s.open
	s.mu.Unlock()
}

// Items returns a copy of the current line items, nil when there is no cart.
func (s *CartStore) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Total is the sum of price times quantity over the current items.
func (s *CartStore) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Total(s.items)
}

// ItemCount is the sum of quantities over the current items.
func (s *CartStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ItemCount(s.items)
}

// IsOpen reports whether the drawer is visible.
func (s *CartStore) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// IsLoading reports whether any network call is in flight.
func (s *CartStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// LastError returns the error of the most recent applied call, if it failed.
func (s *CartStore) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Snapshot returns the whole state under one lock.
func (s *CartStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Items:     slices.Clone(s.items),
		Total:     domain.Total(s.items),
		ItemCount: domain.ItemCount(s.items),
		IsOpen:    s.open,
		IsLoading: s.loading > 0,
		LastError: s.lastErr,
	}
}
