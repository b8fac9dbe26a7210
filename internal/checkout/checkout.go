// Package checkout turns a session's cart into an order and hands the browser
// off to the eSewa payment gateway.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/anishff444/nepwears/internal/domain"
	"github.com/anishff444/nepwears/internal/event"
	"github.com/anishff444/nepwears/internal/session"
	apperrors "github.com/anishff444/nepwears/pkg/errors"
)

// FallbackMessage is shown when a checkout fails without a message the
// shopper can act on.
const FallbackMessage = "Failed to process checkout"

// ErrEmptyCart is returned by Begin when there is nothing to order.
var ErrEmptyCart = apperrors.InvalidInput("Your cart is empty")

// Failure reasons carried on the payment-failed redirect.
const (
	ReasonOrderNotFound    = "order_not_found"
	ReasonInvalidSignature = "invalid_signature"
	ReasonAmountMismatch   = "amount_mismatch"
	ReasonUnknown          = "payment_failed"
)

// API is the subset of the backend client used at checkout.
type API interface {
	CreateOrder(ctx context.Context) (*domain.PaymentRedirect, error)
	VerifyPayment(ctx context.Context, params url.Values) (*domain.Order, error)
}

// Events publishes checkout analytics. *event.Producer implements it.
type Events interface {
	PublishCheckoutStarted(ctx context.Context, data event.CheckoutStartedData) error
	PublishPaymentVerified(ctx context.Context, data event.PaymentVerifiedData) error
}

// Service runs the checkout flow.
type Service struct {
	api    API
	events Events
	logger *slog.Logger
}

// NewService creates a checkout service.
func NewService(client API, events Events, logger *slog.Logger) *Service {
	return &Service{api: client, events: events, logger: logger}
}

// Begin creates an order from the session's server cart and returns the
// gateway hand-off. An empty local cart fails with ErrEmptyCart before any
// order is created. A failed checkout leaves no local state behind.
func (s *Service) Begin(ctx context.Context, st *session.State) (*domain.PaymentRedirect, error) {
	items := st.Cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	redirect, err := s.api.CreateOrder(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRedirect(redirect); err != nil {
		s.logger.ErrorContext(ctx, "unusable checkout response", slog.String("error", err.Error()))
		return nil, err
	}

	data := event.CheckoutStartedData{
		SessionID: st.ID(),
		ItemCount: domain.ItemCount(items),
	}
	if u := st.User(); u != nil {
		data.UserID = u.ID
	}
	if redirect.Order != nil {
		data.OrderID = redirect.Order.ID
		data.TotalAmount = redirect.Order.TotalAmount
	}
	if err := s.events.PublishCheckoutStarted(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "failed to publish checkout event", slog.String("error", err.Error()))
	}

	s.logger.InfoContext(ctx, "checkout started",
		slog.String("order_id", data.OrderID),
		slog.Float64("total_amount", data.TotalAmount),
	)
	return redirect, nil
}

// checkRedirect rejects a hand-off the browser cannot be sent to.
func checkRedirect(r *domain.PaymentRedirect) error {
	if !r.Complete() {
		return apperrors.BadGateway("checkout response is missing the payment gateway details")
	}
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return apperrors.BadGateway(fmt.Sprintf("checkout response has an invalid gateway URL %q", r.URL))
	}
	return nil
}

// VerifyPayment forwards the gateway's callback query to the backend. A
// verified payment clears the local cart.
func (s *Service) VerifyPayment(ctx context.Context, st *session.State, params url.Values) (*domain.Order, error) {
	order, err := s.api.VerifyPayment(ctx, params)
	if err != nil {
		s.logger.WarnContext(ctx, "payment verification failed", slog.String("error", err.Error()))
		return nil, err
	}

	st.Cart.Clear()

	if err := s.events.PublishPaymentVerified(ctx, event.PaymentVerifiedData{
		SessionID:     st.ID(),
		OrderID:       order.ID,
		TotalAmount:   order.TotalAmount,
		PaymentStatus: order.PaymentStatus,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish payment event", slog.String("error", err.Error()))
	}
	return order, nil
}

// FailureReason maps a verification error to the reason shown on the
// payment-failed page.
func FailureReason(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch code := strings.ToLower(appErr.Code); code {
		case ReasonOrderNotFound, ReasonInvalidSignature, ReasonAmountMismatch:
			return code
		}
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return ReasonOrderNotFound
	}
	return ReasonUnknown
}

// FailureMessage returns the text shown for a payment-failed reason.
func FailureMessage(reason string) string {
	switch reason {
	case ReasonOrderNotFound:
		return "Order not found. Please try again."
	case ReasonInvalidSignature:
		return "Payment verification failed. Please contact support."
	case ReasonAmountMismatch:
		return "Payment amount mismatch. Please contact support."
	default:
		return "Your payment could not be processed. Please try again."
	}
}
