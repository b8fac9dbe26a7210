package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anishff444/nepwears/internal/domain"
)

type orderPayload struct {
	Order *domain.Order `json:"order"`
}

// CreateOrder turns the authenticated user's cart into an order and returns
// the payment gateway hand-off. The payload is returned as sent; callers
// check PaymentRedirect.Complete.
func (c *Client) CreateOrder(ctx context.Context) (*domain.PaymentRedirect, error) {
	res, err := call[domain.PaymentRedirect](ctx, c, request{method: http.MethodPost, path: []string{"orders", "checkout"}}, true)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// VerifyPayment forwards the gateway callback query to the backend.
func (c *Client) VerifyPayment(ctx context.Context, params url.Values) (*domain.Order, error) {
	return c.orderCall(ctx, request{method: http.MethodGet, path: []string{"orders", "verify-payment"}, query: params})
}

// OrderHistory lists the authenticated user's orders.
func (c *Client) OrderHistory(ctx context.Context) ([]domain.Order, error) {
	return call[[]domain.Order](ctx, c, request{method: http.MethodGet, path: []string{"orders", "history"}}, true)
}

// OrderStatus returns order orderID including its payment status.
func (c *Client) OrderStatus(ctx context.Context, orderID string) (*domain.Order, error) {
	return c.orderCall(ctx, request{method: http.MethodGet, path: []string{"orders", "status", orderID}})
}

// CheckPaymentStatus is OrderStatus under the name the payment result page
// uses.
func (c *Client) CheckPaymentStatus(ctx context.Context, orderID string) (*domain.Order, error) {
	return c.OrderStatus(ctx, orderID)
}

func (c *Client) orderCall(ctx context.Context, req request) (*domain.Order, error) {
	res, err := call[orderPayload](ctx, c, req, true)
	if err != nil {
		return nil, err
	}
	if res.Order == nil {
		return nil, malformed(fmt.Errorf("%w: %s /%s: missing order", ErrMalformedResponse, req.method, joinPath(req.path)))
	}
	return res.Order, nil
}

func joinPath(path []string) string {
	return strings.Join(path, "/")
}
