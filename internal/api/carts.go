package api

import (
	"context"
	"net/http"

	"github.com/anishff444/nepwears/internal/domain"
)

type cartPayload struct {
	Cart *domain.Cart `json:"cart"`
}

// GetCart returns the line items of the authenticated user's cart. A user
// without a cart gets a nil slice.
func (c *Client) GetCart(ctx context.Context) ([]domain.LineItem, error) {
	return c.cartCall(ctx, "")
}

// AddToCart adds one unit of productID and returns the updated line items.
func (c *Client) AddToCart(ctx context.Context, productID string) ([]domain.LineItem, error) {
	return c.cartCall(ctx, "add", productID)
}

// RemoveFromCart removes the whole line for productID and returns the
// updated line items.
func (c *Client) RemoveFromCart(ctx context.Context, productID string) ([]domain.LineItem, error) {
	return c.cartCall(ctx, "remove", productID)
}

func (c *Client) cartCall(ctx context.Context, action string, productID ...string) ([]domain.LineItem, error) {
	req := request{method: http.MethodGet, path: []string{"carts"}}
	if action != "" {
		req.method = http.MethodPost
		req.path = append(req.path, action)
		req.path = append(req.path, productID...)
	}

	res, err := call[cartPayload](ctx, c, req, true)
	if err != nil {
		return nil, err
	}
	if res.Cart == nil {
		return nil, nil
	}
	return res.Cart.Products, nil
}
