package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anishff444/nepwears/internal/domain"
)

// ProductInput is the body for creating or updating a product. Update sends
// only the fields that are set.
type ProductInput struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Category    string   `json:"category,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

type productsPayload struct {
	Products []domain.Product `json:"products"`
}

type productPayload struct {
	Product *domain.Product `json:"product"`
}

// ListProducts returns the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	res, err := call[productsPayload](ctx, c, request{method: http.MethodGet, path: []string{"products"}}, true)
	if err != nil {
		return nil, err
	}
	return res.Products, nil
}

// GetProduct returns a single product.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return c.productCall(ctx, request{method: http.MethodGet, path: []string{"products", id}})
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	return c.productCall(ctx, request{method: http.MethodPost, path: []string{"products", "createProduct"}, body: in})
}

// UpdateProduct changes the fields of product id that are set in in.
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	return c.productCall(ctx, request{method: http.MethodPatch, path: []string{"products", "updateProductDetail", id}, body: in})
}

func (c *Client) productCall(ctx context.Context, req request) (*domain.Product, error) {
	res, err := call[productPayload](ctx, c, req, true)
	if err != nil {
		return nil, err
	}
	if res.Product == nil {
		return nil, malformed(fmt.Errorf("%w: %s /%s: missing product", ErrMalformedResponse, req.method, joinPath(req.path)))
	}
	return res.Product, nil
}
