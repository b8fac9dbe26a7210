// Package catalog serves the product listing, product detail and the admin
// product writes.
package catalog

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/anishff444/nepwears/internal/api"
	"github.com/anishff444/nepwears/internal/domain"
	"github.com/anishff444/nepwears/pkg/pagination"
	"github.com/anishff444/nepwears/pkg/slug"
	"github.com/anishff444/nepwears/pkg/validator"
)

// Sort orders accepted by List.
const (
	SortNewest    = "-createdAt"
	SortOldest    = "createdAt"
	SortPriceAsc  = "price"
	SortPriceDesc = "-price"
	SortNameAsc   = "name"
	SortNameDesc  = "-name"
)

// DefaultFeaturedLimit is the number of products shown on the home page.
const DefaultFeaturedLimit = 6

// Query selects a page of the catalog.
type Query struct {
	Search string
	Sort   string
	Page   pagination.Params
}

// ProductView is a product as the storefront presents it.
type ProductView struct {
	domain.Product
	Slug    string `json:"slug"`
	InStock bool   `json:"inStock"`
}

// NewProductView derives the view fields of p.
func NewProductView(p domain.Product) ProductView {
	return ProductView{Product: p, Slug: slug.Generate(p.Name), InStock: p.InStock()}
}

// CreateProductInput holds a new product.
type CreateProductInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"required,max=5000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category" validate:"required,max=100"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,url"`
}

// UpdateProductInput holds product changes. Nil and empty fields are left
// unchanged.
type UpdateProductInput struct {
	Name        string   `json:"name" validate:"omitempty,max=200"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Category    string   `json:"category" validate:"omitempty,max=100"`
	ImageURL    string   `json:"imageUrl" validate:"omitempty,url"`
}

// API is the subset of the backend client used by the catalog.
type API interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, in api.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in api.ProductInput) (*domain.Product, error)
}

// Service implements catalog reads and writes.
type Service struct {
	api           API
	logger        *slog.Logger
	featuredLimit int
}

// NewService creates a catalog service. A non-positive featuredLimit uses
// DefaultFeaturedLimit.
func NewService(client API, featuredLimit int, logger *slog.Logger) *Service {
	if featuredLimit <= 0 {
		featuredLimit = DefaultFeaturedLimit
	}
	return &Service{api: client, logger: logger, featuredLimit: featuredLimit}
}

// List filters, sorts and paginates the catalog.
func (s *Service) List(ctx context.Context, q Query) (pagination.Result[ProductView], error) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return pagination.Result[ProductView]{}, err
	}

	matched := Filter(products, q.Search)
	Sort(matched, q.Sort)

	return pagination.Paginate(views(matched), q.Page), nil
}

// Featured returns the first products of the catalog in backend order.
func (s *Service) Featured(ctx context.Context) ([]ProductView, error) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) > s.featuredLimit {
		products = products[:s.featuredLimit]
	}
	return views(products), nil
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id string) (*ProductView, error) {
	p, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	v := NewProductView(*p)
	return &v, nil
}

// Create adds a product.
func (s *Service) Create(ctx context.Context, in CreateProductInput) (*ProductView, error) {
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	p, err := s.api.CreateProduct(ctx, api.ProductInput{
		Name:        in.Name,
		Description: in.Description,
		Price:       &in.Price,
		Stock:       &in.Stock,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created", slog.String("product_id", p.ID))
	v := NewProductView(*p)
	return &v, nil
}

// Update changes the fields of product id that are set in in.
func (s *Service) Update(ctx context.Context, id string, in UpdateProductInput) (*ProductView, error) {
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	p, err := s.api.UpdateProduct(ctx, id, api.ProductInput{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", p.ID))
	v := NewProductView(*p)
	return &v, nil
}

// Filter returns the products whose name or description contains search,
// ignoring case. An empty search matches everything.
func Filter(products []domain.Product, search string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders products in place. An empty order means SortNewest; an unknown
// one keeps the backend order.
func Sort(products []domain.Product, order string) {
	if order == "" {
		order = SortNewest
	}

	var compare func(a, b domain.Product) int
	switch order {
	case SortNewest:
		compare = func(a, b domain.Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortOldest:
		compare = func(a, b domain.Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortPriceAsc:
		compare = func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceDesc:
		compare = func(a, b domain.Product) int { return cmp.Compare(b.Price, a.Price) }
	case SortNameAsc, SortNameDesc:
		// Collators are not safe for concurrent use.
		c := collate.New(language.English)
		if order == SortNameAsc {
			compare = func(a, b domain.Product) int { return c.CompareString(a.Name, b.Name) }
		} else {
			compare = func(a, b domain.Product) int { return c.CompareString(b.Name, a.Name) }
		}
	default:
		return
	}
	slices.SortStableFunc(products, compare)
}

func views(products []domain.Product) []ProductView {
	out := make([]ProductView, len(products))
	for i, p := range products {
		out[i] = NewProductView(p)
	}
	return out
}
