package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anishff444/nepwears/internal/catalog"
	"github.com/anishff444/nepwears/pkg/httputil"
	"github.com/anishff444/nepwears/pkg/pagination"
)

type productResponse struct {
	Product *catalog.ProductView `json:"product"`
}

type productsResponse struct {
	Products []catalog.ProductView `json:"products"`
}

// ListProducts handles GET /api/v1/products?search=&sort=&page=&per_page=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.catalog.List(r.Context(), catalog.Query{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Page:   pagination.FromRequest(r),
	})
	if err != nil {
		h.fail(w, r, err, msgLoadProducts)
		return
	}
	writeData(w, http.StatusOK, res)
}

// FeaturedProducts handles GET /api/v1/products/featured
func (h *Handler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Featured(r.Context())
	if err != nil {
		h.fail(w, r, err, msgLoadProducts)
		return
	}
	writeData(w, http.StatusOK, productsResponse{Products: products})
}

// GetProduct handles GET /api/v1/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, msgLoadProduct)
		return
	}
	writeData(w, http.StatusOK, productResponse{Product: p})
}

// CreateProduct handles POST /api/v1/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateProductInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, invalidBody(err), msgSaveProduct)
		return
	}

	p, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err, msgSaveProduct)
		return
	}
	writeData(w, http.StatusCreated, productResponse{Product: p})
}

// UpdateProduct handles PATCH /api/v1/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var in catalog.UpdateProductInput
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, invalidBody(err), msgSaveProduct)
		return
	}

	p, err := h.catalog.Update(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err, msgSaveProduct)
		return
	}
	writeData(w, http.StatusOK, productResponse{Product: p})
}
