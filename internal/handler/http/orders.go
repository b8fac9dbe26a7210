package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anishff444/nepwears/internal/domain"
	"github.com/anishff444/nepwears/pkg/httputil"
)

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

type orderResponse struct {
	Order *domain.Order `json:"order"`
}

// ListOrders handles GET /api/v1/orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, ordersResponse{Orders: h.orders.History(r.Context())})
}

// OrderStatus handles GET /api/v1/orders/{id}/status
func (h *Handler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.orders.Status(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, msgLoadOrder)
		return
	}
	writeData(w, http.StatusOK, orderResponse{Order: order})
}
