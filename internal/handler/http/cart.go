package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anishff444/nepwears/internal/domain"
	"github.com/anishff444/nepwears/internal/event"
	"github.com/anishff444/nepwears/internal/session"
	"github.com/anishff444/nepwears/internal/store"
	apperrors "github.com/anishff444/nepwears/pkg/errors"
	"github.com/anishff444/nepwears/pkg/httputil"
	"github.com/anishff444/nepwears/pkg/logger"
)

// cartView is the cart drawer as the frontend renders it. Error carries the
// user-facing text of the last failed cart call.
type cartView struct {
	Items     []domain.LineItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"item_count"`
	IsOpen    bool              `json:"is_open"`
	IsLoading bool              `json:"is_loading"`
	Error     string            `json:"error,omitempty"`
}

func newCartView(s store.Snapshot) cartView {
	items := s.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	v := cartView{
		Items:     items,
		Total:     s.Total,
		ItemCount: s.ItemCount,
		IsOpen:    s.IsOpen,
		IsLoading: s.IsLoading,
	}
	if s.LastError != nil {
		v.Error = apperrors.UserMessage(s.LastError, msgLoadCart)
	}
	return v
}

func (h *Handler) writeCart(w http.ResponseWriter, st *session.State) {
	writeData(w, http.StatusOK, newCartView(st.Cart.Snapshot()))
}

// GetCart handles GET /api/v1/cart. A logged-in session reloads its cart
// from the server first; a failed reload yields an empty cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	st := h.state(r)
	if st.Authenticated() {
		st.Cart.FetchCart(r.Context())
	}
	h.writeCart(w, st)
}

// AddCartItem handles POST /api/v1/cart/items/{productId}
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	st := h.state(r)
	if err := st.Cart.AddItem(r.Context(), productID); err != nil {
		h.fail(w, r, err, msgAddToCart)
		return
	}

	h.publishCartEvent(r.Context(), st, productID, h.events.PublishCartItemAdded)
	h.writeCart(w, st)
}

// RemoveCartItem handles DELETE /api/v1/cart/items/{productId}
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	st := h.state(r)
	if err := st.Cart.RemoveItem(r.Context(), productID); err != nil {
		h.fail(w, r, err, msgRemoveItem)
		return
	}

	h.publishCartEvent(r.Context(), st, productID, h.events.PublishCartItemRemoved)
	h.writeCart(w, st)
}

// OpenCart handles POST /api/v1/cart/open
func (h *Handler) OpenCart(w http.ResponseWriter, r *http.Request) {
	st := h.state(r)
	st.Cart.Open()
	h.writeCart(w, st)
}

// CloseCart handles POST /api/v1/cart/close
func (h *Handler) CloseCart(w http.ResponseWriter, r *http.Request) {
	st := h.state(r)
	st.Cart.Close()
	h.writeCart(w, st)
}

// ToggleCart handles POST /api/v1/cart/toggle
func (h *Handler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	st := h.state(r)
	st.Cart.Toggle()
	h.writeCart(w, st)
}

// ClearCart handles DELETE /api/v1/cart. Only the local copy is cleared.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	st := h.state(r)
	st.Cart.Clear()
	h.writeCart(w, st)
}

func (h *Handler) publishCartEvent(
	ctx context.Context,
	st *session.State,
	productID string,
	publish func(context.Context, event.CartItemData) error,
) {
	data := event.CartItemData{
		SessionID: st.ID(),
		ProductID: productID,
		ItemCount: st.Cart.ItemCount(),
		Total:     st.Cart.Total(),
	}
	if u := st.User(); u != nil {
		data.UserID = u.ID
	}
	if err := publish(ctx, data); err != nil {
		logger.FromContext(ctx).WarnContext(ctx, "failed to publish cart event", "error", err.Error())
	}
}
