package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/anishff444/nepwears/internal/account"
	"github.com/anishff444/nepwears/internal/catalog"
	"github.com/anishff444/nepwears/internal/checkout"
	"github.com/anishff444/nepwears/internal/event"
	"github.com/anishff444/nepwears/internal/orders"
	"github.com/anishff444/nepwears/internal/session"
	apperrors "github.com/anishff444/nepwears/pkg/errors"
	"github.com/anishff444/nepwears/pkg/httputil"
	"github.com/anishff444/nepwears/pkg/logger"
	"github.com/anishff444/nepwears/pkg/validator"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Fallback messages shown when the backend gives nothing the shopper can use.
const (
	msgGeneric      = "Something went wrong"
	msgAddToCart    = "Failed to add to cart"
	msgRemoveItem   = "Failed to remove item"
	msgLoadCart     = "Failed to load cart"
	msgLoadProduct  = "Failed to load product"
	msgLoadProducts = "Failed to load products"
	msgLoadOrder    = "Failed to load order"
	msgSaveProduct  = "Failed to save product"
)

// Deps are the services the handlers delegate to.
type Deps struct {
	Sessions *session.Manager
	Account  *account.Service
	Catalog  *catalog.Service
	Orders   *orders.Service
	Checkout *checkout.Service
	Events   *event.Producer
}

// Handler serves the storefront JSON API.
type Handler struct {
	sessions *session.Manager
	account  *account.Service
	catalog  *catalog.Service
	orders   *orders.Service
	checkout *checkout.Service
	events   *event.Producer
	cookie   CookieConfig
	logger   *slog.Logger
}

// NewHandler creates the storefront handler.
func NewHandler(deps Deps, cookie CookieConfig, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: deps.Sessions,
		account:  deps.Account,
		catalog:  deps.Catalog,
		orders:   deps.Orders,
		checkout: deps.Checkout,
		events:   deps.Events,
		cookie:   cookie,
		logger:   logger,
	}
}

// state returns the session resolved by the Session middleware.
func (h *Handler) state(r *http.Request) *session.State {
	return session.FromContext(r.Context())
}

// fail writes err as a JSON error. Validation failures list their fields;
// anything else shows the backend's message or fallback. Nothing is written
// once the request context is done.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, context.Canceled) || r.Context().Err() != nil {
		// The client is gone, or chi's Timeout has already answered 504.
		logger.FromContext(r.Context()).DebugContext(r.Context(), "request ended before the backend answered",
			slog.String("error", err.Error()),
		)
		return
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteValidationError(w, err)
		return
	}
	httputil.WriteErrorMessage(w, r, err, fallback, h.logger)
}

// decodeJSON reads a JSON body into dst. Validation is left to the services.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
}

func invalidBody(err error) error {
	appErr := apperrors.InvalidInput("Invalid request body")
	appErr.Err = fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	return appErr
}

func writeData(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, httputil.Response{Data: data})
}
