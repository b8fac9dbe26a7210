package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/anishff444/nepwears/internal/api"
	"github.com/anishff444/nepwears/internal/auth"
	"github.com/anishff444/nepwears/internal/session"
	"github.com/anishff444/nepwears/pkg/httputil"
	"github.com/anishff444/nepwears/pkg/logger"
	"github.com/anishff444/nepwears/pkg/middleware"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Session resolves the session cookie into a session state, creating a new
// session when the cookie is absent, unknown or expired. The state, its
// bearer token and the shopper's identity are stored in the request context.
func (h *Handler) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(h.cookie.Name); err == nil {
			id = c.Value
		}

		st, err := h.sessions.Load(r.Context(), id)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		if st.ID() != id {
			h.setCookie(w, st)
		}

		ctx := session.NewContext(r.Context(), st)
		ctx = logger.WithSessionID(ctx, st.ID())
		ctx = api.WithToken(ctx, st.Token())
		ctx = middleware.WithClaims(ctx, claimsFor(st))
		ctx = middleware.Enrich(ctx, h.logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) setCookie(w http.ResponseWriter, st *session.State) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    st.ID(),
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// claimsFor derives the request identity from the session. The cached user
// wins; a token without one falls back to its claims.
func claimsFor(st *session.State) *middleware.Claims {
	if !st.Authenticated() {
		return nil
	}
	if u := st.User(); u != nil && u.ID != "" {
		return &middleware.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}
	}
	tc, err := auth.Inspect(st.Token())
	if err != nil {
		return nil
	}
	return &middleware.Claims{UserID: tc.UserID}
}

// ContentTypeJSON rejects request bodies that are not JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
