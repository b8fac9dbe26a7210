package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/anishff444/nepwears/pkg/logger"
)

// RequestLogger stores a logger enriched with the request identifiers in the
// context, where handlers pick it up with logger.FromContext.
//
// Mount it after RequestLogging and Tracing so the correlation ID and span
// are already present. Middleware that later resolves the session or the
// shopper calls Enrich to refresh the stored logger.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(Enrich(r.Context(), base)))
		})
	}
}

// Enrich copies the authenticated user into the logger keys of ctx and
// stores a request-scoped logger derived from base.
func Enrich(ctx context.Context, base *slog.Logger) context.Context {
	if userID := UserIDFromContext(ctx); userID != "" {
		ctx = logger.WithUserID(ctx, userID)
	}
	return logger.NewContext(ctx, logger.WithContext(ctx, base))
}
