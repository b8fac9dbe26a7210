package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anishff444/nepwears/internal/config"
	ratelimit "github.com/anishff444/nepwears/internal/middleware"
	"github.com/anishff444/nepwears/pkg/health"
	"github.com/anishff444/nepwears/pkg/middleware"
)

// catalogMaxAge is how long browsers and proxies may cache catalog reads.
const catalogMaxAge = 60

// NewRouter creates a chi router with the global middleware stack, health
// and metrics endpoints, and the storefront API.
func NewRouter(
	cfg *config.Config,
	h *Handler,
	limiter *ratelimit.RateLimiter,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())

	r.With(middleware.IPAllowlist(cfg.MetricsAllowedCIDRs, logger)).
		Get("/metrics", promhttp.Handler().ServeHTTP)
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Use(ContentTypeJSON)

		// Catalog reads carry no session state and are cacheable.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(catalogMaxAge))
			r.Get("/products", h.ListProducts)
			r.Get("/products/featured", h.FeaturedProducts)
			r.Get("/products/{id}", h.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.Session)
			r.Use(middleware.NoStore)

			r.Post("/auth/signup", h.Signup)
			r.Post("/auth/login", h.Login)
			r.Post("/auth/logout", h.Logout)

			r.Get("/cart", h.GetCart)
			r.Post("/cart/open", h.OpenCart)
			r.Post("/cart/close", h.CloseCart)
			r.Post("/cart/toggle", h.ToggleCart)
			r.Delete("/cart", h.ClearCart)

			r.Get("/payment/verify", h.VerifyPayment)
			r.Get("/payment/success", h.PaymentSuccess)
			r.Get("/payment/failed", h.PaymentFailed)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)

				r.Get("/auth/me", h.Me)
				r.Patch("/auth/me", h.UpdateMe)
				r.Delete("/auth/me", h.DeleteMe)
				r.Patch("/auth/me/password", h.UpdatePassword)

				r.Post("/cart/items/{productId}", h.AddCartItem)
				r.Delete("/cart/items/{productId}", h.RemoveCartItem)

				r.Post("/checkout", h.Checkout)

				r.Get("/orders", h.ListOrders)
				r.Get("/orders/{id}/status", h.OrderStatus)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.RequireRole("admin"))

				r.Post("/products", h.CreateProduct)
				r.Patch("/products/{id}", h.UpdateProduct)
			})
		})
	})

	return r
}
