package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/anishff444/nepwears/internal/account"
	"github.com/anishff444/nepwears/internal/api"
	"github.com/anishff444/nepwears/internal/catalog"
	"github.com/anishff444/nepwears/internal/checkout"
	"github.com/anishff444/nepwears/internal/config"
	"github.com/anishff444/nepwears/internal/event"
	handler "github.com/anishff444/nepwears/internal/handler/http"
	"github.com/anishff444/nepwears/internal/middleware"
	"github.com/anishff444/nepwears/internal/orders"
	"github.com/anishff444/nepwears/internal/session"
	"github.com/anishff444/nepwears/internal/session/memory"
	sessionredis "github.com/anishff444/nepwears/internal/session/redis"
	"github.com/anishff444/nepwears/pkg/database"
	"github.com/anishff444/nepwears/pkg/health"
	"github.com/anishff444/nepwears/pkg/httpclient"
	pkgkafka "github.com/anishff444/nepwears/pkg/kafka"
	"github.com/anishff444/nepwears/pkg/tracing"
)

const (
	serviceName = "storefront"

	evictionInterval = 5 * time.Minute
	visitorTTL       = 3 * time.Minute
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	sessions       *session.Manager
	limiter        *middleware.RateLimiter
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTelEndpoint,
		SampleRate:     cfg.OTelSampleRate,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}
	healthHandler := health.NewHandler()

	// Backend client: retries for safe methods, wrapped in a circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.APITimeout()
	httpCfg.MaxRetries = cfg.APIMaxRetries
	rawClient := httpclient.New(httpCfg)

	cbCfg := httpclient.DefaultCircuitBreakerConfig("storefront-api")
	cbCfg.MaxRequests = cfg.CBMaxRequests
	cbCfg.Interval = time.Duration(cfg.CBIntervalSeconds) * time.Second
	cbCfg.Timeout = time.Duration(cfg.CBTimeoutSeconds) * time.Second
	cbCfg.FailureRatio = cfg.CBFailureRatio
	cbCfg.MinRequests = cfg.CBMinRequests

	// While the breaker is open, catalog reads fall back to the last good list.
	catalogCache := api.NewCatalogCache(logger)
	breaker := httpclient.NewCircuitBreakerClient(rawClient, cbCfg, logger).WithFallback(catalogCache.Fallback)

	client, err := api.NewClient(cfg.APIBaseURL, catalogCache.Wrap(breaker), logger)
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("create api client: %w", err)
	}
	healthHandler.RegisterCritical("storefront-api", backendCheck(rawClient, cfg.APIBaseURL))

	// Session store.
	var repo session.Repository
	switch cfg.SessionStore {
	case "redis":
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB

		a.redis, err = database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			a.cleanup()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr), slog.Int("db", cfg.RedisDB))

		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, a.redis, serviceName); err != nil {
			logger.Warn("redis pool metrics not registered", slog.String("error", err.Error()))
		}
		healthHandler.RegisterCritical("redis", database.RedisPing(a.redis))
		repo = sessionredis.NewRepository(a.redis)
	default:
		repo = memory.NewRepository()
	}

	a.sessions = session.NewManager(repo, client, cfg.SessionTTL(), logger)

	// Kafka producer for storefront analytics events.
	var publisher event.Publisher = event.NopPublisher{}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	events := event.NewProducer(publisher, logger)

	// Build the dependency graph.
	h := handler.NewHandler(handler.Deps{
		Sessions: a.sessions,
		Account:  account.NewService(client, a.sessions, logger),
		Catalog:  catalog.NewService(client, cfg.FeaturedProductsLimit, logger),
		Orders:   orders.NewService(client, logger),
		Checkout: checkout.NewService(client, events, logger),
		Events:   events,
	}, handler.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: !cfg.IsDevelopment(),
		TTL:    cfg.SessionTTL(),
	}, logger)

	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, visitorTTL, logger)

	// HTTP router.
	router := handler.NewRouter(cfg, h, a.limiter, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// backendCheck reports the backend as reachable when it answers at all.
func backendCheck(client *httpclient.Client, baseURL string) health.Checker {
	return func(ctx context.Context) error {
		resp, err := client.Get(ctx, baseURL)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("backend returned status %d", resp.StatusCode)
		}
		return nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	a.sessions.StartEviction(evictionInterval)
	a.limiter.Start()

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.cleanup()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server, background
// loops, tracer, Kafka producer, Redis.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	errs = append(errs, a.cleanup()...)

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// cleanup releases everything but the HTTP server. It tolerates components
// that were never created.
func (a *App) cleanup() []error {
	var errs []error

	if a.sessions != nil {
		a.sessions.Close()
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}

	if a.tracerShutdown != nil {
		traceCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(traceCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errs
}
