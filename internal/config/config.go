package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	pkgconfig "github.com/anishff444/nepwears/pkg/config"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Storefront REST backend
	APIBaseURL        string `env:"API_BASE_URL" envDefault:"http://localhost:3000/api/v1"`
	APITimeoutSeconds int    `env:"API_TIMEOUT_SECONDS" envDefault:"10"`
	APIMaxRetries     int    `env:"API_MAX_RETRIES" envDefault:"2"`

	// Circuit breaker around the backend
	CBMaxRequests     uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBIntervalSeconds int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeoutSeconds  int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio    float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests     uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Sessions
	SessionStore      string `env:"SESSION_STORE" envDefault:"memory"`
	SessionTTLHours   int    `env:"SESSION_TTL_HOURS" envDefault:"24"`
	SessionCookieName string `env:"SESSION_COOKIE_NAME" envDefault:"nw_session"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Rate limiting
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// Access control
	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	MetricsAllowedCIDRs []string `env:"METRICS_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,10.0.0.0/8" envSeparator:","`
	PprofAllowedCIDRs   []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,10.0.0.0/8" envSeparator:","`

	FeaturedProductsLimit int `env:"FEATURED_PRODUCTS_LIMIT" envDefault:"6"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return load(nil)
}

// load parses environ when non-nil, the process environment otherwise.
func load(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	var err error
	if environ != nil {
		err = pkgconfig.LoadFrom(cfg, environ)
	} else {
		err = pkgconfig.Load(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the storefront runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// APITimeout is the per-request timeout for backend calls.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

// SessionTTL is how long an idle session survives.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if c.APITimeoutSeconds <= 0 {
		return fmt.Errorf("API_TIMEOUT_SECONDS must be positive, got %d", c.APITimeoutSeconds)
	}
	if c.APIMaxRetries < 0 {
		return fmt.Errorf("API_MAX_RETRIES must not be negative, got %d", c.APIMaxRetries)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1], got %v", c.CBFailureRatio)
	}

	switch c.SessionStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("SESSION_STORE must be memory or redis, got %q", c.SessionStore)
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive, got %d", c.SessionTTLHours)
	}
	if c.SessionCookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive, got rps=%d burst=%d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.FeaturedProductsLimit <= 0 {
		return fmt.Errorf("FEATURED_PRODUCTS_LIMIT must be positive, got %d", c.FeaturedProductsLimit)
	}

	if !c.IsDevelopment() {
		if c.SessionStore != "redis" {
			return fmt.Errorf("SESSION_STORE must be redis in %s environment", c.Environment)
		}
		if slices.Contains(c.CORSAllowedOrigins, "*") {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS must not contain * in %s environment", c.Environment)
		}
	}
	return nil
}
