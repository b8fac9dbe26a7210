package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsRequest(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	h := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(method, "/api/v1/products", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORS_AllowOrigin(t *testing.T) {
	storefront := []string{"https://nepwears.com", "https://admin.nepwears.com"}

	tests := []struct {
		name      string
		cfg       CORSConfig
		origin    string
		wantAllow string
		wantVary  string
	}{
		{"wildcard", CORSConfig{AllowedOrigins: []string{"*"}}, "http://localhost:5173", "*", ""},
		{"wildcard without origin", CORSConfig{AllowedOrigins: []string{"*"}}, "", "*", ""},
		{"listed origin", CORSConfig{AllowedOrigins: storefront}, "https://admin.nepwears.com", "https://admin.nepwears.com", "Origin"},
		{"unlisted origin", CORSConfig{AllowedOrigins: storefront}, "https://evil.example", "", ""},
		{"listed without origin", CORSConfig{AllowedOrigins: storefront}, "", "", ""},
		{"no origins configured", CORSConfig{}, "http://localhost:5173", "", ""},
		{
			"credentials echo the origin",
			CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true},
			"http://localhost:5173", "http://localhost:5173", "Origin",
		},
		{
			"credentials with a list never echo unlisted origins",
			CORSConfig{AllowedOrigins: storefront, AllowCredentials: true},
			"http://localhost:5173", "", "",
		},
		{
			"credentials without origin",
			CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true},
			"", "*", "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := corsRequest(tt.cfg, http.MethodGet, tt.origin)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantVary, rec.Header().Get("Vary"))
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	rec := corsRequest(CORSConfig{AllowedOrigins: []string{"https://nepwears.com"}}, http.MethodOptions, "https://nepwears.com")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, PATCH, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Content-Type, X-Correlation-ID, Idempotency-Key", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Empty(t, rec.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORS_CustomHeaders(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins:   []string{"https://nepwears.com"},
		AllowedMethods:   []string{"GET"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"X-Correlation-ID", "Retry-After"},
		MaxAge:           600,
		AllowCredentials: true,
	}
	rec := corsRequest(cfg, http.MethodGet, "https://nepwears.com")

	assert.Equal(t, "GET", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Correlation-ID, Retry-After", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, []string{"X-Correlation-ID"}, cfg.ExposedHeaders)
}
