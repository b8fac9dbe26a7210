package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// StaleHeader marks a response served from the catalog cache instead of the
// backend.
const StaleHeader = "X-Storefront-Stale"

// CatalogCache remembers the last good product list so the storefront can
// keep showing products while the backend circuit is open.
type CatalogCache struct {
	mu     sync.RWMutex
	bodies map[string][]byte
	logger *slog.Logger
}

// NewCatalogCache returns an empty cache.
func NewCatalogCache(logger *slog.Logger) *CatalogCache {
	return &CatalogCache{bodies: make(map[string][]byte), logger: logger}
}

// Wrap returns a Doer that records successful product list reads made
// through next.
func (c *CatalogCache) Wrap(next Doer) Doer {
	return recordingDoer{next: next, cache: c}
}

// Fallback serves the cached product list for req. Any other request, or a
// list never seen, returns err unchanged.
func (c *CatalogCache) Fallback(ctx context.Context, req *http.Request, err error) (*http.Response, error) {
	if !isProductList(req) {
		return nil, err
	}
	c.mu.RLock()
	body, ok := c.bodies[req.URL.String()]
	c.mu.RUnlock()
	if !ok {
		return nil, err
	}

	c.logger.InfoContext(ctx, "serving cached product list", slog.String("url", req.URL.String()))
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set(StaleHeader, "true")
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

// Len reports how many product lists are cached.
func (c *CatalogCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bodies)
}

func (c *CatalogCache) store(key string, body []byte) {
	c.mu.Lock()
	c.bodies[key] = body
	c.mu.Unlock()
}

type recordingDoer struct {
	next  Doer
	cache *CatalogCache
}

func (d recordingDoer) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(ctx, req)
	if err != nil || resp.StatusCode != http.StatusOK || !isProductList(req) || resp.Header.Get(StaleHeader) != "" {
		return resp, err
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if readErr != nil {
		return resp, nil
	}
	if _, decodeErr := decodeEnvelope[productsPayload](body); decodeErr == nil {
		d.cache.store(req.URL.String(), body)
	}
	return resp, nil
}

// isProductList matches GET .../products, the public catalog listing.
func isProductList(req *http.Request) bool {
	return req.Method == http.MethodGet && strings.HasSuffix(strings.TrimRight(req.URL.Path, "/"), "/products")
}
