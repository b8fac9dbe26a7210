package httpclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newBreaker returns a breaker that trips after three requests with at least
// half failing, in front of a server running h.
func newBreaker(t *testing.T, name string, openFor time.Duration, h http.HandlerFunc) (*CircuitBreakerClient, string) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := DefaultCircuitBreakerConfig(name)
	cfg.MinRequests = 3
	cfg.Timeout = openFor

	client := New(Config{Timeout: 5 * time.Second, MaxConnsPerHost: 10})
	return NewCircuitBreakerClient(client, cfg, testLogger()), srv.URL
}

func trip(t *testing.T, cb *CircuitBreakerClient, url string) {
	t.Helper()
	for range 3 {
		if resp, err := get(context.Background(), cb, url); err == nil {
			_ = resp.Body.Close()
		}
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())
}

func get(ctx context.Context, cb *CircuitBreakerClient, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	return cb.Do(ctx, req)
}

func failing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, `{"success":false,"message":"mongo pool exhausted"}`)
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("storefront-api")
	assert.Equal(t, "storefront-api", cfg.Name)
	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0.5, cfg.FailureRatio)
	assert.Equal(t, uint32(5), cfg.MinRequests)
}

func TestCircuitBreaker_PassesSuccess(t *testing.T) {
	cb, url := newBreaker(t, "cb-success", time.Second, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req, err := http.NewRequest(http.MethodPost, url, http.NoBody)
	require.NoError(t, err)
	resp, err := cb.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_ServerErrorsKeepBodyAndTrip(t *testing.T) {
	var hits atomic.Int32
	cb, url := newBreaker(t, "cb-trip", 5*time.Second, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		failing(w, r)
	})

	resp, err := get(context.Background(), cb, url)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"message":"mongo pool exhausted"}`, string(body))

	trip(t, cb, url)
	before := hits.Load()

	_, err = get(context.Background(), cb, url)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, hits.Load(), "open breaker must not reach the backend")
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	cb, url := newBreaker(t, "cb-4xx", time.Second, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	for range 5 {
		resp, err := get(context.Background(), cb, url)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	var down atomic.Bool
	down.Store(true)
	cb, url := newBreaker(t, "cb-recover", 100*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			failing(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	trip(t, cb, url)
	down.Store(false)
	time.Sleep(150 * time.Millisecond)

	resp, err := get(context.Background(), cb, url)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_Fallback(t *testing.T) {
	cb, url := newBreaker(t, "cb-fallback", 5*time.Second, failing)

	var calls atomic.Int32
	fb := cb.WithFallback(func(_ context.Context, req *http.Request, err error) (*http.Response, error) {
		calls.Add(1)
		assert.Equal(t, http.MethodGet, req.Method)
		return nil, errors.Join(errors.New("storefront degraded"), err)
	})

	trip(t, fb, url)
	assert.Zero(t, calls.Load(), "fallback runs only once the breaker is open")

	_, err := get(context.Background(), fb, url)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "storefront degraded")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 1.0, testutil.ToFloat64(circuitBreakerFallbackTotal.WithLabelValues("cb-fallback")))

	_, err = get(context.Background(), cb, url)
	assert.ErrorIs(t, err, ErrCircuitOpen, "the original client has no fallback")
}

func TestCircuitBreaker_CallerCancellationIsNotAFailure(t *testing.T) {
	cb, url := newBreaker(t, "cb-cancel", time.Second, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	for range 3 {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)
		_, err := get(ctx, cb, url)
		require.Error(t, err)
		cancel()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
