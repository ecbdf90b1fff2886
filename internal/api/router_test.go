package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openingcoach/openingcoach/internal/api"
	mw "github.com/openingcoach/openingcoach/internal/api/middleware"
	"github.com/stretchr/testify/assert"
)

// countingCache returns a fixed counter value, simulating a client that has
// already made n requests this window.
type countingCache struct {
	count int64
}

func (c *countingCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}
func (c *countingCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}
func (c *countingCache) Delete(_ context.Context, _ string) error { return nil }
func (c *countingCache) Ping(_ context.Context) error             { return nil }
func (c *countingCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	c.count++
	return c.count, nil
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := api.NewRouter(api.Dependencies{HealthHandler: okHandler})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_UnwiredHandlersReturn501(t *testing.T) {
	router := api.NewRouter(api.Dependencies{})

	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/jobs"},
		{"GET", "/jobs"},
		{"GET", "/jobs/some-id"},
		{"DELETE", "/jobs/some-id"},
		{"GET", "/health"},
	}

	for _, ep := range endpoints {
		req := httptest.NewRequest(ep.method, ep.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotImplemented, w.Code, "%s %s", ep.method, ep.path)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := api.NewRouter(api.Dependencies{})

	req := httptest.NewRequest("GET", "/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RateLimitAppliesToJobs(t *testing.T) {
	// Limit of 1: the second request in the window must be rejected.
	router := api.NewRouter(api.Dependencies{
		RateLimit:       mw.NewRateLimit(&countingCache{}, 1),
		ListJobsHandler: okHandler,
		HealthHandler:   okHandler,
	})

	req := httptest.NewRequest("GET", "/jobs", nil)
	req.RemoteAddr = "10.0.0.1:52000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	// Health stays reachable even for a rate-limited client.
	healthReq := httptest.NewRequest("GET", "/health", nil)
	healthReq.RemoteAddr = "10.0.0.1:52000"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, healthReq)
	assert.Equal(t, http.StatusOK, w.Code)
}
