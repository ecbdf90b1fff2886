package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mw "github.com/openingcoach/openingcoach/internal/api/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	count   int64
	incrErr error
}

func (c *fakeCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *fakeCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *fakeCache) Delete(_ context.Context, _ string) error                         { return nil }
func (c *fakeCache) Ping(_ context.Context) error                                     { return nil }
func (c *fakeCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	if c.incrErr != nil {
		return 0, c.incrErr
	}
	c.count++
	return c.count, nil
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	h := mw.Recovery(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("nil map write")
	}))

	req := httptest.NewRequest("GET", "/jobs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
}

func TestRecovery_PassesThrough(t *testing.T) {
	h := mw.Recovery(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/jobs", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLogger_PassesThrough(t *testing.T) {
	h := mw.Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/jobs", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	rl := mw.NewRateLimit(&fakeCache{}, 5)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/jobs", nil)
		req.RemoteAddr = "192.168.1.5:40000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	rl := mw.NewRateLimit(&fakeCache{count: 5}, 5)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/jobs", nil)
	req.RemoteAddr = "192.168.1.5:40000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_FailsOpenOnCacheError(t *testing.T) {
	rl := mw.NewRateLimit(&fakeCache{incrErr: errors.New("redis down")}, 1)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/jobs", nil)
		req.RemoteAddr = "192.168.1.5:40000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
