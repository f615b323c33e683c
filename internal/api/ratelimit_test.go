package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(4)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"), "burst is half the per-minute budget")
	assert.True(t, l.allow("10.0.0.2"), "clients have separate buckets")

	now = now.Add(15 * time.Second)
	assert.True(t, l.allow("10.0.0.1"), "one token refills every 15s")

	now = now.Add(limiterTTL + time.Second)
	l.allow("10.0.0.3")
	assert.Equal(t, 1, l.size(), "idle buckets are swept")
}

func TestRateLimitMiddleware(t *testing.T) {
	s := &Server{limiter: newIPRateLimiter(2)}
	h := s.RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 2)
	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests}, codes)

	unlimited := (&Server{}).RateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	unlimited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
