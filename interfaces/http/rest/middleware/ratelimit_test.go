package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubLimiter struct {
	allowed bool
	err     error
	lastIP  string
}

func (s *stubLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	s.lastIP = ip
	return s.allowed, s.err
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_AllowedRequestPassesThrough(t *testing.T) {
	// Arrange
	limiter := &stubLimiter{allowed: true}
	var called bool
	handler := RateLimit(limiter, zap.NewNop())(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/nl/search", nil)
	req.RemoteAddr = "203.0.113.7:52814"
	rec := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(rec, req)

	// Assert
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "203.0.113.7", limiter.lastIP)
}

func TestRateLimit_ExhaustedBudgetIs429(t *testing.T) {
	limiter := &stubLimiter{allowed: false}
	var called bool
	handler := RateLimit(limiter, zap.NewNop())(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/nl/search", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRateLimit_LimiterFailureLetsRequestThrough(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("redis gone")}
	var called bool
	handler := RateLimit(limiter, zap.NewNop())(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/nl/search", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_AddressWithoutPort(t *testing.T) {
	limiter := &stubLimiter{allowed: true}
	var called bool
	handler := RateLimit(limiter, zap.NewNop())(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/nl/search", nil)
	req.RemoteAddr = "203.0.113.7"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.True(t, called)
	assert.Equal(t, "203.0.113.7", limiter.lastIP)
}
