package middleware

import (
	"context"
	"net"
	"net/http"

	"go.uber.org/zap"

	"smartfetch/pkg/common"
	apperrors "smartfetch/pkg/errors"
)

// ClientLimiter decides whether a client identified by IP may proceed
type ClientLimiter interface {
	Allow(ctx context.Context, ip string) (bool, error)
}

// RateLimit rejects clients that exceed their per-IP budget with 429.
// A limiter failure lets the request through; the limiter protects the
// model runtime, it must never take the API down with it.
func RateLimit(limiter ClientLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn("rate limiter failed", zap.String("ip", ip), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				rateErr := apperrors.ErrRateLimitExceeded
				common.RespondError(w, rateErr.StatusCode, rateErr.Code, rateErr.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the request's client address without the port. With the
// RealIP middleware installed upstream, RemoteAddr already carries the
// forwarded address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
