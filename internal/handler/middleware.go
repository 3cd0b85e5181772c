package handler

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ecospend/greentracker/internal/domain"
)

type contextKey string

const usernameKey contextKey = "username"

// usernameFrom returns the authenticated username from the request
// context, if any.
func usernameFrom(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok && username != ""
}

// requireAuth resolves the bearer token and stores the bound username
// in the request context. Requests without a valid session get 401.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			writeDomainError(w, domain.ErrNotAuthenticated)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		username, err := h.sessions.Verify(token)
		if err != nil {
			writeDomainError(w, domain.ErrNotAuthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit applies the configured limiter keyed by client IP. Limiter
// backend errors fail open: a broken Redis must not take the API down.
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		allowed, err := h.limiter.Allow(r.Context(), key)
		if err != nil {
			h.logger.Warn().Err(err).Str("client", key).Msg("rate limiter error, failing open")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			writeError(w, http.StatusTooManyRequests, "too_many_requests", "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// observe records request latency per route and status.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.metrics.HTTPDuration.WithLabelValues(
			r.Method+" "+r.URL.Path,
			strconv.Itoa(ww.Status()),
		).Observe(time.Since(start).Seconds())
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
