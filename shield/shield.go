// Package shield provides the HTTP middleware shared by docsum endpoints:
// security headers, request tracing, body limits, rate limiting and panic
// recovery.
//
// Usage:
//
//	r := chi.NewRouter()
//	for _, mw := range shield.DefaultStack(shield.Config{MaxBodyBytes: 4 << 20}) {
//	    r.Use(mw)
//	}
package shield

import (
	"encoding/json"
	"net/http"
)

type contextKey string

// LoggerKey is the context key for the per-request structured logger.
const LoggerKey contextKey = "shield_logger"

// Config selects the optional parts of the default stack.
type Config struct {
	// MaxBodyBytes caps request bodies. 0 disables the cap.
	MaxBodyBytes int64

	// RatePerSecond enables per-client rate limiting when > 0.
	RatePerSecond float64
	Burst         int
}

// DefaultStack returns the middleware stack for the docsum API.
// Order: SecurityHeaders → TraceID → Recover → RateLimiter → MaxBody.
func DefaultStack(cfg Config) []func(http.Handler) http.Handler {
	stack := []func(http.Handler) http.Handler{
		SecurityHeaders(DefaultHeaders()),
		TraceID,
		Recover,
	}
	if cfg.RatePerSecond > 0 {
		stack = append(stack, NewRateLimiter(cfg.RatePerSecond, cfg.Burst, "/health").Middleware)
	}
	if cfg.MaxBodyBytes > 0 {
		stack = append(stack, MaxBody(cfg.MaxBodyBytes))
	}
	return stack
}

// writeJSONError writes the {"error": msg} envelope.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
