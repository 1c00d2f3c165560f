// Package middleware holds the HTTP middleware the API router is built from.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/nuber-eats/nuber/pkg/response"
)

// RateLimit limits each client IP to max requests per window.
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(max, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
		}),
	)
}
