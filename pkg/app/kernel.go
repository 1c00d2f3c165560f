package app

import (
	"net/http"
	"time"

	"github.com/nuber-eats/nuber/config"
	"github.com/nuber-eats/nuber/pkg/metrics"
	"github.com/nuber-eats/nuber/pkg/middleware"
	"github.com/nuber-eats/nuber/pkg/reqid"
	"github.com/nuber-eats/nuber/pkg/router"
)

// Handler builds the HTTP handler. Global middleware, outermost first:
//
//  1. metrics       total latency and status per route
//  2. request id    before anything logs
//  3. logger        request-scoped logger with request_id
//  4. recovery      panics become 500s
//  5. secure        hardening headers
//  6. CORS
//  7. rate limit    per client IP
//  8. Use(...)      application middleware, e.g. Identify
func (a *Application) Handler() http.Handler {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.SecureHeaders(config.AppEnv() != "production"))
	r.Use(middleware.CORS(middleware.CORSFromConfig()))
	r.Use(middleware.RateLimit(config.GetInt("RATE_LIMIT_PER_MINUTE", 200), time.Minute))
	r.Use(a.middleware...)

	for _, fn := range a.routesFns {
		fn(r)
	}
	return r.Handler()
}
