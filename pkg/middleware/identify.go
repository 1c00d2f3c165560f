package middleware

import (
	"net/http"
	"strings"

	"github.com/nuber-eats/nuber/pkg/auth"
	"github.com/nuber-eats/nuber/pkg/logger"
)

// TokenHeader carries the session token. "Authorization: Bearer" is accepted
// as well.
const TokenHeader = "x-jwt"

// TokenFrom returns the raw token from r, or "" when there is none.
// WebSocket upgrades may pass it as the "token" query parameter, since
// browsers cannot set headers on them.
func TokenFrom(r *http.Request) string {
	if t := r.Header.Get(TokenHeader); t != "" {
		return t
	}
	if t, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(t)
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}

// Identify attaches the caller's principal to the request context. A missing
// or bad token is not an error here: the request continues anonymous and
// the per-operation policy decides.
func Identify(resolver *auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFrom(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			p := resolver.Resolve(r.Context(), token)
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithPrincipal(r.Context(), p)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", p.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
