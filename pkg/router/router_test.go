package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(v string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", v)
			next.ServeHTTP(w, r)
		})
	}
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestGroupMiddlewareOrder(t *testing.T) {
	r := New()
	api := r.Group("/api/", tag("group"))
	api.Get("/orders/{id}", "orders.show", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/7", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"group", "route"}, rec.Header().Values("X-Chain"))
}

func TestURL(t *testing.T) {
	r := New()
	r.Get("/orders/{id}", "orders.show", ok)

	url, err := r.URL("orders.show", map[string]string{"id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/orders/7", url)

	_, err = r.URL("orders.show", nil)
	assert.Error(t, err)
	_, err = r.URL("nope", nil)
	assert.Error(t, err)
}

func TestRoutes(t *testing.T) {
	r := New()
	r.Post("graphql", "graphql", ok)
	r.Get("/healthz", "", ok)
	r.Handle(http.MethodGet, "/graphql", "graphql.playground", http.HandlerFunc(ok))

	assert.Equal(t, []RouteInfo{
		{Method: http.MethodGet, Path: "/graphql", Name: "graphql.playground"},
		{Method: http.MethodPost, Path: "/graphql", Name: "graphql"},
		{Method: http.MethodGet, Path: "/healthz"},
	}, r.Routes())
}
