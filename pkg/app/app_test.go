package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuber-eats/nuber/pkg/reqid"
	"github.com/nuber-eats/nuber/pkg/router"
)

func TestHandler_AppliesStackAndRoutes(t *testing.T) {
	var sawHeader atomic.Bool
	a := New().
		Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sawHeader.Store(reqid.FromCtx(r.Context()) != "")
				next.ServeHTTP(w, r)
			})
		}).
		Routes(func(r *router.Router) {
			r.Get("/ping", "ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
		})

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(reqid.Header))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.True(t, sawHeader.Load())
}

func TestRouter_ListsRoutes(t *testing.T) {
	a := New().Routes(func(r *router.Router) {
		r.Get("/healthz", "health", func(http.ResponseWriter, *http.Request) {})
	})
	routes := a.Router().Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "health", routes[0].Name)
}

func TestServe_StopsWorkersThenRunsHooksInReverse(t *testing.T) {
	var order []string
	var ran atomic.Int32

	a := New().
		Worker("tick", func(ctx context.Context) {
			ran.Add(1)
			<-ctx.Done()
		}).
		OnShutdown(func(context.Context) error { order = append(order, "db"); return nil }).
		OnShutdown(func(context.Context) error { order = append(order, "mail"); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, "127.0.0.1:0") }()

	assert.Eventually(t, func() bool { return ran.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.Equal(t, []string{"mail", "db"}, order)
}
