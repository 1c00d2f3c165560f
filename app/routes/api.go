// Package routes mounts the HTTP surface: the GraphQL endpoint, uploads, the
// order feed and the operational endpoints.
package routes

import (
	"net/http"

	gql "github.com/graphql-go/graphql"

	"github.com/nuber-eats/nuber/app/controllers"
	"github.com/nuber-eats/nuber/pkg/graphql"
	"github.com/nuber-eats/nuber/pkg/metrics"
	"github.com/nuber-eats/nuber/pkg/rbac"
	"github.com/nuber-eats/nuber/pkg/router"
	"github.com/nuber-eats/nuber/pkg/storage"
	"github.com/nuber-eats/nuber/pkg/ws"
)

// Deps are the handlers' collaborators. Any nil field leaves its routes out,
// which route:list uses to print the table without a database.
type Deps struct {
	Schema  *gql.Schema
	Hub     *ws.Hub
	Storage *storage.Manager
	Health  *controllers.HealthController
}

func Register(r *router.Router, d Deps) {
	if d.Schema != nil {
		r.Post("/graphql", "graphql", graphql.Handler(*d.Schema))
	}

	if d.Storage != nil {
		uploads := controllers.NewUploadsController(d.Storage.Default())
		r.Post("/uploads", "uploads.store", uploads.Upload, rbac.Require(rbac.Authenticated()))

		if local, ok := d.Storage.Local(); ok {
			r.Handle(http.MethodGet, "/storage/*", "storage.show",
				http.StripPrefix("/storage", local.Handler()))
		}
	}

	if d.Hub != nil {
		r.Get("/ws/orders", "ws.orders", d.Hub.Serve)
	}

	if d.Health != nil {
		r.Get("/healthz", "health", d.Health.Check)
	}
	r.Get("/metrics", "metrics", metrics.Handler())
}
