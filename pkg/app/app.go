// Package app assembles an HTTP application from route callbacks, extra
// middleware and background workers, and runs it until shutdown.
//
//	app.New().
//	    Use(middleware.Identify(resolver)).
//	    Routes(func(r *router.Router) { routes.Register(r, deps) }).
//	    Worker("scheduler", sched.Start).
//	    OnShutdown(func(context.Context) error { return database.Close() }).
//	    Serve(ctx, ":8080")
package app

import (
	"context"

	"github.com/nuber-eats/nuber/pkg/router"
)

// Worker runs until ctx is cancelled.
type Worker func(ctx context.Context)

type namedWorker struct {
	name string
	run  Worker
}

// Application is built with New and the chainable setters, then served.
type Application struct {
	middleware []router.Middleware
	routesFns  []func(*router.Router)
	workers    []namedWorker
	shutdown   []func(context.Context) error
}

func New() *Application {
	return &Application{}
}

// Use appends middleware that runs after the built-in stack.
func (a *Application) Use(mw ...router.Middleware) *Application {
	a.middleware = append(a.middleware, mw...)
	return a
}

// Routes registers a route callback. Callbacks run in order.
func (a *Application) Routes(fn func(*router.Router)) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// Worker adds a background loop started with the server and stopped with it.
func (a *Application) Worker(name string, fn Worker) *Application {
	a.workers = append(a.workers, namedWorker{name: name, run: fn})
	return a
}

// OnShutdown adds a hook run after the server and workers have stopped, in
// reverse registration order.
func (a *Application) OnShutdown(fn func(context.Context) error) *Application {
	a.shutdown = append(a.shutdown, fn)
	return a
}

// Router builds the route table without serving it.
func (a *Application) Router() *router.Router {
	r := router.New()
	for _, fn := range a.routesFns {
		fn(r)
	}
	return r
}
