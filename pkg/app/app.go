// Package app assembles the HTTP handler: the global middleware stack, the
// route callbacks and the JSON fallbacks for unknown routes.
//
//	h := app.New().
//	    Routes(routes.RegisterAPI).
//	    Routes(func(r *router.Router) { routes.RegisterRealtime(r, schema, hub, broker) }).
//	    Handler()
package app

import (
	"net/http"

	"github.com/shashiranjanraj/bodega/pkg/router"
)

// Application collects middleware and route callbacks until Handler builds
// the router.
type Application struct {
	stack     []router.Middleware
	extra     []router.Middleware
	routesFns []func(*router.Router)
}

// New returns an Application with the default middleware stack.
func New() *Application {
	return &Application{stack: DefaultStack()}
}

// Bare returns an Application without any global middleware.
func Bare() *Application {
	return &Application{}
}

// Use appends middleware that runs inside the default stack.
func (a *Application) Use(mw ...router.Middleware) *Application {
	a.extra = append(a.extra, mw...)
	return a
}

// Routes adds a route-registration callback. Callbacks run in order.
func (a *Application) Routes(fn func(*router.Router)) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// Router builds a router with every middleware and route applied.
func (a *Application) Router() *router.Router {
	r := router.New()
	r.Use(a.stack...)
	r.Use(a.extra...)
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)
	for _, fn := range a.routesFns {
		fn(r)
	}
	return r
}

// Handler is Router().Handler().
func (a *Application) Handler() http.Handler {
	return a.Router().Handler()
}
