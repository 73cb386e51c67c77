// Package router names chi routes. Names feed the route:list command, the
// route-level metrics labels and URL building in tests:
//
//	api := r.Group("/api")
//	orders := api.Group("/orders", middleware.Auth)
//	orders.Post("/{id}/confirm", "orders.confirm", h)
//
//	r.URL("orders.confirm", map[string]string{"id": id}) // /api/orders/<id>/confirm
package router

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// Route is one registered endpoint. Method is "*" for Handle.
type Route struct {
	Method string
	Path   string
	Name   string
}

type table struct {
	mu     sync.RWMutex
	byName map[string]string
	routes []Route
}

func (t *table) add(method, path, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = append(t.routes, Route{Method: method, Path: path, Name: name})
	if name != "" {
		t.byName[name] = path
	}
}

// routes is the state Group and Router share.
type routes struct {
	mux    chi.Router
	table  *table
	prefix string
	mws    []Middleware
}

// Group mounts routes under a prefix with its middleware applied first.
type Group struct {
	routes
}

// Router is the root group plus the lookups over every registered route.
type Router struct {
	routes
}

func New() *Router {
	return &Router{routes{mux: chi.NewRouter(), table: &table{byName: map[string]string{}}, prefix: "/"}}
}

func (r *Router) Handler() http.Handler { return r.mux }

// Use adds middleware around every route. chi needs it before the first
// route is mounted.
func (r *Router) Use(mws ...Middleware) {
	for _, mw := range mws {
		r.mux.Use(mw)
	}
}

// NotFound and MethodNotAllowed replace chi's plain text answers.
func (r *Router) NotFound(h http.HandlerFunc)         { r.mux.NotFound(h) }
func (r *Router) MethodNotAllowed(h http.HandlerFunc) { r.mux.MethodNotAllowed(h) }

// Group opens a sub-group; prefix and middleware stack on the parent's.
func (g *routes) Group(prefix string, mws ...Middleware) *Group {
	return &Group{routes{
		mux:    g.mux,
		table:  g.table,
		prefix: join(g.prefix, prefix),
		mws:    append(slices.Clone(g.mws), mws...),
	}}
}

// Method mounts h for one HTTP method.
func (g *routes) Method(method, path, name string, h http.HandlerFunc, mws ...Middleware) {
	full := join(g.prefix, path)
	g.mux.Method(method, full, g.wrap(h, mws))
	g.table.add(method, full, name)
}

func (g *routes) Get(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Method(http.MethodGet, path, name, h, mws...)
}

func (g *routes) Post(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Method(http.MethodPost, path, name, h, mws...)
}

func (g *routes) Put(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Method(http.MethodPut, path, name, h, mws...)
}

func (g *routes) Patch(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Method(http.MethodPatch, path, name, h, mws...)
}

func (g *routes) Delete(path, name string, h http.HandlerFunc, mws ...Middleware) {
	g.Method(http.MethodDelete, path, name, h, mws...)
}

// Handle mounts h for every method, as /graphql needs GET and POST.
func (g *routes) Handle(path, name string, h http.Handler, mws ...Middleware) {
	full := join(g.prefix, path)
	g.mux.Handle(full, g.wrap(h, mws))
	g.table.add("*", full, name)
}

// wrap applies the group middleware outermost, then the route's own.
func (g *routes) wrap(h http.Handler, mws []Middleware) http.Handler {
	all := append(slices.Clone(g.mws), mws...)
	for i := len(all) - 1; i >= 0; i-- {
		h = all[i](h)
	}
	return h
}

// Path returns the pattern registered under name.
func (r *Router) Path(name string) (string, bool) {
	r.table.mu.RLock()
	defer r.table.mu.RUnlock()
	p, ok := r.table.byName[name]
	return p, ok
}

// URL fills the {params} of the named route.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	p, ok := r.Path(name)
	if !ok {
		return "", fmt.Errorf("router: no route named %q", name)
	}
	for k, v := range params {
		p = strings.ReplaceAll(p, "{"+k+"}", v)
	}
	if strings.ContainsRune(p, '{') {
		return "", fmt.Errorf("router: %q needs more parameters: %s", name, p)
	}
	return p, nil
}

// Routes lists every route ordered by path, then method.
func (r *Router) Routes() []Route {
	r.table.mu.RLock()
	out := slices.Clone(r.table.routes)
	r.table.mu.RUnlock()
	slices.SortFunc(out, func(a, b Route) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Method, b.Method)
	})
	return out
}

// join builds "/a/b" from parts, ignoring empty segments and stray slashes.
func join(parts ...string) string {
	var segs []string
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			segs = append(segs, p)
		}
	}
	return "/" + strings.Join(segs, "/")
}
