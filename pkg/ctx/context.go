// Package ctx hands controllers one value per request instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (oc *OrderController) Confirm(c *ctx.Context) {
//	    order, err := oc.svc.Confirm(c.Context(), c.Param("id"))
//	    if err != nil {
//	        fail(c, err)
//	        return
//	    }
//	    c.Success(resources.Order(order))
//	}
//
//	api.Post("/orders/{id}/confirm", "orders.confirm", ctx.Wrap(orders.Confirm))
package ctx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/bodega/pkg/bind"
	"github.com/shashiranjanraj/bodega/pkg/logger"
	"github.com/shashiranjanraj/bodega/pkg/validate"
)

// HandlerFunc is the controller signature.
type HandlerFunc func(c *Context)

// Wrap adapts h for the router.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(&Context{W: w, R: r})
	}
}

// Context is one request and its response writer.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

// Context returns the request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Log returns the logger tagged with the request id.
func (c *Context) Log() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// Param reads a chi path parameter: "/orders/{id}" gives c.Param("id").
func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

func (c *Context) Query(key string) string { return c.R.URL.Query().Get(key) }

// QueryInt parses an integer query value. Missing gives def; malformed
// gives ok=false.
func (c *Context) QueryInt(key string, def int) (n int, ok bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

// Page reads page and per_page for list endpoints. Both zero means "no
// pagination". A per_page without a page starts at page 1. On a malformed
// value it answers 400 and returns ok=false.
func (c *Context) Page() (page, perPage int, ok bool) {
	if page, ok = c.QueryInt("page", 0); !ok {
		c.BadRequest("page must be an integer")
		return 0, 0, false
	}
	if perPage, ok = c.QueryInt("per_page", 0); !ok {
		c.BadRequest("per_page must be an integer")
		return 0, 0, false
	}
	if page < 1 && perPage > 0 {
		page = 1
	}
	return page, perPage, true
}

// BindJSON decodes and validates the body into dest. On failure it has
// already answered 400 for unreadable JSON or 422 with per-field errors.
func (c *Context) BindJSON(dest any) bool {
	return c.bound(bind.JSON(c.R, dest))
}

// BindPatch is BindJSON for PATCH: fields the client left out stay
// unvalidated.
func (c *Context) BindPatch(dest any) bool {
	return c.bound(bind.JSONPartial(c.R, dest))
}

func (c *Context) bound(errs map[string]string, err error) bool {
	switch {
	case err != nil:
		c.BadRequest(err.Error())
	case validate.HasErrors(errs):
		c.ValidationError(errs)
	default:
		return true
	}
	return false
}
