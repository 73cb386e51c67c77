// Package controllers adapts the services to HTTP.
package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/pkg/ctx"
	"github.com/shashiranjanraj/bodega/pkg/resource"
)

// fail answers err with the status its type calls for. Unexpected errors
// are logged and reported as a generic 500.
func fail(c *ctx.Context, err error) {
	var (
		ve *services.ValidationError
		se *services.StateError
		ce *services.ConflictError
	)
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.NotFound()
	case errors.As(err, &ve):
		c.BadRequest(ve.Message)
	case errors.As(err, &se):
		c.BadRequest(se.Message)
	case errors.As(err, &ce):
		c.Conflict(ce.Error())
	default:
		c.Log().Error("request failed", "path", c.R.URL.Path, "error", err)
		c.Error(http.StatusInternalServerError, "internal server error")
	}
}

func listParams(c *ctx.Context) (services.ListParams, bool) {
	page, perPage, ok := c.Page()
	return services.ListParams{Page: page, PerPage: perPage}, ok
}

// service is the CRUD surface every model service offers. C is the create
// body and U the update body.
type service[T, C, U any] interface {
	List(ctx context.Context, p services.ListParams) (services.Page[T], error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, in C) (*T, error)
	Update(ctx context.Context, id string, in U) (*T, error)
	Delete(ctx context.Context, id string) error
}

// Resource serves index, show, store, update, patch and destroy for one
// model.
type Resource[T, C, U any] struct {
	svc  service[T, C, U]
	view resource.Transformer[T]
}

func (rc Resource[T, C, U]) Index(c *ctx.Context) {
	p, ok := listParams(c)
	if !ok {
		return
	}
	page, err := rc.svc.List(c.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	items := resource.Many(rc.view, page.Items)
	if page.Pagination != nil {
		c.Paginated(items, *page.Pagination)
		return
	}
	c.Success(items)
}

func (rc Resource[T, C, U]) Show(c *ctx.Context) {
	v, err := rc.svc.Get(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.One(rc.view, v))
}

func (rc Resource[T, C, U]) Store(c *ctx.Context) {
	var in C
	if !c.BindJSON(&in) {
		return
	}
	v, err := rc.svc.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(resource.One(rc.view, v))
}

// Update is PUT: every required field must be present.
func (rc Resource[T, C, U]) Update(c *ctx.Context) {
	var in U
	if !c.BindJSON(&in) {
		return
	}
	rc.update(c, in)
}

// Patch changes only the fields present in the body.
func (rc Resource[T, C, U]) Patch(c *ctx.Context) {
	var in U
	if !c.BindPatch(&in) {
		return
	}
	rc.update(c, in)
}

func (rc Resource[T, C, U]) update(c *ctx.Context, in U) {
	v, err := rc.svc.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.One(rc.view, v))
}

func (rc Resource[T, C, U]) Destroy(c *ctx.Context) {
	if err := rc.svc.Delete(c.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// list answers a plain action listing.
func list[T any](c *ctx.Context, view resource.Transformer[T], items []T, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.Many(view, items))
}
