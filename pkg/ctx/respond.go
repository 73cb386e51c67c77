package ctx

import (
	"net/http"

	"github.com/shashiranjanraj/bodega/pkg/orm"
	"github.com/shashiranjanraj/bodega/pkg/response"
)

// tracked remembers the status for WrittenStatus.
type tracked struct {
	http.ResponseWriter
	c *Context
}

func (t tracked) WriteHeader(code int) {
	t.c.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (c *Context) out() http.ResponseWriter { return tracked{ResponseWriter: c.W, c: c} }

// WrittenStatus is the status sent so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }

// JSON writes v as is, without the envelope.
func (c *Context) JSON(code int, v any) { response.JSON(c.out(), code, v) }

func (c *Context) Success(data any) { response.Success(c.out(), data) }
func (c *Context) Created(data any) { response.Created(c.out(), data) }
func (c *Context) NoContent()       { response.NoContent(c.out()) }

// Paginated sends {items, pagination} inside the envelope.
func (c *Context) Paginated(items any, p orm.Pagination) { response.Paginated(c.out(), items, p) }

func (c *Context) Error(code int, message string) { response.Error(c.out(), code, message) }
func (c *Context) BadRequest(message string)      { response.BadRequest(c.out(), message) }
func (c *Context) Conflict(message string)        { response.Conflict(c.out(), message) }
func (c *Context) Unauthorized()                  { response.Unauthorized(c.out()) }
func (c *Context) Forbidden()                     { response.Forbidden(c.out()) }

// ValidationError answers 422 with errors keyed by json field.
func (c *Context) ValidationError(errs map[string]string) { response.ValidationError(c.out(), errs) }

// NotFound answers 404, "Not found" unless a message is given.
func (c *Context) NotFound(message ...string) {
	if len(message) > 0 {
		c.Error(http.StatusNotFound, message[0])
		return
	}
	response.NotFound(c.out())
}
