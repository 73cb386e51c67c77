package ctx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	appctx "github.com/shashiranjanraj/bodega/pkg/ctx"
	"github.com/shashiranjanraj/bodega/pkg/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, req *http.Request, h appctx.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccessEnvelope(t *testing.T) {
	rec := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Success(map[string]any{"id": "x"})
		assert.Equal(t, http.StatusOK, c.WrittenStatus())
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 200, body["status"])
	assert.Equal(t, map[string]any{"id": "x"}, body["data"])
}

func TestParamFromChi(t *testing.T) {
	r := chi.NewRouter()
	var got string
	r.Get("/brands/{id}", appctx.Wrap(func(c *appctx.Context) {
		got = c.Param("id")
		c.NoContent()
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brands/b-1", nil))

	assert.Equal(t, "b-1", got)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestQueryInt(t *testing.T) {
	serve(t, httptest.NewRequest(http.MethodGet, "/?threshold=5&bad=x", nil), func(c *appctx.Context) {
		n, ok := c.QueryInt("threshold", 10)
		assert.True(t, ok)
		assert.Equal(t, 5, n)

		n, ok = c.QueryInt("missing", 10)
		assert.True(t, ok)
		assert.Equal(t, 10, n)

		_, ok = c.QueryInt("bad", 10)
		assert.False(t, ok)
	})
}

func TestBindJSON(t *testing.T) {
	type input struct {
		Name  string `json:"name"  validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana","email":"ana@example.com"}`))
		rec := serve(t, req, func(c *appctx.Context) {
			var in input
			require.True(t, c.BindJSON(&in))
			assert.Equal(t, "Ana", in.Name)
			c.Created(in)
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("validation errors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
		rec := serve(t, req, func(c *appctx.Context) {
			var in input
			assert.False(t, c.BindJSON(&in))
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		errs := decode(t, rec)["errors"].(map[string]any)
		assert.Contains(t, errs, "name")
		assert.Contains(t, errs, "email")
	})

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		rec := serve(t, req, func(c *appctx.Context) {
			var in input
			assert.False(t, c.BindJSON(&in))
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		rec := serve(t, req, func(c *appctx.Context) {
			var in input
			assert.False(t, c.BindJSON(&in))
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "request body is empty", decode(t, rec)["message"])
	})
}

func TestPaginated(t *testing.T) {
	rec := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Paginated([]string{"a"}, orm.Pagination{Page: 1, PerPage: 1, Total: 3, LastPage: 3})
	})
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, []any{"a"}, data["items"])
	assert.EqualValues(t, 3, data["pagination"].(map[string]any)["last_page"])
}

func TestPage(t *testing.T) {
	serve(t, httptest.NewRequest(http.MethodGet, "/?per_page=2", nil), func(c *appctx.Context) {
		page, perPage, ok := c.Page()
		assert.True(t, ok)
		assert.Equal(t, 1, page)
		assert.Equal(t, 2, perPage)
	})

	rec := serve(t, httptest.NewRequest(http.MethodGet, "/?page=1&per_page=ten", nil), func(c *appctx.Context) {
		_, _, ok := c.Page()
		assert.False(t, ok)
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "per_page must be an integer", decode(t, rec)["message"])
}

func TestConflict(t *testing.T) {
	rec := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Conflict("cannot delete brand: it is referenced by other records")
		assert.Equal(t, http.StatusConflict, c.WrittenStatus())
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "cannot delete brand: it is referenced by other records", decode(t, rec)["message"])
}
