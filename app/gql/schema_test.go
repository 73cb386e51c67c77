package gql_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bodega/app/gql"
	"github.com/shashiranjanraj/bodega/app/models"
	gqlhttp "github.com/shashiranjanraj/bodega/pkg/graphql"
	"github.com/shashiranjanraj/bodega/pkg/testkit"
)

type result struct {
	Data   map[string]any   `json:"data"`
	Errors []map[string]any `json:"errors"`
}

func handler(t *testing.T) http.Handler {
	t.Helper()
	schema, err := gql.Schema(gql.NewServices())
	require.NoError(t, err)
	return gqlhttp.Handler(schema)
}

func TestQueryCatalog(t *testing.T) {
	testkit.DB(t, testkit.WithSample())
	h := handler(t)

	res := testkit.Call(t, h, http.MethodPost, "/graphql", gqlhttp.Request{
		Query: `{
			brands { name products_count }
			products(brand: "xiao") { sku price }
			lowStock(threshold: 200) { sku total_stock }
		}`,
	})
	res.AssertStatus(t, http.StatusOK)
	var out result
	res.Decode(t, &out)
	require.Empty(t, out.Errors)

	brands := out.Data["brands"].([]any)
	require.Len(t, brands, 5)
	assert.Equal(t, map[string]any{"name": "Apple", "products_count": float64(3)}, brands[0])

	products := out.Data["products"].([]any)
	assert.Len(t, products, 2)

	low := out.Data["lowStock"].([]any)
	require.Len(t, low, 1)
	assert.Equal(t, map[string]any{"sku": "LAPTOP-LG-001", "total_stock": float64(180)}, low[0])
}

func TestQueryOrder(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	h := handler(t)

	var order models.Order
	require.NoError(t, db.Where("status = ?", models.OrderPending).Order("created_at").First(&order).Error)

	q := url.Values{}
	q.Set("query", `{ order(id: "`+order.ID.String()+`") { status total_items items { product_sku } } }`)
	res := testkit.Call(t, h, http.MethodGet, "/graphql?"+q.Encode(), nil)
	res.AssertStatus(t, http.StatusOK)
	var out result
	res.Decode(t, &out)
	require.Empty(t, out.Errors)
	got := out.Data["order"].(map[string]any)
	assert.Equal(t, models.OrderPending, got["status"])
	assert.NotEmpty(t, got["items"])

	q.Set("query", `{ order(id: "missing") { status } }`)
	res = testkit.Call(t, h, http.MethodGet, "/graphql?"+q.Encode(), nil)
	res.Decode(t, &out)
	assert.Nil(t, out.Data["order"])
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	testkit.DB(t)
	h := handler(t)

	testkit.Call(t, h, http.MethodGet, "/graphql", nil).AssertStatus(t, http.StatusBadRequest)
	testkit.Call(t, h, http.MethodPost, "/graphql", "{").AssertStatus(t, http.StatusBadRequest)
	testkit.Call(t, h, http.MethodDelete, "/graphql", nil).AssertStatus(t, http.StatusMethodNotAllowed)

	res := testkit.Call(t, h, http.MethodPost, "/graphql", gqlhttp.Request{Query: `{ suppliers { name } }`})
	res.AssertStatus(t, http.StatusOK)
	var out result
	res.Decode(t, &out)
	assert.NotEmpty(t, out.Errors)
}
