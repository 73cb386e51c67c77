package related_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/resources"
	"github.com/shashiranjanraj/bodega/pkg/related"
	"github.com/shashiranjanraj/bodega/pkg/testkit"
)

var products = related.New("product", resources.Product, map[string]string{
	"brand":     "brand",
	"warehouse": "stocks__warehouse",
	"stock":     "stocks",
}, "Brand", "Category", "Stocks")

func parse(t *testing.T, raw string) related.Query {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	q, err := related.Parse(values)
	require.NoError(t, err)
	return q
}

func TestParse(t *testing.T) {
	q := parse(t, "join=brand,+category&filter[Product]=name__icontains=tv,is_active=true&ordering=-price&distinct=TRUE&limit=5&fields[brand]=name")

	assert.Equal(t, []string{"brand", "category"}, q.Joins)
	assert.Equal(t, []related.Filter{
		{Field: "name", Lookup: "icontains", Value: "tv"},
		{Field: "is_active", Lookup: "exact", Value: "true"},
	}, q.Filters["product"])
	assert.Equal(t, []string{"-price"}, q.Ordering)
	assert.True(t, q.Distinct)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, []string{"name"}, q.Fields["brand"])
}

func TestParseIgnoresBadLimitAndRejectsBadFilters(t *testing.T) {
	q := parse(t, "limit=abc")
	assert.Zero(t, q.Limit)

	_, err := related.Parse(url.Values{"filter[product]": {"name"}})
	var re *related.Error
	require.ErrorAs(t, err, &re)

	_, err = related.Parse(url.Values{"filter[product]": {"brand__name=x"}})
	require.ErrorAs(t, err, &re)
}

func TestRunFiltersThroughRelation(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())

	res, err := products.Run(context.Background(), db, parse(t, "join=brand&filter[brand]=name=Apple&ordering=-price"))
	require.NoError(t, err)
	require.Equal(t, 3, res.Count)
	assert.Equal(t, "LAPTOP-APPLE-001", res.Results[0]["sku"])
	assert.Equal(t, "Apple", res.Results[0]["brand_name"])
	assert.Equal(t, "2499.99", res.Results[0]["price"])
	assert.Contains(t, res.SQLQuery, "INNER JOIN inventory_brand rel_brand")
	assert.Contains(t, res.SQLQuery, "Apple")
}

func TestRunDistinct(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	ctx := context.Background()

	// every product is stocked in the four warehouses
	res, err := products.Run(ctx, db, parse(t, "filter[warehouse]=name__startswith=Bodega"))
	require.NoError(t, err)
	assert.Equal(t, 40, res.Count)

	res, err = products.Run(ctx, db, parse(t, "filter[warehouse]=name__startswith=Bodega&distinct=true"))
	require.NoError(t, err)
	assert.Equal(t, 10, res.Count)
	assert.Contains(t, res.SQLQuery, "DISTINCT")
}

func TestRunFieldsAndLimit(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())

	res, err := products.Run(context.Background(), db,
		parse(t, "filter[product]=sku=LAPTOP-LG-001&fields[product]=sku,total_stock&fields[warehouse]=city"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)

	row := res.Results[0]
	assert.Len(t, row, 3)
	assert.Equal(t, "LAPTOP-LG-001", row["sku"])
	assert.Equal(t, 180, row["total_stock"])

	warehouses, ok := row["warehouse"].([]resources.Map)
	require.True(t, ok, "%T", row["warehouse"])
	require.Len(t, warehouses, 4)
	for _, w := range warehouses {
		assert.Equal(t, []string{"city"}, keys(w))
	}

	res, err = products.Run(context.Background(), db, parse(t, "ordering=name&limit=2"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, `LG Gram 15" Laptop`, res.Results[0]["name"])
}

func TestRunRejectsUnknownNames(t *testing.T) {
	db := testkit.DB(t)
	ctx := context.Background()

	for _, raw := range []string{
		"filter[payment]=status=PAID",
		"filter[product]=colour=red",
		"ordering=-colour",
		"ordering=brand__colour",
		"join=supplier",
		"fields[product]=colour",
		"fields[warehouse]=colour",
		"filter[product]=price__in=",
		"filter[product]=name__isnull=maybe",
	} {
		_, err := products.Run(ctx, db, parse(t, raw))
		var re *related.Error
		assert.ErrorAs(t, err, &re, raw)
	}
}

func TestRunEmptyDatabase(t *testing.T) {
	db := testkit.DB(t)

	res, err := products.Run(context.Background(), db, related.Query{})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.NotNil(t, res.Results)

	var n int64
	require.NoError(t, db.Model(&models.Product{}).Count(&n).Error)
	assert.Zero(t, n)
}

func keys(m resources.Map) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
