package reports_test

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bodega/app/reports"
	"github.com/shashiranjanraj/bodega/pkg/storage"
	"github.com/shashiranjanraj/bodega/pkg/testkit"
)

func params(t *testing.T, name, raw string) reports.Params {
	t.Helper()
	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	p, err := reports.ParseParams(name, q)
	require.NoError(t, err)
	return p
}

func TestParseParams(t *testing.T) {
	p := params(t, reports.TopSelling, "start_date=2025-01-01&end_date=2025-01-31")
	assert.Equal(t, 10, p.Limit)
	require.NotNil(t, p.StartDate)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *p.StartDate)

	p = params(t, reports.PaymentsByProductQuantity, "sku=TV-SAMSUNG-001")
	assert.Equal(t, 1, p.MinQuantity)

	p = params(t, reports.StockAnalysisReport, "")
	assert.Zero(t, p.MinStock)
	assert.Empty(t, p.Warehouse)
}

func TestParseParamsErrors(t *testing.T) {
	cases := []struct {
		name, query, field string
	}{
		{reports.ProductsByBrandCustomer, "email=john@example.com", "brand"},
		{reports.ProductsByBrandCustomer, "brand=samsung", "email"},
		{reports.PaymentsByProductQuantity, "sku=X&min_quantity=0", "min_quantity"},
		{reports.PaymentsByProductQuantity, "sku=X&min_quantity=many", "min_quantity"},
		{reports.StockAnalysisReport, "min_stock=-1", "min_stock"},
		{reports.TopSelling, "limit=101", "limit"},
		{reports.TopSelling, "start_date=01/02/2025", "start_date"},
		{reports.TopSelling, "start_date=2025-02-01&end_date=2025-01-01", "end_date"},
	}
	for _, tc := range cases {
		q, _ := url.ParseQuery(tc.query)
		_, err := reports.ParseParams(tc.name, q)
		var pe *reports.ParamError
		if assert.ErrorAs(t, err, &pe, "%s?%s", tc.name, tc.query) {
			assert.Equal(t, tc.field, pe.Field)
		}
	}

	_, err := reports.ParseParams("revenue", url.Values{})
	assert.ErrorIs(t, err, reports.ErrUnknownReport)

	_, err = reports.ParseSource("graphql")
	var pe *reports.ParamError
	assert.ErrorAs(t, err, &pe)
}

// both runs a report from the two sources and checks they agree on the
// rows.
func both(t *testing.T, svc *reports.Service, name string, p reports.Params) []map[string]any {
	t.Helper()
	ctx := context.Background()

	orm, err := svc.Run(ctx, name, reports.SourceORM, p)
	require.NoError(t, err)
	assert.Equal(t, reports.SourceORM, orm.Source)
	assert.NotEmpty(t, orm.SQLQuery)

	sql, err := svc.Run(ctx, name, reports.SourceSQL, p)
	require.NoError(t, err)
	assert.Equal(t, reports.SourceSQL, sql.Source)
	assert.Contains(t, sql.SQLQuery, "SELECT")

	assert.Equal(t, orm.Count, sql.Count)
	return decode(t, orm.Results)
}

func decode(t *testing.T, results any) []map[string]any {
	t.Helper()
	raw, err := json.Marshal(results)
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(raw, &rows))
	return rows
}

func skus(rows []map[string]any) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["product_sku"].(string))
	}
	return out
}

func TestProductsByBrandCustomer(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	svc := reports.NewService(db)

	rows := both(t, svc, reports.ProductsByBrandCustomer,
		params(t, reports.ProductsByBrandCustomer, "brand=SAMSUNG&email=john@example.com"))
	assert.Equal(t, []string{"PHONE-SAMSUNG-001", "TV-SAMSUNG-001"}, skus(rows))
	assert.Equal(t, "John Doe", rows[0]["customer_name"])
	assert.EqualValues(t, 2, rows[0]["qty_ordered"])
}

func TestPaymentsByProductQuantity(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	svc := reports.NewService(db)

	rows := both(t, svc, reports.PaymentsByProductQuantity,
		params(t, reports.PaymentsByProductQuantity, "sku=TV-SAMSUNG-001"))
	assert.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "CONFIRMED", r["payment_status"])
	}

	rows = both(t, svc, reports.PaymentsByProductQuantity,
		params(t, reports.PaymentsByProductQuantity, "sku=TV-SAMSUNG-001&min_quantity=2"))
	assert.Empty(t, rows)
}

func TestStockAnalysis(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	svc := reports.NewService(db)

	rows := both(t, svc, reports.StockAnalysisReport,
		params(t, reports.StockAnalysisReport, "warehouse=central&min_stock=100"))
	assert.Equal(t, []string{"TV-SONY-001", "PHONE-XIAOMI-001", "TV-SAMSUNG-001"}, skus(rows))
	assert.EqualValues(t, 105, rows[0]["available"])

	all := both(t, svc, reports.StockAnalysisReport, params(t, reports.StockAnalysisReport, ""))
	assert.Len(t, all, 40)
}

func TestTopSelling(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	svc := reports.NewService(db)

	rows := both(t, svc, reports.TopSelling, params(t, reports.TopSelling, "limit=3"))
	assert.Equal(t, []string{"TV-SAMSUNG-001", "PHONE-SAMSUNG-001", "LAPTOP-APPLE-001"}, skus(rows))
	assert.EqualValues(t, 2, rows[0]["total_quantity_sold"])
	assert.EqualValues(t, 2, rows[0]["total_orders"])

	rows = both(t, svc, reports.TopSelling, params(t, reports.TopSelling, "start_date=2001-01-01&end_date=2001-12-31"))
	assert.Empty(t, rows)
}

func TestRunUnknownReport(t *testing.T) {
	db := testkit.DB(t)
	_, err := reports.NewService(db).Run(context.Background(), "revenue", reports.SourceORM, reports.Params{})
	assert.ErrorIs(t, err, reports.ErrUnknownReport)
}

func TestExportWritesJSONToDisk(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	disk, err := storage.NewLocal(t.TempDir(), "http://files.test/storage")
	require.NoError(t, err)

	exp, err := reports.NewService(db).Export(context.Background(), disk, reports.StockAnalysisReport, reports.SourceSQL,
		params(t, reports.StockAnalysisReport, "warehouse=norte"))
	require.NoError(t, err)
	assert.Equal(t, 10, exp.Rows)
	assert.True(t, strings.HasPrefix(exp.Path, "reports/stock-analysis/"), exp.Path)
	assert.True(t, strings.HasSuffix(exp.Path, "-sql.json"), exp.Path)
	assert.Equal(t, "http://files.test/storage/"+exp.Path, exp.URL)

	body, err := disk.Get(context.Background(), exp.Path)
	require.NoError(t, err)
	var res struct {
		Report string           `json:"report"`
		Count  int              `json:"count"`
		Rows   []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, reports.StockAnalysisReport, res.Report)
	assert.Equal(t, 10, res.Count)
	assert.Equal(t, "Medellín", res.Rows[0]["warehouse_city"])
}

func TestExportPath(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "reports/top-selling/20250304T050607Z-orm.json", reports.ExportPath(reports.TopSelling, reports.SourceORM, at))
}
