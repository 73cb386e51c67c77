package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bodega/pkg/metrics"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/metrics", metrics.Handler())

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(),
		`bodega_http_requests_total{method="GET",route="/api/products/{id}",status="418"} 3`)
}

func TestInventoryInstruments(t *testing.T) {
	before := testutil.ToFloat64(metrics.StockReserved)
	metrics.StockReserved.Add(4)
	assert.Equal(t, before+4, testutil.ToFloat64(metrics.StockReserved))

	metrics.LowStockProducts.Set(2)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.LowStockProducts))
}
