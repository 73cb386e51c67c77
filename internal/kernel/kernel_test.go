package kernel_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/internal/kernel"
	"github.com/shashiranjanraj/bodega/pkg/testkit"
)

func TestApplicationMountsEveryRoute(t *testing.T) {
	testkit.DB(t)
	a, err := kernel.New().Application()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, r := range a.Router().Routes() {
		names[r.Name] = true
	}
	for _, want := range []string{
		"auth.login", "auth.me",
		"brands.index", "brands.related", "brands.products",
		"products.low_stock", "stocks.available", "warehouses.stock",
		"customers.orders", "orders.confirm", "order-items.store", "payments.confirm",
		"reports.run", "graphql", "ws.stock", "sse.stock", "metrics",
	} {
		assert.True(t, names[want], want)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	testkit.DB(t)
	h, err := kernel.New().Handler()
	require.NoError(t, err)

	testkit.Call(t, h, http.MethodGet, "/api/brands", nil).AssertStatus(t, http.StatusOK)

	res := testkit.Call(t, h, http.MethodGet, "/metrics", nil)
	res.AssertStatus(t, http.StatusOK)
	assert.Contains(t, string(res.Body), "bodega_http_requests_total")
}

func TestBackgroundWiresListenersAndScan(t *testing.T) {
	testkit.DB(t, testkit.WithSample())
	old := config.Get("QUEUE_DRIVER", "")
	config.Set("QUEUE_DRIVER", "memory")
	t.Cleanup(func() { config.Set("QUEUE_DRIVER", old) })

	k := kernel.New()
	require.NoError(t, k.Background())
	t.Cleanup(func() { _ = k.Close() })

	assert.Equal(t, 1, k.Bus.Listeners(services.EventOrderConfirmed))
	assert.Positive(t, k.Bus.Listeners(services.EventStockLow))

	entries := k.Scheduler.List()
	require.Len(t, entries, 1)
	assert.Equal(t, kernel.LowStockScan, entries[0].Name)
	assert.NoError(t, k.Scheduler.RunNow(context.Background(), kernel.LowStockScan))
}
