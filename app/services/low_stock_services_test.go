package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/notifications"
	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/pkg/notification"
	"github.com/shashiranjanraj/bodega/pkg/testkit"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []notification.Notification
	err  error
}

func (f *fakeSender) Send(_ context.Context, n notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return f.err
}

func TestLowStockScan(t *testing.T) {
	testkit.DB(t, testkit.WithSample())
	low := record(services.EventStockLow)
	sender := &fakeSender{}

	alerts, err := services.NewLowStockServiceWith(sender, 200).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "LAPTOP-LG-001", alerts[0].SKU)
	assert.Equal(t, 180, alerts[0].TotalStock)
	assert.Equal(t, 200, alerts[0].Threshold)

	require.Len(t, sender.sent, 1)
	n := sender.sent[0].(notifications.LowStock)
	assert.Equal(t, alerts[0].ProductID.String(), n.ProductID)
	assert.Len(t, low.all(), 1)
}

func TestLowStockScanNothingBelowThreshold(t *testing.T) {
	testkit.DB(t, testkit.WithSample())
	sender := &fakeSender{}

	alerts, err := services.NewLowStockServiceWith(sender, 10).Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Empty(t, sender.sent)
}

func TestLowStockCheckOnlyGivenProducts(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	gram := productBySKU(t, db, "LAPTOP-LG-001")
	ipad := productBySKU(t, db, "TABLET-APPLE-001")
	svc := services.NewLowStockServiceWith(&fakeSender{err: errors.New("down")}, 250)

	// a failing channel is logged, the alert is still reported
	alerts, err := svc.Check(context.Background(), []uuid.UUID{gram.ID})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, gram.ID, alerts[0].ProductID)

	alerts, err = svc.Check(context.Background(), []uuid.UUID{ipad.ID, gram.ID})
	require.NoError(t, err)
	assert.Len(t, alerts, 2)

	alerts, err = svc.Check(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestLowStockPostsWebhook(t *testing.T) {
	testkit.DB(t, testkit.WithSample())
	mock := testkit.MockHTTP(t, testkit.Stub{Prefix: "http://hooks.test/", Status: 204})
	sender := notification.New("http://hooks.test/low-stock", "")

	_, err := services.NewLowStockServiceWith(sender, 200).Scan(context.Background())
	require.NoError(t, err)

	calls := mock.CallsTo("http://hooks.test/low-stock")
	require.Len(t, calls, 1)
	assert.Equal(t, "POST", calls[0].Method)
	assert.Equal(t, "stock.low", calls[0].Header.Get("X-Bodega-Event"))

	var body struct {
		Event   string                 `json:"event"`
		Product notifications.LowStock `json:"product"`
	}
	require.NoError(t, json.Unmarshal(calls[0].Body, &body))
	assert.Equal(t, "stock.low", body.Event)
	assert.Equal(t, "LAPTOP-LG-001", body.Product.SKU)
}

func TestLowStockScanSkipsUnstockedProducts(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	lg := productBySKU(t, db, "LAPTOP-LG-001")
	require.NoError(t, db.Create(&models.Product{
		Name: "LG Gram Style", SKU: "LAPTOP-LG-002", Price: decimal.RequireFromString("1899.00"),
		IsActive: true, BrandID: lg.BrandID, CategoryID: lg.CategoryID,
	}).Error)

	alerts, err := services.NewLowStockServiceWith(&fakeSender{}, 200).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "LAPTOP-LG-001", alerts[0].SKU)

	listed, err := services.NewProductService().LowStock(context.Background(), 200)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, alerts[0].ProductID, listed[0].ID)
}
