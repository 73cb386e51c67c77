package logger_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bodega/pkg/logger"
)

type store struct {
	mu      sync.Mutex
	batches [][]logger.Doc
}

func (s *store) write(_ context.Context, docs []logger.Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, docs)
	return nil
}

func (s *store) docs() []logger.Doc {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []logger.Doc
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func TestDocHandlerLiftsInventoryKeys(t *testing.T) {
	s := &store{}
	h := logger.NewDocHandler(slog.LevelInfo, 10, time.Hour, s.write)
	log := slog.New(h).With("request_id", "req-1")

	log.Debug("ignored")
	log.Info("stock reserved", "order_id", "o-1", "sku", "TV-SONY-001", "warehouse", "Central", "qty", 2)
	log.WithGroup("job").Info("retry", "sku", "nested", "err", errors.New("boom"), "wait", time.Second)
	h.Close()
	h.Close()

	docs := s.docs()
	require.Len(t, docs, 2)

	first := docs[0]
	assert.Equal(t, "INFO", first.Level)
	assert.Equal(t, "req-1", first.RequestID)
	assert.Equal(t, "o-1", first.OrderID)
	assert.Equal(t, "TV-SONY-001", first.SKU)
	assert.Equal(t, "Central", first.Warehouse)
	assert.Equal(t, int64(2), first.Attrs["qty"])

	second := docs[1]
	assert.Equal(t, "req-1", second.RequestID)
	assert.Empty(t, second.SKU)
	assert.Equal(t, "nested", second.Attrs["job.sku"])
	assert.Equal(t, "boom", second.Attrs["job.err"])
	assert.Equal(t, "1s", second.Attrs["job.wait"])
}

func TestDocHandlerFlushesFullBatches(t *testing.T) {
	s := &store{}
	h := logger.NewDocHandler(slog.LevelInfo, 2, time.Hour, s.write)
	closed := false
	h.OnClose(func() { closed = true })

	log := slog.New(h)
	for i := 0; i < 5; i++ {
		log.Warn("low stock", "sku", "LAPTOP-LG-001")
	}
	h.Close()

	assert.Len(t, s.docs(), 5)
	for _, b := range s.batches {
		assert.LessOrEqual(t, len(b), 2)
	}
	assert.True(t, closed)
}

func TestDocHandlerOnCloseFromManyGoroutines(t *testing.T) {
	h := logger.NewDocHandler(slog.LevelInfo, 10, time.Hour, (&store{}).write)

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnClose(func() { ran.Add(1) })
		}()
	}
	wg.Wait()
	h.Close()

	assert.Equal(t, int32(8), ran.Load())
}
