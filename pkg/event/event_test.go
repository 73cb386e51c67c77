package event_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/shashiranjanraj/bodega/pkg/event"
	"github.com/stretchr/testify/assert"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	bus := event.NewBus()
	var got []string
	bus.Listen("order.confirmed", func(_ context.Context, p any) { got = append(got, "a:"+p.(string)) })
	bus.Listen("order.confirmed", func(_ context.Context, p any) { got = append(got, "b:"+p.(string)) })
	bus.Listen("payment.confirmed", func(context.Context, any) { got = append(got, "wrong") })

	bus.Fire(context.Background(), "order.confirmed", "o1")

	assert.Equal(t, []string{"a:o1", "b:o1"}, got)
	assert.Equal(t, 2, bus.Listeners("order.confirmed"))
}

func TestFireSurvivesPanickingListener(t *testing.T) {
	bus := event.NewBus()
	var calls atomic.Int32
	bus.Listen("stock.low", func(context.Context, any) { panic("boom") })
	bus.Listen("stock.low", func(context.Context, any) { calls.Add(1) })

	assert.NotPanics(t, func() { bus.Fire(context.Background(), "stock.low", nil) })
	assert.Equal(t, int32(1), calls.Load())
}

func TestFireAsyncOutlivesCancelledContext(t *testing.T) {
	bus := event.NewBus()
	var seenErr atomic.Value
	bus.Listen("payment.confirmed", func(ctx context.Context, _ any) {
		seenErr.Store(ctx.Err() == nil)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.FireAsync(ctx, "payment.confirmed", nil)
	bus.Wait()

	assert.Equal(t, true, seenErr.Load())
}

func TestFlush(t *testing.T) {
	bus := event.NewBus()
	bus.Listen("x", func(context.Context, any) {})
	bus.Flush()
	assert.Zero(t, bus.Listeners("x"))
}
