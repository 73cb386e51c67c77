// Package listeners connects service events to the queue and the live
// stock feeds.
package listeners

import (
	"context"

	"github.com/shashiranjanraj/bodega/app/jobs"
	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/pkg/event"
	"github.com/shashiranjanraj/bodega/pkg/logger"
	"github.com/shashiranjanraj/bodega/pkg/queue"
	"github.com/shashiranjanraj/bodega/pkg/ws"
)

// Live lists the events forwarded to the live feeds.
var Live = []string{
	services.EventStockReserved,
	services.EventStockLow,
	services.EventPaymentConfirmed,
}

// Feed receives every Live event.
type Feed func(eventType string, payload any)

// HubFeed publishes to websocket clients.
func HubFeed(h *ws.Hub) Feed {
	return func(eventType string, payload any) {
		h.Publish(ws.Event{Type: eventType, Data: payload})
	}
}

// Register wires the listeners onto bus. The CLI passes no feeds.
func Register(bus *event.Bus, q *queue.Manager, feeds ...Feed) {
	bus.Listen(services.EventOrderConfirmed, func(ctx context.Context, payload any) {
		ev, ok := payload.(services.OrderConfirmed)
		if !ok || len(ev.ProductIDs) == 0 {
			return
		}
		job := &jobs.LowStockCheckJob{}
		for _, id := range ev.ProductIDs {
			job.ProductIDs = append(job.ProductIDs, id.String())
		}
		if err := q.Dispatch(ctx, job); err != nil {
			logger.WithCtx(ctx).Error("dispatch low stock check", "order_id", ev.OrderID, "error", err)
		}
	})

	for _, name := range Live {
		for _, feed := range feeds {
			bus.Listen(name, func(_ context.Context, payload any) {
				feed(name, payload)
			})
		}
	}
}
