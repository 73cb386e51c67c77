// Package kernel boots bodega: configuration, connections, the event
// listeners, the queue and the scheduler. cmd/bodega builds one Kernel per
// command and asks it only for the parts that command needs.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shashiranjanraj/bodega/app/gql"
	"github.com/shashiranjanraj/bodega/app/jobs"
	"github.com/shashiranjanraj/bodega/app/listeners"
	"github.com/shashiranjanraj/bodega/app/routes"
	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/pkg/app"
	"github.com/shashiranjanraj/bodega/pkg/cache"
	"github.com/shashiranjanraj/bodega/pkg/database"
	"github.com/shashiranjanraj/bodega/pkg/event"
	"github.com/shashiranjanraj/bodega/pkg/logger"
	"github.com/shashiranjanraj/bodega/pkg/queue"
	"github.com/shashiranjanraj/bodega/pkg/router"
	"github.com/shashiranjanraj/bodega/pkg/schedule"
	"github.com/shashiranjanraj/bodega/pkg/sse"
	"github.com/shashiranjanraj/bodega/pkg/storage"
	"github.com/shashiranjanraj/bodega/pkg/ws"

	// registers the migrations with pkg/migration
	_ "github.com/shashiranjanraj/bodega/database/migrations"
)

// LowStockScan is the scheduler entry that scans every active product.
const LowStockScan = "low-stock-scan"

// Kernel owns the process-wide services.
type Kernel struct {
	Hub       *ws.Hub
	SSE       *sse.Broker
	Bus       *event.Bus
	Queue     *queue.Manager
	Scheduler *schedule.Scheduler

	closers []func() error
}

// New returns a Kernel with nothing connected, enough to build the router.
func New() *Kernel {
	return &Kernel{
		Hub:       ws.NewHub(),
		SSE:       sse.NewBroker(),
		Bus:       event.Default(),
		Queue:     queue.Default(),
		Scheduler: schedule.New(),
	}
}

// Boot loads configuration and connects the database. Redis is optional:
// when it is unreachable the cache is disabled and a warning is logged.
func Boot() (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	k := New()

	flush, err := logger.EnableMongoSink()
	if err != nil {
		logger.Warn("log sink disabled", "error", err)
	}
	k.onClose(func() error { flush(); return nil })

	if err := database.Connect(); err != nil {
		k.Close()
		return nil, err
	}
	k.onClose(func() error {
		sqlDB, err := database.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if config.RedisAddr() != "" {
		if err := cache.Connect(); err != nil {
			logger.Warn("cache disabled", "error", err)
		} else {
			k.onClose(func() error { return cache.RDB.Close() })
		}
	}

	if err := storage.Connect(); err != nil {
		k.Close()
		return nil, err
	}
	return k, nil
}

func (k *Kernel) onClose(fn func() error) { k.closers = append(k.closers, fn) }

// Background wires the event listeners, the job registry and the queue
// driver named by QUEUE_DRIVER. Failed jobs are persisted to the database.
func (k *Kernel) Background() error {
	driver, err := queue.DriverFromConfig()
	if err != nil {
		return err
	}
	k.Queue.SetDriver(driver)
	if c, ok := driver.(io.Closer); ok {
		k.onClose(c.Close)
	}
	k.Queue.UseDB(database.DB)

	jobs.Register(k.Queue)
	listeners.Register(k.Bus, k.Queue, listeners.HubFeed(k.Hub), k.SSE.Publish)

	lowStock := services.NewLowStockService()
	k.Scheduler.Every(time.Duration(config.LowStockScanMinutes()) * time.Minute).
		Name(LowStockScan).
		WithoutOverlapping().
		Run(func(ctx context.Context) error {
			alerts, err := lowStock.Scan(ctx)
			if err != nil {
				return err
			}
			logger.WithCtx(ctx).Info("low stock scan finished", "alerts", len(alerts))
			return nil
		})
	return nil
}

// Application assembles the HTTP side: the REST API plus /graphql, the
// live feeds and /metrics.
func (k *Kernel) Application() (*app.Application, error) {
	schema, err := gql.Schema(gql.NewServices())
	if err != nil {
		return nil, fmt.Errorf("graphql schema: %w", err)
	}
	return app.New().
		Routes(routes.RegisterAPI).
		Routes(func(r *router.Router) { routes.RegisterRealtime(r, schema, k.Hub, k.SSE) }), nil
}

// Handler is the HTTP handler served by `serve`.
func (k *Kernel) Handler() (http.Handler, error) {
	a, err := k.Application()
	if err != nil {
		return nil, err
	}
	return a.Handler(), nil
}

// Close releases connections in reverse order of acquisition.
func (k *Kernel) Close() error {
	var errs []error
	for i := len(k.closers) - 1; i >= 0; i-- {
		if err := k.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	k.closers = nil
	return errors.Join(errs...)
}
