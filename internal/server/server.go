// Package server runs the long-lived processes of `bodega serve` and stops
// them in order when the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/internal/kernel"
	"github.com/shashiranjanraj/bodega/pkg/database"
	"github.com/shashiranjanraj/bodega/pkg/grpc"
	"github.com/shashiranjanraj/bodega/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// Options selects what Serve starts besides HTTP.
type Options struct {
	Workers   int
	Scheduler bool
	GRPC      bool
}

// DefaultOptions starts everything with four queue workers.
func DefaultOptions() Options {
	return Options{Workers: 4, Scheduler: true, GRPC: true}
}

// Serve starts the websocket hub, the queue workers, the scheduler, the
// gRPC health server and the HTTP server, then blocks until ctx is done or
// the HTTP server fails.
func Serve(ctx context.Context, k *kernel.Kernel, opts Options) error {
	handler, err := k.Handler()
	if err != nil {
		return err
	}

	bg, cancel := context.WithCancel(context.Background())
	defer cancel()

	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		k.Hub.Run(bg)
	}()

	var waitWorkers func()
	if opts.Workers > 0 {
		wg := k.Queue.StartWorkers(bg, opts.Workers)
		waitWorkers = wg.Wait
	}
	if opts.Scheduler {
		k.Scheduler.Start(bg)
	}

	if opts.GRPC {
		srv, err := grpc.Start(config.GRPCPort(), database.Ping)
		if err != nil {
			return err
		}
		defer grpc.Stop(srv)
	}

	httpSrv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http: server starting", "addr", httpSrv.Addr, "env", config.AppEnv())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http: %w", err)
		}
	}

	logger.Info("http: server shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http: shutdown", "error", err)
	}

	cancel()
	if waitWorkers != nil {
		waitWorkers()
	}
	if opts.Scheduler {
		k.Scheduler.Wait()
	}
	<-hubDone
	logger.Info("server stopped")
	return runErr
}
