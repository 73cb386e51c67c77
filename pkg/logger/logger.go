// Package logger provides the service-wide structured logger built on log/slog.
//
// Handlers never construct loggers themselves. They ask for the request
// scoped one, which already carries the request id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order confirmed", "order_id", id)
//	// → time=... level=INFO msg="order confirmed" request_id=a1b2c3d4 order_id=...
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/shashiranjanraj/bodega/config"
)

var L *slog.Logger

var (
	sinkMu sync.Mutex
	sink   *DocHandler
)

func init() {
	L = New(os.Stdout, config.AppEnv(), config.LogLevel())
	slog.SetDefault(L)
}

// New builds a logger for env. Production environments get JSON output at
// info level, everything else gets text output at debug level. A non-empty
// level ("debug", "info", "warn", "error") overrides the default.
func New(w io.Writer, env, level string) *slog.Logger {
	return slog.New(newHandler(w, env, level))
}

func newHandler(w io.Writer, env, level string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(env, level)}

	switch env {
	case "production", "prod":
		return slog.NewJSONHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}

func parseLevel(env, level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if env == "production" || env == "prod" {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// LevelFor picks the level for an HTTP access line: server errors at error,
// client errors at warn, the rest at info.
func LevelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// EnableMongoSink adds an asynchronous MongoDB sink next to stdout when
// LOG_MONGO_URI is configured. It is a no-op otherwise. The returned
// function flushes and disconnects the sink.
func EnableMongoSink() (func(), error) {
	uri := config.LogMongoURI()
	if uri == "" {
		return func() {}, nil
	}

	h, err := NewMongoHandler(uri, config.LogMongoDB(), "logs", parseLevel(config.AppEnv(), config.LogLevel()))
	if err != nil {
		return func() {}, err
	}

	sinkMu.Lock()
	sink = h
	sinkMu.Unlock()

	L = slog.New(fanout{newHandler(os.Stdout, config.AppEnv(), config.LogLevel()), h})
	slog.SetDefault(L)

	return func() {
		sinkMu.Lock()
		defer sinkMu.Unlock()
		if sink != nil {
			sink.Close()
			sink = nil
		}
	}, nil
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the logger injected into ctx by the request logging
// middleware, or the base logger when there is none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
