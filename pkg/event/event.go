// Package event is an in-process publish/subscribe bus. Services fire events
// after their transaction commits; listeners dispatch queue jobs or push to
// the websocket feed.
package event

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/bodega/pkg/logger"
)

// Handler receives the payload of one event.
type Handler func(ctx context.Context, payload any)

// Bus maps event names to listeners.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

var defaultBus = NewBus()

// Default returns the process-wide bus.
func Default() *Bus { return defaultBus }

// Listen registers handler on the default bus.
func Listen(name string, handler Handler) { defaultBus.Listen(name, handler) }

// Fire runs the default bus listeners synchronously.
func Fire(ctx context.Context, name string, payload any) { defaultBus.Fire(ctx, name, payload) }

// FireAsync runs the default bus listeners in goroutines.
func FireAsync(ctx context.Context, name string, payload any) {
	defaultBus.FireAsync(ctx, name, payload)
}

// Flush removes every listener from the default bus.
func Flush() { defaultBus.Flush() }

func (b *Bus) Listen(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// Listeners reports how many handlers name has.
func (b *Bus) Listeners(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}

func (b *Bus) snapshot(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.handlers[name]))
	copy(hs, b.handlers[name])
	return hs
}

// Fire calls every listener of name in registration order. A panicking
// listener is logged and does not stop the others.
func (b *Bus) Fire(ctx context.Context, name string, payload any) {
	for _, h := range b.snapshot(name) {
		b.call(ctx, name, h, payload)
	}
}

// FireAsync returns immediately. The listeners get a context detached from
// ctx's cancellation so they outlive the request that fired the event.
func (b *Bus) FireAsync(ctx context.Context, name string, payload any) {
	detached := context.WithoutCancel(ctx)
	for _, h := range b.snapshot(name) {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			b.call(detached, name, h, payload)
		}(h)
	}
}

// Wait blocks until every FireAsync listener has returned.
func (b *Bus) Wait() { b.wg.Wait() }

func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}

func (b *Bus) call(ctx context.Context, name string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", name, "panic", r)
		}
	}()
	h(ctx, payload)
}
