package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Doc is one stored log line. Inventory identifiers logged at the top level
// are lifted out of Attrs so the collection can be indexed on them.
type Doc struct {
	Time      time.Time      `bson:"time"`
	Level     string         `bson:"level"`
	Msg       string         `bson:"msg"`
	RequestID string         `bson:"request_id,omitempty"`
	OrderID   string         `bson:"order_id,omitempty"`
	SKU       string         `bson:"sku,omitempty"`
	Warehouse string         `bson:"warehouse,omitempty"`
	Attrs     map[string]any `bson:"attrs,omitempty"`
}

// WriteFunc stores one batch of docs.
type WriteFunc func(ctx context.Context, docs []Doc) error

// DocHandler is a slog.Handler that turns records into Docs and writes them
// in batches from one goroutine. Handle never blocks; when the buffer is
// full the record is dropped.
type DocHandler struct {
	level  slog.Leveler
	shared *batcher
	attrs  []slog.Attr
	prefix string
}

type batcher struct {
	write   WriteFunc
	size    int
	every   time.Duration
	queue   chan Doc
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	mu      sync.Mutex
	closers []func()
}

// NewDocHandler starts the writer goroutine. Batches hold up to size docs
// and are flushed at least every interval.
func NewDocHandler(level slog.Leveler, size int, every time.Duration, write WriteFunc) *DocHandler {
	b := &batcher{
		write:   write,
		size:    max(size, 1),
		every:   every,
		queue:   make(chan Doc, 4096),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go b.loop()
	return &DocHandler{level: level, shared: b}
}

func (h *DocHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level.Level() }

func (h *DocHandler) Handle(_ context.Context, r slog.Record) error {
	d := Doc{Time: r.Time, Level: r.Level.String(), Msg: r.Message}
	for _, a := range h.attrs {
		add(&d, a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(&d, h.prefix+a.Key, a.Value)
		return true
	})

	select {
	case h.shared.queue <- d:
	default:
	}
	return nil
}

// add stores one attribute under its group-qualified key.
func add(d *Doc, key string, v slog.Value) {
	switch key {
	case "request_id":
		d.RequestID = v.String()
	case "order_id":
		d.OrderID = v.String()
	case "sku":
		d.SKU = v.String()
	case "warehouse":
		d.Warehouse = v.String()
	default:
		if d.Attrs == nil {
			d.Attrs = map[string]any{}
		}
		d.Attrs[key] = plain(v)
	}
}

// plain keeps values the bson encoder understands and stringifies the rest.
func plain(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindGroup:
		m := map[string]any{}
		for _, a := range v.Group() {
			m[a.Key] = plain(a.Value)
		}
		return m
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return x.Error()
		case fmt.Stringer:
			return x.String()
		}
	}
	return v.Any()
}

func (h *DocHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		c.attrs = append(c.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &c
}

func (h *DocHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

// OnClose registers f to run after the final flush.
func (h *DocHandler) OnClose(f func()) {
	b := h.shared
	b.mu.Lock()
	b.closers = append(b.closers, f)
	b.mu.Unlock()
}

// Close flushes what is queued and runs the OnClose hooks. Safe to call
// more than once.
func (h *DocHandler) Close() {
	b := h.shared
	b.once.Do(func() {
		close(b.done)
		<-b.stopped
		b.mu.Lock()
		closers := b.closers
		b.mu.Unlock()
		for _, f := range closers {
			f()
		}
	})
}

func (b *batcher) loop() {
	defer close(b.stopped)
	tick := time.NewTicker(b.every)
	defer tick.Stop()

	batch := make([]Doc, 0, b.size)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := b.write(ctx, batch); err != nil {
			fmt.Fprintf(os.Stderr, "logger: dropped %d log docs: %v\n", len(batch), err)
		}
		cancel()
		batch = make([]Doc, 0, b.size)
	}

	for {
		select {
		case d := <-b.queue:
			if batch = append(batch, d); len(batch) >= b.size {
				flush()
			}
		case <-tick.C:
			flush()
		case <-b.done:
			for {
				select {
				case d := <-b.queue:
					if batch = append(batch, d); len(batch) >= b.size {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// fanout sends each record to every handler that wants it.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
