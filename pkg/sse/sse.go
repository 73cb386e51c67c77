// Package sse serves server-sent events, the fallback live feed for clients
// that cannot open a websocket.
//
//	b := sse.NewBroker()
//	r.Get("/sse/stock", "sse.stock", b.ServeHTTP)
//	b.Publish("stock.low", alert)
//
// Like /ws/stock, ?events=a,b narrows the feed.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/bodega/pkg/logger"
)

const (
	heartbeat  = 25 * time.Second
	sendBuffer = 32
)

// Stream writes events to one client. Flushing goes through
// http.ResponseController so middleware wrappers that implement Unwrap
// do not hide the underlying flusher.
type Stream struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// NewStream sets the event-stream headers and lifts the server write
// deadline. It returns nil when w cannot flush.
func NewStream(w http.ResponseWriter) *Stream {
	rc := http.NewResponseController(w)
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return nil
	}
	_ = rc.SetWriteDeadline(time.Time{})
	return &Stream{w: w, rc: rc}
}

// Send writes a named event whose data line is payload.
func (s *Stream) Send(event string, payload []byte) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Comment writes a comment line, used as a keepalive.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	return s.rc.Flush()
}

type message struct {
	event string
	data  []byte
}

type subscriber struct {
	ch     chan message
	filter map[string]bool
}

// Broker fans published events out to every connected stream. A client
// whose buffer is full misses the event.
type Broker struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[*subscriber]struct{}{}}
}

// Publish sends data, JSON-encoded, to every client that wants event.
func (b *Broker) Publish(event string, data any) {
	raw, err := json.Marshal(map[string]any{"type": event, "at": time.Now().UTC(), "data": data})
	if err != nil {
		logger.Error("sse: marshal event", "type", event, "error", err)
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		if len(s.filter) > 0 && !s.filter[event] {
			continue
		}
		select {
		case s.ch <- message{event: event, data: raw}:
		default:
		}
	}
}

// Clients returns the number of connected streams.
func (b *Broker) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker) subscribe(filter map[string]bool) *subscriber {
	s := &subscriber{ch: make(chan message, sendBuffer), filter: filter}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

func (b *Broker) unsubscribe(s *subscriber) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}

// ServeHTTP streams events until the client goes away.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stream := NewStream(w)
	if stream == nil {
		return
	}
	sub := b.subscribe(parseFilter(r.URL.Query().Get("events")))
	defer b.unsubscribe(sub)

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-sub.ch:
			if err := stream.Send(msg.event, msg.data); err != nil {
				return
			}
		case <-ticker.C:
			if err := stream.Comment("ping"); err != nil {
				return
			}
		}
	}
}

func parseFilter(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	out := map[string]bool{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out[t] = true
		}
	}
	return out
}
