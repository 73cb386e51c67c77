// Package schedule runs named tasks at fixed intervals.
//
//	s := schedule.New()
//	s.Every(15 * time.Minute).Name("low-stock-scan").WithoutOverlapping().Run(scan)
//	s.Start(ctx)
//	...
//	s.Wait() // after ctx is cancelled, waits for running tasks
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/bodega/pkg/logger"
)

// Task is one run of a scheduled job.
type Task func(ctx context.Context) error

type entry struct {
	id        string
	interval  time.Duration
	immediate bool
	noOverlap bool
	task      Task

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler owns a set of entries and the loop that dispatches them.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	tick    time.Duration
	wg      sync.WaitGroup
}

// New returns a scheduler that checks for due tasks every second.
func New() *Scheduler {
	return &Scheduler{tick: time.Second}
}

// SetTick changes how often due tasks are checked.
func (s *Scheduler) SetTick(d time.Duration) { s.tick = d }

// Schedule configures one entry before Run registers it.
type Schedule struct {
	s *Scheduler
	e *entry
}

// Every starts an entry that runs every interval.
func (s *Scheduler) Every(interval time.Duration) *Schedule {
	return &Schedule{s: s, e: &entry{interval: interval}}
}

func (sc *Schedule) Name(id string) *Schedule {
	sc.e.id = id
	return sc
}

// WithoutOverlapping skips a run while the previous one is still going.
func (sc *Schedule) WithoutOverlapping() *Schedule {
	sc.e.noOverlap = true
	return sc
}

// Immediately makes the first run happen on the first tick instead of one
// interval after Start.
func (sc *Schedule) Immediately() *Schedule {
	sc.e.immediate = true
	return sc
}

// Run registers task.
func (sc *Schedule) Run(task Task) {
	sc.e.task = task
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if sc.e.id == "" {
		sc.e.id = fmt.Sprintf("task-%d", len(sc.s.entries)+1)
	}
	sc.s.entries = append(sc.s.entries, sc.e)
}

// Entry describes a registered task for listings.
type Entry struct {
	Name     string
	Interval time.Duration
	LastRun  time.Time
	Running  bool
}

// List returns the registered entries.
func (s *Scheduler) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		e.mu.Lock()
		out = append(out, Entry{Name: e.id, Interval: e.interval, LastRun: e.lastRun, Running: e.running})
		e.mu.Unlock()
	}
	return out
}

// Start runs the dispatch loop in the background until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	started := time.Now()
	s.mu.Lock()
	for _, e := range s.entries {
		if !e.immediate {
			e.lastRun = started
		}
	}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
	logger.Info("schedule: scheduler started", "entries", len(s.List()))
}

// Wait blocks until the loop has stopped and every running task returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

// RunNow runs the named entry once, synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	var found *entry
	for _, e := range s.entries {
		if e.id == name {
			found = e
		}
	}
	s.mu.Unlock()
	if found == nil {
		return fmt.Errorf("schedule: no task named %q", name)
	}
	return found.task(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: scheduler stopped")
			return
		case now := <-ticker.C:
			s.mu.Lock()
			current := make([]*entry, len(s.entries))
			copy(current, s.entries)
			s.mu.Unlock()

			for _, e := range current {
				s.dispatch(ctx, e, now)
			}
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if !e.lastRun.IsZero() && now.Sub(e.lastRun) < e.interval {
		e.mu.Unlock()
		return
	}
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: previous run still going, skipping", "task", e.id)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "task", e.id, "panic", r)
			}
		}()

		if err := e.task(ctx); err != nil {
			logger.Error("schedule: task failed", "task", e.id, "error", err, "elapsed", time.Since(start))
			return
		}
		logger.Info("schedule: task finished", "task", e.id, "elapsed", time.Since(start))
	}()
}
