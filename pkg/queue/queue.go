// Package queue runs background jobs on a pluggable driver (memory, redis or
// amqp).
//
//	type LowStockCheckJob struct { ProductIDs []string }
//	func (LowStockCheckJob) JobName() string { return "low_stock_check" }
//	func (j *LowStockCheckJob) Handle(ctx context.Context) error { ... }
//
//	queue.Register("low_stock_check", func() queue.Job { return &LowStockCheckJob{} })
//	queue.Dispatch(ctx, &LowStockCheckJob{ProductIDs: ids})
//
// A job that keeps failing after MaxRetry attempts is recorded in memory and,
// when UseDB was called, in the bodega_failed_jobs table.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/bodega/pkg/logger"
	"github.com/shashiranjanraj/bodega/pkg/metrics"
	"gorm.io/gorm"
)

// Job is a unit of background work. Jobs are JSON-encoded on dispatch, so
// their state must live in exported fields.
type Job interface {
	Handle(ctx context.Context) error
}

// Named jobs are registered and routed by JobName. Other jobs use their Go
// type name (%T).
type Named interface {
	JobName() string
}

// FailedJob holds a job that exhausted its retries.
type FailedJob struct {
	Type     string
	Job      Job
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend. Pop returns (nil, nil) when it timed
// out without a job.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// Delayer is implemented by drivers that can hold a job until a later time.
type Delayer interface {
	PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error
}

var ErrUnknownJob = errors.New("queue: job type not registered")

// Manager owns a driver, the job registry and the failure log.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	maxRetry int
	backoff  func(attempt int) time.Duration
	db       *gorm.DB
}

// NewManager creates a Manager on driver with 3 attempts and linear backoff.
func NewManager(driver Driver) *Manager {
	return &Manager{
		driver:   driver,
		registry: map[string]func() Job{},
		maxRetry: 3,
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
	}
}

var defaultManager = NewManager(NewMemoryDriver())

// Default returns the process-wide manager used by the package functions.
func Default() *Manager { return defaultManager }

// SetDriver swaps the driver of the default manager.
func SetDriver(d Driver) { defaultManager.SetDriver(d) }

// SetMaxRetry sets how many attempts a job gets before it is recorded as
// failed.
func SetMaxRetry(n int) { defaultManager.SetMaxRetry(n) }

// Register makes a job type decodable by name on the default manager.
func Register(name string, factory func() Job) { defaultManager.Register(name, factory) }

// Dispatch pushes job onto the default manager's queue.
func Dispatch(ctx context.Context, job Job) error { return defaultManager.Dispatch(ctx, job) }

// DispatchAfter pushes job after delay.
func DispatchAfter(ctx context.Context, job Job, delay time.Duration) error {
	return defaultManager.DispatchAfter(ctx, job, delay)
}

// StartWorkers starts n workers on the default manager.
func StartWorkers(ctx context.Context, n int) *sync.WaitGroup {
	return defaultManager.StartWorkers(ctx, n)
}

// FailedJobs returns the default manager's failure log.
func FailedJobs() []FailedJob { return defaultManager.FailedJobs() }

func (m *Manager) SetDriver(d Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driver = d
}

func (m *Manager) SetMaxRetry(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 1 {
		n = 1
	}
	m.maxRetry = n
}

// SetBackoff replaces the wait between attempts.
func (m *Manager) SetBackoff(fn func(attempt int) time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backoff = fn
}

func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

// Driver returns the current driver.
func (m *Manager) Driver() Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.driver
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// TypeName is the registry key of job.
func TypeName(job Job) string {
	if n, ok := job.(Named); ok {
		return n.JobName()
	}
	return fmt.Sprintf("%T", job)
}

func encode(job Job) ([]byte, error) {
	typeName := TypeName(job)
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal job %s: %w", typeName, err)
	}
	env, err := json.Marshal(envelope{Type: typeName, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return env, nil
}

func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	env, err := encode(job)
	if err != nil {
		return err
	}
	return m.Driver().Push(ctx, env)
}

// DispatchAfter uses the driver's delayed queue when it has one and a timer
// otherwise. The timer does not survive a restart.
func (m *Manager) DispatchAfter(ctx context.Context, job Job, delay time.Duration) error {
	env, err := encode(job)
	if err != nil {
		return err
	}
	d := m.Driver()
	if dl, ok := d.(Delayer); ok {
		return dl.PushDelayed(ctx, env, delay)
	}
	time.AfterFunc(delay, func() {
		if err := d.Push(context.Background(), env); err != nil {
			logger.Error("queue: delayed dispatch failed", "type", TypeName(job), "error", err)
		}
	})
	return nil
}

// StartWorkers launches n workers that run until ctx is cancelled. Wait on
// the returned group to let in-flight jobs finish.
func (m *Manager) StartWorkers(ctx context.Context, n int) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)
	return &wg
}

func (m *Manager) work(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		raw, err := m.Driver().Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(500 * time.Millisecond):
			}
			continue
		}
		if raw == nil {
			continue
		}

		if err := m.Process(ctx, raw); err != nil {
			logger.Error("queue: discarded job", "error", err)
		}
	}
}

// Process decodes one envelope and runs its job with retries. The returned
// error covers decoding only; job failures end up in the failure log.
func (m *Manager) Process(ctx context.Context, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("queue: bad envelope: %w", err)
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, env.Type)
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		return fmt.Errorf("queue: unmarshal %s: %w", env.Type, err)
	}

	m.runWithRetry(ctx, job, env.Type)
	return nil
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, typeName string) {
	m.mu.RLock()
	maxRetry, backoff := m.maxRetry, m.backoff
	m.mu.RUnlock()

	log := logger.WithCtx(ctx)
	start := time.Now()

	var lastErr error
	attempts := 0
retry:
	for attempt := 1; attempt <= maxRetry; attempt++ {
		attempts = attempt
		lastErr = job.Handle(ctx)
		if lastErr == nil {
			metrics.RecordQueueJob(typeName, "success", start)
			log.Info("queue: job processed", "type", typeName, "attempt", attempt)
			return
		}
		log.Warn("queue: job failed", "type", typeName, "attempt", attempt, "error", lastErr)

		if attempt == maxRetry {
			break
		}
		select {
		case <-ctx.Done():
			break retry
		case <-time.After(backoff(attempt)):
		}
	}

	metrics.RecordQueueJob(typeName, "failed", start)
	m.persistFailed(ctx, job, typeName, lastErr, attempts)
	log.Error("queue: job exhausted retries", "type", typeName, "error", lastErr)
}

// FailedJobs returns a snapshot of the in-memory failure log.
func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FailedJob, len(m.failed))
	copy(out, m.failed)
	return out
}
