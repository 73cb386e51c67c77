package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/bodega/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var handled atomic.Int32

type countJob struct {
	SKU string `json:"sku"`
}

func (countJob) JobName() string { return "count" }

func (j *countJob) Handle(context.Context) error {
	if j.SKU == "" {
		return errors.New("missing sku")
	}
	handled.Add(1)
	return nil
}

type failJob struct {
	Reason string `json:"reason"`
}

func (j *failJob) Handle(context.Context) error { return errors.New(j.Reason) }

func newManager(t *testing.T) *queue.Manager {
	t.Helper()
	m := queue.NewManager(queue.NewMemoryDriver())
	m.SetBackoff(func(int) time.Duration { return 0 })
	m.Register("count", func() queue.Job { return &countJob{} })
	m.Register(queue.TypeName(&failJob{}), func() queue.Job { return &failJob{} })
	return m
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "count", queue.TypeName(&countJob{}))
	assert.Equal(t, "*queue_test.failJob", queue.TypeName(&failJob{}))
}

func TestDispatchAndProcess(t *testing.T) {
	m := newManager(t)
	before := handled.Load()

	ctx, cancel := context.WithCancel(context.Background())
	wg := m.StartWorkers(ctx, 2)

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Dispatch(ctx, &countJob{SKU: "TV-SAMSUNG-001"}))
	}

	assert.Eventually(t, func() bool { return handled.Load()-before == 5 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	wg.Wait()
	assert.Empty(t, m.FailedJobs())
}

func TestProcessUnknownType(t *testing.T) {
	m := newManager(t)
	err := m.Process(context.Background(), []byte(`{"type":"nope","payload":{}}`))
	assert.ErrorIs(t, err, queue.ErrUnknownJob)
}

func TestProcessBadEnvelope(t *testing.T) {
	m := newManager(t)
	assert.Error(t, m.Process(context.Background(), []byte(`not json`)))
}

func TestFailedJobIsRecordedAfterRetries(t *testing.T) {
	m := newManager(t)
	m.SetMaxRetry(2)

	raw := []byte(`{"type":"*queue_test.failJob","payload":{"reason":"webhook down"}}`)
	require.NoError(t, m.Process(context.Background(), raw))

	failed := m.FailedJobs()
	require.Len(t, failed, 1)
	assert.Equal(t, "*queue_test.failJob", failed[0].Type)
	assert.Equal(t, 2, failed[0].Attempts)
	assert.EqualError(t, failed[0].Err, "webhook down")
}

func TestFailedJobIsPersisted(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:queue_failed?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&queue.FailedJobRecord{}))

	m := newManager(t)
	m.SetMaxRetry(1)
	m.UseDB(db)

	require.NoError(t, m.Process(context.Background(), []byte(`{"type":"count","payload":{}}`)))

	rows, err := m.StoredFailures(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "count", rows[0].JobType)
	assert.Equal(t, "missing sku", rows[0].Error)
	assert.Equal(t, 1, rows[0].Attempts)
	assert.JSONEq(t, `{"sku":""}`, rows[0].Payload)
}

func TestMemoryDriverFull(t *testing.T) {
	d := queue.NewMemoryDriver()
	for i := 0; i < 1000; i++ {
		require.NoError(t, d.Push(context.Background(), []byte("x")))
	}
	assert.ErrorIs(t, d.Push(context.Background(), []byte("x")), queue.ErrQueueFull)
	assert.Equal(t, 1000, d.Len())
}

func TestMemoryDriverPopHonoursContext(t *testing.T) {
	d := queue.NewMemoryDriver()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDispatchAfterWithoutDelayer(t *testing.T) {
	d := queue.NewMemoryDriver()
	m := queue.NewManager(d)

	require.NoError(t, m.DispatchAfter(context.Background(), &countJob{SKU: "x"}, 10*time.Millisecond))
	assert.Equal(t, 0, d.Len())
	assert.Eventually(t, func() bool { return d.Len() == 1 }, time.Second, 5*time.Millisecond)
}
