package workerpool_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/bodega/pkg/workerpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitWaitRunsEverything(t *testing.T) {
	pool := workerpool.New(4)

	var count atomic.Int64
	for i := 0; i < 100; i++ {
		require.NoError(t, pool.SubmitWait(context.Background(), func() { count.Add(1) }))
	}
	pool.Shutdown()

	assert.Equal(t, int64(100), count.Load())
}

func TestSubmitReportsFull(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit(func() {
		close(started)
		<-blocker
	}))
	<-started

	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))
	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolFull)

	close(blocker)
}

func TestSubmitWaitHonoursContext(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	defer close(blocker)
	started := make(chan struct{})
	require.NoError(t, pool.Submit(func() {
		close(started)
		<-blocker
	}))
	<-started
	require.NoError(t, pool.Submit(func() {}))
	require.NoError(t, pool.Submit(func() {}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.SubmitWait(ctx, func() {}), context.DeadlineExceeded)
}

func TestClosedPoolRejects(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
	assert.ErrorIs(t, pool.SubmitWait(context.Background(), func() {}), workerpool.ErrPoolClosed)
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	pool := workerpool.New(1)

	var ran atomic.Bool
	require.NoError(t, pool.SubmitWait(context.Background(), func() { panic("boom") }))
	require.NoError(t, pool.SubmitWait(context.Background(), func() { ran.Store(true) }))
	pool.Shutdown()

	assert.True(t, ran.Load())
}
