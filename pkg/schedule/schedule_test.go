package schedule_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/bodega/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryRunsRepeatedly(t *testing.T) {
	s := schedule.New()
	s.SetTick(5 * time.Millisecond)

	var runs atomic.Int32
	s.Every(10 * time.Millisecond).Name("scan").Immediately().Run(func(context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}

func TestWithoutOverlappingSkipsBusyTask(t *testing.T) {
	s := schedule.New()
	s.SetTick(2 * time.Millisecond)

	var running, maxRunning atomic.Int32
	s.Every(time.Millisecond).Name("slow").Immediately().WithoutOverlapping().Run(func(context.Context) error {
		n := running.Add(1)
		if n > maxRunning.Load() {
			maxRunning.Store(n)
		}
		time.Sleep(30 * time.Millisecond)
		running.Add(-1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Start(ctx)
	<-ctx.Done()
	s.Wait()

	assert.Equal(t, int32(1), maxRunning.Load())
}

func TestRunNow(t *testing.T) {
	s := schedule.New()
	s.Every(time.Hour).Name("low-stock-scan").Run(func(context.Context) error {
		return errors.New("scan failed")
	})

	assert.EqualError(t, s.RunNow(context.Background(), "low-stock-scan"), "scan failed")
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestList(t *testing.T) {
	s := schedule.New()
	s.Every(15 * time.Minute).Name("low-stock-scan").Run(func(context.Context) error { return nil })
	s.Every(time.Minute).Run(func(context.Context) error { return nil })

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "low-stock-scan", list[0].Name)
	assert.Equal(t, 15*time.Minute, list[0].Interval)
	assert.Equal(t, "task-2", list[1].Name)
}
