package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_RunsOnInterval(t *testing.T) {
	var runs atomic.Int32
	task := New("test", 10*time.Millisecond, func(context.Context) { runs.Add(1) })

	require.True(t, task.Start(context.Background()))
	defer task.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, task.Running())
}

func TestTask_NoImmediateRun(t *testing.T) {
	var runs atomic.Int32
	task := New("test", time.Hour, func(context.Context) { runs.Add(1) })

	require.True(t, task.Start(context.Background()))
	task.Stop()

	assert.Equal(t, int32(0), runs.Load())
}

func TestTask_StopHaltsRuns(t *testing.T) {
	var runs atomic.Int32
	task := New("test", 5*time.Millisecond, func(context.Context) { runs.Add(1) })

	require.True(t, task.Start(context.Background()))
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, time.Millisecond)

	task.Stop()
	assert.False(t, task.Running())
	assert.Nil(t, task.Done())

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())

	// Stop is idempotent.
	task.Stop()
}

func TestTask_DoubleStart(t *testing.T) {
	task := New("test", time.Hour, func(context.Context) {})

	require.True(t, task.Start(context.Background()))
	assert.False(t, task.Start(context.Background()))
	task.Stop()

	assert.True(t, task.Start(context.Background()), "a stopped task can be restarted")
	task.Stop()
}

func TestTask_InvalidInterval(t *testing.T) {
	task := New("test", 0, func(context.Context) {})
	assert.False(t, task.Start(context.Background()))
	assert.False(t, task.Running())
}

func TestTask_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := New("test", time.Hour, func(context.Context) {})

	require.True(t, task.Start(ctx))
	done := task.Done()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not exit after context cancel")
	}
	task.Stop()
}

func TestTask_RunReceivesCancellableContext(t *testing.T) {
	started := make(chan struct{})
	var once atomic.Bool
	task := New("test", 5*time.Millisecond, func(ctx context.Context) {
		if once.CompareAndSwap(false, true) {
			close(started)
			<-ctx.Done()
		}
	})

	require.True(t, task.Start(context.Background()))
	<-started

	stopped := make(chan struct{})
	go func() {
		task.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not cancel the in-flight run")
	}
	assert.Equal(t, time.Duration(5*time.Millisecond), task.Interval())
}
