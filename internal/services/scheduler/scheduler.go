// Package scheduler runs a function on a fixed interval until stopped.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/j-veylop/hospital-dashboard-tui/internal/logger"
)

// Task invokes fn every interval. The first run happens one interval after
// Start. A Task can be started again after it has been stopped.
type Task struct {
	name     string
	interval time.Duration
	fn       func(context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped task.
func New(name string, interval time.Duration, fn func(context.Context)) *Task {
	return &Task{
		name:     name,
		interval: interval,
		fn:       fn,
	}
}

// Interval returns the period between runs.
func (t *Task) Interval() time.Duration {
	return t.interval
}

// Start launches the task. It returns false if the task is already running
// or the interval is not positive. Cancelling ctx stops the task.
func (t *Task) Start(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil || t.interval <= 0 {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go t.run(ctx, done)

	logger.Info("scheduled task started", "task", t.name, "interval", t.interval)
	return true
}

func (t *Task) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.fn(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels the task and waits for an in-flight run to return.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logger.Info("scheduled task stopped", "task", t.name)
}

// Running reports whether the task has been started and not stopped.
// A task whose parent context was cancelled still reports true until Stop.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Done returns a channel closed when the current run loop exits, or nil if
// the task is not running.
func (t *Task) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
