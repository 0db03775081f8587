package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolClosed is reported by a Task whose pool rejected it.
var ErrPoolClosed = errors.New("parallel: pool closed")

// Task is a cancelable unit of background work started with Go.
type Task struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Go runs fn on the pool with a context derived from parent. The context is
// canceled when the task is canceled or fn returns. A panic in fn is
// recovered and reported as the task error.
func (p *WorkerPool) Go(parent context.Context, fn func(ctx context.Context) error) *Task {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	t := &Task{ctx: ctx, cancel: cancel, done: make(chan struct{})}

	run := func() {
		defer close(t.done)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				t.setErr(fmt.Errorf("parallel: task panic: %v", r))
			}
		}()
		if err := ctx.Err(); err != nil {
			t.setErr(err)
			return
		}
		t.setErr(fn(ctx))
	}

	if !p.Submit(run) {
		t.setErr(ErrPoolClosed)
		cancel()
		close(t.done)
	}
	return t
}

func (t *Task) setErr(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}

// Cancel asks the task to stop. It does not wait.
func (t *Task) Cancel() {
	t.cancel()
}

// Canceled reports whether Cancel was called or the parent context ended.
func (t *Task) Canceled() bool {
	return t.ctx.Err() != nil
}

// Context returns the task context.
func (t *Task) Context() context.Context {
	return t.ctx
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx ends, and returns the task error.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the error the task finished with, or nil while it runs.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
