package importer

import (
	"context"
)

// Task is an import running on its own goroutine.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	result *Result
	err    error
}

// Start runs fn in the background with a cancellable context derived from ctx.
func Start(ctx context.Context, fn func(ctx context.Context) (*Result, error)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer cancel()
		t.result, t.err = fn(ctx)
	}()
	return t
}

// Cancel asks the task to stop at the next file boundary.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and reports whether it succeeded.
func (t *Task) Wait() (bool, *Result, error) {
	<-t.done
	return t.err == nil, t.result, t.err
}
