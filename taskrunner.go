package osd

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// TaskRunner is a small errgroup wrapper used to bound fan-out concurrency,
// e.g. enumeration stat'ing sibling leaf directories for distinct file-ids.
type TaskRunner struct {
	eg      *errgroup.Group
	context context.Context
}

// NewTaskRunner creates a new task runner. maxThreadCount <= 0 means no limit.
func NewTaskRunner(ctx context.Context, maxThreadCount int) *TaskRunner {
	eg, ctx2 := errgroup.WithContext(ctx)
	if maxThreadCount > 0 {
		eg.SetLimit(maxThreadCount)
	}
	return &TaskRunner{
		eg:      eg,
		context: ctx2,
	}
}

// Context returns the task runner's derived context, canceled on first error.
func (tr *TaskRunner) Context() context.Context {
	return tr.context
}

// Go schedules task to run, blocking only if the thread-count limit is reached.
func (tr *TaskRunner) Go(task func() error) {
	tr.eg.Go(task)
}

// Wait blocks until all scheduled tasks complete, returning the first error (if any).
func (tr *TaskRunner) Wait() error {
	return tr.eg.Wait()
}
