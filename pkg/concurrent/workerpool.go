package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs functions with a bounded number of goroutines.
type WorkerPool struct {
	workerCount int
}

func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{workerCount: workerCount}
}

func (wp *WorkerPool) Size() int {
	return wp.workerCount
}

// RunAll executes every function without cancelling the others on failure
// and returns the non-nil errors. Functions not yet started when ctx is
// cancelled report ctx.Err() instead of running.
func (wp *WorkerPool) RunAll(ctx context.Context, functions ...func() error) []error {
	if len(functions) == 0 {
		return nil
	}

	errs := make(chan error, len(functions))

	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)
	for _, fn := range functions {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return nil
			default:
			}
			if err := fn(); err != nil {
				errs <- err
			}
			return nil
		})
	}
	_ = g.Wait()
	close(errs)

	var out []error
	for err := range errs {
		out = append(out, err)
	}
	return out
}
