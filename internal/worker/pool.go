package worker

import (
	"context"
	"sync"
)

// Job is one unit of anchor-level work. Jobs must be independent: each
// owns its own session and pacing, and shared state (the accumulator) is
// internally locked.
type Job func(ctx context.Context) error

// Pool runs jobs with a bounded number of workers. With one worker it
// degenerates to the strictly sequential behavior the default
// configuration uses.
type Pool struct {
	workers int
}

// NewPool creates a pool. Worker counts below 1 are coerced to 1.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run executes all jobs and returns the errors of the ones that failed,
// in completion order. Run stops handing out new jobs once the context is
// canceled; in-flight jobs are left to observe the context themselves.
func (p *Pool) Run(ctx context.Context, jobs []Job) []error {
	queue := make(chan Job)
	errs := make(chan error, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				if err := job(ctx); err != nil {
					errs <- err
				}
			}
		}()
	}

dispatch:
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			break dispatch
		case queue <- job:
		}
	}
	close(queue)
	wg.Wait()
	close(errs)

	var out []error
	for err := range errs {
		out = append(out, err)
	}
	return out
}
