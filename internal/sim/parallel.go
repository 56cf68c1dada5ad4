package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/coagsim/internal/dynamo"
)

// Job is one independent run of a sweep.
type Job struct {
	Name   string
	Sim    *Simulator
	X0     dynamo.State
	Config dynamo.Config
}

// Sweep runs every job on its own goroutine and returns the results in job
// order. Jobs must not share integrators that keep scratch state. The first
// failing job's error is returned after all jobs finish.
func Sweep(ctx context.Context, jobs []Job) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			job := jobs[idx]
			results[idx], errs[idx] = job.Sim.Run(ctx, job.X0, job.Config)
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sweep job %d (%s): %w", i, jobs[i].Name, err)
		}
	}

	return results, nil
}
