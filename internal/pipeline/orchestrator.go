package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/panics"

	"ncaam/ingestion/internal/client"
)

// FetchFunc fetches and normalizes one identifier with an exclusively held
// client. It reports every failure through the returned Outcome.
type FetchFunc func(ctx context.Context, c *client.Client, id string) Outcome

// ProgressFunc is called after each identifier finishes.
type ProgressFunc func(done, total int)

// Orchestrate runs fetch for every id on at most workers goroutines, each
// holding its own client from pool for the duration of one call. The
// returned outcomes are in input order. A panic inside fetch becomes a
// Failed outcome for that id; nothing one id does aborts the others.
func Orchestrate(ctx context.Context, pool *client.Pool, workers int, ids []string, fetch FetchFunc, progress ProgressFunc) ([]Outcome, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	wp, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer wp.Release()

	outcomes := make([]Outcome, len(ids))
	var done atomic.Int64
	var wg sync.WaitGroup

	for i, id := range ids {
		i, id := i, id
		wg.Add(1)
		if err := wp.Submit(func() {
			defer wg.Done()
			outcomes[i] = fetchOne(ctx, pool, id, fetch)
			if progress != nil {
				progress(int(done.Add(1)), len(ids))
			}
		}); err != nil {
			wg.Done()
			outcomes[i] = Failed(id, fmt.Errorf("failed to submit fetch: %w", err))
		}
	}

	wg.Wait()
	return outcomes, nil
}

func fetchOne(ctx context.Context, pool *client.Pool, id string, fetch FetchFunc) Outcome {
	c, err := pool.Acquire(ctx)
	if err != nil {
		return Failed(id, err)
	}
	defer pool.Release(c)

	var out Outcome
	var catcher panics.Catcher
	catcher.Try(func() {
		out = fetch(ctx, c, id)
	})
	if r := catcher.Recovered(); r != nil {
		return Failed(id, fmt.Errorf("panic while fetching %s: %w", id, r.AsError()))
	}
	if out.ID == "" {
		out.ID = id
	}
	return out
}
