// internal/common/fanout/fanout.go
package fanout

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when a caller passes workers <= 0.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// Map runs fn once per item on at most workers goroutines and waits for all of
// them. Results keep the order of items. The first error cancels the context
// handed to the remaining calls, stops items that have not started yet, and is
// the error Map returns; no partial results are returned alongside it.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Each is Map for work without a result.
func Each[T any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) error) error {
	_, err := Map(ctx, workers, items, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	return err
}
