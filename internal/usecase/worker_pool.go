package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

func normalizeWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 1
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}

// runPool applies fn to every item on an ants pool and returns outputs in
// input order.
func runPool[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) R) ([]R, error) {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out, nil
	}

	pool, err := ants.NewPool(normalizeWorkerCount(workers, len(items)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, item := range items {
		i, item := i, item
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			out[i] = fn(ctx, item)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	wg.Wait()
	return out, nil
}
