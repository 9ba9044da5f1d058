package concurrency

import (
	"context"
	"sync"
)

// ForEach runs itemFunc for every item with at most maxWorkers in flight.
// Errors are collected per item and returned indexed like the input, so a
// failing item never stops its siblings. maxWorkers <= 1 degrades to a
// plain sequential loop.
func ForEach[T any](
	ctx context.Context,
	items []T,
	maxWorkers int,
	itemFunc func(ctx context.Context, index int, item T) error,
) []error {
	errs := make([]error, len(items))
	if len(items) == 0 {
		return errs
	}

	if maxWorkers <= 1 {
		for i, item := range items {
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				continue
			}
			errs[i] = itemFunc(ctx, i, item)
		}
		return errs
	}

	if maxWorkers > len(items) {
		maxWorkers = len(items)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					errs[i] = ctx.Err()
					continue
				}
				errs[i] = itemFunc(ctx, i, items[i])
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return errs
}
