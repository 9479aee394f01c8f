package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// ForEach runs fn for every item in its own goroutine and waits for all of
// them to finish. One item failing or panicking never stops the others.
//
// Behavior:
//   - Panics are recovered per item, logged, and collected as errors
//   - The returned slice holds the errors of failed items, in no particular
//     order; it is nil when every item succeeded
func ForEach[T any](ctx context.Context, items []T, fn func(ctx context.Context, item T) error) []error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, item := range items {
		wg.Add(1)
		go func(item T) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()
					ctxlog.From(ctx).Error("panic in parallel handler",
						"recover", r,
						"stack", string(stack))

					mu.Lock()
					errs = append(errs, goerr.New("panic in parallel handler", goerr.V("recover", r)))
					mu.Unlock()
				}
			}()

			if err := fn(ctx, item); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(item)
	}

	wg.Wait()
	return errs
}
