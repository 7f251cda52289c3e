package client

import (
	"context"
	"time"
)

// DefaultFloor is the minimum time a busy indicator stays visible.
const DefaultFloor = 1000 * time.Millisecond

// RunWithFloor runs op and then waits until at least floor has elapsed since
// the call began, whether op succeeded or not. The wait ends early if ctx is
// cancelled. op's result is returned unchanged.
func RunWithFloor[T any](ctx context.Context, floor time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	start := time.Now()
	result, err := op(ctx)

	if remaining := floor - time.Since(start); remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}
	return result, err
}
