package session

import (
	"context"
	"fmt"
	"time"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// withTimeout runs op and a timer side by side and returns whichever
// finishes first. The timer is stopped when op wins. When the timer wins,
// op's context is cancelled and its eventual result is dropped.
func withTimeout[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		v, err := op(opCtx)
		done <- result{v: v, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		return r.v, r.err
	case <-timer.C:
		return zero, fmt.Errorf("%w after %s", domain.ErrTimeout, d)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
