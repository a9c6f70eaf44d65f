// Package waitfor polls for collaborators that become available
// asynchronously, giving up after a fixed number of attempts.
package waitfor

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("collaborator not available before deadline")

// Check reports whether the collaborator is ready.
type Check func(ctx context.Context) bool

// Poll calls check up to attempts times, interval apart. It returns nil as
// soon as check succeeds and ErrTimeout when attempts run out.
func Poll(ctx context.Context, attempts int, interval time.Duration, check Check) error {
	if attempts <= 0 {
		attempts = 1
	}
	timer := time.NewTimer(0)
	defer timer.Stop()

	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		if check(ctx) {
			return nil
		}
		timer.Reset(interval)
	}
	return ErrTimeout
}
