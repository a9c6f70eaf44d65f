package waitfor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPollSucceeds(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), 5, time.Millisecond, func(context.Context) bool {
		calls++
		return calls == 3
	})
	if err != nil || calls != 3 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestPollTimesOut(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), 4, time.Millisecond, func(context.Context) bool {
		calls++
		return false
	})
	if !errors.Is(err, ErrTimeout) || calls != 4 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestPollCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Poll(ctx, 50, 100*time.Millisecond, func(context.Context) bool { return false })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}
