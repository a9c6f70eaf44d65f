package coin

import (
	"context"
	"time"
)

// Loop drives a Flipper at a fixed tick rate. Each tick advances by the
// wall time actually elapsed, so a late tick catches up instead of slowing
// the flip down.
type Loop struct {
	flipper  *Flipper
	interval time.Duration
	now      func() time.Time
}

func NewLoop(f *Flipper, frameRate int) *Loop {
	if frameRate <= 0 {
		frameRate = 60
	}
	return &Loop{
		flipper:  f,
		interval: time.Second / time.Duration(frameRate),
		now:      time.Now,
	}
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := l.now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t := l.now()
			l.flipper.TickBetween(last, t)
			last = t
		}
	}
}
