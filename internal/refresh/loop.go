package refresh

import (
	"context"
	"time"
)

// DefaultInterval is the refresh period when none is configured.
const DefaultInterval = 2 * time.Second

// Clock is the time source for Loop.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock uses the time package.
type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Loop calls Tick once immediately and then again Interval after each call
// returns, so a slow Tick delays the next one instead of piling up.
type Loop struct {
	Interval time.Duration
	Clock    Clock
	Tick     func(now time.Time)
}

// Run blocks until ctx is cancelled and returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	clock := l.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Tick(clock.Now())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(interval):
		}
	}
}
