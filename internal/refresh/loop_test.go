package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// manualClock hands out timers that fire only when the test says so.
type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	armed   chan time.Duration
	pending chan time.Time
}

func newManualClock() *manualClock {
	return &manualClock{
		now:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		armed: make(chan time.Duration, 16),
	}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.mu.Lock()
	c.pending = ch
	c.mu.Unlock()
	c.armed <- d
	return ch
}

// fire advances the clock by d and fires the armed timer.
func (c *manualClock) fire(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	ch := c.pending
	now := c.now
	c.mu.Unlock()
	ch <- now
}

func TestLoop_TicksImmediatelyThenRearms(t *testing.T) {
	clock := newManualClock()
	ticks := make(chan time.Time, 16)
	l := &Loop{
		Interval: 5 * time.Second,
		Clock:    clock,
		Tick:     func(now time.Time) { ticks <- now },
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	first := <-ticks
	if !first.Equal(clock.Now()) {
		t.Fatalf("first tick at %v, want start time", first)
	}

	for i := 1; i <= 3; i++ {
		if d := <-clock.armed; d != 5*time.Second {
			t.Fatalf("armed with %v, want 5s", d)
		}
		clock.fire(5 * time.Second)
		got := <-ticks
		want := time.Date(2024, 1, 1, 0, 0, 5*i, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("tick %d at %v, want %v", i, got, want)
		}
	}

	<-clock.armed
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	select {
	case <-ticks:
		t.Fatal("no tick expected after cancellation")
	default:
	}
}

func TestLoop_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	l := &Loop{Clock: newManualClock(), Tick: func(time.Time) { called = true }}
	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatal("Tick must not run after cancellation")
	}
}

func TestLoop_DefaultInterval(t *testing.T) {
	clock := newManualClock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := &Loop{Clock: clock, Tick: func(time.Time) {}}
	go l.Run(ctx)

	if d := <-clock.armed; d != DefaultInterval {
		t.Fatalf("armed with %v, want %v", d, DefaultInterval)
	}
}
