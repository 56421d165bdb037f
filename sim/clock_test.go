package sim

import (
	"context"
	"testing"
	"time"
)

// fakeTime is an injectable wall clock whose sleeps complete instantly
// and advance the clock.
type fakeTime struct {
	now    time.Time
	sleeps []time.Duration
}

func (f *fakeTime) Now() time.Time { return f.now }

func (f *fakeTime) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	return nil
}

func newTestClock(speedFactor float64) (*Clock, *fakeTime) {
	ft := &fakeTime{now: time.Unix(1000, 0)}
	c := NewClock(speedFactor)
	c.now = ft.Now
	c.sleep = ft.Sleep
	return c, ft
}

func TestClockWaitUntil(t *testing.T) {
	c, ft := newTestClock(1)
	c.Reset()

	if err := c.WaitUntil(context.Background(), 0); err != nil {
		t.Fatalf("WaitUntil(0): %v", err)
	}
	if len(ft.sleeps) != 0 {
		t.Errorf("waited %v for model time zero", ft.sleeps)
	}

	if err := c.WaitUntil(context.Background(), 0.5); err != nil {
		t.Fatalf("WaitUntil(0.5): %v", err)
	}
	if len(ft.sleeps) != 1 || ft.sleeps[0] != 500*time.Millisecond {
		t.Errorf("sleeps = %v, want one 500ms wait", ft.sleeps)
	}

	// Already past the target: no further wait.
	if err := c.WaitUntil(context.Background(), 0.25); err != nil {
		t.Fatalf("WaitUntil(0.25): %v", err)
	}
	if len(ft.sleeps) != 1 {
		t.Errorf("waited again for a past model time: %v", ft.sleeps)
	}
}

func TestClockSpeedFactor(t *testing.T) {
	c, ft := newTestClock(10)
	c.Reset()

	if err := c.WaitUntil(context.Background(), 2); err != nil {
		t.Fatalf("WaitUntil: %v", err)
	}
	// 2 model seconds at 10x = 200ms of real time.
	if len(ft.sleeps) != 1 || ft.sleeps[0] != 200*time.Millisecond {
		t.Errorf("sleeps = %v, want one 200ms wait", ft.sleeps)
	}
}

func TestClockUnthrottled(t *testing.T) {
	for _, factor := range []float64{0, -1} {
		c, ft := newTestClock(factor)
		c.Reset()
		if !c.Unthrottled() {
			t.Errorf("factor %v: not unthrottled", factor)
		}
		if err := c.WaitUntil(context.Background(), 100); err != nil {
			t.Fatalf("WaitUntil: %v", err)
		}
		if len(ft.sleeps) != 0 {
			t.Errorf("factor %v: unthrottled clock slept %v", factor, ft.sleeps)
		}
	}
}

func TestClockCancelledWait(t *testing.T) {
	c, _ := newTestClock(1)
	c.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.WaitUntil(ctx, 5); err == nil {
		t.Error("expected context error from cancelled wait")
	}
}
