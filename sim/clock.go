package sim

import (
	"context"
	"time"
)

// Clock maps model time to real time via a speed factor:
// real seconds = model delta / speed factor. A non-positive factor is
// the unthrottled sentinel (run as fast as possible).
type Clock struct {
	speedFactor float64
	start       time.Time

	// now and sleep are injectable for deterministic tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClock creates a simulation clock. Call Reset before the first wait.
func NewClock(speedFactor float64) *Clock {
	return &Clock{
		speedFactor: speedFactor,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// Unthrottled reports whether pacing is disabled.
func (c *Clock) Unthrottled() bool {
	return c.speedFactor <= 0
}

// Reset anchors model time zero to the current wall clock. Called once
// per run, and again on restart.
func (c *Clock) Reset() {
	c.start = c.now()
}

// WaitUntil blocks until the wall clock reaches the real-time mapping
// of the given model time. Returns early with the context's error on
// cancellation. No-op when unthrottled.
func (c *Clock) WaitUntil(ctx context.Context, modelTime float64) error {
	if c.Unthrottled() {
		return nil
	}
	target := c.start.Add(time.Duration(modelTime / c.speedFactor * float64(time.Second)))
	d := target.Sub(c.now())
	if d <= 0 {
		return nil
	}
	return c.sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
