package clock

import "time"

// Clock is the time source for everything that compares log timestamps
// against "now": window eviction, alert timestamps, replay and the polling
// loop. Production code uses RealClock; tests and replays use VirtualClock.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration
}

// RealClock delegates to the standard time package.
type RealClock struct{}

func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}
