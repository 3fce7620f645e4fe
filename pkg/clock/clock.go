// Package clock exposes the time sources used by logmon so embedding
// programs can drive a monitor with virtual time.
package clock

import (
	"time"

	internalclock "github.com/SmitUplenchwar2687/logmon/internal/clock"
)

// Clock is the time source compared against log timestamps.
type Clock = internalclock.Clock

// RealClock delegates to the standard time package.
type RealClock = internalclock.RealClock

// VirtualClock is a manually advanced clock for replays and tests.
type VirtualClock = internalclock.VirtualClock

// NewRealClock creates a real wall-clock implementation.
func NewRealClock() *RealClock {
	return internalclock.NewRealClock()
}

// NewVirtualClock creates a virtual clock starting at the given time.
func NewVirtualClock(start time.Time) *VirtualClock {
	return internalclock.NewVirtualClock(start)
}
