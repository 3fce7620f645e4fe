package alert

import (
	"time"

	"github.com/google/uuid"
)

// Evaluator decides when traffic in the alerting window is high enough to
// raise an alert and when it has dropped enough to clear it.
//
// Capacity is duration (in seconds) times threshold (requests per second).
// The alert fires only when hits > capacity and recovers only when
// hits < capacity; hits == capacity never changes state.
type Evaluator struct {
	capacity float64
	current  *Alert
	newID    func() uuid.UUID
}

// NewEvaluator creates an evaluator for the given window length and
// average requests-per-second threshold.
func NewEvaluator(duration time.Duration, threshold float64) *Evaluator {
	return &Evaluator{
		capacity: duration.Seconds() * threshold,
		newID:    uuid.New,
	}
}

// Capacity returns the number of hits the window may hold without alerting.
func (e *Evaluator) Capacity() float64 {
	return e.capacity
}

// State returns the current lifecycle state.
func (e *Evaluator) State() State {
	switch {
	case e.current == nil:
		return StateNormal
	case e.current.Recovered:
		return StateRecovering
	default:
		return StateTriggered
	}
}

// Current returns a copy of the alert, if one exists.
func (e *Evaluator) Current() (Alert, bool) {
	if e.current == nil {
		return Alert{}, false
	}
	return *e.current, true
}

// Evaluate advances the state machine with the alerting window's hit count.
func (e *Evaluator) Evaluate(hits int, now time.Time) Transition {
	n := float64(hits)

	switch e.State() {
	case StateNormal:
		if n > e.capacity {
			e.current = &Alert{
				ID:          e.newID(),
				TriggeredAt: now,
				Hits:        hits,
			}
			return Triggered
		}
	case StateTriggered:
		if n < e.capacity {
			e.current.Recovered = true
			e.current.RecoveredAt = now
			return Recovered
		}
	case StateRecovering:
		e.current = nil
		return Cleared
	}
	return None
}
