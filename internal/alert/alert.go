// Package alert implements the high-traffic alert state machine.
package alert

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageTimeLayout formats alert times in notices, e.g. 09-05-2018 04:00PM.
const MessageTimeLayout = "02-01-2006 03:04PM"

// State is the evaluator's position in the alert lifecycle.
type State int

const (
	// StateNormal means no alert object exists.
	StateNormal State = iota
	// StateTriggered means an alert is active.
	StateTriggered
	// StateRecovering means the alert recovered and is cleared on the next evaluation.
	StateRecovering
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateTriggered:
		return "triggered"
	case StateRecovering:
		return "recovering"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transition is the state change produced by one evaluation.
type Transition int

const (
	None Transition = iota
	Triggered
	Recovered
	Cleared
)

func (t Transition) String() string {
	switch t {
	case None:
		return "none"
	case Triggered:
		return "triggered"
	case Recovered:
		return "recovered"
	case Cleared:
		return "cleared"
	default:
		return fmt.Sprintf("Transition(%d)", int(t))
	}
}

// Notice reports whether the transition should be announced to the user.
// Cleared only discards an alert whose recovery was already announced.
func (t Transition) Notice() bool {
	return t == Triggered || t == Recovered
}

// Alert is one high-traffic episode. The same ID and TriggeredAt carry over
// from trigger to recovery; a re-trigger creates a new Alert.
type Alert struct {
	ID          uuid.UUID `json:"id"`
	TriggeredAt time.Time `json:"triggered_at"`
	Hits        int       `json:"hits"`
	Recovered   bool      `json:"recovered"`
	RecoveredAt time.Time `json:"recovered_at"`
}

// Message renders the user-facing notice for the alert's current phase.
func (a Alert) Message() string {
	if a.Recovered {
		return fmt.Sprintf("High traffic alert recovered at %s",
			a.RecoveredAt.Format(MessageTimeLayout))
	}
	return fmt.Sprintf("High traffic generated an alert - hits = %d, triggered at %s",
		a.Hits, a.TriggeredAt.Format(MessageTimeLayout))
}
