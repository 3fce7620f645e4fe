// Package notify delivers alert notices to external sinks.
package notify

import (
	"time"

	"github.com/SmitUplenchwar2687/logmon/internal/alert"
	"github.com/SmitUplenchwar2687/logmon/internal/monitor"
)

// Kind identifies the alert transition an event reports.
type Kind string

const (
	KindTriggered Kind = "triggered"
	KindRecovered Kind = "recovered"
)

// Event is the payload sent to every sink.
type Event struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	Message     string     `json:"message"`
	Hits        int        `json:"hits"`
	TriggeredAt time.Time  `json:"triggered_at"`
	RecoveredAt *time.Time `json:"recovered_at,omitempty"`
	Threshold   float64    `json:"threshold"`
	Window      string     `json:"window"`
}

// NewEvent builds the event for an alert transition. It returns false for
// transitions that carry no notice.
func NewEvent(tr alert.Transition, a alert.Alert, cfg monitor.Config) (Event, bool) {
	var kind Kind
	switch tr {
	case alert.Triggered:
		kind = KindTriggered
	case alert.Recovered:
		kind = KindRecovered
	default:
		return Event{}, false
	}

	ev := Event{
		ID:          a.ID.String(),
		Kind:        kind,
		Message:     a.Message(),
		Hits:        a.Hits,
		TriggeredAt: a.TriggeredAt,
		Threshold:   cfg.AlertThreshold,
		Window:      cfg.AlertDuration.String(),
	}
	if a.Recovered {
		at := a.RecoveredAt
		ev.RecoveredAt = &at
	}
	return ev, true
}

// FromResult builds the event for a monitor poll, if it produced a notice.
func FromResult(res monitor.Result, cfg monitor.Config) (Event, bool) {
	if !res.Changed() {
		return Event{}, false
	}
	return NewEvent(res.Transition, *res.Alert, cfg)
}
