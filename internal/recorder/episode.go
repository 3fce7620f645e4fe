package recorder

import (
	"time"

	"github.com/SmitUplenchwar2687/logmon/internal/notify"
)

// Episode is one alert from trigger to recovery.
type Episode struct {
	ID          string     `json:"id"`
	TriggeredAt time.Time  `json:"triggered_at"`
	Hits        int        `json:"hits"`
	RecoveredAt *time.Time `json:"recovered_at,omitempty"`
}

// Active reports whether the alert has not recovered yet.
func (e Episode) Active() bool {
	return e.RecoveredAt == nil
}

// Duration is how long the alert lasted. Active episodes return 0.
func (e Episode) Duration() time.Duration {
	if e.RecoveredAt == nil {
		return 0
	}
	return e.RecoveredAt.Sub(e.TriggeredAt)
}

// Episodes groups events by alert ID in order of first appearance. A
// recovery without a matching trigger starts its own episode.
func Episodes(events []notify.Event) []Episode {
	var out []Episode
	index := make(map[string]int)
	for _, ev := range events {
		i, ok := index[ev.ID]
		if !ok {
			index[ev.ID] = len(out)
			out = append(out, Episode{
				ID:          ev.ID,
				TriggeredAt: ev.TriggeredAt,
				Hits:        ev.Hits,
			})
			i = len(out) - 1
		}
		if ev.Kind == notify.KindRecovered && ev.RecoveredAt != nil {
			at := *ev.RecoveredAt
			out[i].RecoveredAt = &at
		}
	}
	return out
}
