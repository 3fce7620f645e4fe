// Package recorder keeps the history of alert events for export and for
// the dashboard.
package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/SmitUplenchwar2687/logmon/internal/notify"
)

// Recorder captures alert events. It implements notify.Notifier and is
// safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []notify.Event
	writer io.Writer // optional: stream events as they arrive
}

var _ notify.Notifier = (*Recorder)(nil)

// New creates a new Recorder. If w is non-nil, events are also
// written to w as newline-delimited JSON as they arrive.
func New(w io.Writer) *Recorder {
	return &Recorder{
		writer: w,
	}
}

// Record captures a single event.
func (r *Recorder) Record(ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)

	if r.writer != nil {
		if err := json.NewEncoder(r.writer).Encode(ev); err != nil {
			return fmt.Errorf("streaming alert %s: %w", ev.ID, err)
		}
	}
	return nil
}

// Notify records ev.
func (r *Recorder) Notify(_ context.Context, ev notify.Event) error {
	return r.Record(ev)
}

// Close is a no-op; the history stays readable.
func (r *Recorder) Close() error {
	return nil
}

// Events returns a copy of all recorded events, oldest first.
func (r *Recorder) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]notify.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Episodes pairs the recorded events into alert episodes.
func (r *Recorder) Episodes() []Episode {
	return Episodes(r.Events())
}

// ExportJSON writes all events to w as a JSON array.
func (r *Recorder) ExportJSON(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.events
	if events == nil {
		events = []notify.Event{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}

// ExportFile writes all events to a file as a JSON array.
func (r *Recorder) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.ExportJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadJSON reads events from a JSON array.
func LoadJSON(r io.Reader) ([]notify.Event, error) {
	var events []notify.Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, err
	}
	return events, nil
}
