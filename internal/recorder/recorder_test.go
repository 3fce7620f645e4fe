package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/logmon/internal/notify"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func triggered(id string, at time.Time, hits int) notify.Event {
	return notify.Event{ID: id, Kind: notify.KindTriggered, TriggeredAt: at, Hits: hits}
}

func recovered(id string, trig, at time.Time, hits int) notify.Event {
	return notify.Event{ID: id, Kind: notify.KindRecovered, TriggeredAt: trig, RecoveredAt: &at, Hits: hits}
}

func TestRecorder_Record(t *testing.T) {
	rec := New(nil)

	if err := rec.Record(triggered("a", epoch, 1201)); err != nil {
		t.Fatal(err)
	}
	if rec.Len() != 1 {
		t.Errorf("Len() = %d, want 1", rec.Len())
	}
}

func TestRecorder_NotifyRecords(t *testing.T) {
	rec := New(nil)
	var n notify.Notifier = rec

	if err := n.Notify(context.Background(), triggered("a", epoch, 1201)); err != nil {
		t.Fatal(err)
	}
	if err := n.Close(); err != nil {
		t.Fatal(err)
	}
	if rec.Len() != 1 {
		t.Errorf("Len() = %d after Notify, want 1", rec.Len())
	}
}

func TestRecorder_Events_ReturnsCopy(t *testing.T) {
	rec := New(nil)
	rec.Record(triggered("a", epoch, 1201))

	events := rec.Events()
	events[0].ID = "mutated"

	if rec.Events()[0].ID != "a" {
		t.Error("Events() should return a copy, original was mutated")
	}
}

func TestRecorder_StreamToWriter(t *testing.T) {
	var buf bytes.Buffer
	rec := New(&buf)

	rec.Record(triggered("a", epoch, 1201))
	rec.Record(recovered("a", epoch, epoch.Add(time.Minute), 1201))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var ev notify.Event
	if err := json.Unmarshal(lines[1], &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != notify.KindRecovered {
		t.Errorf("second event kind = %q, want %q", ev.Kind, notify.KindRecovered)
	}
}

func TestRecorder_ExportJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := New(nil).ExportJSON(&buf); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty export = %q, want []", got)
	}
}

func TestRecorder_ExportFile_Roundtrip(t *testing.T) {
	rec := New(nil)
	rec.Record(triggered("a", epoch, 1201))
	rec.Record(recovered("a", epoch, epoch.Add(3*time.Minute), 1201))

	path := filepath.Join(t.TempDir(), "alerts.json")
	if err := rec.ExportFile(path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	loaded, err := LoadJSON(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("roundtrip: got %d events, want 2", len(loaded))
	}
	if loaded[1].RecoveredAt == nil || !loaded[1].RecoveredAt.Equal(epoch.Add(3*time.Minute)) {
		t.Errorf("recovered_at not preserved: %v", loaded[1].RecoveredAt)
	}
}

func TestLoadJSON_Invalid(t *testing.T) {
	if _, err := LoadJSON(strings.NewReader("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestEpisodes(t *testing.T) {
	events := []notify.Event{
		triggered("a", epoch, 1300),
		recovered("a", epoch, epoch.Add(2*time.Minute), 1300),
		triggered("b", epoch.Add(5*time.Minute), 1500),
	}

	eps := Episodes(events)
	if len(eps) != 2 {
		t.Fatalf("got %d episodes, want 2", len(eps))
	}
	if eps[0].Active() || eps[0].Duration() != 2*time.Minute {
		t.Errorf("episode a = %+v, want recovered after 2m", eps[0])
	}
	if !eps[1].Active() || eps[1].Duration() != 0 {
		t.Errorf("episode b = %+v, want active", eps[1])
	}
	if eps[1].Hits != 1500 {
		t.Errorf("episode b hits = %d, want 1500", eps[1].Hits)
	}
}

func TestRecorder_ConcurrentAccess(t *testing.T) {
	rec := New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Record(triggered("a", epoch, 1))
		}()
	}
	wg.Wait()

	if rec.Len() != 100 {
		t.Errorf("Len() = %d, want 100", rec.Len())
	}
}
