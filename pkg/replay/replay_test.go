package replay

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/logmon/pkg/accesslog"
	"github.com/SmitUplenchwar2687/logmon/pkg/monitor"
)

func TestReplayBasic(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var b strings.Builder
	for i := 0; i < 3; i++ {
		b.WriteString(accesslog.Format(accesslog.Entry{
			Host:   "10.0.0.1",
			Time:   start.Add(time.Duration(i) * time.Second),
			Method: "GET",
			Path:   "/api/profile",
			Status: 200,
			Size:   100,
		}))
		b.WriteString("\n")
	}

	r := New(Options{Monitor: monitor.DefaultConfig()})
	if err := r.Load(strings.NewReader(b.String())); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	summary, err := r.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if summary.Replayed != 3 {
		t.Fatalf("Replayed = %d, want 3", summary.Replayed)
	}
	if summary.Alerts != 0 {
		t.Fatalf("Alerts = %d, want 0", summary.Alerts)
	}
	if summary.PerSection["api"] != 3 {
		t.Fatalf("PerSection[api] = %d, want 3", summary.PerSection["api"])
	}
}
