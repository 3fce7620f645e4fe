// Package replay drives a monitor over a historic access log using
// virtual time, so hours of traffic can be evaluated in moments.
package replay

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/logmon/internal/accesslog"
	"github.com/SmitUplenchwar2687/logmon/internal/clock"
	"github.com/SmitUplenchwar2687/logmon/internal/monitor"
	"github.com/SmitUplenchwar2687/logmon/internal/notify"
)

const maxLineSize = 1 << 20

// Options configures a Replayer.
type Options struct {
	Monitor monitor.Config
	// Step is how far virtual time advances between polls (default 1s).
	Step time.Duration
	// Speed scales wall-clock pacing: 1.0 = real-time, 10.0 = 10x, 0 = instant.
	Speed  float64
	Filter Filter
	// Notifier receives alert events synchronously as they happen.
	Notifier notify.Notifier
	Logger   *zap.Logger
}

// Replayer replays an access log through a Monitor.
type Replayer struct {
	opts      Options
	logger    *zap.Logger
	lines     []entry
	total     int
	malformed int
}

type entry struct {
	raw string
	rec accesslog.Record
}

// Step is the outcome of one virtual poll.
type Step struct {
	Time   time.Time      `json:"time"`
	Result monitor.Result `json:"result"`
}

// Summary aggregates replay statistics.
type Summary struct {
	TotalLines   int            `json:"total_lines"`
	Malformed    int            `json:"malformed"`
	FilteredOut  int            `json:"filtered_out"`
	Replayed     int            `json:"replayed"`
	Polls        int            `json:"polls"`
	Alerts       int            `json:"alerts"`
	PeakHits     int            `json:"peak_hits"`
	TotalBytes   int64          `json:"total_bytes"`
	Start        time.Time      `json:"start"`
	Duration     time.Duration  `json:"duration"`      // virtual time span
	WallDuration time.Duration  `json:"wall_duration"` // actual wall clock time
	PerSection   map[string]int `json:"per_section"`
}

// New creates a new replayer.
func New(opts Options) *Replayer {
	if opts.Speed < 0 {
		opts.Speed = 0
	}
	if opts.Step <= 0 {
		opts.Step = time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replayer{opts: opts, logger: logger.Named("replay")}
}

// Load reads access log lines from reader. Lines that do not parse are
// counted as malformed and dropped; blank lines are ignored.
func (r *Replayer) Load(reader io.Reader) error {
	sc := bufio.NewScanner(reader)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading log lines: %w", err)
	}
	r.LoadLines(lines)
	return nil
}

// LoadLines sets the log lines directly.
func (r *Replayer) LoadLines(lines []string) {
	r.lines = r.lines[:0]
	r.total, r.malformed = 0, 0
	for _, raw := range lines {
		raw = strings.TrimRight(raw, " \t\r")
		if raw == "" {
			continue
		}
		r.total++
		rec, err := accesslog.Parse(raw)
		if err != nil {
			r.malformed++
			r.logger.Debug("Skipping malformed line", zap.String("line", raw), zap.Error(err))
			continue
		}
		r.lines = append(r.lines, entry{raw: raw, rec: rec})
	}
}

// Run replays all loaded lines. Virtual time starts at the earliest
// record and advances by Step per poll; a line becomes visible to the
// monitor once its timestamp is not after virtual now. After the last line
// polling continues until the alert returns to normal. cb is called after
// every poll.
func (r *Replayer) Run(ctx context.Context, cb func(Step)) (*Summary, error) {
	if r.total == 0 {
		return nil, fmt.Errorf("no log lines loaded")
	}

	sorted := make([]entry, len(r.lines))
	copy(sorted, r.lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].rec.Time.Before(sorted[j].rec.Time)
	})

	var selected []entry
	for _, e := range sorted {
		if r.opts.Filter.Match(e.rec) {
			selected = append(selected, e)
		}
	}

	summary := &Summary{
		TotalLines:  r.total,
		Malformed:   r.malformed,
		FilteredOut: len(sorted) - len(selected),
		PerSection:  make(map[string]int),
	}
	if len(selected) == 0 {
		return summary, nil
	}

	start := selected[0].rec.Time
	vc := clock.NewVirtualClock(start)
	src := &scheduledSource{clock: vc, entries: selected}
	m, err := monitor.New(src, r.opts.Monitor, monitor.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}

	summary.Start = start
	wallStart := time.Now()
	defer func() {
		summary.Duration = vc.Since(start)
		summary.WallDuration = time.Since(wallStart)
	}()

	for {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		now := vc.Now()
		res := m.Poll(now)
		summary.Polls++
		summary.Replayed += res.Parsed
		summary.TotalBytes = res.Snapshot.TotalBytes
		if res.Snapshot.LongHits > summary.PeakHits {
			summary.PeakHits = res.Snapshot.LongHits
		}
		for _, e := range src.lastBatch {
			summary.PerSection[e.rec.Section]++
		}

		if ev, ok := notify.FromResult(res, r.opts.Monitor); ok {
			if ev.Kind == notify.KindTriggered {
				summary.Alerts++
			}
			if r.opts.Notifier != nil {
				if err := r.opts.Notifier.Notify(ctx, ev); err != nil {
					r.logger.Warn("Failed to deliver alert event", zap.String("alert_id", ev.ID), zap.Error(err))
				}
			}
		}

		if cb != nil {
			cb(Step{Time: now, Result: res})
		}

		if src.done() && res.Alert == nil {
			return summary, nil
		}

		if r.opts.Speed > 0 {
			scaled := time.Duration(float64(r.opts.Step) / r.opts.Speed)
			if scaled > time.Millisecond {
				select {
				case <-ctx.Done():
					return summary, ctx.Err()
				case <-time.After(scaled):
				}
			}
		}
		vc.Advance(r.opts.Step)
	}
}

// scheduledSource releases lines to the monitor as virtual time reaches
// their timestamps.
type scheduledSource struct {
	clock     clock.Clock
	entries   []entry
	next      int
	lastBatch []entry
}

func (s *scheduledSource) Poll() ([]string, error) {
	now := s.clock.Now()
	startIdx := s.next
	for s.next < len(s.entries) && !s.entries[s.next].rec.Time.After(now) {
		s.next++
	}
	s.lastBatch = s.entries[startIdx:s.next]

	lines := make([]string, len(s.lastBatch))
	for i, e := range s.lastBatch {
		lines[i] = e.raw
	}
	return lines, nil
}

func (s *scheduledSource) done() bool {
	return s.next >= len(s.entries)
}
