// Package stats aggregates parsed access log records over two time windows.
package stats

import (
	"sort"
	"time"

	"github.com/SmitUplenchwar2687/logmon/internal/accesslog"
	"github.com/SmitUplenchwar2687/logmon/internal/window"
)

// SectionCount is the number of hits a section received in the short window.
type SectionCount struct {
	Section string `json:"section"`
	Hits    int    `json:"hits"`
}

// StatusCount is the number of hits per status class in the short window.
type StatusCount struct {
	Class string `json:"class"`
	Hits  int    `json:"hits"`
}

// Snapshot is an immutable view of the aggregator at one instant. Its
// slices are allocated per call and never shared with the aggregator.
type Snapshot struct {
	Time          time.Time      `json:"time"`
	TotalRequests int64          `json:"total_requests"`
	TotalBytes    int64          `json:"total_bytes"`
	ShortHits     int            `json:"short_hits"`
	LongHits      int            `json:"long_hits"`
	Sections      []SectionCount `json:"sections"`
	Statuses      []StatusCount  `json:"statuses"`
}

// Aggregator keeps a short window for display statistics, a long window for
// alert evaluation, and lifetime counters that eviction never touches.
type Aggregator struct {
	short *window.Window[accesslog.Record]
	long  *window.Window[accesslog.Record]

	totalRequests int64
	totalBytes    int64
}

func recordTime(r accesslog.Record) time.Time { return r.Time }

// New creates an aggregator with the given short (display) and long
// (alerting) window durations.
func New(short, long time.Duration) *Aggregator {
	return &Aggregator{
		short: window.New(short, recordTime),
		long:  window.New(long, recordTime),
	}
}

// EvictExpired drops records that have aged out of each window.
func (a *Aggregator) EvictExpired(now time.Time) {
	a.short.Evict(now)
	a.long.Evict(now)
}

// Insert adds a record to both windows and the lifetime counters.
func (a *Aggregator) Insert(rec accesslog.Record) {
	a.short.Add(rec)
	a.long.Add(rec)
	a.totalRequests++
	a.totalBytes += rec.Size
}

// LongLen returns the number of records in the alerting window.
func (a *Aggregator) LongLen() int {
	return a.long.Len()
}

// ShortLen returns the number of records in the display window.
func (a *Aggregator) ShortLen() int {
	return a.short.Len()
}

// Stats returns a snapshot stamped with now. It does not evict.
func (a *Aggregator) Stats(now time.Time) Snapshot {
	sections := make(map[string]int)
	statuses := make(map[string]int)
	a.short.Each(func(r accesslog.Record) {
		sections[r.Section]++
		statuses[r.StatusClass()]++
	})

	snap := Snapshot{
		Time:          now,
		TotalRequests: a.totalRequests,
		TotalBytes:    a.totalBytes,
		ShortHits:     a.short.Len(),
		LongHits:      a.long.Len(),
		Sections:      make([]SectionCount, 0, len(sections)),
		Statuses:      make([]StatusCount, 0, len(statuses)),
	}
	for name, hits := range sections {
		snap.Sections = append(snap.Sections, SectionCount{Section: name, Hits: hits})
	}
	sort.Slice(snap.Sections, func(i, j int) bool {
		return snap.Sections[i].Section < snap.Sections[j].Section
	})
	for class, hits := range statuses {
		snap.Statuses = append(snap.Statuses, StatusCount{Class: class, Hits: hits})
	}
	sort.Slice(snap.Statuses, func(i, j int) bool {
		return snap.Statuses[i].Class < snap.Statuses[j].Class
	})
	return snap
}

// TopSections returns the n busiest sections of the snapshot, most hits
// first, ties broken by name.
func (s Snapshot) TopSections(n int) []SectionCount {
	out := make([]SectionCount, len(s.Sections))
	copy(out, s.Sections)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Hits > out[j].Hits
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
