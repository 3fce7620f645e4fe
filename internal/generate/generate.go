// Package generate produces synthetic access log traffic for demos,
// simulations and tests.
package generate

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/SmitUplenchwar2687/logmon/internal/accesslog"
)

const (
	// PatternSteady generates evenly distributed traffic.
	PatternSteady = "steady"
	// PatternBurst generates clustered bursts with quiet gaps.
	PatternBurst = "burst"
	// PatternRamp generates traffic density that increases over time.
	PatternRamp = "ramp"
)

// Patterns lists the supported traffic shapes.
var Patterns = []string{PatternSteady, PatternBurst, PatternRamp}

// DefaultPaths is the request pool used when Options.Paths is empty.
var DefaultPaths = []string{
	"/api/user",
	"/api/user/42",
	"/api/report",
	"/report",
	"/report/daily?format=csv",
	"/pages/about",
	"/static/app.js",
	"/",
}

var methods = []string{"GET", "GET", "GET", "GET", "POST", "PUT", "DELETE"}

var agents = []string{
	"Mozilla/5.0 (X11; Linux x86_64)",
	"curl/8.4.0",
	"Go-http-client/1.1",
}

// Options controls how synthetic traffic is generated.
type Options struct {
	Count    int
	Hosts    int
	Duration time.Duration
	Pattern  string
	Start    time.Time
	Seed     int64
	Paths    []string
	// ErrorRate is the fraction of requests answered with 4xx or 5xx.
	ErrorRate float64
}

// DefaultOptions returns defaults aligned with logmon CLI behavior.
func DefaultOptions() Options {
	return Options{
		Count:     1000,
		Hosts:     5,
		Duration:  5 * time.Minute,
		Pattern:   PatternSteady,
		ErrorRate: 0.05,
	}
}

// Entries creates synthetic log entries sorted by time.
func Entries(opts Options) ([]accesslog.Entry, error) {
	if opts.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", opts.Count)
	}
	if opts.Hosts <= 0 {
		return nil, fmt.Errorf("hosts must be positive, got %d", opts.Hosts)
	}
	if opts.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %s", opts.Duration)
	}
	if opts.ErrorRate < 0 || opts.ErrorRate > 1 {
		return nil, fmt.Errorf("error rate must be between 0 and 1, got %g", opts.ErrorRate)
	}

	if opts.Pattern == "" {
		opts.Pattern = PatternSteady
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now().Truncate(time.Second)
	}
	if len(opts.Paths) == 0 {
		opts.Paths = DefaultPaths
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	g := newGenerator(rand.New(rand.NewSource(opts.Seed)), opts.Hosts, opts.Paths, opts.ErrorRate)

	var times []time.Time
	switch opts.Pattern {
	case PatternBurst:
		times = burstTimes(g.rng, opts.Start, opts.Count, opts.Duration)
	case PatternRamp:
		times = rampTimes(opts.Start, opts.Count, opts.Duration)
	default: // steady and unknown patterns default to steady behavior.
		times = steadyTimes(opts.Start, opts.Count, opts.Duration)
	}

	entries := make([]accesslog.Entry, len(times))
	for i, ts := range times {
		entries[i] = g.entry(ts)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})
	return entries, nil
}

// Lines creates synthetic access log lines sorted by time.
func Lines(opts Options) ([]string, error) {
	entries, err := Entries(opts)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = accesslog.Format(e)
	}
	return lines, nil
}

type generator struct {
	rng       *rand.Rand
	hosts     []string
	paths     []string
	errorRate float64
}

func newGenerator(rng *rand.Rand, numHosts int, paths []string, errorRate float64) *generator {
	hosts := make([]string, numHosts)
	for i := range hosts {
		hosts[i] = fmt.Sprintf("10.0.%d.%d", i/250, i%250+1)
	}
	return &generator{rng: rng, hosts: hosts, paths: paths, errorRate: errorRate}
}

func (g *generator) entry(ts time.Time) accesslog.Entry {
	status := 200
	if g.rng.Float64() < g.errorRate {
		status = []int{400, 401, 403, 404, 500, 502, 503}[g.rng.Intn(7)]
	}
	size := int64(g.rng.Intn(8192) + 64)
	if status >= 300 && g.rng.Intn(2) == 0 {
		size = -1
	}
	return accesslog.Entry{
		Host:   g.hosts[g.rng.Intn(len(g.hosts))],
		User:   "-",
		Time:   ts,
		Method: methods[g.rng.Intn(len(methods))],
		Path:   g.paths[g.rng.Intn(len(g.paths))],
		Status: status,
		Size:   size,
		Agent:  agents[g.rng.Intn(len(agents))],
	}
}

func steadyTimes(start time.Time, count int, dur time.Duration) []time.Time {
	interval := dur / time.Duration(count)
	times := make([]time.Time, count)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * interval)
	}
	return times
}

func burstTimes(rng *rand.Rand, start time.Time, count int, dur time.Duration) []time.Time {
	times := make([]time.Time, 0, count)
	numBursts := 4
	burstSize := count / numBursts
	burstGap := dur / time.Duration(numBursts)

	for b := 0; b < numBursts; b++ {
		burstStart := start.Add(time.Duration(b) * burstGap)
		for i := 0; i < burstSize; i++ {
			offset := time.Duration(rng.Intn(1000)) * time.Millisecond
			times = append(times, burstStart.Add(offset))
		}
	}

	for len(times) < count {
		times = append(times, start.Add(time.Duration(rng.Int63n(int64(dur)))))
	}
	return times
}

func rampTimes(start time.Time, count int, dur time.Duration) []time.Time {
	times := make([]time.Time, count)
	for i := range times {
		frac := float64(i) / float64(count)
		times[i] = start.Add(time.Duration(frac * frac * float64(dur)))
	}
	return times
}
