// Package monitor runs the polling cycle that turns appended access log
// lines into traffic statistics and high-traffic alerts.
package monitor

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/logmon/internal/accesslog"
	"github.com/SmitUplenchwar2687/logmon/internal/alert"
	"github.com/SmitUplenchwar2687/logmon/internal/stats"
	"github.com/SmitUplenchwar2687/logmon/internal/tail"
)

// LineSource yields the raw lines that appeared since the previous call.
// *tail.Tailer is the production implementation.
type LineSource interface {
	Poll() ([]string, error)
}

// Result is the outcome of one Poll. It is never modified after Poll
// returns, so it may be handed to other goroutines.
type Result struct {
	Snapshot   stats.Snapshot   `json:"snapshot"`
	Transition alert.Transition `json:"transition"`
	// Alert is a copy of the current alert, nil in the Normal state.
	Alert   *alert.Alert `json:"alert,omitempty"`
	Parsed  int          `json:"parsed"`
	Skipped int          `json:"skipped"`
	// ReadErr is set when the source reported a failure this cycle.
	ReadErr error `json:"-"`
}

// Changed reports whether this cycle produced an alert notice.
func (r Result) Changed() bool {
	return r.Transition.Notice() && r.Alert != nil
}

// Message returns the alert notice for this cycle, or "" if there is none.
func (r Result) Message() string {
	if !r.Changed() {
		return ""
	}
	return r.Alert.Message()
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// Monitor owns one line source, the traffic windows and the alert state.
// Poll must not be called concurrently.
type Monitor struct {
	cfg       Config
	src       LineSource
	agg       *stats.Aggregator
	evaluator *alert.Evaluator
	logger    *zap.Logger
}

// New creates a monitor reading from src. An invalid cfg yields a
// *ConfigError.
func New(src LineSource, cfg Config, opts ...Option) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("monitor: nil line source")
	}

	m := &Monitor{
		cfg:       cfg,
		src:       src,
		agg:       stats.New(cfg.RefreshInterval, cfg.AlertDuration),
		evaluator: alert.NewEvaluator(cfg.AlertDuration, cfg.AlertThreshold),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("monitor")
	return m, nil
}

// Open tails path from its current end and returns a monitor over it
// along with the tailer, which the caller closes.
func Open(path string, cfg Config, opts ...Option) (*Monitor, *tail.Tailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	t, err := tail.OpenAtEnd(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := New(t, cfg, opts...)
	if err != nil {
		t.Close()
		return nil, nil, err
	}
	return m, t, nil
}

// Config returns the monitor's parameters.
func (m *Monitor) Config() Config {
	return m.cfg
}

// Capacity returns the alerting window's hit capacity.
func (m *Monitor) Capacity() float64 {
	return m.evaluator.Capacity()
}

// Poll runs one cycle: evict expired records, read and parse new lines,
// insert them, then evaluate the alert. Errors confined to a line or to
// this cycle are reported in the Result and never abort the cycle.
func (m *Monitor) Poll(now time.Time) Result {
	m.agg.EvictExpired(now)

	var res Result
	lines, err := m.src.Poll()
	if err != nil {
		res.ReadErr = err
		m.logger.Warn("Failed to read new log lines", zap.Error(err))
	}

	for _, line := range lines {
		if line == "" {
			continue
		}
		rec, err := accesslog.Parse(line)
		if err != nil {
			res.Skipped++
			m.logger.Debug("Skipping malformed line",
				zap.String("line", line),
				zap.Error(err))
			continue
		}
		m.agg.Insert(rec)
		res.Parsed++
	}

	res.Transition = m.evaluator.Evaluate(m.agg.LongLen(), now)
	if a, ok := m.evaluator.Current(); ok {
		res.Alert = &a
	}
	res.Snapshot = m.agg.Stats(now)

	if res.Skipped > 0 {
		m.logger.Info("Skipped malformed lines",
			zap.Int("skipped", res.Skipped),
			zap.Int("parsed", res.Parsed))
	}
	if res.Changed() {
		m.logger.Info(res.Message(),
			zap.String("alert_id", res.Alert.ID.String()),
			zap.String("transition", res.Transition.String()),
			zap.Int("hits", res.Snapshot.LongHits),
			zap.Float64("capacity", m.evaluator.Capacity()))
	}
	return res
}
