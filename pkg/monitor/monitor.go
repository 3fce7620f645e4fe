// Package monitor is the embeddable entry point to logmon: tail or feed
// access log lines, poll on a schedule, and read statistics and alert
// transitions from each Result.
package monitor

import (
	"time"

	"github.com/SmitUplenchwar2687/logmon/internal/alert"
	internalmonitor "github.com/SmitUplenchwar2687/logmon/internal/monitor"
	"github.com/SmitUplenchwar2687/logmon/internal/tail"
)

// Config holds the monitoring intervals and alert threshold.
type Config = internalmonitor.Config

// ConfigError lists every invalid Config field.
type ConfigError = internalmonitor.ConfigError

// LineSource supplies new raw lines on every poll.
type LineSource = internalmonitor.LineSource

// Result is the outcome of one poll.
type Result = internalmonitor.Result

// Monitor owns the statistics windows and the alert evaluator.
type Monitor = internalmonitor.Monitor

// Option configures a Monitor.
type Option = internalmonitor.Option

// Alert is an active or recovered high traffic alert.
type Alert = alert.Alert

// Transition is the alert change produced by a poll.
type Transition = alert.Transition

const (
	None      = alert.None
	Triggered = alert.Triggered
	Recovered = alert.Recovered
	Cleared   = alert.Cleared
)

// Tailer follows a growing log file.
type Tailer = tail.Tailer

// ErrTransient wraps recoverable tailer read errors.
var ErrTransient = tail.ErrTransient

// WithLogger is re-exported from the internal package.
var WithLogger = internalmonitor.WithLogger

// DefaultConfig returns 10s refresh, 120s alert window and 10 req/s.
func DefaultConfig() Config {
	return internalmonitor.DefaultConfig()
}

// New creates a monitor reading from src.
func New(src LineSource, cfg Config, opts ...Option) (*Monitor, error) {
	return internalmonitor.New(src, cfg, opts...)
}

// Open tails path from its current end and monitors it.
func Open(path string, cfg Config, opts ...Option) (*Monitor, *Tailer, error) {
	return internalmonitor.Open(path, cfg, opts...)
}

// PollEvery polls m every interval until stop is closed, passing each
// Result to fn.
func PollEvery(m *Monitor, interval time.Duration, stop <-chan struct{}, fn func(Result)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			res := m.Poll(now)
			if fn != nil {
				fn(res)
			}
		}
	}
}
