// Package replay runs historic access logs through a monitor on virtual
// time.
package replay

import internalreplay "github.com/SmitUplenchwar2687/logmon/internal/replay"

// Filter selects which records are replayed.
type Filter = internalreplay.Filter

// Options configures a Replayer.
type Options = internalreplay.Options

// Replayer replays an access log through a monitor.
type Replayer = internalreplay.Replayer

// Step is the outcome of one virtual poll.
type Step = internalreplay.Step

// Summary aggregates replay statistics.
type Summary = internalreplay.Summary

// New creates a new replayer.
func New(opts Options) *Replayer {
	return internalreplay.New(opts)
}
