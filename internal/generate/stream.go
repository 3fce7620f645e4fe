package generate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/SmitUplenchwar2687/logmon/internal/accesslog"
	"github.com/SmitUplenchwar2687/logmon/internal/clock"
)

// StreamOptions controls live traffic generation.
type StreamOptions struct {
	// Rate is the number of lines per second.
	Rate float64
	// Tick is how often a batch is written (default 100ms).
	Tick  time.Duration
	Hosts int
	Paths []string
	Seed  int64
	// ErrorRate is the fraction of requests answered with 4xx or 5xx.
	ErrorRate float64
	// Clock stamps each line (default real time).
	Clock clock.Clock
}

// Stream appends lines stamped with the current time to w at opts.Rate
// until ctx is done. It returns the number of lines written; a context
// cancellation is not an error.
func Stream(ctx context.Context, w io.Writer, opts StreamOptions) (int, error) {
	if opts.Rate <= 0 {
		return 0, fmt.Errorf("rate must be positive, got %g", opts.Rate)
	}
	if opts.Tick <= 0 {
		opts.Tick = 100 * time.Millisecond
	}
	if opts.Hosts <= 0 {
		opts.Hosts = 5
	}
	if len(opts.Paths) == 0 {
		opts.Paths = DefaultPaths
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewRealClock()
	}

	g := newGenerator(rand.New(rand.NewSource(opts.Seed)), opts.Hosts, opts.Paths, opts.ErrorRate)
	perTick := opts.Rate * opts.Tick.Seconds()
	bw := bufio.NewWriter(w)

	ticker := time.NewTicker(opts.Tick)
	defer ticker.Stop()

	written := 0
	carry := 0.0
	for {
		select {
		case <-ctx.Done():
			return written, nil
		case <-ticker.C:
		}

		carry += perTick
		n := int(carry)
		carry -= float64(n)

		now := opts.Clock.Now()
		for i := 0; i < n; i++ {
			if _, err := bw.WriteString(accesslog.Format(g.entry(now)) + "\n"); err != nil {
				return written, fmt.Errorf("writing generated line: %w", err)
			}
		}
		if err := bw.Flush(); err != nil {
			return written, fmt.Errorf("flushing generated lines: %w", err)
		}
		written += n
	}
}
