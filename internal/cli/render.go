package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/SmitUplenchwar2687/logmon/internal/replay"
	"github.com/SmitUplenchwar2687/logmon/internal/server"
	"github.com/SmitUplenchwar2687/logmon/internal/stats"
)

const maxSectionsShown = 10

// renderStats prints the periodic statistics block.
func renderStats(w io.Writer, v server.View) {
	fmt.Fprintf(w, "--- %s  running %s ---\n", v.Time.Format("15:04:05"), v.Runtime)

	sections := append([]stats.SectionCount(nil), v.Sections...)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Hits > sections[j].Hits
	})
	fmt.Fprintf(w, "  %-24s %s\n", "Most visited", "Hits ("+v.RefreshInterval+")")
	shown := sections
	if len(shown) > maxSectionsShown {
		shown = shown[:maxSectionsShown]
	}
	for _, sc := range shown {
		fmt.Fprintf(w, "  %-24s %d\n", sc.Section, sc.Hits)
	}
	if hidden := len(sections) - len(shown); hidden > 0 {
		fmt.Fprintf(w, "  %-24s\n", fmt.Sprintf("(%d more)", hidden))
	}
	fmt.Fprintf(w, "  %-24s %d\n", "Total", v.ShortHits)

	if len(v.Statuses) > 0 {
		parts := make([]string, len(v.Statuses))
		for i, st := range v.Statuses {
			parts[i] = fmt.Sprintf("%s=%d", st.Class, st.Hits)
		}
		fmt.Fprintf(w, "  Status codes: %s\n", strings.Join(parts, " "))
	}

	fmt.Fprintf(w, "  Total hits: %d  Total traffic: %.2fKB  Average hits: %.2f/s\n",
		v.TotalRequests, v.TotalKB, v.AverageHits)
	fmt.Fprintf(w, "  Alert window: %d/%.0f hits over %s (threshold %g/s)\n",
		v.LongHits, v.Capacity, v.AlertWindow, v.AlertThreshold)
	fmt.Fprintln(w)
}

// renderAlert prints an alert notice on its own line.
func renderAlert(w io.Writer, msg string) {
	fmt.Fprintf(w, "*** %s ***\n", msg)
}

func renderReplaySummary(w io.Writer, s *replay.Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- Replay Summary ---")
	fmt.Fprintf(w, "  Lines:          %d\n", s.TotalLines)
	fmt.Fprintf(w, "  Malformed:      %d\n", s.Malformed)
	fmt.Fprintf(w, "  Filtered out:   %d\n", s.FilteredOut)
	fmt.Fprintf(w, "  Replayed:       %d\n", s.Replayed)
	fmt.Fprintf(w, "  Polls:          %d\n", s.Polls)
	fmt.Fprintf(w, "  Alerts:         %d\n", s.Alerts)
	fmt.Fprintf(w, "  Peak hits:      %d\n", s.PeakHits)
	fmt.Fprintf(w, "  Virtual time:   %s\n", s.Duration)
	fmt.Fprintf(w, "  Wall time:      %s\n", s.WallDuration.Round(time.Millisecond))

	if len(s.PerSection) > 1 {
		names := make([]string, 0, len(s.PerSection))
		for name := range s.PerSection {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Per section:")
		for _, name := range names {
			label := name
			if label == "" {
				label = "/"
			}
			fmt.Fprintf(w, "    %s: %d\n", label, s.PerSection[name])
		}
	}
}
