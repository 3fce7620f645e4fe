package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SmitUplenchwar2687/logmon/internal/config"
	"github.com/SmitUplenchwar2687/logmon/internal/notify"
	"github.com/SmitUplenchwar2687/logmon/internal/recorder"
	"github.com/SmitUplenchwar2687/logmon/internal/replay"
)

type replayFlags struct {
	speed    float64
	sections []string
	statuses []string
	after    string
	before   string
	jsonOut  bool
}

func newReplayCmd(configPath *string) *cobra.Command {
	var rf replayFlags

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a historic access log through the monitor on virtual time",
		Long: `Replay reads a complete access log, orders it by request time and drives the
monitor with a virtual clock that advances by the poll interval. Alerts fire
exactly as they would have while the log was written.

Examples:
  logmon replay -f access.log
  logmon replay -f access.log --speed 60 --sections api,blog
  logmon replay -f access.log --statuses 5xx --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSession(cmd, *configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			f, err := os.Open(cfg.File)
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			defer f.Close()

			filter, err := rf.filter()
			if err != nil {
				return err
			}
			return runReplay(cmd, f, cfg, filter, rf, logger)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().String("record", "", "export alert history as JSON to this file")
	cmd.Flags().Float64Var(&rf.speed, "speed", 0, "replay speed multiplier (0 = instant, 1 = real-time)")
	cmd.Flags().StringSliceVar(&rf.sections, "sections", nil, "only replay these sections (comma-separated)")
	cmd.Flags().StringSliceVar(&rf.statuses, "statuses", nil, "only replay these statuses, e.g. 5xx,404")
	cmd.Flags().StringVar(&rf.after, "after", "", "skip requests before this RFC3339 time")
	cmd.Flags().StringVar(&rf.before, "before", "", "skip requests after this RFC3339 time")
	cmd.Flags().BoolVar(&rf.jsonOut, "json", false, "print the summary and alert events as JSON")

	return cmd
}

func (rf replayFlags) filter() (replay.Filter, error) {
	f := replay.Filter{Sections: rf.sections, Statuses: rf.statuses}
	if rf.after != "" {
		t, err := time.Parse(time.RFC3339, rf.after)
		if err != nil {
			return f, fmt.Errorf("invalid --after: %w", err)
		}
		f.After = t
	}
	if rf.before != "" {
		t, err := time.Parse(time.RFC3339, rf.before)
		if err != nil {
			return f, fmt.Errorf("invalid --before: %w", err)
		}
		f.Before = t
	}
	return f, nil
}

// replayReport is the --json output of replay and simulate.
type replayReport struct {
	Summary *replay.Summary `json:"summary"`
	Events  []notify.Event  `json:"events"`
}

func runReplay(cmd *cobra.Command, in io.Reader, cfg config.Config, filter replay.Filter, rf replayFlags, logger *zap.Logger) error {
	rec := recorder.New(nil)
	r := replay.New(replay.Options{
		Monitor:  cfg.Monitor(),
		Step:     cfg.PollInterval,
		Speed:    rf.speed,
		Filter:   filter,
		Notifier: rec,
		Logger:   logger,
	})
	if err := r.Load(in); err != nil {
		return err
	}
	return finishReplay(cmd, r, rec, cfg.Record, rf.jsonOut)
}

// finishReplay runs r, printing alerts as they happen unless jsonOut is set.
func finishReplay(cmd *cobra.Command, r *replay.Replayer, rec *recorder.Recorder, recordPath string, jsonOut bool) error {
	out := cmd.OutOrStdout()

	summary, err := r.Run(cmd.Context(), func(step replay.Step) {
		if !jsonOut && step.Result.Changed() {
			renderAlert(out, step.Result.Message())
		}
	})
	if err != nil {
		return err
	}

	if recordPath != "" {
		if err := rec.ExportFile(recordPath); err != nil {
			return err
		}
	}

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		events := rec.Events()
		if events == nil {
			events = []notify.Event{}
		}
		return enc.Encode(replayReport{Summary: summary, Events: events})
	}

	renderReplaySummary(out, summary)
	return nil
}
