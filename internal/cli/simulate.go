package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/logmon/internal/config"
	"github.com/SmitUplenchwar2687/logmon/internal/generate"
	"github.com/SmitUplenchwar2687/logmon/internal/recorder"
	"github.com/SmitUplenchwar2687/logmon/internal/replay"
)

type trafficFlags struct {
	count     int
	duration  time.Duration
	pattern   string
	hosts     int
	seed      int64
	errorRate float64
}

func (tf *trafficFlags) register(cmd *cobra.Command) {
	d := generate.DefaultOptions()
	cmd.Flags().IntVar(&tf.count, "count", d.Count, "number of requests to generate")
	cmd.Flags().DurationVar(&tf.duration, "duration", d.Duration, "time span of generated traffic")
	cmd.Flags().StringVar(&tf.pattern, "pattern", d.Pattern, "traffic pattern: steady, burst, ramp")
	cmd.Flags().IntVar(&tf.hosts, "hosts", d.Hosts, "number of distinct client hosts")
	cmd.Flags().Int64Var(&tf.seed, "seed", 0, "random seed (0 = time-based)")
	cmd.Flags().Float64Var(&tf.errorRate, "error-rate", d.ErrorRate, "fraction of 4xx/5xx responses")
}

func (tf trafficFlags) options(start time.Time) generate.Options {
	return generate.Options{
		Count:     tf.count,
		Hosts:     tf.hosts,
		Duration:  tf.duration,
		Pattern:   tf.pattern,
		Start:     start,
		Seed:      tf.seed,
		ErrorRate: tf.errorRate,
	}
}

func newSimulateCmd(configPath *string) *cobra.Command {
	var (
		tf      trafficFlags
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate synthetic traffic and run it through the monitor",
		Long: `Simulate generates synthetic access log traffic in memory and replays it
instantly, which makes it easy to see how a threshold and window react to
a traffic shape.

Examples:
  logmon simulate --pattern burst --count 5000 --duration 10m
  logmon simulate --pattern ramp -t 5 -d 1m --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSession(cmd, *configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			lines, err := generate.Lines(tf.options(time.Now().UTC().Truncate(time.Second)))
			if err != nil {
				return err
			}
			if !jsonOut {
				fmt.Fprintf(cmd.OutOrStdout(), "Simulating %d requests (%s pattern over %s)\n",
					len(lines), tf.pattern, tf.duration)
			}

			rec := recorder.New(nil)
			r := replay.New(replay.Options{
				Monitor:  cfg.Monitor(),
				Step:     cfg.PollInterval,
				Notifier: rec,
				Logger:   logger,
			})
			r.LoadLines(lines)
			return finishReplay(cmd, r, rec, "", jsonOut)
		},
	}

	config.RegisterFlags(cmd.Flags())
	tf.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the summary and alert events as JSON")

	return cmd
}
