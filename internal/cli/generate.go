package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/logmon/internal/config"
	"github.com/SmitUplenchwar2687/logmon/internal/generate"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate sample access logs and configuration",
	}
	cmd.AddCommand(newGenerateTrafficCmd(), newGenerateConfigCmd())
	return cmd
}

func newGenerateTrafficCmd() *cobra.Command {
	var (
		tf     trafficFlags
		output string
		live   bool
		rate   float64
	)

	cmd := &cobra.Command{
		Use:   "traffic",
		Short: "Write synthetic Common Log Format traffic",
		Long: `Write synthetic access log lines. Without --live a finished log spanning
--duration is written in one go. With --live lines stamped with the
current time are appended at --rate per second until interrupted, which
is handy to drive a running "logmon watch".

Examples:
  logmon generate traffic --count 5000 --pattern burst --output access.log
  logmon generate traffic --live --rate 20 --output /tmp/access.log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if live {
				f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening output: %w", err)
				}
				defer f.Close()

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				fmt.Fprintf(out, "Appending %g requests/s to %s (Ctrl+C to stop)\n", rate, output)
				n, err := generate.Stream(ctx, f, generate.StreamOptions{
					Rate:      rate,
					Hosts:     tf.hosts,
					Seed:      tf.seed,
					ErrorRate: tf.errorRate,
				})
				fmt.Fprintf(out, "Wrote %d lines\n", n)
				return err
			}

			lines, err := generate.Lines(tf.options(time.Now().UTC().Add(-tf.duration).Truncate(time.Second)))
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			defer f.Close()

			w := bufio.NewWriter(f)
			for _, line := range lines {
				if _, err := w.WriteString(line + "\n"); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}

			fmt.Fprintf(out, "Generated %d requests (%s pattern over %s) to %s\n",
				len(lines), tf.pattern, tf.duration, output)
			return nil
		},
	}

	tf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "access.log", "output file")
	cmd.Flags().BoolVar(&live, "live", false, "append lines in real time until interrupted")
	cmd.Flags().Float64Var(&rate, "rate", 10, "lines per second in --live mode")

	return cmd
}

func newGenerateConfigCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write an example configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteExample(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example configuration written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "logmon.yaml", "output file")
	return cmd
}
