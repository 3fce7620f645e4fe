package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "dev"

// NewRootCmd creates the root logmon command.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "logmon",
		Short: "Watch an HTTP access log for traffic statistics and alerts",
		Long: `logmon tails a Common Log Format access log, reports the most visited
sections every refresh interval, and raises an alert when the average
request rate over the alert window exceeds a threshold.

Historic logs can be replayed through the same logic on a virtual clock,
and synthetic traffic can be generated for demos and experiments.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (YAML, JSON or TOML)")

	root.AddCommand(
		newWatchCmd(&configPath),
		newReplayCmd(&configPath),
		newSimulateCmd(&configPath),
		newGenerateCmd(),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the logmon version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "logmon %s\n", Version)
		},
	}
}
