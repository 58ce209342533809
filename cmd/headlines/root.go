package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	configPath string
	source     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "headlines",
		Short:        "Top headlines from a news source",
		Long:         "headlines fetches the top headlines of a news source, keeps them in memory and serves them to list and detail views.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	root.PersistentFlags().StringVar(&opts.source, "source", "", "news source id (defaults to the configured source)")

	root.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newTokenCmd(opts),
		newDecodeCmd(),
		newSourcesCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "headlines %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
