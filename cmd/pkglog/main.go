// Command pkglog drives the logging control plane from the shell. It is used to
// emit records into a configured log directory and to check that concurrent
// processes rotating the same files lose nothing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type commonOptions struct {
	configFile string
	logDir     string
	quiet      bool
}

func (o *commonOptions) installFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&o.configFile, "config", "c", "", "Logging config file (yaml, json or toml)")
	flags.StringVar(&o.logDir, "logdir", "", "Override the configured log directory")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "Silence console output")
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pkglog COMMAND",
		Short:         "Exercise the package client logging setup",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	cmd.AddCommand(newEmitCommand(), newStressCommand())
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pkglog:", err)
		os.Exit(1)
	}
}
