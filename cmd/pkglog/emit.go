package main

import (
	"fmt"
	"os"

	logging "github.com/Station-Manager/pkglogging"
	"github.com/spf13/cobra"
)

type emitOptions struct {
	commonOptions
	count   int
	level   string
	message string
	native  bool
}

func newEmitCommand() *cobra.Command {
	var opts emitOptions
	cmd := &cobra.Command{
		Use:   "emit [OPTIONS]",
		Short: "Set up logging and emit records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(&opts)
		},
	}
	flags := cmd.Flags()
	opts.installFlags(flags)
	flags.IntVarP(&opts.count, "count", "n", 1, "Number of records")
	flags.StringVarP(&opts.level, "level", "l", "info", "Record level (name or rank)")
	flags.StringVarP(&opts.message, "message", "m", "hello", "Message text")
	flags.BoolVar(&opts.native, "native", false, "Send records through the native bridge")
	return cmd
}

func setupService(opts *commonOptions) (*logging.Service, error) {
	cfg, err := logging.LoadConfig(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.logDir != "" {
		cfg.LogDir = opts.logDir
	}
	if opts.quiet {
		cfg.DebugLevel = 0
		cfg.ErrorLevel = 0
	}
	svc, err := logging.New()
	if err != nil {
		return nil, err
	}
	if err = svc.SetupFromConfig(cfg); err != nil {
		return nil, err
	}
	return svc, nil
}

func runEmit(opts *emitOptions) (err error) {
	svc, err := setupService(&opts.commonOptions)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := svc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	pid := os.Getpid()
	timer := svc.StartTimer("emit")
	defer timer.Stop()

	if opts.native {
		level, err := logging.ParseNativeLevel(opts.level)
		if err != nil {
			return err
		}
		bridge := svc.NativeBridge()
		for i := 1; i <= opts.count; i++ {
			bridge.Write(logging.SourceLibrary, level, fmt.Sprintf("%s %d/%d pid=%d", opts.message, i, opts.count, pid))
		}
		return nil
	}

	level, err := logging.ParseSeverity(opts.level)
	if err != nil {
		return err
	}
	local := svc.Logger()
	for i := 1; i <= opts.count; i++ {
		local.Logf(level, "%s %d/%d pid=%d", opts.message, i, opts.count, pid)
	}
	return nil
}
