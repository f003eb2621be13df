package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	logging "github.com/Station-Manager/pkglogging"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type stressOptions struct {
	commonOptions
	procs int
	count int
}

func newStressCommand() *cobra.Command {
	var opts stressOptions
	cmd := &cobra.Command{
		Use:   "stress [OPTIONS]",
		Short: "Run concurrent emit processes against one log file and count lost records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.Context(), &opts)
		},
	}
	flags := cmd.Flags()
	opts.installFlags(flags)
	flags.IntVarP(&opts.procs, "procs", "p", 4, "Number of concurrent processes")
	flags.IntVarP(&opts.count, "count", "n", 500, "Records per process")
	return cmd
}

func runStress(ctx context.Context, opts *stressOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := logging.LoadConfig(opts.configFile)
	if err != nil {
		return err
	}
	if opts.logDir != "" {
		cfg.LogDir = opts.logDir
	}
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	const tag = "stress-"
	g, ctx := errgroup.WithContext(ctx)
	for p := 0; p < opts.procs; p++ {
		args := []string{"emit", "--quiet", "--logdir", cfg.LogDir,
			"--count", strconv.Itoa(opts.count),
			"--message", tag + strconv.Itoa(p),
		}
		if opts.configFile != "" {
			args = append(args, "--config", opts.configFile)
		}
		g.Go(func() error {
			cmd := exec.CommandContext(ctx, exe, args...)
			cmd.Stderr = os.Stderr
			return cmd.Run()
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	name := cfg.LogFile
	if name == "" {
		name = logging.DefaultLogFile
	}
	base := filepath.Join(cfg.LogDir, name)
	found, err := countTagged(base, cfg.LogRotate, " "+tag)
	if err != nil {
		return err
	}

	want := opts.procs * opts.count
	fmt.Printf("records written: %d, found: %d\n", want, found)
	if found == want {
		return nil
	}
	if _, statErr := os.Stat(base + "." + strconv.Itoa(cfg.LogRotate)); statErr == nil && cfg.LogRotate > 0 {
		return fmt.Errorf("inconclusive: the oldest backup may have been discarded, raise log_rotate")
	}
	return fmt.Errorf("%d records lost", want-found)
}

// countTagged counts matching lines in base and its numbered backups.
func countTagged(base string, backups int, tag string) (int, error) {
	files := []string{base}
	for i := 1; i <= backups; i++ {
		files = append(files, base+"."+strconv.Itoa(i))
	}

	total := 0
	for _, path := range files {
		n, err := countInFile(path, tag)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func countInFile(path, tag string) (int, error) {
	fd, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer fd.Close()

	n := 0
	scanner := bufio.NewScanner(fd)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), tag) {
			n++
		}
	}
	return n, scanner.Err()
}
