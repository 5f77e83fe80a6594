// Command glbcheck validates GLB files headlessly: each file is decoded, parsed and assembled against an
// in-memory device, and a PASS or FAIL line is printed per file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-glb/engine/config"
)

// errFailures makes the process exit non-zero when any file fails.
var errFailures = errors.New("one or more files failed")

type options struct {
	configPath string
	workers    int
	strictMIME bool
	noColor    bool
	flat       bool
	verbose    bool
	quiet      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailures) {
			fmt.Fprintln(os.Stderr, "glbcheck:", err)
		}
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "glbcheck [flags] <file-or-dir>...",
		Short:         "Validate GLB files without a GPU",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML or YAML config file")
	f.IntVarP(&opts.workers, "workers", "w", 0, "files validated concurrently (default from config)")
	f.BoolVar(&opts.strictMIME, "strict-mime", false, "fail images whose declared MIME type disagrees with their bytes")
	f.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	f.BoolVar(&opts.flat, "flat", false, "do not descend into subdirectories")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline details")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "log errors only")

	return cmd
}

func run(cmd *cobra.Command, opts *options, args []string, stdout, stderr io.Writer) error {
	cfg := config.DefaultCheck()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadCheck(opts.configPath); err != nil {
			return err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("strict-mime") {
		cfg.StrictMIME = opts.strictMIME
	}
	if opts.noColor {
		cfg.Color = false
	}
	if opts.flat {
		cfg.Recursive = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(stderr, opts.verbose, opts.quiet)

	files, err := collectFiles(args, cfg.Extensions, cfg.Recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files with extensions %v found", cfg.Extensions)
	}
	logger.Info("checking", "files", len(files), "workers", cfg.Workers)

	results := checkFiles(cmd.Context(), files, cfg, logger)
	if newReporter(stdout, cfg.Color).report(results) > 0 {
		return errFailures
	}
	return nil
}

func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
