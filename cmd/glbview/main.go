// Command glbview opens a GLB asset in a window and draws its scene with WebGPU.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-glb/engine/config"
)

func init() {
	// GLFW and the WebGPU surface must stay on the main thread.
	runtime.LockOSThread()
}

type options struct {
	configPath string
	scene      int
	watch      bool
	profile    bool
	verbose    bool
	quiet      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "glbview:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "glbview [flags] <file-or-url>",
		Short: "View a GLB asset",
		Long: `View a GLB asset.

Drag with the left mouse button or use A/D and PageUp/PageDown to orbit, scroll or W/S to zoom.
F frames the scene, T toggles node transforms, Space toggles auto-rotate, N shows the next scene
and R reloads. Drop another .glb onto the window to open it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			logger := newLogger(os.Stderr, opts.verbose, opts.quiet)

			v, err := newViewer(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			if err := v.open(args[0], cfg.Scene); err != nil {
				v.close()
				return err
			}
			v.run()
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML or YAML config file")
	f.IntVarP(&opts.scene, "scene", "s", -1, "scene index, negative for the document default")
	f.BoolVarP(&opts.watch, "watch", "w", false, "reload when the file changes")
	f.BoolVarP(&opts.profile, "profile", "p", false, "log frame statistics")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline details")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "log errors only")

	return cmd
}

// resolveConfig reads the config file, if any, and applies flags that were set explicitly.
func resolveConfig(cmd *cobra.Command, opts *options) (config.Viewer, error) {
	cfg := config.DefaultViewer()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadViewer(opts.configPath); err != nil {
			return config.Viewer{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("scene") {
		cfg.Scene = opts.scene
	}
	if flags.Changed("watch") {
		cfg.Watch = opts.watch
	}
	if flags.Changed("profile") {
		cfg.Profile = opts.profile
	}
	return cfg, cfg.Validate()
}

func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
