package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/muesli/termenv"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/config"
	"github.com/Carmen-Shannon/oxy-glb/engine/device"
	"github.com/Carmen-Shannon/oxy-glb/engine/fetch"
	"github.com/Carmen-Shannon/oxy-glb/engine/imagedecode"
	"github.com/Carmen-Shannon/oxy-glb/engine/loader"
)

// fileResult is the outcome of validating one file.
type fileResult struct {
	Path string

	Nodes      int
	Primitives int
	Textures   int
	Buffers    int
	Elapsed    time.Duration

	Err error
}

// collectFiles expands directories into the files they contain with a matching extension.
// Explicit file arguments are kept regardless of extension. The result is sorted and deduplicated.
func collectFiles(args []string, extensions []string, recursive bool) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if hasExtension(path, extensions) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// checkFiles loads every file on its own recording device, running cfg.Workers loads at a time.
// Results are returned in the order of files.
func checkFiles(ctx context.Context, files []string, cfg config.Check, logger *slog.Logger) []fileResult {
	results := make([]fileResult, len(files))
	pool := worker.NewDynamicWorkerPool(cfg.Workers, 256, 1*time.Second)

	wg := &sync.WaitGroup{}
	for i, path := range files {
		wg.Add(1)
		idx := i
		p := path
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				results[idx] = checkFile(ctx, p, cfg, logger)
				return nil, results[idx].Err
			},
		})
	}
	wg.Wait()

	return results
}

func checkFile(ctx context.Context, path string, cfg config.Check, logger *slog.Logger) fileResult {
	rec := device.NewRecorder()
	l := loader.NewLoader(
		loader.WithDevice(rec),
		loader.WithFetcher(fetch.New(fetch.WithMaxBytes(cfg.MaxBytes), fetch.WithLogger(logger))),
		loader.WithImageDecoder(imagedecode.New(imagedecode.WithStrictMIME(cfg.StrictMIME), imagedecode.WithLogger(logger))),
		loader.WithLogger(logger.With("file", path)),
	)

	res, err := l.Load(ctx, path)
	if err != nil {
		return fileResult{Path: path, Err: err}
	}
	return fileResult{
		Path:       path,
		Nodes:      len(res.Scene.Nodes()),
		Primitives: res.Scene.PrimitiveCount(),
		Textures:   rec.CountOf(device.OpCreateTexture),
		Buffers:    rec.CountOf(device.OpCreateVertexBuffer) + rec.CountOf(device.OpCreateIndexBuffer),
		Elapsed:    res.Elapsed,
	}
}

// reporter prints one line per result.
type reporter struct {
	out   *termenv.Output
	color bool
}

func newReporter(w io.Writer, color bool) *reporter {
	return &reporter{out: termenv.NewOutput(w), color: color}
}

func (r *reporter) style(s, hex string) string {
	if !r.color {
		return s
	}
	return r.out.String(s).Foreground(r.out.Color(hex)).Bold().String()
}

// report writes every result and a summary line, returning the number of failures.
func (r *reporter) report(results []fileResult) int {
	failed := 0
	byKind := make(map[common.ErrorKind]int)
	for _, res := range results {
		if res.Err != nil {
			failed++
			byKind[common.KindOf(res.Err)]++
			fmt.Fprintf(r.out, "%s %s: %v\n", r.style("FAIL", "#E06C75"), res.Path, res.Err)
			continue
		}
		fmt.Fprintf(r.out, "%s %s (%d nodes, %d primitives, %d buffers, %d textures, %s)\n",
			r.style("PASS", "#98C379"), res.Path, res.Nodes, res.Primitives, res.Buffers, res.Textures, res.Elapsed.Round(time.Microsecond))
	}

	summary := fmt.Sprintf("%d checked, %d passed, %d failed", len(results), len(results)-failed, failed)
	if failed > 0 {
		kinds := slices.Sorted(maps.Keys(byKind))
		parts := make([]string, len(kinds))
		for i, k := range kinds {
			parts[i] = fmt.Sprintf("%s %d", k, byKind[k])
		}
		summary += " (" + strings.Join(parts, ", ") + ")"
		summary = r.style(summary, "#E06C75")
	}
	fmt.Fprintln(r.out, summary)
	return failed
}
