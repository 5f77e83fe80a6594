package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// fileWatcher reports changes to one file. It watches the file's directory so editors that replace the
// file by renaming still trigger a change.
type fileWatcher struct {
	mu      *sync.Mutex
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	path    string
	dir     string
	changes chan struct{}
	done    chan struct{}
}

func newFileWatcher(logger *slog.Logger) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	fw := &fileWatcher{
		mu:      &sync.Mutex{},
		watcher: w,
		logger:  logger,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go fw.loop()
	return fw, nil
}

// Watch switches the watched file.
func (fw *fileWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if dir != fw.dir {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		if fw.dir != "" {
			_ = fw.watcher.Remove(fw.dir)
		}
		fw.dir = dir
	}
	fw.path = abs
	return nil
}

// Changes delivers at most one pending change notification at a time.
func (fw *fileWatcher) Changes() <-chan struct{} {
	return fw.changes
}

func (fw *fileWatcher) Close() error {
	close(fw.done)
	return fw.watcher.Close()
}

func (fw *fileWatcher) loop() {
	for {
		select {
		case <-fw.done:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.matches(event) {
				continue
			}
			fw.logger.Debug("asset changed", "path", event.Name, "op", event.Op.String())
			select {
			case fw.changes <- struct{}{}:
			default:
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", "error", err)
		}
	}
}

func (fw *fileWatcher) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return filepath.Clean(event.Name) == fw.path
}
