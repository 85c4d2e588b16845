// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package watch re-runs annotation when its input or catalog file changes.
package watch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long to wait for more changes before firing
const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc is called with the sorted paths that changed since the last call
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher watches a fixed set of files. Parent directories are watched so
// editors that replace files by rename are still seen.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	logger   *slog.Logger
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]bool
	hashes  map[string][sha256.Size]byte
}

// New creates a watcher for files. A debounce of zero selects DefaultDebounce.
func New(files []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		debounce: debounce,
		logger:   logger,
		fsw:      fsw,
		pending:  make(map[string]bool),
		hashes:   make(map[string][sha256.Size]byte),
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("error resolving %s: %w", f, err)
		}
		w.files[abs] = true
		if sum, ok := hashFile(abs); ok {
			w.hashes[abs] = sum
		}
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("error watching %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run delivers debounced changes to fn until ctx is done
func (w *Watcher) Run(ctx context.Context, fn ChangeFunc) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-timer.C:
			if changed := w.flush(); len(changed) > 0 {
				fn(ctx, changed)
			}
		}
	}
}

// handle records a relevant event and reports whether it was one
func (w *Watcher) handle(event fsnotify.Event) bool {
	path, err := filepath.Abs(event.Name)
	if err != nil || !w.files[path] {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	w.mu.Lock()
	w.pending[path] = true
	w.mu.Unlock()

	w.logger.Debug("Change detected", "path", path, "op", event.Op.String())
	return true
}

// flush returns pending paths whose content actually changed
func (w *Watcher) flush() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changed []string
	for path := range w.pending {
		sum, ok := hashFile(path)
		if !ok {
			// Removed or mid-replace; a later create brings it back
			continue
		}
		if old, seen := w.hashes[path]; seen && old == sum {
			continue
		}
		w.hashes[path] = sum
		changed = append(changed, path)
	}
	w.pending = make(map[string]bool)
	sort.Strings(changed)
	return changed
}

func hashFile(path string) ([sha256.Size]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return [sha256.Size]byte{}, false
	}
	return sha256.Sum256(data), true
}
