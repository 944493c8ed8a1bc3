// Package watch rebuilds a project whenever its sources change
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/baldr/baldr/pkg/logger"
	"github.com/baldr/baldr/pkg/utils"
)

// RebuildFunc is called once per settled batch of changes, with the changed
// paths relative to the project root.
type RebuildFunc func(changed []string) error

// Watcher watches a project tree with fsnotify.
type Watcher struct {
	root    string
	exclude *utils.ExclusionMatcher
	// dirs are root-relative directories ignored with everything below them.
	dirs    []string
	settle  time.Duration
	rebuild RebuildFunc
	logger  logger.Logger
	ready   chan struct{}
}

// New creates a watcher for root. Exclusions extend utils.DefaultExclusions.
func New(root string, exclusions []string, settle time.Duration, rebuild RebuildFunc, log logger.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	matcher, err := utils.NewExclusionMatcher(append(utils.DefaultExclusions(), exclusions...))
	if err != nil {
		return nil, fmt.Errorf("invalid watch exclusion: %w", err)
	}
	if settle <= 0 {
		settle = 300 * time.Millisecond
	}
	return &Watcher{
		root:    abs,
		exclude: matcher,
		settle:  settle,
		rebuild: rebuild,
		logger:  log,
		ready:   make(chan struct{}),
	}, nil
}

// ExcludeDir ignores dir and its contents when it lies under the watched
// root. It reports whether dir was inside the root. Call it before Run.
func (w *Watcher) ExcludeDir(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(w.root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	w.dirs = append(w.dirs, rel)
	return true
}

// Ready is closed once the initial tree is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is done. Rebuilds run one at a time; their errors
// are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}
	close(w.ready)
	w.logger.Info(fmt.Sprintf("Watching %s for changes", w.root))

	trigger := make(chan []string, 1)
	group, ctx := NewSafeGroup(ctx, w.logger)
	group.Go(func() error { return w.pump(ctx, fw, trigger) })
	group.Go(func() error { return w.worker(ctx, trigger) })
	return group.Wait()
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			w.logger.Warn(fmt.Sprintf("Failed to walk %s: %v", path, err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.excluded(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.logger.Warn(fmt.Sprintf("Failed to watch directory %s: %v", path, err))
			return nil
		}
		w.logger.Debug("Watching directory: " + path)
		return nil
	})
}

func (w *Watcher) excluded(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, d := range w.dirs {
		if rel == d || strings.HasPrefix(rel, d+string(filepath.Separator)) {
			return true
		}
	}
	return w.exclude.IsExcluded(rel)
}

// pump collects events until they settle, then hands the batch to the worker.
func (w *Watcher) pump(ctx context.Context, fw *fsnotify.Watcher, trigger chan<- []string) error {
	timer := time.NewTimer(w.settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := make(map[string]struct{})
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return errors.New("fsnotify event channel closed")
			}
			if event.Op == fsnotify.Chmod || w.excluded(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, event.Name); err != nil {
						w.logger.Warn(fmt.Sprintf("Failed to watch new directory %s: %v", event.Name, err))
					}
				}
			}
			rel, err := filepath.Rel(w.root, event.Name)
			if err != nil {
				rel = event.Name
			}
			pending[rel] = struct{}{}
			timer.Reset(w.settle)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})

			select {
			case trigger <- changed:
			default:
				// a rebuild is already queued and will see these changes
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("fsnotify error channel closed")
			}
			w.logger.Error(fmt.Sprintf("Watcher error: %v", err))
		}
	}
}

func (w *Watcher) worker(ctx context.Context, trigger <-chan []string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-trigger:
			w.logger.Info("Change detected, rebuilding", logger.WithField("files", len(changed)))
			for _, p := range changed {
				w.logger.Debug("Changed: " + p)
			}
			if err := w.rebuild(changed); err != nil {
				w.logger.Error("Rebuild failed", logger.WithField("error", err))
			}
		}
	}
}
