package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/reqdoc/pkg/errors"
)

// debounceDelay collects the burst of events an editor save produces.
const debounceDelay = 300 * time.Millisecond

// watchFiles calls run once and again after every change of paths, until
// ctx is done. Failed runs are reported and watching continues.
//
// The parent directories are watched rather than the files, so that files
// replaced by rename (as many editors save) keep being followed.
func watchFiles(ctx context.Context, logger *log.Logger, paths []string, delay time.Duration, run func(context.Context) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Debug("watching directory", "path", dir)
	}

	runOnce := func() {
		if err := run(ctx); err != nil && ctx.Err() == nil {
			printError("%s", errors.UserMessage(err))
		}
	}
	runOnce()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !targets[abs] || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-fire:
			fire = nil
			printInfo("Change detected, converting again")
			runOnce()
		}
	}
}
