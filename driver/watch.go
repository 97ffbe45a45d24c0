package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settleDelay lets a burst of writes to a file finish before it is
// expanded again.
const settleDelay = 100 * time.Millisecond

// Watcher expands files again whenever they are written. Events are
// handled one at a time on the goroutine that calls Run.
type Watcher struct {
	processing Processing
	engine     Runner
	processor  Processor
	watcher    *fsnotify.Watcher
	report     func(path string, result *Result, err error)
}

func NewWatcher(
	processing Processing,
	engine Runner,
	processor Processor,
	report func(path string, result *Result, err error),
) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	return &Watcher{
		processing: processing,
		engine:     engine,
		processor:  processor,
		watcher:    w,
		report:     report,
	}, nil
}

// Add watches files, and directories with their subdirectories.
func (w *Watcher) Add(paths ...string) error {
	for _, path := range paths {
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || p == path {
				return w.watcher.Add(p)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding %s to watcher: %w", path, err)
		}
	}
	return nil
}

// Run handles file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.processing.logger()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !w.processing.hasDesiredExtension(event.Name) {
		return
	}
	time.Sleep(settleDelay)
	w.drain(event.Name)

	w.processing.logger().Debug("file changed", zap.String("file", event.Name))
	result, err := w.processor(w.engine, event.Name)
	w.report(event.Name, result, err)
}

// drain drops the events for name queued while the file settled.
func (w *Watcher) drain(name string) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != name {
				w.handleFileEvent(event)
			}
		default:
			return
		}
	}
}
