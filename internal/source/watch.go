package source

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of writes from editors into one change
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports changes to a local source file
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan struct{}
	errors  chan error
	cancel  context.CancelFunc
	once    sync.Once
}

// NewWatcher watches the directory holding path and emits debounced
// notifications when path itself changes.
func NewWatcher(ctx context.Context, path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Editors often replace the file, so watch the parent directory
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		watcher: fsw,
		path:    abs,
		events:  make(chan struct{}, 1),
		errors:  make(chan error, 1),
		cancel:  cancel,
	}

	go w.run(watchCtx, debounce)
	return w, nil
}

// Events returns the channel that receives one value per settled change
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Errors returns the channel of watcher errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) run(ctx context.Context, debounce time.Duration) {
	defer close(w.events)
	defer close(w.errors)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}

		case <-timer.C:
			select {
			case w.events <- struct{}{}:
			default:
			}
		}
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		err = w.watcher.Close()
	})
	return err
}
