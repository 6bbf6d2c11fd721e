package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the bursts of filesystem events editors produce
// for a single save.
const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a configuration file on change and reports the outcome
// through a callback.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onReload func(*Config, error)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher builds a watcher for the config file at path. onReload is
// invoked from the watch goroutine with the freshly loaded configuration,
// or with the load error when the new content is invalid.
func NewWatcher(path string, onReload func(*Config, error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		path:     path,
		onReload: onReload,
		stopCh:   make(chan struct{}),
	}

	// Watch the file's directory; fsnotify keeps working across the
	// delete-and-rename dance editors do on save.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}
	return w, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
	})
}

// watchLoop processes filesystem events for the config file.
func (w *Watcher) watchLoop() {
	targetFile := filepath.Base(w.path)
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != targetFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounceTimer.Reset(reloadDebounce)

		case <-debounceTimer.C:
			cfg, err := LoadFile(w.path)
			if w.onReload != nil {
				w.onReload(cfg, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; keep the loop alive
			_ = err
		}
	}
}
