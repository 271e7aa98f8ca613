// Package watch notices when the preference state file is changed by
// another process and triggers a re-resolution of the effective theme.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sitetheme/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events a single atomic save emits.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches one file (through its parent directory, so atomic
// replace-by-rename is seen) and calls onChange once per settled burst.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	tracked     map[string]struct{}
	log         *logging.Logger
	onChange    func()
	debounceDur time.Duration
	pendingAt   time.Time
	pending     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Notifications int
	Errors        int
	LastEventTime time.Time
	LastEventType string
}

// New creates a watcher for path. onChange runs on the watcher goroutine.
func New(path string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	return &Watcher{
		watcher:     fw,
		path:        abs,
		dir:         filepath.Dir(abs),
		tracked:     map[string]struct{}{abs: {}},
		log:         logging.Get(logging.CategoryWatch).With("path", abs),
		onChange:    onChange,
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Track adds a sibling of the watched file whose changes also count, such
// as a SQLite database's -wal and -shm files. Call it before Start.
func (w *Watcher) Track(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if filepath.Dir(abs) != w.dir {
		w.log.Warn("not tracking %s: outside %s", abs, w.dir)
		return
	}
	w.mu.Lock()
	w.tracked[abs] = struct{}{}
	w.mu.Unlock()
}

// Start begins watching. It is non-blocking; the event loop runs in a
// goroutine until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		logging.WatchWarn("failed to create %s: %v (continuing anyway)", w.dir, err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.Watch("watching %s", w.path)

	go w.run(ctx)
	return nil
}

// Stop ends the event loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		select {
		case <-w.stopCh:
		default:
			close(w.stopCh)
		}
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		logging.WatchWarn("error closing watcher: %v", err)
	}
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounceDur / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchWarn("watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.fireIfSettled()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.mu.Lock()
	_, ok := w.tracked[filepath.Clean(event.Name)]
	w.mu.Unlock()
	if !ok {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}
	w.log.Debug("%s event for %s", eventType, event.Name)

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventType = eventType
	w.pending = true
	w.pendingAt = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) fireIfSettled() {
	w.mu.Lock()
	if !w.pending || time.Since(w.pendingAt) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.stats.Notifications++
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange()
	}
}
