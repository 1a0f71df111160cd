// Package watch observes a directory tree and emits debounced batches of
// changed C files.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a root directory recursively. Rapid bursts of events are
// coalesced: after a quiet period of one debounce interval, the accumulated
// set of changed files is sent as a single batch on Events.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	exts     map[string]bool
	debounce time.Duration
	log      *slog.Logger

	events chan []string

	mu          sync.Mutex
	accumulated map[string]bool
	timer       *time.Timer

	started  bool
	stopOnce sync.Once
	done     chan struct{}
}

// New builds a watcher over root for files with the given extensions
// (with the dot, e.g. ".c").
func New(root string, exts []string, debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	extMap := make(map[string]bool, len(exts))
	for _, ext := range exts {
		extMap[ext] = true
	}

	w := &Watcher{
		fs:          fs,
		root:        root,
		exts:        extMap,
		debounce:    debounce,
		log:         log,
		events:      make(chan []string, 1),
		accumulated: make(map[string]bool),
		done:        make(chan struct{}),
	}
	if err := w.addRecursively(root); err != nil {
		fs.Close()
		return nil, err
	}
	return w, nil
}

// Events delivers batches of changed file paths. The channel closes when the
// watcher stops.
func (w *Watcher) Events() <-chan []string {
	return w.events
}

// Start runs the event loop until the context is cancelled or Close is
// called.
func (w *Watcher) Start(ctx context.Context) {
	w.started = true
	go w.loop(ctx)
}

// Close stops watching and closes the Events channel.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.fs.Close()
		if w.started {
			<-w.done
		} else {
			close(w.events)
			close(w.done)
		}
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer close(w.events)

	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				w.stopTimer()
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursively(event.Name); err != nil {
						w.log.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
				}
			}
			if !w.relevant(event) {
				continue
			}
			w.mu.Lock()
			w.accumulated[event.Name] = true
			w.resetTimerLocked(fire)
			w.mu.Unlock()

		case <-fire:
			if batch := w.takeBatch(); len(batch) > 0 {
				select {
				case w.events <- batch:
				case <-ctx.Done():
					return
				}
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				w.stopTimer()
				return
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) takeBatch() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.accumulated) == 0 {
		return nil
	}
	batch := make([]string, 0, len(w.accumulated))
	for path := range w.accumulated {
		batch = append(batch, path)
	}
	w.accumulated = make(map[string]bool)
	return batch
}

func (w *Watcher) resetTimerLocked(fire chan struct{}) {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return w.exts[filepath.Ext(event.Name)]
}

func (w *Watcher) addRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.log.Warn("cannot access path", "path", path, "error", err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.log.Warn("cannot watch directory", "dir", path, "error", err)
		}
		return nil
	})
}
