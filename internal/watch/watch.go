// Package watch signals when a project's task files change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of editor saves into one reload.
const DefaultDebounce = 250 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is signalled.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watcher diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher watches a project root and its task directory. The root is watched
// so that a task directory created or removed after Start is noticed.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	root     string
	tasksDir string
	debounce time.Duration
	logger   *log.Logger

	tasksWatched bool
	running      bool
	done         chan struct{}
}

// New creates a watcher for the tasks directory named dirName under root.
func New(root, dirName string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		root:     filepath.Clean(root),
		tasksDir: filepath.Join(root, dirName),
		debounce: DefaultDebounce,
		logger:   log.New(io.Discard),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. The returned channel receives a value after each
// debounced batch of task file changes and is closed when ctx is done or the
// watcher is closed. Start may only be called once.
func (w *Watcher) Start(ctx context.Context) (<-chan struct{}, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil, errors.New("watcher already started")
	}

	if err := w.fsw.Add(w.root); err != nil {
		return nil, fmt.Errorf("watch %s: %w", w.root, err)
	}
	w.addTasksDirLocked()

	w.running = true
	out := make(chan struct{}, 1)
	go w.run(ctx, out)
	return out, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running {
		<-w.done
	}
	return err
}

func (w *Watcher) addTasksDirLocked() {
	if w.tasksWatched {
		return
	}
	info, err := os.Stat(w.tasksDir)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(w.tasksDir); err != nil {
		w.logger.Warn("watch tasks directory", "dir", w.tasksDir, "err", err)
		return
	}
	w.tasksWatched = true
	w.logger.Debug("watching tasks directory", "dir", w.tasksDir)
}

func (w *Watcher) run(ctx context.Context, out chan<- struct{}) {
	defer close(w.done)
	defer close(out)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("task file event", "op", event.Op.String(), "path", event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "err", err)

		case <-timerC:
			timerC = nil
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}
}

// relevant reports whether event affects the loaded task set, tracking the
// tasks directory itself appearing and disappearing.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	const changes = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

	name := filepath.Clean(event.Name)
	if event.Op&changes == 0 {
		return false
	}

	if name == w.tasksDir {
		w.mu.Lock()
		defer w.mu.Unlock()
		if event.Op.Has(fsnotify.Create) {
			w.addTasksDirLocked()
		} else {
			w.tasksWatched = false
		}
		return true
	}

	if filepath.Dir(name) != w.tasksDir {
		return false
	}
	return strings.HasSuffix(strings.ToLower(name), ".json")
}
