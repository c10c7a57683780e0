package source

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher signals when the leads file changes on disk. It watches the parent
// directory rather than the file itself so editor save-by-rename and
// re-exports that replace the file keep being observed.
type Watcher struct {
	fsw    *fsnotify.Watcher
	path   string
	ch     chan struct{}
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("leads file path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:    fsw,
		path:   abs,
		ch:     make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
	go w.run()

	return w, nil
}

// Changes delivers one signal per burst of file events. The channel is
// closed when the watcher shuts down, so a blocked receiver unblocks with
// ok == false.
func (w *Watcher) Changes() <-chan struct{} {
	return w.ch
}

func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}

	var closeErr error
	w.once.Do(func() {
		close(w.done)
		closeErr = w.fsw.Close()
	})
	return closeErr
}

func (w *Watcher) run() {
	defer close(w.ch)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			w.notify()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Warn("leads watch error", "error", err)
			}
		}
	}
}

func (w *Watcher) matches(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == w.path
}

// notify coalesces: if a signal is already pending the new one is dropped,
// the consumer will refetch the full snapshot anyway.
func (w *Watcher) notify() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}
