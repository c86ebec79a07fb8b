package feed

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/lazyfeed/lazyfeed/internal/log"
)

// Watcher reports stream files that changed on disk.
type Watcher struct {
	fsw    *fsnotify.Watcher
	files  map[string]struct{}
	events chan string
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewWatcher watches the given stream files. Their parent directories are
// watched so that files replaced by a rename are still reported.
func NewWatcher(paths []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{
		fsw:    fsw,
		files:  make(map[string]struct{}, len(paths)),
		events: make(chan string, len(paths)+1),
		done:   make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Events delivers the path of every watched file that was written or
// replaced. The channel is closed by Close.
func (w *Watcher) Events() <-chan string {
	return w.events
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	defer log.RecoverPanic("feed watcher", nil)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// a renamed file is gone; its replacement arrives as Create
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if _, ok := w.files[name]; !ok {
				continue
			}
			slog.Debug("Feed file changed", "path", name, "op", ev.Op.String())
			select {
			case w.events <- name:
			case <-w.done:
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("Feed watcher error", "error", err)
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
		close(w.events)
	})
	return err
}
