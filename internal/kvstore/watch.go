package kvstore

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hpungsan/profreach/internal/notify"
)

// Watcher translates filesystem changes made by other processes into bus
// publications, the same contract as in-process notifications. Delivery is
// best-effort and eventual; writes made by this process may surface here a
// second time, which subscribers must tolerate (at-least-once).
type Watcher struct {
	fsw *fsnotify.Watcher
	bus *notify.Bus
	log *zap.Logger

	done chan struct{}
}

// NewWatcher watches dir (the kv directory) and publishes the storage key
// derived from each changed file's name.
func NewWatcher(dir string, bus *notify.Bus, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, bus: bus, log: log, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			key := Key(filepath.Base(ev.Name))
			if key == "" {
				continue
			}
			w.bus.Publish(key)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("storage watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
