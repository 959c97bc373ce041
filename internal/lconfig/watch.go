package lconfig

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/leta/internal/applog"
)

// Watcher reloads a Store's configuration whenever its backing file
// changes, grounded on keystorm's internal/config/watcher package.
type Watcher struct {
	path    string
	store   *Store
	log     *applog.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a Watcher for path, writing reloads into store.
func NewWatcher(path string, store *Store, log *applog.Logger) (*Watcher, error) {
	if log == nil {
		log = applog.NewNull()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{path: path, store: store, log: log.WithComponent("config"), watcher: fw, done: make(chan struct{})}, nil
}

// Run processes filesystem events until Close is called. Intended to run
// in its own goroutine.
func (w *Watcher) Run() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Warnf("reload failed: %v", err)
				continue
			}
			w.store.Set(cfg)
			w.log.Infof("configuration reloaded from %s", w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnf("watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
