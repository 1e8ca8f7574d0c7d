package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long the config file must stay quiet before a reload.
const settleDelay = 100 * time.Millisecond

// Watcher reloads a Config when its file changes on disk. It watches the
// file's directory so that editors which save by renaming a temp file over
// the original are still seen.
type Watcher struct {
	cfg  *Config
	fsw  *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	mu        sync.Mutex
	listeners []func(*Config)
}

// NewWatcher creates a watcher for cfg. Nothing is watched until Start.
func NewWatcher(cfg *Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{cfg: cfg, fsw: fsw, done: make(chan struct{})}, nil
}

// OnReload registers fn to run after every successful reload.
func (w *Watcher) OnReload(fn func(*Config)) {
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

// Start begins watching. A config without a file is not watched.
func (w *Watcher) Start() error {
	path := w.cfg.Path()
	if path == "" {
		return nil
	}
	if err := w.fsw.Add(filepath.Dir(path)); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop(filepath.Clean(path))
	return nil
}

// Stop ends watching and waits for the watch loop to exit. It is safe to
// call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		w.fsw.Close()
	})
	w.wg.Wait()
}

func (w *Watcher) loop(path string) {
	defer w.wg.Done()

	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			settle.Reset(settleDelay)

		case <-settle.C:
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher error", "err", err)

		case <-w.done:
			return
		}
	}
}

// reload applies the file and tells the listeners. A file that fails to
// load or validate leaves the running config in place.
func (w *Watcher) reload() {
	if err := w.cfg.Reload(); err != nil {
		log.Error("config reload rejected", "path", w.cfg.Path(), "err", err)
		return
	}
	log.Info("config reloaded", "path", w.cfg.Path())

	w.mu.Lock()
	listeners := append(([]func(*Config))(nil), w.listeners...)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(w.cfg)
	}
}
