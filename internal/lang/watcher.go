package lang

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher owns the active dictionary and swaps it when the dictionary file
// changes on disk. Readers go through Current and never observe a partially
// loaded dictionary; a broken file keeps the previous one active.
type Watcher struct {
	dir  string
	code string
	log  *zap.Logger

	fw   *fsnotify.Watcher
	stop chan struct{}

	mu       sync.RWMutex
	dict     *Dict
	debounce *time.Timer
}

// NewWatcher loads the dictionary once and starts watching its directory.
func NewWatcher(dir, code string, log *zap.Logger) (*Watcher, error) {
	dict, err := Load(dir, code)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		dir:  dir,
		code: code,
		log:  log,
		fw:   fw,
		stop: make(chan struct{}),
		dict: dict,
	}
	go w.loop()
	return w, nil
}

// Current returns the active dictionary.
func (w *Watcher) Current() *Dict {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dict
}

// Stop shuts the watcher down. The last loaded dictionary stays readable.
func (w *Watcher) Stop() {
	close(w.stop)
	w.fw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			base := filepath.Base(ev.Name)
			if base != w.code+".yaml" && base != w.code+".yml" {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce: editors fire several events per save.
			w.mu.Lock()
			if w.debounce != nil {
				w.debounce.Stop()
			}
			w.debounce = time.AfterFunc(reloadDebounce, w.reload)
			w.mu.Unlock()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("lang watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	dict, err := Load(w.dir, w.code)
	if err != nil {
		w.log.Warn("dictionary reload failed, keeping previous",
			zap.String("code", w.code), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.dict = dict
	w.mu.Unlock()
	w.log.Info("dictionary reloaded", zap.String("code", w.code))
}
