package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the configuration when a file under the loader's base path
// changes and publishes each changed result on Updates. The consumer applies
// updates on its own goroutine; the editor itself is never touched from here.
type Watcher struct {
	loader   *Loader
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	current *Config

	updates  chan *Config
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher starts watching loader.BasePath(). initial is the configuration
// already in effect; reloads equal to it are not published.
func NewWatcher(loader *Loader, initial *Config, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(loader.BasePath()); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", loader.BasePath(), err)
	}

	w := &Watcher{
		loader:   loader,
		logger:   logger,
		watcher:  fsWatcher,
		debounce: defaultDebounce,
		current:  initial,
		updates:  make(chan *Config, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled",
		zap.String("path", loader.BasePath()),
		zap.String("environment", string(loader.environment)),
	)
	return w, nil
}

// Updates delivers reloaded configurations. Only the latest pending update is
// kept if the consumer falls behind.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Current returns the last configuration loaded.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Stop ends the watch loop and closes Updates.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.done
	})
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer close(w.updates)
	defer w.watcher.Close()

	// Debounce timer to avoid multiple rapid reloads
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isConfigFile(event.Name) {
				continue
			}
			w.logger.Debug("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			timer.Reset(w.debounce)

		case <-timer.C:
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Configuration watcher error", zap.Error(err))

		case <-w.stopCh:
			w.logger.Debug("Configuration watcher stopped")
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.loader.Load()
	if err != nil {
		w.logger.Warn("Failed to reload configuration, keeping previous", zap.Error(err))
		return
	}

	w.mu.Lock()
	unchanged := configsEqual(w.current, cfg)
	if !unchanged {
		w.current = cfg
	}
	w.mu.Unlock()

	if unchanged {
		w.logger.Debug("Configuration unchanged after reload")
		return
	}

	// Drop a stale pending update in favour of the new one.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg

	w.logger.Info("Configuration reloaded",
		zap.Strings("sources", cfg.LoadedFrom),
	)
}

func isConfigFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func configsEqual(a, b *Config) bool {
	if a == nil || b == nil {
		return a == b
	}
	ac, bc := *a, *b
	ac.LoadedFrom, bc.LoadedFrom = nil, nil
	return reflect.DeepEqual(ac, bc)
}
