package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback receives the reloaded config whenever the file on
// disk changes. If the reloaded file fails to unmarshal, the
// error is dropped and no callback runs; the watcher itself has no logger
// dependency.
type ChangeCallback func(Config)

// Watcher wraps viper's fsnotify-backed WatchConfig, grounded on
// neoAgent/internal/config/watcher.go's callback-list shape but
// simplified to the single login/logout-string reload use named in
// spec.md §9 ("expose them as configuration").
type Watcher struct {
	loader    *Loader
	callbacks []ChangeCallback
}

// NewWatcher wraps loader for live reload.
func NewWatcher(loader *Loader) *Watcher {
	return &Watcher{loader: loader}
}

// OnChange registers a callback invoked (with the freshly reloaded
// Config) after every write to the config file.
func (w *Watcher) OnChange(cb ChangeCallback) {
	w.callbacks = append(w.callbacks, cb)
}

// Start arms fsnotify watching on the config file in use. Must be
// called after Loader.Load, once viper knows which file it read.
func (w *Watcher) Start() error {
	v := w.loader.Viper()
	if v.ConfigFileUsed() == "" {
		return fmt.Errorf("arpahost: no config file in use, nothing to watch")
	}
	v.OnConfigChange(func(fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return
		}
		for _, cb := range w.callbacks {
			cb(cfg)
		}
	})
	v.WatchConfig()
	return nil
}
