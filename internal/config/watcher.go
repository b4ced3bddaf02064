package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"periodical/pkg/logx"
)

// debounceWindow coalesces the bursts of write events editors produce.
const debounceWindow = 300 * time.Millisecond

// Watcher re-loads the config file when it changes on disk and hands the
// result to a callback. The callback decides what is safe to apply live;
// invalid files are logged and skipped, keeping the last good config.
type Watcher struct {
	path    string
	log     logx.Logger
	onValid func(*Config)
}

func NewWatcher(path string, log logx.Logger, onValid func(*Config)) *Watcher {
	return &Watcher{path: path, log: log, onValid: onValid}
}

// Run blocks until ctx is done. The parent directory is watched (not the
// file itself) so atomic rename-into-place saves are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return err
	}
	w.log.Debug("watching config", logx.String("path", w.path))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(debounceWindow)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("config watcher error", logx.Err(err))
		case <-pending:
			pending = nil
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Warn("config reload failed, keeping previous", logx.Err(err))
				continue
			}
			w.onValid(cfg)
		}
	}
}
