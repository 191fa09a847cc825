package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/dotring/pkg/errors"
)

// DefaultDebounce is how long Watch waits after the last change before
// reloading. Editors often write a file in several steps.
const DefaultDebounce = 200 * time.Millisecond

// ReloadFunc receives the configuration after each change to the watched
// file. A file that fails to parse is reported through err and cfg is the
// zero value; a removed file reloads the defaults.
type ReloadFunc func(cfg Config, err error)

// Watch reloads the file at path whenever it changes and passes the result
// to fn. It watches the parent directory so that files replaced by rename
// are picked up, and blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, debounce time.Duration, fn ReloadFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "start watcher")
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "watch %s", dir)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(Config{}, errors.Wrap(errors.ErrCodeInternal, err, "watch %s", path))
		case <-timer.C:
			cfg, err := reload(path)
			fn(cfg, err)
		}
	}
}

// reload reads path after a change. A missing file means defaults.
func reload(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
