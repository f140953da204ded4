// Package watch notifies callers when a database's optional sidecar
// config file changes on disk, the same fsnotify-based pattern the
// teacher uses for hot-reloadable configuration.
package watch

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches one file and invokes callback on every write event.
type Watcher struct {
	fsw *fsnotify.Watcher
	done chan struct{}
}

// File starts watching path's containing directory (fsnotify doesn't
// reliably watch single files across editors that replace-on-save) and
// invokes callback whenever path itself is written.
func File(path string, callback func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, done: make(chan struct{})}

	go func() {
		defer fsw.Close()
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if event.Name == path && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					callback()
				}
			case _, ok := <-fsw.Errors:
				if !ok {
					return
				}
			case <-w.done:
				return
			}
		}
	}()

	return w, nil
}

// Close stops the watch goroutine and releases the underlying handle.
func (w *Watcher) Close() error {
	close(w.done)
	return nil
}
