//go:build linux

package fs

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watch subscribes to changes of path with [fsnotify].
//
// Create, remove and rename events are reported as "rename"; write and
// chmod as "change". Names are base names relative to the watched path;
// watching a file reports the file's own base name.
func (r *Real) Watch(path string, onChange WatchFunc) (WatchHandle, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(path); err != nil {
		_ = w.Close()

		return nil, err
	}

	h := &realWatch{w: w, done: make(chan struct{})}

	go h.run(onChange)

	return h, nil
}

type realWatch struct {
	w    *fsnotify.Watcher
	done chan struct{}
	once sync.Once
	err  error
}

func (h *realWatch) run(onChange WatchFunc) {
	defer close(h.done)

	for {
		select {
		case ev, ok := <-h.w.Events:
			if !ok {
				return
			}

			event := "change"
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				event = "rename"
			}

			onChange(event, filepath.Base(ev.Name))

		case _, ok := <-h.w.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher and waits for the event goroutine to exit.
func (h *realWatch) Close() error {
	h.once.Do(func() {
		h.err = h.w.Close()
		<-h.done
	})

	return h.err
}
