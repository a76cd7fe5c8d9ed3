package nodefs

import (
	"github.com/sirupsen/logrus"

	"github.com/calvinalkan/nodefs/pkg/fs"
)

// FSWatcher delivers change notifications for one path. Create one with
// [FS.Watch].
type FSWatcher struct {
	f    *FS
	path string
	enc  Encoding
	log  logrus.FieldLogger

	// Loop-only.
	handle   fs.WatchHandle
	closed   bool
	onChange listeners[watchEvent]
	onError  errorListeners
	onClose  signal[struct{}]
}

type watchEvent struct {
	event    string
	filename string
}

// Watch starts watching path. Optional args: [WatchOptions | encoding]
// followed by a [WatchListener], which is registered like
// [FSWatcher.OnChange].
//
// The provider watch is opened on the loop. A failure is delivered to
// [FSWatcher.OnError] and closes the watcher; it is never returned here.
func (f *FS) Watch(path string, args ...any) (*FSWatcher, error) {
	l, err := splitArgs("watch", args)
	if err != nil {
		return nil, err
	}

	if err := validatePath("filename", path); err != nil {
		return nil, err
	}

	opts, listener, err := parseWatch(l)
	if err != nil {
		return nil, err
	}

	enc, err := resolveEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	w := &FSWatcher{
		f:    f,
		path: path,
		enc:  enc,
		log:  f.log.WithField("watch", path),
	}

	if listener != nil {
		w.onChange.add(func(ev watchEvent) { listener(ev.event, ev.filename) })
	}

	if err := f.post(w.start); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *FSWatcher) start() {
	if w.closed {
		return
	}

	h, err := w.f.provider.Watch(w.path, func(event, name string) {
		_ = w.f.post(func() { w.emit(event, name) })
	})
	if err := w.f.sys("watch", pathTarget(w.path), err); err != nil {
		w.onError.notify(err)
		w.shut()

		return
	}

	w.handle = h
	w.f.watchers[w] = struct{}{}
	w.log.Debug("watch started")
}

func (w *FSWatcher) emit(event, name string) {
	if w.closed {
		return
	}

	w.onChange.notify(watchEvent{event: event, filename: encodeName(name, w.enc)})
}

// Path returns the watched path.
func (w *FSWatcher) Path() string { return w.path }

// OnChange registers a listener for change notifications. Event is
// "rename" or "change"; filename is relative to the watched path.
func (w *FSWatcher) OnChange(fn WatchListener) {
	_ = w.f.post(func() { w.onChange.add(func(ev watchEvent) { fn(ev.event, ev.filename) }) })
}

// OnError registers an error listener. Errors raised before any error
// listener was registered are delivered to the first one.
func (w *FSWatcher) OnError(fn func(err error)) {
	_ = w.f.post(func() { w.onError.add(fn) })
}

// OnClose registers a listener for the watcher closing.
func (w *FSWatcher) OnClose(fn func()) {
	_ = w.f.post(func() { w.onClose.add(func(struct{}) { fn() }) })
}

// Close stops the watcher and releases the provider handle. Close is
// idempotent.
func (w *FSWatcher) Close() {
	_ = w.f.post(w.shut)
}

// Ref is a no-op kept for API parity.
func (w *FSWatcher) Ref() *FSWatcher { return w }

// Unref is a no-op kept for API parity.
func (w *FSWatcher) Unref() *FSWatcher { return w }

func (w *FSWatcher) shut() {
	if w.closed {
		return
	}

	w.closed = true
	delete(w.f.watchers, w)

	if w.handle != nil {
		if err := w.handle.Close(); err != nil {
			w.onError.notify(w.f.sys("watch", pathTarget(w.path), err))
		}

		w.handle = nil
	}

	w.log.Debug("watch closed")
	w.onClose.fire(struct{}{})
}
