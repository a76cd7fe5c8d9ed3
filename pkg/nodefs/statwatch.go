package nodefs

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/calvinalkan/nodefs/internal/loop"
	"github.com/calvinalkan/nodefs/pkg/fs"
)

// StatListener is one watchFile subscription. Pass it to
// [FS.UnwatchFile] to remove just this listener.
type StatListener struct {
	// ID identifies the subscription in logs.
	ID uuid.UUID

	path string
	fn   StatListenerFunc
}

// Path returns the watched path.
func (s *StatListener) Path() string { return s.path }

// pollWatch is the registry record of one path: the last snapshot, the
// timer re-statting it and its listeners.
type pollWatch struct {
	path      string
	prev      *Stats
	timer     *loop.Timer
	listeners []*StatListener
}

// WatchFile polls path for modification time changes. Optional args:
// [WatchFileOptions], then the required [StatListenerFunc].
//
// All subscriptions of a path share one timer, started by the first with
// its interval. A listener is called with (current, previous) snapshots
// whenever the modification time changed, and once with a zeroed current
// snapshot when the path disappears.
func (f *FS) WatchFile(path string, args ...any) (*StatListener, error) {
	l, err := splitArgs("watchFile", args)
	if err != nil {
		return nil, err
	}

	if err := validatePath("filename", path); err != nil {
		return nil, err
	}

	opts, fn, err := parseWatchFile(l, f.opts.PollInterval)
	if err != nil {
		return nil, err
	}

	sl := &StatListener{ID: uuid.New(), path: path, fn: fn}

	if err := f.post(func() { f.subscribe(sl, opts.Interval) }); err != nil {
		return nil, err
	}

	return sl, nil
}

// UnwatchFile removes the given listeners of path, or all of them when
// none are given. The timer stops once a path has no listeners left.
func (f *FS) UnwatchFile(path string, listeners ...*StatListener) error {
	return f.post(func() { f.unsubscribe(path, listeners) })
}

func (f *FS) subscribe(sl *StatListener, interval time.Duration) {
	w, ok := f.polls[sl.path]
	if !ok {
		w = &pollWatch{path: sl.path, prev: f.snapshot(sl.path)}
		w.timer = f.loop.Every(interval, func() { f.tick(w) })
		f.polls[sl.path] = w
		f.metrics.pollWatchers.Inc()

		f.log.WithFields(logrus.Fields{"path": sl.path, "interval": interval}).Debug("poll watch started")
	}

	w.listeners = append(w.listeners, sl)

	f.log.WithFields(logrus.Fields{"path": sl.path, "listener": sl.ID}).Debug("poll listener added")
}

func (f *FS) unsubscribe(path string, remove []*StatListener) {
	w, ok := f.polls[path]
	if !ok {
		return
	}

	if len(remove) == 0 {
		w.listeners = nil
	} else {
		w.listeners = slices.DeleteFunc(w.listeners, func(sl *StatListener) bool {
			return slices.Contains(remove, sl)
		})
	}

	if len(w.listeners) > 0 {
		return
	}

	w.timer.Stop()
	delete(f.polls, path)
	f.metrics.pollWatchers.Dec()

	f.log.WithField("path", path).Debug("poll watch stopped")
}

// snapshot stats path, substituting a zeroed record when it is missing.
func (f *FS) snapshot(path string) *Stats {
	rec, err := f.provider.Stat(path)
	if err != nil {
		return NewStats(fs.StatRecord{})
	}

	return NewStats(rec)
}

func (f *FS) tick(w *pollWatch) {
	if f.polls[w.path] != w {
		return
	}

	rec, err := f.provider.Stat(w.path)
	if err != nil {
		if w.prev.MtimeMs == 0 {
			return
		}

		f.notifyPoll(w, NewStats(fs.StatRecord{}))

		return
	}

	if curr := NewStats(rec); curr.MtimeMs != w.prev.MtimeMs {
		f.notifyPoll(w, curr)
	}
}

func (f *FS) notifyPoll(w *pollWatch, curr *Stats) {
	prev := w.prev
	w.prev = curr

	for _, sl := range slices.Clone(w.listeners) {
		sl.fn(curr, prev)
	}
}
