// Package nodefs provides the Node.js fs API over an [fs.Provider].
//
// Every operation comes in up to three forms:
//
//	n, err := f.ReadSync(fd, buf)               // sync: runs now, returns
//	err := f.Read(fd, buf, func(err error, n int, b []byte) {...})
//	n, err := f.Promises().Read(fd, buf).Await(ctx)
//
// Callback forms run their work on the [FS]'s loop, a single goroutine that
// also runs every callback, stream event and watcher notification in the
// order they were scheduled. They return an error only when the arguments
// are malformed or the FS was shut down; operation failures go to the
// callback.
//
// Overloaded entry points take their optional arguments as `args ...any`,
// following Node's positional grammar. A function passed last is the
// callback. See the Xxx methods for the accepted shapes.
//
// All failures are [*Error] values and match the sentinels [ErrNotFound],
// [ErrBadDescriptor], [ErrInvalidArgument], [ErrIO] and [ErrClosed].
package nodefs

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/calvinalkan/nodefs/internal/loop"
	"github.com/calvinalkan/nodefs/pkg/fs"
)

// Defaults for zero [Options] fields.
const (
	DefaultPollInterval   = 5007 * time.Millisecond
	DefaultHighWaterMark  = 64 * 1024
	DefaultReadBufferSize = 16384
)

// Options configures an [FS].
type Options struct {
	// Logger receives debug logs for provider failures and watcher
	// lifecycle. Nil discards them.
	Logger logrus.FieldLogger

	// Registerer registers the operation metrics. Nil leaves them
	// unregistered.
	Registerer prometheus.Registerer

	// PollInterval is the default watchFile interval.
	PollInterval time.Duration

	// HighWaterMark is the default read stream chunk size.
	HighWaterMark int

	// ReadBufferSize is the buffer allocated by a callback read without a
	// buffer argument.
	ReadBufferSize int
}

// FS is one fs API context. It owns the loop that runs callbacks and the
// watchFile registry; nothing is process-global.
type FS struct {
	provider fs.Provider
	loop     *loop.Loop
	log      logrus.FieldLogger
	metrics  *metrics
	opts     Options

	// polls and watchers are only touched on the loop goroutine.
	polls    map[string]*pollWatch
	watchers map[*FSWatcher]struct{}

	promises *Promises
	shutdown atomic.Bool
}

// New creates an FS over provider and starts its loop.
func New(provider fs.Provider, opts Options) *FS {
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	if opts.HighWaterMark <= 0 {
		opts.HighWaterMark = DefaultHighWaterMark
	}

	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = DefaultReadBufferSize
	}

	f := &FS{
		provider: provider,
		loop:     loop.New(),
		log:      opts.Logger.WithField("component", "nodefs"),
		metrics:  newMetrics(opts.Registerer),
		opts:     opts,
		polls:    make(map[string]*pollWatch),
		watchers: make(map[*FSWatcher]struct{}),
	}
	f.promises = &Promises{f: f}

	return f
}

// Promises returns the promise-returning forms of the operations.
func (f *FS) Promises() *Promises { return f.promises }

// Provider returns the provider f delegates to.
func (f *FS) Provider() fs.Provider { return f.provider }

// TempDir returns the provider's temporary directory.
func (f *FS) TempDir() string { return f.provider.TempDir() }

// Idle blocks until every scheduled callback has run. Poll timers may
// schedule more work afterwards.
func (f *FS) Idle() { f.loop.Idle() }

// Shutdown stops all poll timers, closes open watchers, runs every callback
// already scheduled and stops the loop. Later callback and promise calls fail with ERR_FS_CLOSED.
// Shutdown is idempotent and must not be called from a callback.
func (f *FS) Shutdown() {
	if f.shutdown.CompareAndSwap(false, true) {
		f.loop.Post(func() {
			for path, w := range f.polls {
				w.timer.Stop()
				delete(f.polls, path)
				f.metrics.pollWatchers.Dec()
			}

			for w := range f.watchers {
				w.shut()
			}
		})
	}

	f.loop.Close()
}

// sys counts one provider call and translates its failure.
func (f *FS) sys(op string, t target, err error) error {
	f.metrics.operations.WithLabelValues(op).Inc()

	if err == nil {
		return nil
	}

	e := systemError(op, t, err)
	f.metrics.errors.WithLabelValues(op, e.Code).Inc()

	f.log.WithFields(logrus.Fields{
		"op":   op,
		"code": e.Code,
	}).Debug(e.Message)

	return e
}

// post schedules fn on the loop.
func (f *FS) post(fn func()) error {
	if !f.loop.Post(fn) {
		return errFSClosed()
	}

	return nil
}

// async runs body on the loop and hands its outcome to deliver there. A nil
// deliver discards the outcome.
func async[T any](f *FS, body func() (T, error), deliver func(T, error)) error {
	return f.post(func() {
		v, err := body()
		if deliver != nil {
			deliver(v, err)
		}
	})
}

func void(fn func() error) func() (struct{}, error) {
	return func() (struct{}, error) { return struct{}{}, fn() }
}

func voidCallback(cb Callback) func(struct{}, error) {
	if cb == nil {
		return nil
	}

	return func(_ struct{}, err error) { cb(err) }
}

func valueCallback[T any](cb func(error, T)) func(T, error) {
	if cb == nil {
		return nil
	}

	return func(v T, err error) { cb(err, v) }
}

// callbackOf type-checks the continuation of an overloaded call.
func callbackOf[C any](l argList, want string) (C, error) {
	var zero C

	if l.cb == nil {
		return zero, nil
	}

	cb, ok := l.cb.(C)
	if !ok {
		return zero, invalidArgType("callback", want, l.cb)
	}

	return cb, nil
}

// syncArgs splits the tail of a sync or promise call, which takes no
// continuation.
func syncArgs(op string, args []any) (argList, error) {
	l, err := splitArgs(op, args)
	if err != nil {
		return l, err
	}

	return l, l.noCallback()
}
