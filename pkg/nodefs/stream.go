package nodefs

import (
	"slices"
	"sync/atomic"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// StreamState is the lifecycle stage of a [ReadStream] or [WriteStream].
type StreamState int32

const (
	// StreamPending: the file is being opened.
	StreamPending StreamState = iota
	// StreamOpen: the descriptor is ready; no data moved yet.
	StreamOpen
	// StreamActive: at least one transfer succeeded.
	StreamActive
	// StreamClosed: the stream was destroyed and its descriptor released.
	StreamClosed
)

func (s StreamState) String() string {
	switch s {
	case StreamPending:
		return "pending"
	case StreamOpen:
		return "open"
	case StreamActive:
		return "active"
	case StreamClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// =============================================================================
// Notification adapter
//
// Listener lists are only touched on the loop goroutine. Registration is
// posted there, so a registration can land after the event it waits for;
// one-shot events are therefore latched and errors nobody listened to are
// held for the first error listener.
// =============================================================================

// listeners is a repeating notification.
type listeners[T any] struct {
	fns []func(T)
}

func (l *listeners[T]) add(fn func(T)) { l.fns = append(l.fns, fn) }

func (l *listeners[T]) notify(v T) {
	for _, fn := range slices.Clone(l.fns) {
		fn(v)
	}
}

func (l *listeners[T]) len() int { return len(l.fns) }

// signal is a one-shot notification. A listener added after it fired runs
// immediately with the recorded value.
type signal[T any] struct {
	fns   []func(T)
	fired bool
	val   T
}

func (s *signal[T]) add(fn func(T)) {
	if s.fired {
		fn(s.val)

		return
	}

	s.fns = append(s.fns, fn)
}

func (s *signal[T]) fire(v T) {
	if s.fired {
		return
	}

	s.fired, s.val = true, v

	fns := s.fns
	s.fns = nil

	for _, fn := range fns {
		fn(v)
	}
}

// errorListeners holds errors raised while nobody listened and hands them
// to the first listener.
type errorListeners struct {
	listeners[error]
	held []error
}

func (e *errorListeners) add(fn func(error)) {
	e.listeners.add(fn)

	held := e.held
	e.held = nil

	for _, err := range held {
		fn(err)
	}
}

func (e *errorListeners) notify(err error) {
	if e.len() == 0 {
		e.held = append(e.held, err)

		return
	}

	e.listeners.notify(err)
}

// =============================================================================
// Shared state machine
// =============================================================================

// streamCore is the lifecycle both stream directions share: the open, the
// state transitions, the close and the notifications around them. The
// direction-specific transfer lives in a puller or pusher.
type streamCore struct {
	f    *FS
	path string
	log  logrus.FieldLogger

	flags     int
	mode      uint32
	autoClose bool
	emitClose bool

	state atomic.Int32
	fd    atomic.Int64

	// Loop-only.
	destroyed bool
	onOpen    signal[int]
	onReady   signal[struct{}]
	onClose   signal[struct{}]
	onError   errorListeners
}

func newStreamCore(f *FS, kind, path string, flags int, mode uint32, fd *int, autoClose, emitClose *bool) *streamCore {
	c := &streamCore{
		f:         f,
		path:      path,
		log:       f.log.WithFields(logrus.Fields{"stream": kind, "path": path}),
		flags:     flags,
		mode:      mode,
		autoClose: autoClose == nil || *autoClose,
		emitClose: emitClose == nil || *emitClose,
	}

	c.fd.Store(-1)

	if fd != nil {
		c.fd.Store(int64(*fd))
		c.state.Store(int32(StreamOpen))
	}

	f.metrics.openStreams.Inc()

	return c
}

func (c *streamCore) State() StreamState { return StreamState(c.state.Load()) }

func (c *streamCore) setState(s StreamState) { c.state.Store(int32(s)) }

func (c *streamCore) descriptor() int { return int(c.fd.Load()) }

// start schedules the open, or the ready notification when the descriptor
// was supplied. It reports ERR_FS_CLOSED when the loop is gone.
func (c *streamCore) start() error {
	err := c.f.post(func() {
		if c.State() != StreamPending {
			c.onReady.fire(struct{}{})

			return
		}

		fd, err := c.f.open(c.path, openArgs{flags: c.flags, mode: c.mode})
		if err != nil {
			c.fail(err)

			return
		}

		c.fd.Store(int64(fd))
		c.setState(StreamOpen)
		c.log.WithField("fd", fd).Debug("stream opened")

		c.onOpen.fire(fd)
		c.onReady.fire(struct{}{})
	})
	if err != nil {
		c.f.metrics.openStreams.Dec()
	}

	return err
}

// fail reports err and, with auto-close, destroys the stream. Loop-only.
func (c *streamCore) fail(err error) {
	c.onError.notify(err)

	if c.autoClose {
		c.destroy(nil)
	}
}

// destroy releases the descriptor once. Later calls only invoke cb.
// Loop-only.
func (c *streamCore) destroy(cb Callback) {
	if c.destroyed {
		if cb != nil {
			cb(nil)
		}

		return
	}

	c.destroyed = true

	var err error
	if fd := c.descriptor(); fd >= 0 {
		err = c.f.closeFd(fd)
	}

	c.setState(StreamClosed)
	c.f.metrics.openStreams.Dec()
	c.log.Debug("stream closed")

	if cb != nil {
		cb(err)
	}

	if err != nil {
		c.onError.notify(err)
	}

	if c.emitClose {
		c.onClose.fire(struct{}{})
	}
}

// on posts a listener registration. Registration on a shut down FS is
// dropped.
func (c *streamCore) on(register func()) {
	_ = c.f.post(register)
}

// =============================================================================
// Chunk decoding
// =============================================================================

// chunkDecoder decodes a byte stream chunk by chunk, holding back bytes
// that only decode together with the next chunk.
type chunkDecoder struct {
	enc  Encoding
	tail []byte
}

func (d *chunkDecoder) decode(chunk []byte) string {
	b := append(d.tail, chunk...)

	var keep int

	switch d.enc {
	case UTF16LE:
		keep = len(b) % 2
	case Base64, Base64URL:
		keep = len(b) % 3
	case UTF8, "":
		keep = incompleteRuneSuffix(b)
	}

	d.tail = append([]byte(nil), b[len(b)-keep:]...)

	return d.enc.Decode(b[:len(b)-keep])
}

func (d *chunkDecoder) flush() string {
	if len(d.tail) == 0 {
		return ""
	}

	s := d.enc.Decode(d.tail)
	d.tail = nil

	return s
}

// incompleteRuneSuffix returns how many trailing bytes of b start a UTF-8
// sequence that is not complete yet.
func incompleteRuneSuffix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax+1; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return 0
			}

			return len(b) - i
		}
	}

	return 0
}
