package nodefs

import (
	"sync/atomic"

	"github.com/calvinalkan/nodefs/pkg/fs"
)

// puller is the read direction of a stream: it returns up to size bytes,
// or an empty chunk at the end of the input.
type puller interface {
	pull(size int) ([]byte, error)
}

// fileSource pulls from a descriptor, honoring an inclusive [start, end]
// window. Without a start it reads at the current file offset and counts
// the window from the bytes read so far.
type fileSource struct {
	core  *streamCore
	start int64
	end   int64
	pos   int64
	read  int64
}

func (s *fileSource) pull(size int) ([]byte, error) {
	n := int64(size)

	if s.end >= 0 {
		if s.start >= 0 {
			n = min(n, s.end-s.pos+1)
		} else {
			n = min(n, s.end-s.read+1)
		}

		if n <= 0 {
			return nil, nil
		}
	}

	pos := fs.CurrentPosition
	if s.start >= 0 {
		pos = s.pos
	}

	buf := make([]byte, n)

	got, err := s.core.f.read(s.core.descriptor(), readArgs{buf: buf, length: len(buf), pos: pos})
	if err != nil {
		return nil, err
	}

	s.pos += int64(got)
	s.read += int64(got)

	return buf[:got], nil
}

// ReadStream reads a file as a sequence of chunks. Create one with
// [FS.CreateReadStream].
//
// Registering a data listener starts the flow; [ReadStream.Pause] and
// [ReadStream.Resume] control it. All listeners run on the FS loop.
type ReadStream struct {
	core *streamCore
	src  puller
	hwm  int
	dec  *chunkDecoder

	bytesRead atomic.Int64

	// Loop-only.
	flowing   bool
	scheduled bool
	ended     bool
	onData    listeners[[]byte]
	onText    listeners[string]
	onEnd     signal[struct{}]
}

// CreateReadStream opens path for streaming reads. Optional args:
// [ReadStreamOptions | encoding].
//
// The open happens on the loop; a failure is delivered to
// [ReadStream.OnError], never returned here. The returned error only
// reports malformed arguments or a shut down FS.
func (f *FS) CreateReadStream(path string, args ...any) (*ReadStream, error) {
	l, err := splitArgs("createReadStream", args)
	if err != nil {
		return nil, err
	}

	opts, err := parseReadStream(l)
	if err != nil {
		return nil, err
	}

	if opts.Fd == nil {
		if err := validatePath("path", path); err != nil {
			return nil, err
		}
	} else if err := validateFd(*opts.Fd); err != nil {
		return nil, err
	}

	flags, err := FlagsToBits(opts.Flags)
	if err != nil {
		return nil, err
	}

	enc, err := resolveEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	mode := opts.Mode
	if mode == 0 {
		mode = 0o666
	}

	hwm := opts.HighWaterMark
	if hwm <= 0 {
		hwm = f.opts.HighWaterMark
	}

	core := newStreamCore(f, "read", path, flags, mode, opts.Fd, opts.AutoClose, opts.EmitClose)

	src := &fileSource{core: core, start: -1, end: -1}
	if opts.Start != nil {
		src.start, src.pos = *opts.Start, *opts.Start
	}

	if opts.End != nil {
		src.end = *opts.End
	}

	r := &ReadStream{core: core, src: src, hwm: hwm}
	if enc != "" {
		r.dec = &chunkDecoder{enc: enc}
	}

	core.onReady.add(func(struct{}) { r.schedule() })

	if err := core.start(); err != nil {
		return nil, err
	}

	return r, nil
}

// Path returns the path the stream reads.
func (r *ReadStream) Path() string { return r.core.path }

// Fd returns the descriptor, or -1 before the open completed.
func (r *ReadStream) Fd() int { return r.core.descriptor() }

// BytesRead returns the number of bytes delivered so far.
func (r *ReadStream) BytesRead() int64 { return r.bytesRead.Load() }

// State returns the lifecycle stage.
func (r *ReadStream) State() StreamState { return r.core.State() }

// Pending reports whether the open is still in progress.
func (r *ReadStream) Pending() bool { return r.core.State() == StreamPending }

// OnOpen registers a listener for the descriptor opened by the stream.
func (r *ReadStream) OnOpen(fn func(fd int)) { r.core.on(func() { r.core.onOpen.add(fn) }) }

// OnReady registers a listener for the stream becoming readable.
func (r *ReadStream) OnReady(fn func()) {
	r.core.on(func() { r.core.onReady.add(func(struct{}) { fn() }) })
}

// OnData registers a listener for raw chunks and starts the flow.
func (r *ReadStream) OnData(fn func(chunk []byte)) {
	r.core.on(func() {
		r.onData.add(fn)
		r.flowing = true
		r.schedule()
	})
}

// OnText registers a listener for decoded chunks and starts the flow.
// Without an encoding option chunks decode as UTF-8. A multi-byte character
// split across chunks is delivered whole with the later chunk.
func (r *ReadStream) OnText(fn func(text string)) {
	r.core.on(func() {
		if r.dec == nil {
			r.dec = &chunkDecoder{enc: UTF8}
		}

		r.onText.add(fn)
		r.flowing = true
		r.schedule()
	})
}

// OnEnd registers a listener for the end of the input.
func (r *ReadStream) OnEnd(fn func()) {
	r.core.on(func() { r.onEnd.add(func(struct{}) { fn() }) })
}

// OnClose registers a listener for the descriptor being released.
func (r *ReadStream) OnClose(fn func()) {
	r.core.on(func() { r.core.onClose.add(func(struct{}) { fn() }) })
}

// OnError registers an error listener. Errors raised before any error
// listener was registered are delivered to the first one.
func (r *ReadStream) OnError(fn func(err error)) { r.core.on(func() { r.core.onError.add(fn) }) }

// Pause stops the flow after the chunk in progress.
func (r *ReadStream) Pause() { r.core.on(func() { r.flowing = false }) }

// Resume restarts the flow.
func (r *ReadStream) Resume() {
	r.core.on(func() {
		r.flowing = true
		r.schedule()
	})
}

// Read pulls one chunk of up to size bytes (0 means the high water mark)
// outside the flow and hands it to cb; a nil chunk means the input ended.
// Reading a closed stream fails with ERR_STREAM_DESTROYED.
func (r *ReadStream) Read(size int, cb BytesCallback) error {
	if size <= 0 {
		size = r.hwm
	}

	return r.core.f.post(func() {
		chunk, err := r.pullOnce(size)
		if cb != nil {
			cb(err, chunk)
		}
	})
}

// Close destroys the stream and releases its descriptor. Close is
// idempotent; cb runs on every call.
func (r *ReadStream) Close(cb ...Callback) error {
	return r.core.f.post(func() { r.core.destroy(firstCallback(cb)) })
}

func (r *ReadStream) schedule() {
	if r.scheduled {
		return
	}

	r.scheduled = true

	_ = r.core.f.post(func() {
		r.scheduled = false
		r.pump()
	})
}

// pump moves one chunk and reschedules itself while flowing.
func (r *ReadStream) pump() {
	if !r.flowing || r.ended || r.core.destroyed || r.core.State() == StreamPending {
		return
	}

	chunk, err := r.pullOnce(r.hwm)
	if err != nil || chunk == nil {
		return
	}

	r.schedule()
}

// pullOnce performs one pull and its notifications. It returns a nil chunk
// at the end of the input or after a failure.
func (r *ReadStream) pullOnce(size int) ([]byte, error) {
	switch {
	case r.core.destroyed:
		return nil, closedError(CodeStreamDestroyed, "Cannot call read after a stream was destroyed")
	case r.core.State() == StreamPending:
		return nil, closedError(CodeStreamDestroyed, "Cannot call read before the stream was opened")
	case r.ended:
		return nil, nil
	}

	chunk, err := r.src.pull(size)
	if err != nil {
		r.core.fail(err)

		return nil, err
	}

	if len(chunk) == 0 {
		r.finish()

		return nil, nil
	}

	r.core.setState(StreamActive)
	r.bytesRead.Add(int64(len(chunk)))
	r.onData.notify(chunk)

	if r.dec != nil && r.onText.len() > 0 {
		if s := r.dec.decode(chunk); s != "" {
			r.onText.notify(s)
		}
	}

	return chunk, nil
}

func (r *ReadStream) finish() {
	r.ended = true

	if r.dec != nil && r.onText.len() > 0 {
		if s := r.dec.flush(); s != "" {
			r.onText.notify(s)
		}
	}

	r.onEnd.fire(struct{}{})

	if r.core.autoClose {
		r.core.destroy(nil)
	}
}

func firstCallback(cbs []Callback) Callback {
	for _, cb := range cbs {
		if cb != nil {
			return cb
		}
	}

	return nil
}
