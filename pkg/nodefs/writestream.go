package nodefs

import (
	"sync/atomic"

	"github.com/calvinalkan/nodefs/pkg/fs"
)

// pusher is the write direction of a stream.
type pusher interface {
	push(chunk []byte) (int, error)
}

// fileSink pushes to a descriptor. With a start offset it writes at a
// locally tracked position; otherwise at the current file offset.
type fileSink struct {
	core  *streamCore
	track bool
	pos   int64
}

func (s *fileSink) push(chunk []byte) (int, error) {
	written := 0

	for written < len(chunk) {
		pos := fs.CurrentPosition
		if s.track {
			pos = s.pos
		}

		rest := chunk[written:]

		n, err := s.core.f.write(s.core.descriptor(), writeArgs{buf: rest, length: len(rest), pos: pos})
		if err != nil {
			return written, err
		}

		if n == 0 {
			return written, negativeTransfer("write", s.core.descriptor(), 0)
		}

		written += n

		if s.track {
			s.pos += int64(n)
		}
	}

	return written, nil
}

// WriteStream writes chunks to a file in order. Create one with
// [FS.CreateWriteStream].
type WriteStream struct {
	core *streamCore
	sink pusher
	enc  Encoding

	bytesWritten atomic.Int64

	// Loop-only.
	ending   bool
	onFinish signal[struct{}]
}

// CreateWriteStream opens path for streaming writes. Optional args:
// [WriteStreamOptions | encoding]. Like [FS.CreateReadStream], open
// failures go to [WriteStream.OnError].
func (f *FS) CreateWriteStream(path string, args ...any) (*WriteStream, error) {
	l, err := splitArgs("createWriteStream", args)
	if err != nil {
		return nil, err
	}

	opts, err := parseWriteStream(l)
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

	flag := opts.Flags
	if flag == nil {
		flag = "w"
	}

	flags, err := FlagsToBits(flag)
	if err != nil {
		return nil, err
	}

	enc, err := resolveEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	if enc == "" {
		enc = UTF8
	}

	mode := opts.Mode
	if mode == 0 {
		mode = 0o666
	}

	core := newStreamCore(f, "write", path, flags, mode, opts.Fd, opts.AutoClose, opts.EmitClose)

	sink := &fileSink{core: core}
	if opts.Start != nil {
		sink.track, sink.pos = true, *opts.Start
	}

	w := &WriteStream{core: core, sink: sink, enc: enc}

	if err := core.start(); err != nil {
		return nil, err
	}

	return w, nil
}

// Path returns the path the stream writes.
func (w *WriteStream) Path() string { return w.core.path }

// Fd returns the descriptor, or -1 before the open completed.
func (w *WriteStream) Fd() int { return w.core.descriptor() }

// BytesWritten returns the number of bytes written so far.
func (w *WriteStream) BytesWritten() int64 { return w.bytesWritten.Load() }

// State returns the lifecycle stage.
func (w *WriteStream) State() StreamState { return w.core.State() }

// Pending reports whether the open is still in progress.
func (w *WriteStream) Pending() bool { return w.core.State() == StreamPending }

// OnOpen registers a listener for the descriptor opened by the stream.
func (w *WriteStream) OnOpen(fn func(fd int)) { w.core.on(func() { w.core.onOpen.add(fn) }) }

// OnReady registers a listener for the stream becoming writable.
func (w *WriteStream) OnReady(fn func()) {
	w.core.on(func() { w.core.onReady.add(func(struct{}) { fn() }) })
}

// OnFinish registers a listener for [WriteStream.End] having flushed.
func (w *WriteStream) OnFinish(fn func()) {
	w.core.on(func() { w.onFinish.add(func(struct{}) { fn() }) })
}

// OnClose registers a listener for the descriptor being released.
func (w *WriteStream) OnClose(fn func()) {
	w.core.on(func() { w.core.onClose.add(func(struct{}) { fn() }) })
}

// OnError registers an error listener. Errors raised before any error
// listener was registered are delivered to the first one.
func (w *WriteStream) OnError(fn func(err error)) { w.core.on(func() { w.core.onError.add(fn) }) }

// Write queues chunk ([]byte or string, encoded with the stream's
// encoding). cb, if given, receives the outcome of this chunk. Writing
// after End or Close fails through cb and the error listeners.
func (w *WriteStream) Write(chunk any, cb ...Callback) error {
	b, err := toBytes("chunk", chunk, w.enc)
	if err != nil {
		return err
	}

	done := firstCallback(cb)

	return w.core.f.post(func() { w.push(b, done) })
}

// End writes an optional final chunk, then finishes the stream and, with
// auto-close, closes it. Accepted args: [chunk []byte|string] [cb Callback];
// cb runs once the stream finished.
func (w *WriteStream) End(args ...any) error {
	l, err := splitArgs("end", args)
	if err != nil {
		return err
	}

	if err := l.arity(1); err != nil {
		return err
	}

	cb, err := callbackOf[Callback](l, "func(error)")
	if err != nil {
		return err
	}

	var chunk []byte

	if v := l.at(0); v != nil {
		chunk, err = toBytes("chunk", v, w.enc)
		if err != nil {
			return err
		}
	}

	return w.core.f.post(func() {
		if w.ending {
			if cb != nil {
				cb(nil)
			}

			return
		}

		if err := w.endError(); err != nil {
			if cb != nil {
				cb(err)
			}

			w.core.onError.notify(err)

			return
		}

		if chunk != nil && !w.push(chunk, nil) {
			if cb != nil {
				cb(closedError(CodeStreamDestroyed, "stream failed before it finished"))
			}

			return
		}

		w.ending = true
		w.onFinish.fire(struct{}{})

		if cb != nil {
			cb(nil)
		}

		if w.core.autoClose {
			w.core.destroy(nil)
		}
	})
}

// endError reports why a stream that never opened, or was destroyed, cannot
// finish. Loop-only.
func (w *WriteStream) endError() error {
	switch {
	case w.core.destroyed:
		return closedError(CodeStreamDestroyed, "Cannot call end after a stream was destroyed")
	case w.core.State() == StreamPending:
		return closedError(CodeStreamDestroyed, "Cannot call end before the stream was opened")
	}

	return nil
}

// Close destroys the stream and releases its descriptor. Close is
// idempotent; cb runs on every call.
func (w *WriteStream) Close(cb ...Callback) error {
	return w.core.f.post(func() { w.core.destroy(firstCallback(cb)) })
}

// push writes one chunk and reports whether it succeeded. Loop-only.
func (w *WriteStream) push(chunk []byte, cb Callback) bool {
	var err error

	switch {
	case w.ending:
		err = closedError(CodeStreamWriteAfterEnd, "write after end")
	case w.core.destroyed:
		err = closedError(CodeStreamDestroyed, "Cannot call write after a stream was destroyed")
	case w.core.State() == StreamPending:
		err = closedError(CodeStreamDestroyed, "Cannot call write before the stream was opened")
	}

	if err != nil {
		if cb != nil {
			cb(err)
		}

		w.core.onError.notify(err)

		return false
	}

	n, err := w.sink.push(chunk)
	w.bytesWritten.Add(int64(n))

	if err != nil {
		if cb != nil {
			cb(err)
		}

		w.core.fail(err)

		return false
	}

	w.core.setState(StreamActive)

	if cb != nil {
		cb(nil)
	}

	return true
}
