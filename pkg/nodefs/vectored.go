package nodefs

// VectorResult is the fulfilled value of [Promises.Readv] and
// [Promises.Writev].
type VectorResult struct {
	Bytes   int
	Buffers [][]byte
}

// ReadvSync reads from fd into bufs in order and returns the total number
// of bytes read. Optional args: [position int].
//
// The provider fills fresh regions of the same sizes in one call; the data
// is then copied back into bufs in order, stopping at the total, so later
// buffers may be left untouched.
func (f *FS) ReadvSync(fd int, bufs [][]byte, args ...any) (int, error) {
	l, err := syncArgs("readv", args)
	if err != nil {
		return 0, err
	}

	pos, err := checkVector(fd, l)
	if err != nil {
		return 0, err
	}

	return f.readv(fd, bufs, pos)
}

// Readv is the callback form of [FS.ReadvSync]; the continuation is a
// [VectorCallback].
func (f *FS) Readv(fd int, bufs [][]byte, args ...any) error {
	return f.vectorAsync("readv", fd, bufs, args, f.readv)
}

// Readv is the promise form of [FS.ReadvSync].
func (p *Promises) Readv(fd int, bufs [][]byte, args ...any) *Promise[VectorResult] {
	return p.vector("readv", fd, bufs, args, p.f.readv)
}

// WritevSync writes bufs to fd in order with a single provider call and
// returns the total number of bytes written. Optional args: [position int].
func (f *FS) WritevSync(fd int, bufs [][]byte, args ...any) (int, error) {
	l, err := syncArgs("writev", args)
	if err != nil {
		return 0, err
	}

	pos, err := checkVector(fd, l)
	if err != nil {
		return 0, err
	}

	return f.writev(fd, bufs, pos)
}

// Writev is the callback form of [FS.WritevSync].
func (f *FS) Writev(fd int, bufs [][]byte, args ...any) error {
	return f.vectorAsync("writev", fd, bufs, args, f.writev)
}

// Writev is the promise form of [FS.WritevSync].
func (p *Promises) Writev(fd int, bufs [][]byte, args ...any) *Promise[VectorResult] {
	return p.vector("writev", fd, bufs, args, p.f.writev)
}

type vectorOp func(fd int, bufs [][]byte, pos int64) (int, error)

func (f *FS) vectorAsync(op string, fd int, bufs [][]byte, args []any, body vectorOp) error {
	l, err := splitArgs(op, args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[VectorCallback](l, "func(error, int, [][]byte)")
	if err != nil {
		return err
	}

	pos, err := checkVector(fd, l)
	if err != nil {
		return err
	}

	var deliver func(int, error)
	if cb != nil {
		deliver = func(n int, err error) { cb(err, n, bufs) }
	}

	return async(f, func() (int, error) { return body(fd, bufs, pos) }, deliver)
}

func (p *Promises) vector(op string, fd int, bufs [][]byte, args []any, body vectorOp) *Promise[VectorResult] {
	l, err := syncArgs(op, args)
	if err != nil {
		return rejected[VectorResult](err)
	}

	pos, err := checkVector(fd, l)
	if err != nil {
		return rejected[VectorResult](err)
	}

	return promise(p.f, func() (VectorResult, error) {
		n, err := body(fd, bufs, pos)

		return VectorResult{Bytes: n, Buffers: bufs}, err
	})
}

func checkVector(fd int, l argList) (int64, error) {
	if err := validateFd(fd); err != nil {
		return 0, err
	}

	return parseVectorPosition(l)
}

func (f *FS) readv(fd int, bufs [][]byte, pos int64) (int, error) {
	regions := make([][]byte, len(bufs))
	for i, b := range bufs {
		regions[i] = make([]byte, len(b))
	}

	n, err := f.provider.Readv(fd, regions, pos)
	if err := f.sys("read", fdTarget(fd), err); err != nil {
		return 0, err
	}

	if n < 0 {
		return 0, negativeTransfer("read", fd, n)
	}

	left := n
	for i, b := range bufs {
		if left == 0 {
			break
		}

		left -= copy(b, regions[i][:min(left, len(b))])
	}

	return n, nil
}

func (f *FS) writev(fd int, bufs [][]byte, pos int64) (int, error) {
	regions := make([][]byte, len(bufs))
	for i, b := range bufs {
		regions[i] = append([]byte(nil), b...)
	}

	n, err := f.provider.Writev(fd, regions, pos)
	if err := f.sys("write", fdTarget(fd), err); err != nil {
		return 0, err
	}

	if n < 0 {
		return 0, negativeTransfer("write", fd, n)
	}

	return n, nil
}
