package nodefs

import (
	"github.com/calvinalkan/nodefs/pkg/fs"
)

// ReadResult is the fulfilled value of [Promises.Read].
type ReadResult struct {
	BytesRead int
	Buffer    []byte
}

// WriteResult is the fulfilled value of [Promises.Write]. Text is set when
// a string was written.
type WriteResult struct {
	BytesWritten int
	Buffer       []byte
	Text         string
}

// =============================================================================
// open / close
// =============================================================================

// OpenSync opens path and returns a descriptor.
//
// Optional args: [flags string|int] [mode int|octal string]. Flags default
// to "r" and mode to 0o666.
func (f *FS) OpenSync(path string, args ...any) (int, error) {
	l, err := syncArgs("open", args)
	if err != nil {
		return -1, err
	}

	a, err := checkOpen(path, l)
	if err != nil {
		return -1, err
	}

	return f.open(path, a)
}

// Open is the callback form of [FS.OpenSync]; the continuation is an
// [FdCallback].
func (f *FS) Open(path string, args ...any) error {
	l, err := splitArgs("open", args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[FdCallback](l, "func(error, int)")
	if err != nil {
		return err
	}

	a, err := checkOpen(path, l)
	if err != nil {
		return err
	}

	return async(f, func() (int, error) { return f.open(path, a) }, valueCallback(cb))
}

// Open is the promise form of [FS.OpenSync].
func (p *Promises) Open(path string, args ...any) *Promise[int] {
	l, err := syncArgs("open", args)
	if err != nil {
		return rejected[int](err)
	}

	a, err := checkOpen(path, l)
	if err != nil {
		return rejected[int](err)
	}

	return promise(p.f, func() (int, error) { return p.f.open(path, a) })
}

func checkOpen(path string, l argList) (openArgs, error) {
	if err := validatePath("path", path); err != nil {
		return openArgs{}, err
	}

	return parseOpen(l)
}

func (f *FS) open(path string, a openArgs) (int, error) {
	fd, err := f.provider.Open(path, a.flags, a.mode)
	if err := f.sys("open", pathTarget(path), err); err != nil {
		return -1, err
	}

	return fd, nil
}

// CloseSync closes fd.
func (f *FS) CloseSync(fd int) error {
	if err := validateFd(fd); err != nil {
		return err
	}

	return f.closeFd(fd)
}

// Close is the callback form of [FS.CloseSync].
func (f *FS) Close(fd int, cb Callback) error {
	if err := validateFd(fd); err != nil {
		return err
	}

	return async(f, void(func() error { return f.closeFd(fd) }), voidCallback(cb))
}

// Close is the promise form of [FS.CloseSync].
func (p *Promises) Close(fd int) *Promise[struct{}] {
	if err := validateFd(fd); err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.closeFd(fd) }))
}

func (f *FS) closeFd(fd int) error {
	return f.sys("close", fdTarget(fd), f.provider.Close(fd))
}

// =============================================================================
// read / write
// =============================================================================

// ReadSync reads from fd into a buffer and returns the number of bytes read.
//
// Optional args, one of:
//
//	buf
//	buf, ReadOptions
//	buf, offset, [length, [position]]
//	ReadOptions (with Buffer set)
//
// A nil or -1 position reads from the current file offset.
func (f *FS) ReadSync(fd int, args ...any) (int, error) {
	l, err := syncArgs("read", args)
	if err != nil {
		return 0, err
	}

	a, err := checkRead(fd, l, 0)
	if err != nil {
		return 0, err
	}

	return f.read(fd, a)
}

// Read is the callback form of [FS.ReadSync]; the continuation is a
// [ReadCallback]. Without a buffer argument a buffer of
// [Options.ReadBufferSize] bytes is allocated.
func (f *FS) Read(fd int, args ...any) error {
	l, err := splitArgs("read", args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[ReadCallback](l, "func(error, int, []byte)")
	if err != nil {
		return err
	}

	a, err := checkRead(fd, l, f.opts.ReadBufferSize)
	if err != nil {
		return err
	}

	var deliver func(int, error)
	if cb != nil {
		deliver = func(n int, err error) { cb(err, n, a.buf) }
	}

	return async(f, func() (int, error) { return f.read(fd, a) }, deliver)
}

// Read is the promise form of [FS.Read].
func (p *Promises) Read(fd int, args ...any) *Promise[ReadResult] {
	l, err := syncArgs("read", args)
	if err != nil {
		return rejected[ReadResult](err)
	}

	a, err := checkRead(fd, l, p.f.opts.ReadBufferSize)
	if err != nil {
		return rejected[ReadResult](err)
	}

	return promise(p.f, func() (ReadResult, error) {
		n, err := p.f.read(fd, a)

		return ReadResult{BytesRead: n, Buffer: a.buf}, err
	})
}

func checkRead(fd int, l argList, defaultSize int) (readArgs, error) {
	if err := validateFd(fd); err != nil {
		return readArgs{}, err
	}

	return parseRead(l, defaultSize)
}

func (f *FS) read(fd int, a readArgs) (int, error) {
	n, err := f.provider.Read(fd, a.buf[a.off:a.off+a.length], a.pos)
	if err := f.sys("read", fdTarget(fd), err); err != nil {
		return 0, err
	}

	if n < 0 {
		return 0, negativeTransfer("read", fd, n)
	}

	return n, nil
}

// WriteSync writes data ([]byte or string) to fd and returns the number of
// bytes written.
//
// Optional args for bytes: [offset, [length, [position]]]. For strings:
// [position, [encoding]] or [encoding].
func (f *FS) WriteSync(fd int, data any, args ...any) (int, error) {
	l, err := syncArgs("write", args)
	if err != nil {
		return 0, err
	}

	a, err := checkWrite(fd, data, l)
	if err != nil {
		return 0, err
	}

	return f.write(fd, a)
}

// Write is the callback form of [FS.WriteSync]. The continuation is a
// [WriteCallback] for bytes and a [WriteStringCallback] for strings.
func (f *FS) Write(fd int, data any, args ...any) error {
	l, err := splitArgs("write", args)
	if err != nil {
		return err
	}

	a, err := checkWrite(fd, data, l)
	if err != nil {
		return err
	}

	var deliver func(int, error)

	if a.isString {
		cb, err := callbackOf[WriteStringCallback](l, "func(error, int, string)")
		if err != nil {
			return err
		}

		if cb != nil {
			deliver = func(n int, err error) { cb(err, n, a.text) }
		}
	} else {
		cb, err := callbackOf[WriteCallback](l, "func(error, int, []byte)")
		if err != nil {
			return err
		}

		if cb != nil {
			deliver = func(n int, err error) { cb(err, n, a.buf) }
		}
	}

	return async(f, func() (int, error) { return f.write(fd, a) }, deliver)
}

// Write is the promise form of [FS.WriteSync].
func (p *Promises) Write(fd int, data any, args ...any) *Promise[WriteResult] {
	l, err := syncArgs("write", args)
	if err != nil {
		return rejected[WriteResult](err)
	}

	a, err := checkWrite(fd, data, l)
	if err != nil {
		return rejected[WriteResult](err)
	}

	return promise(p.f, func() (WriteResult, error) {
		n, err := p.f.write(fd, a)
		if a.isString {
			return WriteResult{BytesWritten: n, Text: a.text}, err
		}

		return WriteResult{BytesWritten: n, Buffer: a.buf}, err
	})
}

func checkWrite(fd int, data any, l argList) (writeArgs, error) {
	if err := validateFd(fd); err != nil {
		return writeArgs{}, err
	}

	return parseWrite(data, l)
}

func (f *FS) write(fd int, a writeArgs) (int, error) {
	n, err := f.provider.Write(fd, a.buf[a.off:a.off+a.length], a.pos)
	if err := f.sys("write", fdTarget(fd), err); err != nil {
		return 0, err
	}

	if n < 0 {
		return 0, negativeTransfer("write", fd, n)
	}

	return n, nil
}

// =============================================================================
// fstat / fsync / ftruncate
// =============================================================================

// FstatSync returns the metadata of fd. Optional args: [StatOptions].
func (f *FS) FstatSync(fd int, args ...any) (FileStats, error) {
	l, err := syncArgs("fstat", args)
	if err != nil {
		return nil, err
	}

	if err := validateFd(fd); err != nil {
		return nil, err
	}

	opts, err := parseStat(l)
	if err != nil {
		return nil, err
	}

	return f.fstat(fd, opts.BigInt)
}

// Fstat is the callback form of [FS.FstatSync]. The continuation is a
// [StatsCallback], [BigIntStatsCallback] or [FileStatsCallback].
func (f *FS) Fstat(fd int, args ...any) error {
	l, err := splitArgs("fstat", args)
	if err != nil {
		return err
	}

	if err := validateFd(fd); err != nil {
		return err
	}

	opts, err := parseStat(l)
	if err != nil {
		return err
	}

	return async(f, func() (FileStats, error) { return f.fstat(fd, opts.BigInt) }, statCallback(l.cb))
}

// Fstat is the promise form of [FS.FstatSync].
func (p *Promises) Fstat(fd int, args ...any) *Promise[FileStats] {
	l, err := syncArgs("fstat", args)
	if err == nil {
		err = validateFd(fd)
	}

	if err != nil {
		return rejected[FileStats](err)
	}

	opts, err := parseStat(l)
	if err != nil {
		return rejected[FileStats](err)
	}

	return promise(p.f, func() (FileStats, error) { return p.f.fstat(fd, opts.BigInt) })
}

func (f *FS) fstat(fd int, bigint bool) (FileStats, error) {
	rec, err := f.provider.Fstat(fd)
	if err := f.sys("fstat", fdTarget(fd), err); err != nil {
		return nil, err
	}

	return project(rec, bigint), nil
}

func project(rec fs.StatRecord, bigint bool) FileStats {
	if bigint {
		return NewBigIntStats(rec)
	}

	return NewStats(rec)
}

// statCallback adapts a stat continuation. parseStat has already checked
// its type.
func statCallback(cb any) func(FileStats, error) {
	switch c := cb.(type) {
	case StatsCallback:
		if c != nil {
			return func(st FileStats, err error) {
				s, _ := st.(*Stats)
				c(err, s)
			}
		}
	case BigIntStatsCallback:
		if c != nil {
			return func(st FileStats, err error) {
				s, _ := st.(*BigIntStats)
				c(err, s)
			}
		}
	case FileStatsCallback:
		if c != nil {
			return func(st FileStats, err error) { c(err, st) }
		}
	}

	return nil
}

// FsyncSync flushes fd to storage.
func (f *FS) FsyncSync(fd int) error {
	if err := validateFd(fd); err != nil {
		return err
	}

	return f.fsync("fsync", fd)
}

// Fsync is the callback form of [FS.FsyncSync].
func (f *FS) Fsync(fd int, cb Callback) error {
	if err := validateFd(fd); err != nil {
		return err
	}

	return async(f, void(func() error { return f.fsync("fsync", fd) }), voidCallback(cb))
}

// Fsync is the promise form of [FS.FsyncSync].
func (p *Promises) Fsync(fd int) *Promise[struct{}] {
	if err := validateFd(fd); err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.fsync("fsync", fd) }))
}

// FdatasyncSync is [FS.FsyncSync]; the provider has no data-only flush.
func (f *FS) FdatasyncSync(fd int) error {
	if err := validateFd(fd); err != nil {
		return err
	}

	return f.fsync("fdatasync", fd)
}

// Fdatasync is the callback form of [FS.FdatasyncSync].
func (f *FS) Fdatasync(fd int, cb Callback) error {
	if err := validateFd(fd); err != nil {
		return err
	}

	return async(f, void(func() error { return f.fsync("fdatasync", fd) }), voidCallback(cb))
}

// Fdatasync is the promise form of [FS.FdatasyncSync].
func (p *Promises) Fdatasync(fd int) *Promise[struct{}] {
	if err := validateFd(fd); err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.fsync("fdatasync", fd) }))
}

func (f *FS) fsync(op string, fd int) error {
	return f.sys(op, fdTarget(fd), f.provider.Fsync(fd))
}

// FtruncateSync truncates fd. Optional args: [length int], default 0.
// Negative lengths truncate to 0.
func (f *FS) FtruncateSync(fd int, args ...any) error {
	l, err := syncArgs("ftruncate", args)
	if err != nil {
		return err
	}

	n, err := checkFtruncate(fd, l)
	if err != nil {
		return err
	}

	return f.ftruncate(fd, n)
}

// Ftruncate is the callback form of [FS.FtruncateSync].
func (f *FS) Ftruncate(fd int, args ...any) error {
	l, err := splitArgs("ftruncate", args)
	if err != nil {
		return err
	}

	cb, err := callbackOf[Callback](l, "func(error)")
	if err != nil {
		return err
	}

	n, err := checkFtruncate(fd, l)
	if err != nil {
		return err
	}

	return async(f, void(func() error { return f.ftruncate(fd, n) }), voidCallback(cb))
}

// Ftruncate is the promise form of [FS.FtruncateSync].
func (p *Promises) Ftruncate(fd int, args ...any) *Promise[struct{}] {
	l, err := syncArgs("ftruncate", args)
	if err != nil {
		return rejected[struct{}](err)
	}

	n, err := checkFtruncate(fd, l)
	if err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.ftruncate(fd, n) }))
}

func checkFtruncate(fd int, l argList) (int64, error) {
	if err := validateFd(fd); err != nil {
		return 0, err
	}

	n, err := parseIntTail(l, "len", 0)

	return max(n, 0), err
}

func (f *FS) ftruncate(fd int, n int64) error {
	return f.sys("ftruncate", fdTarget(fd), f.provider.Ftruncate(fd, n))
}

// =============================================================================
// fchmod / fchown / futimes
// =============================================================================

// FchmodSync changes the permission bits of fd.
func (f *FS) FchmodSync(fd int, mode uint32) error {
	if err := validateFd(fd); err != nil {
		return err
	}

	return f.fchmod(fd, mode)
}

// Fchmod is the callback form of [FS.FchmodSync].
func (f *FS) Fchmod(fd int, mode uint32, cb Callback) error {
	if err := validateFd(fd); err != nil {
		return err
	}

	return async(f, void(func() error { return f.fchmod(fd, mode) }), voidCallback(cb))
}

// Fchmod is the promise form of [FS.FchmodSync].
func (p *Promises) Fchmod(fd int, mode uint32) *Promise[struct{}] {
	if err := validateFd(fd); err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.fchmod(fd, mode) }))
}

func (f *FS) fchmod(fd int, mode uint32) error {
	return f.sys("fchmod", fdTarget(fd), f.provider.Fchmod(fd, mode))
}

// FchownSync changes the owner of fd.
func (f *FS) FchownSync(fd, uid, gid int) error {
	if err := validateFd(fd); err != nil {
		return err
	}

	return f.fchown(fd, uid, gid)
}

// Fchown is the callback form of [FS.FchownSync].
func (f *FS) Fchown(fd, uid, gid int, cb Callback) error {
	if err := validateFd(fd); err != nil {
		return err
	}

	return async(f, void(func() error { return f.fchown(fd, uid, gid) }), voidCallback(cb))
}

// Fchown is the promise form of [FS.FchownSync].
func (p *Promises) Fchown(fd, uid, gid int) *Promise[struct{}] {
	if err := validateFd(fd); err != nil {
		return rejected[struct{}](err)
	}

	return promise(p.f, void(func() error { return p.f.fchown(fd, uid, gid) }))
}

func (f *FS) fchown(fd, uid, gid int) error {
	return f.sys("fchown", fdTarget(fd), f.provider.Fchown(fd, uid, gid))
}

// FutimesSync sets the access and modification times of fd. Times go
// through [TimeToEpochSeconds].
func (f *FS) FutimesSync(fd int, atime, mtime any) error {
	if err := validateFd(fd); err != nil {
		return err
	}

	return f.futimes(fd, TimeToEpochSeconds(atime), TimeToEpochSeconds(mtime))
}

// Futimes is the callback form of [FS.FutimesSync].
func (f *FS) Futimes(fd int, atime, mtime any, cb Callback) error {
	if err := validateFd(fd); err != nil {
		return err
	}

	at, mt := TimeToEpochSeconds(atime), TimeToEpochSeconds(mtime)

	return async(f, void(func() error { return f.futimes(fd, at, mt) }), voidCallback(cb))
}

// Futimes is the promise form of [FS.FutimesSync].
func (p *Promises) Futimes(fd int, atime, mtime any) *Promise[struct{}] {
	if err := validateFd(fd); err != nil {
		return rejected[struct{}](err)
	}

	at, mt := TimeToEpochSeconds(atime), TimeToEpochSeconds(mtime)

	return promise(p.f, void(func() error { return p.f.futimes(fd, at, mt) }))
}

func (f *FS) futimes(fd int, atime, mtime float64) error {
	return f.sys("futimes", fdTarget(fd), f.provider.Futimes(fd, atime, mtime))
}
