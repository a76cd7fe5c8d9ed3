package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"math/rand/v2"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
//
// The zero value disables all fault injection. Partially initialized configs
// only inject faults for the specified rates; unset fields default to 0.0.
//
// Fault injection is enabled by default ([ChaosModeActive]). Use
// [Chaos.SetMode] with [ChaosModeNoOp] to disable injection and pass
// all operations through to the underlying provider.
type ChaosConfig struct {
	// OpenFailRate controls how often Open fails. Read-only opens get
	// EACCES, EIO, EMFILE, ENFILE or ENOTDIR; opens with write or create
	// flags may also get ENOSPC, EDQUOT or EROFS.
	OpenFailRate float64

	// ReadFailRate controls how often Read, Readv and ReadFile fail entirely
	// with EIO and zero bytes.
	ReadFailRate float64

	// PartialReadRate controls how often Read returns fewer bytes than
	// requested with a nil error, and ReadFile returns a prefix with EIO.
	PartialReadRate float64

	// WriteFailRate controls how often Write and Writev fail entirely,
	// writing nothing and returning EIO, ENOSPC, EDQUOT or EROFS.
	WriteFailRate float64

	// PartialWriteRate controls how often Write writes a strict prefix of
	// the data and then fails with EIO, ENOSPC, EDQUOT or EROFS.
	PartialWriteRate float64

	// StatFailRate controls how often Stat, Lstat and Fstat fail with
	// EACCES or EIO.
	StatFailRate float64

	// ReadDirFailRate controls how often Readdir and Opendir fail with
	// EACCES, EIO, ENOTDIR, EMFILE or ENFILE.
	ReadDirFailRate float64

	// SyncFailRate controls how often Fsync fails with EIO, ENOSPC,
	// EDQUOT or EROFS.
	SyncFailRate float64

	// CloseFailRate controls how often Close reports EIO. The underlying
	// descriptor is always closed even when an error is returned.
	CloseFailRate float64

	// MutateFailRate controls how often path mutations fail: Mkdir, Rmdir,
	// Rm, Unlink, Rename, Truncate, Ftruncate, the chmod, chown and utimes
	// families, Link, Symlink, Mkdtemp, CopyFile and WriteFile. Errors are
	// EACCES, EPERM, EBUSY, EIO or EROFS (rename and link families return
	// [*os.LinkError]).
	MutateFailRate float64

	// TraceCapacity is the max number of operations to keep in the trace log.
	// Set to 0 (default) to disable tracing.
	TraceCapacity int
}

// ChaosMode controls how [Chaos] behaves.
type ChaosMode uint8

const (
	// ChaosModeActive enables fault-rate injection.
	// This is the default mode for a new [Chaos].
	ChaosModeActive ChaosMode = iota

	// ChaosModeNoOp passes every operation directly to the underlying provider.
	ChaosModeNoOp
)

// ChaosStats contains counts of injected faults.
type ChaosStats struct {
	OpenFails     int64
	ReadFails     int64
	PartialReads  int64
	WriteFails    int64
	PartialWrites int64
	StatFails     int64
	ReadDirFails  int64
	SyncFails     int64
	CloseFails    int64
	MutateFails   int64
}

// chaosError marks an error as intentionally injected by [Chaos].
//
// It wraps the underlying error so errors.Is/As continue to work.
type chaosError struct {
	Err error
}

// Error returns a formatted error message.
func (e *chaosError) Error() string {
	return "chaos: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *chaosError) Unwrap() error {
	return e.Err
}

// IsChaosErr reports whether err (or any wrapped error) was injected by [Chaos].
// Returns false if err is nil.
func IsChaosErr(err error) bool {
	var injected *chaosError

	return errors.As(err, &injected)
}

// Chaos wraps a [Provider] and injects random failures for testing.
//
// Error model:
//   - Injected errors are [*fs.PathError] (or [*os.LinkError] for two-path
//     operations) carrying a real [syscall.Errno], marked so tests can tell
//     them apart with [IsChaosErr].
//   - Chaos never injects ENOENT or EBADF. Missing paths and bad descriptors
//     always originate from the wrapped provider.
//   - Injected read failures return n==0. Partial writes return 0<n<len
//     with a non-nil error.
//   - Close failures still close the underlying descriptor.
//
// Use [Chaos.SetMode] to control behavior and [Chaos.Stats] to inspect how many
// faults were injected.
type Chaos struct {
	p      Provider
	rng    *rand.Rand
	config ChaosConfig
	mode   atomic.Uint32
	trace  *callTrace

	rngMu sync.Mutex

	openFails     atomic.Int64
	readFails     atomic.Int64
	partialReads  atomic.Int64
	writeFails    atomic.Int64
	partialWrites atomic.Int64
	statFails     atomic.Int64
	readDirFails  atomic.Int64
	syncFails     atomic.Int64
	closeFails    atomic.Int64
	mutateFails   atomic.Int64
}

// NewChaos creates a new [Chaos] provider wrapping underlying.
// The seed controls random fault injection for reproducibility.
// Panics if underlying is nil.
func NewChaos(underlying Provider, seed int64, config ChaosConfig) *Chaos {
	if underlying == nil {
		panic("underlying provider is nil")
	}

	return &Chaos{
		p:      underlying,
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
		config: config,
		trace:  newCallTrace(config.TraceCapacity),
	}
}

// SetMode updates [Chaos] behavior. Safe to call concurrently with
// provider operations.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// Trace returns a formatted string of recent operations.
// Returns an empty string if tracing is disabled (TraceCapacity == 0).
func (c *Chaos) Trace() string {
	return c.trace.String()
}

// TraceEvents returns a snapshot of the trace buffer.
// Returns nil if tracing is disabled (TraceCapacity == 0).
func (c *Chaos) TraceEvents() []TraceEvent {
	return c.trace.events()
}

// Stats returns the current fault injection counts.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		OpenFails:     c.openFails.Load(),
		ReadFails:     c.readFails.Load(),
		PartialReads:  c.partialReads.Load(),
		WriteFails:    c.writeFails.Load(),
		PartialWrites: c.partialWrites.Load(),
		StatFails:     c.statFails.Load(),
		ReadDirFails:  c.readDirFails.Load(),
		SyncFails:     c.syncFails.Load(),
		CloseFails:    c.closeFails.Load(),
		MutateFails:   c.mutateFails.Load(),
	}
}

// TotalFaults returns the total number of injected faults.
func (c *Chaos) TotalFaults() int64 {
	s := c.Stats()

	return s.OpenFails + s.ReadFails + s.PartialReads + s.WriteFails + s.PartialWrites +
		s.StatFails + s.ReadDirFails + s.SyncFails + s.CloseFails + s.MutateFails
}

// --- Descriptors ---

// Open opens path with fault injection.
func (c *Chaos) Open(path string, flags int, mode uint32) (int, error) {
	errnos := openErrnos
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_APPEND|syscall.O_CREAT|syscall.O_TRUNC) != 0 {
		errnos = createErrnos
	}

	if err := c.inject("open", path, c.config.OpenFailRate, &c.openFails, errnos); err != nil {
		return -1, err
	}

	fd, err := c.p.Open(path, flags, mode)

	c.trace.record("open", path, err, "", TraceField{"fd", strconv.Itoa(fd)})

	return fd, err
}

// Close closes fd and may report an injected EIO afterwards.
func (c *Chaos) Close(fd int) error {
	err := c.p.Close(fd)
	if err != nil {
		c.trace.record("close", fdName(fd), err, "")

		return err
	}

	if c.should(c.getMode(), c.config.CloseFailRate) {
		c.closeFails.Add(1)
		injected := pathError("close", fdName(fd), syscall.EIO)
		c.trace.record("close", fdName(fd), injected, "fail", TraceField{"errno", "EIO"})

		return injected
	}

	c.trace.record("close", fdName(fd), nil, "")

	return nil
}

// Read reads from fd with fault injection. Partial reads shrink the buffer
// and return a short count with a nil error.
func (c *Chaos) Read(fd int, p []byte, position int64) (int, error) {
	mode := c.getMode()

	if c.should(mode, c.config.ReadFailRate) {
		c.readFails.Add(1)
		err := pathError("read", fdName(fd), syscall.EIO)
		c.trace.record("read", fdName(fd), err, "fail", TraceField{"errno", "EIO"})

		return 0, err
	}

	if c.should(mode, c.config.PartialReadRate) && len(p) > 1 {
		c.partialReads.Add(1)
		limit := c.randIntn(len(p)-1) + 1
		n, err := c.p.Read(fd, p[:limit], position)

		c.trace.record("read", fdName(fd), err, "short_read",
			TraceField{"limit", strconv.Itoa(limit)},
			TraceField{"n", strconv.Itoa(n)})

		return n, err
	}

	n, err := c.p.Read(fd, p, position)

	c.trace.record("read", fdName(fd), err, "", TraceField{"n", strconv.Itoa(n)})

	return n, err
}

// Write writes to fd with fault injection.
func (c *Chaos) Write(fd int, p []byte, position int64) (int, error) {
	mode := c.getMode()

	if c.should(mode, c.config.WriteFailRate) {
		c.writeFails.Add(1)
		errno := c.pickRandom(writeErrnos)
		err := pathError("write", fdName(fd), errno)
		c.trace.record("write", fdName(fd), err, "fail", TraceField{"errno", errno.Error()})

		return 0, err
	}

	if c.should(mode, c.config.PartialWriteRate) && len(p) > 1 {
		c.partialWrites.Add(1)
		cutoff := c.randIntn(len(p)-1) + 1

		n, err := c.p.Write(fd, p[:cutoff], position)
		if err != nil {
			c.trace.record("write", fdName(fd), err, "")

			return n, err
		}

		errno := c.pickRandom(writeErrnos)
		injected := pathError("write", fdName(fd), errno)

		c.trace.record("write", fdName(fd), injected, "short_write",
			TraceField{"n", strconv.Itoa(n)},
			TraceField{"len", strconv.Itoa(len(p))})

		return n, injected
	}

	n, err := c.p.Write(fd, p, position)

	c.trace.record("write", fdName(fd), err, "", TraceField{"n", strconv.Itoa(n)})

	return n, err
}

// Readv reads into bufs with fault injection.
func (c *Chaos) Readv(fd int, bufs [][]byte, position int64) (int, error) {
	if err := c.inject("readv", fdName(fd), c.config.ReadFailRate, &c.readFails, []syscall.Errno{syscall.EIO}); err != nil {
		return 0, err
	}

	n, err := c.p.Readv(fd, bufs, position)

	c.trace.record("readv", fdName(fd), err, "", TraceField{"n", strconv.Itoa(n)})

	return n, err
}

// Writev writes bufs with fault injection.
func (c *Chaos) Writev(fd int, bufs [][]byte, position int64) (int, error) {
	if err := c.inject("writev", fdName(fd), c.config.WriteFailRate, &c.writeFails, writeErrnos); err != nil {
		return 0, err
	}

	n, err := c.p.Writev(fd, bufs, position)

	c.trace.record("writev", fdName(fd), err, "", TraceField{"n", strconv.Itoa(n)})

	return n, err
}

// A passthrough wrapper for [Provider.Access].
func (c *Chaos) Access(path string, mode uint32) error {
	return c.p.Access(path, mode)
}

// Truncate truncates path with fault injection.
func (c *Chaos) Truncate(path string, size int64) error {
	return c.mutate("truncate", path, func() error { return c.p.Truncate(path, size) })
}

// Ftruncate truncates fd with fault injection.
func (c *Chaos) Ftruncate(fd int, size int64) error {
	return c.mutate("ftruncate", fdName(fd), func() error { return c.p.Ftruncate(fd, size) })
}

// Fsync syncs fd with fault injection.
func (c *Chaos) Fsync(fd int) error {
	if err := c.inject("fsync", fdName(fd), c.config.SyncFailRate, &c.syncFails, writeErrnos); err != nil {
		return err
	}

	err := c.p.Fsync(fd)

	c.trace.record("fsync", fdName(fd), err, "")

	return err
}

// Chmod changes mode with fault injection.
func (c *Chaos) Chmod(path string, mode uint32) error {
	return c.mutate("chmod", path, func() error { return c.p.Chmod(path, mode) },
		TraceField{"mode", fmt.Sprintf("%#o", mode)})
}

// Fchmod changes mode with fault injection.
func (c *Chaos) Fchmod(fd int, mode uint32) error {
	return c.mutate("fchmod", fdName(fd), func() error { return c.p.Fchmod(fd, mode) },
		TraceField{"mode", fmt.Sprintf("%#o", mode)})
}

// Lchmod changes mode with fault injection.
func (c *Chaos) Lchmod(path string, mode uint32) error {
	return c.mutate("lchmod", path, func() error { return c.p.Lchmod(path, mode) },
		TraceField{"mode", fmt.Sprintf("%#o", mode)})
}

// Chown changes ownership with fault injection.
func (c *Chaos) Chown(path string, uid, gid int) error {
	return c.mutate("chown", path, func() error { return c.p.Chown(path, uid, gid) })
}

// Fchown changes ownership with fault injection.
func (c *Chaos) Fchown(fd int, uid, gid int) error {
	return c.mutate("fchown", fdName(fd), func() error { return c.p.Fchown(fd, uid, gid) })
}

// Lchown changes ownership with fault injection.
func (c *Chaos) Lchown(path string, uid, gid int) error {
	return c.mutate("lchown", path, func() error { return c.p.Lchown(path, uid, gid) })
}

// Utimes sets timestamps with fault injection.
func (c *Chaos) Utimes(path string, atime, mtime float64) error {
	return c.mutate("utime", path, func() error { return c.p.Utimes(path, atime, mtime) })
}

// Futimes sets timestamps with fault injection.
func (c *Chaos) Futimes(fd int, atime, mtime float64) error {
	return c.mutate("futime", fdName(fd), func() error { return c.p.Futimes(fd, atime, mtime) })
}

// Lutimes sets timestamps with fault injection.
func (c *Chaos) Lutimes(path string, atime, mtime float64) error {
	return c.mutate("lutime", path, func() error { return c.p.Lutimes(path, atime, mtime) })
}

// --- Links ---

// Link creates a hard link with fault injection.
func (c *Chaos) Link(existing, newPath string) error {
	return c.mutateLink("link", existing, newPath, func() error { return c.p.Link(existing, newPath) })
}

// Symlink creates a symlink with fault injection.
func (c *Chaos) Symlink(target, path string) error {
	return c.mutateLink("symlink", target, path, func() error { return c.p.Symlink(target, path) })
}

// A passthrough wrapper for [Provider.Readlink].
func (c *Chaos) Readlink(path string) (string, error) {
	return c.p.Readlink(path)
}

// A passthrough wrapper for [Provider.Realpath].
func (c *Chaos) Realpath(path string) (string, error) {
	return c.p.Realpath(path)
}

// Mkdtemp creates a temp directory with fault injection.
func (c *Chaos) Mkdtemp(prefix string) (string, error) {
	if err := c.inject("mkdtemp", prefix, c.config.MutateFailRate, &c.mutateFails, mutateErrnos); err != nil {
		return "", err
	}

	dir, err := c.p.Mkdtemp(prefix)

	c.trace.record("mkdtemp", prefix, err, "", TraceField{"dir", dir})

	return dir, err
}

// Rm removes path with fault injection.
func (c *Chaos) Rm(path string, recursive bool) error {
	return c.mutate("rm", path, func() error { return c.p.Rm(path, recursive) },
		TraceField{"recursive", strconv.FormatBool(recursive)})
}

// --- Metadata ---

// Stat stats path with fault injection.
func (c *Chaos) Stat(path string) (StatRecord, error) {
	return c.stat("stat", path, func() (StatRecord, error) { return c.p.Stat(path) })
}

// Lstat stats path with fault injection.
func (c *Chaos) Lstat(path string) (StatRecord, error) {
	return c.stat("lstat", path, func() (StatRecord, error) { return c.p.Lstat(path) })
}

// Fstat stats fd with fault injection.
func (c *Chaos) Fstat(fd int) (StatRecord, error) {
	return c.stat("fstat", fdName(fd), func() (StatRecord, error) { return c.p.Fstat(fd) })
}

// --- Directories ---

// Mkdir creates path with fault injection.
func (c *Chaos) Mkdir(path string, mode uint32, recursive bool) error {
	return c.mutate("mkdir", path, func() error { return c.p.Mkdir(path, mode, recursive) },
		TraceField{"mode", fmt.Sprintf("%#o", mode)},
		TraceField{"recursive", strconv.FormatBool(recursive)})
}

// Rmdir removes an empty directory with fault injection.
func (c *Chaos) Rmdir(path string) error {
	return c.mutate("rmdir", path, func() error { return c.p.Rmdir(path) })
}

// Readdir lists path with fault injection.
func (c *Chaos) Readdir(path string) ([]string, error) {
	if err := c.inject("readdir", path, c.config.ReadDirFailRate, &c.readDirFails, readDirErrnos); err != nil {
		return nil, err
	}

	names, err := c.p.Readdir(path)

	c.trace.record("readdir", path, err, "", TraceField{"n", strconv.Itoa(len(names))})

	return names, err
}

// Opendir opens a cursor with fault injection.
func (c *Chaos) Opendir(path string) (DirIterator, error) {
	if err := c.inject("opendir", path, c.config.ReadDirFailRate, &c.readDirFails, readDirErrnos); err != nil {
		return nil, err
	}

	it, err := c.p.Opendir(path)

	c.trace.record("opendir", path, err, "")

	return it, err
}

// --- Mutations ---

// Unlink removes path with fault injection.
func (c *Chaos) Unlink(path string) error {
	return c.mutate("unlink", path, func() error { return c.p.Unlink(path) })
}

// Rename moves oldPath with fault injection.
func (c *Chaos) Rename(oldPath, newPath string) error {
	return c.mutateLink("rename", oldPath, newPath, func() error { return c.p.Rename(oldPath, newPath) })
}

// CopyFile copies src with fault injection.
func (c *Chaos) CopyFile(src, dst string, flags int) error {
	return c.mutateLink("copyfile", src, dst, func() error { return c.p.CopyFile(src, dst, flags) })
}

// ReadFile reads path with fault injection. Partial reads return a prefix
// with EIO, like a read failing partway through.
func (c *Chaos) ReadFile(path string) ([]byte, error) {
	mode := c.getMode()

	if c.should(mode, c.config.ReadFailRate) {
		c.readFails.Add(1)
		err := pathError("read", path, syscall.EIO)
		c.trace.record("readfile", path, err, "fail", TraceField{"errno", "EIO"})

		return nil, err
	}

	data, err := c.p.ReadFile(path)
	if err != nil {
		c.trace.record("readfile", path, err, "")

		return nil, err
	}

	if c.should(mode, c.config.PartialReadRate) && len(data) > 1 {
		c.partialReads.Add(1)
		cutoff := c.randIntn(len(data)-1) + 1
		injected := pathError("read", path, syscall.EIO)

		c.trace.record("readfile", path, injected, "partial_read",
			TraceField{"cutoff", strconv.Itoa(cutoff)},
			TraceField{"total", strconv.Itoa(len(data))})

		return data[:cutoff], injected
	}

	c.trace.record("readfile", path, nil, "", TraceField{"n", strconv.Itoa(len(data))})

	return data, nil
}

// WriteFile writes path with fault injection.
func (c *Chaos) WriteFile(path string, data []byte) error {
	return c.mutate("writefile", path, func() error { return c.p.WriteFile(path, data) },
		TraceField{"n", strconv.Itoa(len(data))})
}

// A passthrough wrapper for [Provider.Watch].
func (c *Chaos) Watch(path string, onChange WatchFunc) (WatchHandle, error) {
	return c.p.Watch(path, onChange)
}

// A passthrough wrapper for [Provider.TempDir].
func (c *Chaos) TempDir() string {
	return c.p.TempDir()
}

// --- Injection helpers ---

func (c *Chaos) getMode() ChaosMode {
	return ChaosMode(c.mode.Load())
}

// inject decides whether op fails and, if so, records and returns the
// injected error.
func (c *Chaos) inject(op, path string, rate float64, counter *atomic.Int64, errnos []syscall.Errno) error {
	if !c.should(c.getMode(), rate) {
		return nil
	}

	counter.Add(1)

	errno := c.pickRandom(errnos)
	err := pathError(op, path, errno)

	c.trace.record(op, path, err, "fail", TraceField{"errno", errno.Error()})

	return err
}

func (c *Chaos) mutate(op, path string, fn func() error, attrs ...TraceField) error {
	if err := c.inject(op, path, c.config.MutateFailRate, &c.mutateFails, mutateErrnos); err != nil {
		return err
	}

	err := fn()

	c.trace.record(op, path, err, "", attrs...)

	return err
}

func (c *Chaos) mutateLink(op, oldPath, newPath string, fn func() error) error {
	if c.should(c.getMode(), c.config.MutateFailRate) {
		c.mutateFails.Add(1)

		errno := c.pickRandom(linkErrnos)
		err := linkError(op, oldPath, newPath, errno)

		c.trace.record(op, oldPath, err, "fail",
			TraceField{"new", newPath}, TraceField{"errno", errno.Error()})

		return err
	}

	err := fn()

	c.trace.record(op, oldPath, err, "", TraceField{"new", newPath})

	return err
}

func (c *Chaos) stat(op, path string, fn func() (StatRecord, error)) (StatRecord, error) {
	if err := c.inject(op, path, c.config.StatFailRate, &c.statFails, statErrnos); err != nil {
		return StatRecord{}, err
	}

	rec, err := fn()

	c.trace.record(op, path, err, "")

	return rec, err
}

// should returns true with the given probability when chaos is injecting.
func (c *Chaos) should(mode ChaosMode, rate float64) bool {
	if mode != ChaosModeActive {
		return false
	}

	return c.randFloat() < rate
}

// randFloat returns a random float64 in [0.0, 1.0) (thread-safe).
func (c *Chaos) randFloat() float64 {
	c.rngMu.Lock()
	result := c.rng.Float64()
	c.rngMu.Unlock()

	return result
}

// randIntn returns a random int in [0, n) (thread-safe).
func (c *Chaos) randIntn(n int) int {
	c.rngMu.Lock()
	result := c.rng.IntN(n)
	c.rngMu.Unlock()

	return result
}

func (c *Chaos) pickRandom(errs []syscall.Errno) syscall.Errno {
	return errs[c.randIntn(len(errs))]
}

// Injected errno sets per operation family. None contain ENOENT or EBADF.
var (
	// EACCES: permission denied
	// EIO: I/O error
	// EMFILE, ENFILE: per-process / system-wide descriptor limits
	// ENOTDIR: a path component is not a directory
	openErrnos = []syscall.Errno{syscall.EACCES, syscall.EIO, syscall.EMFILE, syscall.ENFILE, syscall.ENOTDIR}

	// open errors plus ENOSPC, EDQUOT and EROFS for writers
	createErrnos = []syscall.Errno{
		syscall.EACCES, syscall.EIO, syscall.ENOSPC, syscall.EDQUOT,
		syscall.EROFS, syscall.EMFILE, syscall.ENFILE, syscall.ENOTDIR,
	}

	writeErrnos   = []syscall.Errno{syscall.EIO, syscall.ENOSPC, syscall.EDQUOT, syscall.EROFS}
	statErrnos    = []syscall.Errno{syscall.EACCES, syscall.EIO}
	readDirErrnos = []syscall.Errno{syscall.EACCES, syscall.EIO, syscall.ENOTDIR, syscall.EMFILE, syscall.ENFILE}
	mutateErrnos  = []syscall.Errno{syscall.EACCES, syscall.EPERM, syscall.EBUSY, syscall.EIO, syscall.EROFS}

	// EXDEV: rename or link across filesystems
	linkErrnos = []syscall.Errno{syscall.EACCES, syscall.EIO, syscall.ENOSPC, syscall.EXDEV, syscall.EROFS, syscall.EPERM}
)

// pathError creates an injected [*fs.PathError] wrapped in [chaosError] so
// [IsChaosErr] can identify it while [errors.Is] still sees the errno.
func pathError(op, path string, errno syscall.Errno) error {
	return &chaosError{Err: &iofs.PathError{Op: op, Path: path, Err: errno}}
}

// linkError creates an injected [*os.LinkError] wrapped in [chaosError].
func linkError(op, oldPath, newPath string, errno syscall.Errno) error {
	return &chaosError{Err: &os.LinkError{Op: op, Old: oldPath, New: newPath, Err: errno}}
}

var _ Provider = (*Chaos)(nil)
