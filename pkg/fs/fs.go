// Package fs defines the descriptor-level filesystem provider consumed by
// package nodefs, plus implementations for production and fault injection.
//
// The main types are:
//   - [Provider]: interface for descriptor-level filesystem operations
//   - [StatRecord]: immutable metadata snapshot returned by stat calls
//   - [DirIterator]: single-pass directory cursor returned by [Provider.Opendir]
//   - [WatchHandle]: change-notification handle returned by [Provider.Watch]
//   - [Real]: Linux implementation using [golang.org/x/sys/unix]
//   - [Chaos]: testing implementation that injects random failures
//
// Example usage:
//
//	p := fs.NewReal(fs.RealOptions{})
//	fd, err := p.Open("config.json", unix.O_RDONLY, 0)
//	if err != nil {
//	    return err
//	}
//	defer p.Close(fd)
//
//	buf := make([]byte, 4096)
//	n, err := p.Read(fd, buf, 0)
package fs

import "strconv"

// CurrentPosition is the position sentinel for [Provider.Read],
// [Provider.Write], [Provider.Readv] and [Provider.Writev] meaning "use and
// advance the descriptor's file offset".
const CurrentPosition int64 = -1

// StatRecord is an immutable snapshot of file metadata.
//
// Timestamps are milliseconds since the Unix epoch with sub-millisecond
// precision kept in the fraction.
type StatRecord struct {
	Dev     uint64
	Ino     uint64
	Mode    uint32
	Nlink   uint64
	UID     uint32
	GID     uint32
	Rdev    uint64
	Size    int64
	Blksize int64
	Blocks  int64

	AtimeMs     float64
	MtimeMs     float64
	CtimeMs     float64
	BirthtimeMs float64
}

// DirIterator is a single-pass cursor over directory entry names.
//
// Next returns ok=false once the directory is exhausted. Implementations
// never return "." or "..".
type DirIterator interface {
	Next() (name string, ok bool, err error)
	Close() error
}

// WatchFunc receives one change notification. Event is "rename" for
// entries that appeared, vanished, or moved and "change" for content or
// attribute changes. Name is the affected entry relative to the watched
// path.
type WatchFunc func(event, name string)

// WatchHandle is an active change-notification subscription.
type WatchHandle interface {
	Close() error
}

// Provider defines the descriptor-level filesystem operations a
// compatibility layer delegates to.
//
// Failures are returned as [*fs.PathError] (or [*os.LinkError] for two-path
// operations) wrapping a [syscall.Errno], so [errors.Is] works against errno
// values and [os.ErrNotExist].
//
// Descriptors are plain integers owned by the caller of [Provider.Open] until
// passed to [Provider.Close].
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Open opens path with raw open(2) flags and permission bits and returns
	// a descriptor.
	Open(path string, flags int, mode uint32) (int, error)

	// Close releases fd.
	Close(fd int) error

	// Read reads up to len(p) bytes at position, or at the current offset
	// when position is [CurrentPosition]. Zero bytes with a nil error means
	// end of file.
	Read(fd int, p []byte, position int64) (int, error)

	// Write writes p at position, or at the current offset when position is
	// [CurrentPosition].
	Write(fd int, p []byte, position int64) (int, error)

	// Readv fills bufs in order from a single read call.
	Readv(fd int, bufs [][]byte, position int64) (int, error)

	// Writev writes bufs in order with a single write call.
	Writev(fd int, bufs [][]byte, position int64) (int, error)

	// Access checks path accessibility for the given access(2) mode bits.
	Access(path string, mode uint32) error

	Truncate(path string, size int64) error
	Ftruncate(fd int, size int64) error
	Fsync(fd int) error

	Chmod(path string, mode uint32) error
	Fchmod(fd int, mode uint32) error
	// Lchmod changes the mode of a symlink itself. Linux kernels commonly
	// reject this with EOPNOTSUPP.
	Lchmod(path string, mode uint32) error

	Chown(path string, uid, gid int) error
	Fchown(fd int, uid, gid int) error
	Lchown(path string, uid, gid int) error

	// Utimes sets access and modification times in seconds since the epoch.
	Utimes(path string, atime, mtime float64) error
	Futimes(fd int, atime, mtime float64) error
	Lutimes(path string, atime, mtime float64) error

	Link(existing, newPath string) error
	Symlink(target, path string) error
	Readlink(path string) (string, error)
	Realpath(path string) (string, error)

	// Mkdtemp creates a unique directory whose name starts with prefix.
	Mkdtemp(prefix string) (string, error)

	// Rm removes a file, or a directory tree when recursive is set.
	Rm(path string, recursive bool) error

	Stat(path string) (StatRecord, error)
	Lstat(path string) (StatRecord, error)
	Fstat(fd int) (StatRecord, error)

	// Mkdir creates path, including missing parents when recursive is set.
	Mkdir(path string, mode uint32, recursive bool) error
	Rmdir(path string) error

	// Readdir returns the entry names of path sorted by name.
	Readdir(path string) ([]string, error)

	Unlink(path string) error
	Rename(oldPath, newPath string) error

	// CopyFile copies src to dst. Flags follow COPYFILE_* semantics; bit 1
	// (exclusive) fails with EEXIST when dst exists.
	CopyFile(src, dst string, flags int) error

	ReadFile(path string) ([]byte, error)
	// WriteFile replaces the contents of path, creating it with mode 0666
	// (before umask) when missing.
	WriteFile(path string, data []byte) error

	Opendir(path string) (DirIterator, error)

	// Watch subscribes to changes of path. onChange may be called from any
	// goroutine and must not block.
	Watch(path string, onChange WatchFunc) (WatchHandle, error)

	// TempDir returns the directory used for temporary files.
	TempDir() string
}

// CopyFileExcl makes [Provider.CopyFile] fail when the destination exists.
const CopyFileExcl = 1

// fdName renders a descriptor as the Path of a [*fs.PathError].
func fdName(fd int) string {
	return strconv.Itoa(fd)
}
