//go:build linux

package fs

import (
	"bytes"
	"errors"
	"io"
	iofs "io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// RealOptions configures [Real].
type RealOptions struct {
	// AtomicWrites makes [Real.WriteFile] write to a temporary file in the
	// same directory and rename it over the target, so readers never observe
	// a partially written file.
	AtomicWrites bool
}

// Real implements [Provider] on the host filesystem.
//
// Most methods are thin passthroughs to [golang.org/x/sys/unix]. Errors are
// wrapped in [*fs.PathError] with the raw [syscall.Errno] so callers can map
// them to error codes.
type Real struct {
	opts RealOptions
}

// NewReal returns a new [Real] provider.
func NewReal(opts RealOptions) *Real {
	return &Real{opts: opts}
}

// --- Descriptors ---

// Open opens path with [unix.Open]. O_CLOEXEC is always added.
func (r *Real) Open(path string, flags int, mode uint32) (int, error) {
	for {
		fd, err := unix.Open(path, flags|unix.O_CLOEXEC, mode)
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return -1, &iofs.PathError{Op: "open", Path: path, Err: err}
		}

		return fd, nil
	}
}

// A passthrough wrapper for [unix.Close].
func (r *Real) Close(fd int) error {
	if err := unix.Close(fd); err != nil {
		return fdError("close", fd, err)
	}

	return nil
}

// Read uses [unix.Pread] for explicit positions and [unix.Read] for
// [CurrentPosition].
func (r *Real) Read(fd int, p []byte, position int64) (int, error) {
	for {
		var (
			n   int
			err error
		)

		if position == CurrentPosition {
			n, err = unix.Read(fd, p)
		} else {
			n, err = unix.Pread(fd, p, position)
		}

		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return 0, fdError("read", fd, err)
		}

		return n, nil
	}
}

// Write uses [unix.Pwrite] for explicit positions and [unix.Write] for
// [CurrentPosition]. Short writes are retried until p is consumed.
func (r *Real) Write(fd int, p []byte, position int64) (int, error) {
	written := 0

	for written < len(p) {
		var (
			n   int
			err error
		)

		if position == CurrentPosition {
			n, err = unix.Write(fd, p[written:])
		} else {
			n, err = unix.Pwrite(fd, p[written:], position+int64(written))
		}

		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return written, fdError("write", fd, err)
		}

		if n == 0 {
			return written, fdError("write", fd, io.ErrShortWrite)
		}

		written += n
	}

	return written, nil
}

// Readv uses [unix.Preadv] for explicit positions and [unix.Readv] for
// [CurrentPosition].
func (r *Real) Readv(fd int, bufs [][]byte, position int64) (int, error) {
	for {
		var (
			n   int
			err error
		)

		if position == CurrentPosition {
			n, err = unix.Readv(fd, bufs)
		} else {
			n, err = unix.Preadv(fd, bufs, position)
		}

		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return 0, fdError("readv", fd, err)
		}

		return n, nil
	}
}

// Writev uses [unix.Pwritev] for explicit positions and [unix.Writev] for
// [CurrentPosition].
func (r *Real) Writev(fd int, bufs [][]byte, position int64) (int, error) {
	for {
		var (
			n   int
			err error
		)

		if position == CurrentPosition {
			n, err = unix.Writev(fd, bufs)
		} else {
			n, err = unix.Pwritev(fd, bufs, position)
		}

		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return 0, fdError("writev", fd, err)
		}

		return n, nil
	}
}

// --- Permissions, ownership, timestamps ---

// A passthrough wrapper for [unix.Access].
func (r *Real) Access(path string, mode uint32) error {
	return wrapPath("access", path, unix.Access(path, mode))
}

// A passthrough wrapper for [unix.Truncate].
func (r *Real) Truncate(path string, size int64) error {
	return wrapPath("truncate", path, unix.Truncate(path, size))
}

// A passthrough wrapper for [unix.Ftruncate].
func (r *Real) Ftruncate(fd int, size int64) error {
	if err := unix.Ftruncate(fd, size); err != nil {
		return fdError("ftruncate", fd, err)
	}

	return nil
}

// A passthrough wrapper for [unix.Fsync].
func (r *Real) Fsync(fd int) error {
	if err := unix.Fsync(fd); err != nil {
		return fdError("fsync", fd, err)
	}

	return nil
}

// A passthrough wrapper for [unix.Chmod].
func (r *Real) Chmod(path string, mode uint32) error {
	return wrapPath("chmod", path, unix.Chmod(path, mode))
}

// A passthrough wrapper for [unix.Fchmod].
func (r *Real) Fchmod(fd int, mode uint32) error {
	if err := unix.Fchmod(fd, mode); err != nil {
		return fdError("fchmod", fd, err)
	}

	return nil
}

// Lchmod uses [unix.Fchmodat] with AT_SYMLINK_NOFOLLOW.
func (r *Real) Lchmod(path string, mode uint32) error {
	return wrapPath("lchmod", path, unix.Fchmodat(unix.AT_FDCWD, path, mode, unix.AT_SYMLINK_NOFOLLOW))
}

// A passthrough wrapper for [unix.Chown].
func (r *Real) Chown(path string, uid, gid int) error {
	return wrapPath("chown", path, unix.Chown(path, uid, gid))
}

// A passthrough wrapper for [unix.Fchown].
func (r *Real) Fchown(fd int, uid, gid int) error {
	if err := unix.Fchown(fd, uid, gid); err != nil {
		return fdError("fchown", fd, err)
	}

	return nil
}

// A passthrough wrapper for [unix.Lchown].
func (r *Real) Lchown(path string, uid, gid int) error {
	return wrapPath("lchown", path, unix.Lchown(path, uid, gid))
}

// Utimes uses [unix.UtimesNano].
func (r *Real) Utimes(path string, atime, mtime float64) error {
	return wrapPath("utime", path, unix.UtimesNano(path, timespecs(atime, mtime)))
}

// Futimes uses [unix.Futimes], which has microsecond precision.
func (r *Real) Futimes(fd int, atime, mtime float64) error {
	tv := []unix.Timeval{
		unix.NsecToTimeval(secondsToNanos(atime)),
		unix.NsecToTimeval(secondsToNanos(mtime)),
	}

	if err := unix.Futimes(fd, tv); err != nil {
		return fdError("futime", fd, err)
	}

	return nil
}

// Lutimes uses [unix.UtimesNanoAt] with AT_SYMLINK_NOFOLLOW.
func (r *Real) Lutimes(path string, atime, mtime float64) error {
	err := unix.UtimesNanoAt(unix.AT_FDCWD, path, timespecs(atime, mtime), unix.AT_SYMLINK_NOFOLLOW)

	return wrapPath("lutime", path, err)
}

// --- Links ---

// A passthrough wrapper for [unix.Link].
func (r *Real) Link(existing, newPath string) error {
	if err := unix.Link(existing, newPath); err != nil {
		return &os.LinkError{Op: "link", Old: existing, New: newPath, Err: err}
	}

	return nil
}

// A passthrough wrapper for [unix.Symlink].
func (r *Real) Symlink(target, path string) error {
	if err := unix.Symlink(target, path); err != nil {
		return &os.LinkError{Op: "symlink", Old: target, New: path, Err: err}
	}

	return nil
}

// A passthrough wrapper for [os.Readlink], which grows the buffer for long
// targets.
func (r *Real) Readlink(path string) (string, error) {
	return os.Readlink(path)
}

// Realpath resolves symlinks with [filepath.EvalSymlinks] and makes the
// result absolute.
func (r *Real) Realpath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", &iofs.PathError{Op: "realpath", Path: path, Err: err}
	}

	return abs, nil
}

const (
	tempSuffixLen   = 6
	tempSuffixChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	tempAttempts    = 100
)

// Mkdtemp creates a directory named prefix plus six random characters from
// [A-Za-z0-9], with mode 0700.
func (r *Real) Mkdtemp(prefix string) (string, error) {
	var err error

	for range tempAttempts {
		name := prefix + tempSuffix()

		err = unix.Mkdir(name, 0o700)
		if err == nil {
			return name, nil
		}

		if !errors.Is(err, unix.EEXIST) {
			break
		}
	}

	return "", wrapPath("mkdtemp", prefix+"XXXXXX", err)
}

func tempSuffix() string {
	b := make([]byte, tempSuffixLen)
	for i := range b {
		b[i] = tempSuffixChars[rand.IntN(len(tempSuffixChars))]
	}

	return string(b)
}

// Rm removes path. Without recursive, directories fail with EISDIR.
func (r *Real) Rm(path string, recursive bool) error {
	if recursive {
		if _, err := r.Lstat(path); err != nil {
			return err
		}

		return os.RemoveAll(path)
	}

	st, err := r.Lstat(path)
	if err != nil {
		return err
	}

	if st.Mode&unix.S_IFMT == unix.S_IFDIR {
		return &iofs.PathError{Op: "rm", Path: path, Err: unix.EISDIR}
	}

	return wrapPath("unlink", path, unix.Unlink(path))
}

// --- Directories ---

// Mkdir uses [unix.Mkdir], or [os.MkdirAll] when recursive is set.
func (r *Real) Mkdir(path string, mode uint32, recursive bool) error {
	if recursive {
		return os.MkdirAll(path, os.FileMode(mode)&os.ModePerm)
	}

	return wrapPath("mkdir", path, unix.Mkdir(path, mode))
}

// A passthrough wrapper for [unix.Rmdir].
func (r *Real) Rmdir(path string) error {
	return wrapPath("rmdir", path, unix.Rmdir(path))
}

// Readdir returns sorted entry names of path.
func (r *Real) Readdir(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer func() { _ = f.Close() }()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}

	sort.Strings(names)

	return names, nil
}

// Opendir opens a lazy cursor over the entries of path.
func (r *Real) Opendir(path string) (DirIterator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	if !st.IsDir() {
		_ = f.Close()

		return nil, &iofs.PathError{Op: "opendir", Path: path, Err: unix.ENOTDIR}
	}

	return &realDir{f: f}, nil
}

// --- Mutations ---

// A passthrough wrapper for [unix.Unlink].
func (r *Real) Unlink(path string) error {
	return wrapPath("unlink", path, unix.Unlink(path))
}

// A passthrough wrapper for [unix.Rename].
func (r *Real) Rename(oldPath, newPath string) error {
	if err := unix.Rename(oldPath, newPath); err != nil {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: err}
	}

	return nil
}

// CopyFile copies contents and permission bits of src to dst.
// [io.Copy] between [os.File] values uses copy_file_range where available.
func (r *Real) CopyFile(src, dst string, flags int) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = in.Close() }()

	st, err := in.Stat()
	if err != nil {
		return err
	}

	openFlags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if flags&CopyFileExcl != 0 {
		openFlags |= os.O_EXCL
	}

	out, err := os.OpenFile(dst, openFlags, st.Mode().Perm())
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()

	return errors.Join(copyErr, closeErr)
}

// A passthrough wrapper for [os.ReadFile].
func (r *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile is a passthrough wrapper for [os.WriteFile], or for
// [atomic.WriteFile] when [RealOptions.AtomicWrites] is set.
func (r *Real) WriteFile(path string, data []byte) error {
	if r.opts.AtomicWrites {
		if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
			return &iofs.PathError{Op: "write", Path: path, Err: err}
		}

		return nil
	}

	return os.WriteFile(path, data, 0o666)
}

// A passthrough wrapper for [os.TempDir].
func (r *Real) TempDir() string {
	return os.TempDir()
}

// --- Helpers ---

func wrapPath(op, path string, err error) error {
	if err == nil {
		return nil
	}

	return &iofs.PathError{Op: op, Path: path, Err: err}
}

// fdError reports descriptor failures with the descriptor as the path, the
// same shape [os.NewFile] uses for unnamed files.
func fdError(op string, fd int, err error) error {
	return &iofs.PathError{Op: op, Path: fdName(fd), Err: err}
}

func timespecs(atime, mtime float64) []unix.Timespec {
	return []unix.Timespec{
		unix.NsecToTimespec(secondsToNanos(atime)),
		unix.NsecToTimespec(secondsToNanos(mtime)),
	}
}

func secondsToNanos(s float64) int64 {
	return int64(s * 1e9)
}

// Compile-time interface check.
var _ Provider = (*Real)(nil)
