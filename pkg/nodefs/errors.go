package nodefs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// Sentinel errors for the failure taxonomy. Every error returned by this
// package is an [*Error] that matches one of these with [errors.Is] when
// its code belongs to the class.
var (
	// ErrNotFound matches ENOENT.
	ErrNotFound = errors.New("nodefs: no such file or directory")

	// ErrBadDescriptor matches EBADF.
	ErrBadDescriptor = errors.New("nodefs: bad file descriptor")

	// ErrInvalidArgument matches argument validation failures
	// (ERR_INVALID_ARG_TYPE, ERR_INVALID_ARG_VALUE, ERR_OUT_OF_RANGE) and
	// EINVAL from the provider.
	ErrInvalidArgument = errors.New("nodefs: invalid argument")

	// ErrIO matches EIO and transfers the provider reported as negative.
	ErrIO = errors.New("nodefs: i/o failure")

	// ErrClosed matches operations on a stream, directory handle, watcher
	// or [FS] after it was closed.
	ErrClosed = errors.New("nodefs: already closed")
)

// Error codes that are not errno names.
const (
	CodeInvalidArgType      = "ERR_INVALID_ARG_TYPE"
	CodeInvalidArgValue     = "ERR_INVALID_ARG_VALUE"
	CodeOutOfRange          = "ERR_OUT_OF_RANGE"
	CodeStreamDestroyed     = "ERR_STREAM_DESTROYED"
	CodeStreamWriteAfterEnd = "ERR_STREAM_WRITE_AFTER_END"
	CodeDirClosed           = "ERR_DIR_CLOSED"
	CodeFSClosed            = "ERR_FS_CLOSED"
)

// Error is a failure with a Node-style code.
//
// System errors render as "<CODE>: <description>, <syscall> '<path>'", with
// " -> '<dest>'" appended for two-path operations and the descriptor number
// in place of the path for descriptor operations.
type Error struct {
	// Code is an errno name such as "ENOENT", or an ERR_* code.
	Code string
	// Errno is the system error number, or 0 for non-system errors.
	Errno syscall.Errno
	// Syscall names the failed operation for system errors.
	Syscall string
	// Path and Dest are the paths involved, if any.
	Path string
	Dest string
	// Fd is the descriptor involved, or -1.
	Fd int
	// Message is the full rendered message.
	Message string
	// Err is the provider error this was translated from, if any.
	Err error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Is maps codes onto the sentinel taxonomy. Errno comparisons such as
// errors.Is(err, syscall.ENOENT) work through [Error.Unwrap].
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == "ENOENT"
	case ErrBadDescriptor:
		return e.Code == "EBADF"
	case ErrInvalidArgument:
		switch e.Code {
		case CodeInvalidArgType, CodeInvalidArgValue, CodeOutOfRange, "EINVAL":
			return true
		}
	case ErrIO:
		return e.Code == "EIO"
	case ErrClosed:
		switch e.Code {
		case CodeStreamDestroyed, CodeStreamWriteAfterEnd, CodeDirClosed, CodeFSClosed:
			return true
		}
	}

	return false
}

// errnoDescriptions are the libuv descriptions Node prints. Errnos not
// listed fall back to the lower-cased strerror text.
var errnoDescriptions = map[syscall.Errno]string{
	syscall.ENOENT:       "no such file or directory",
	syscall.EBADF:        "bad file descriptor",
	syscall.EEXIST:       "file already exists",
	syscall.EACCES:       "permission denied",
	syscall.EPERM:        "operation not permitted",
	syscall.ENOTDIR:      "not a directory",
	syscall.EISDIR:       "illegal operation on a directory",
	syscall.ENOTEMPTY:    "directory not empty",
	syscall.EINVAL:       "invalid argument",
	syscall.EIO:          "i/o error",
	syscall.EMFILE:       "too many open files",
	syscall.ENFILE:       "file table overflow",
	syscall.ENOSPC:       "no space left on device",
	syscall.EROFS:        "read-only file system",
	syscall.EXDEV:        "cross-device link not permitted",
	syscall.ELOOP:        "too many symbolic links encountered",
	syscall.EBUSY:        "resource busy or locked",
	syscall.ENAMETOOLONG: "name too long",
	syscall.EOPNOTSUPP:   "operation not supported on socket",
	syscall.EAGAIN:       "resource temporarily unavailable",
}

// target is the subject of a system error: a path (optionally with a
// destination) or a descriptor.
type target struct {
	path string
	dest string
	fd   int
}

func pathTarget(path string) target { return target{path: path, fd: -1} }

func linkTarget(src, dst string) target { return target{path: src, dest: dst, fd: -1} }

func fdTarget(fd int) target { return target{fd: fd} }

func (t target) isFd() bool { return t.fd >= 0 }

// systemError translates a provider failure into an [*Error].
func systemError(op string, t target, err error) *Error {
	var errno syscall.Errno

	switch {
	case errors.As(err, &errno):
	case errors.Is(err, os.ErrNotExist):
		errno = syscall.ENOENT
	case errors.Is(err, os.ErrClosed):
		errno = syscall.EBADF
	default:
		errno = syscall.EIO
	}

	code := unix.ErrnoName(errno)
	if code == "" {
		code = "E" + strconv.Itoa(int(errno))
	}

	desc, ok := errnoDescriptions[errno]
	if !ok {
		desc = errno.Error()
	}

	e := &Error{
		Code:    code,
		Errno:   errno,
		Syscall: op,
		Path:    t.path,
		Dest:    t.dest,
		Fd:      t.fd,
		Err:     err,
	}

	switch {
	case t.isFd():
		e.Message = fmt.Sprintf("%s: %s, %s '%d'", code, desc, op, t.fd)
	case t.dest != "":
		e.Message = fmt.Sprintf("%s: %s, %s '%s' -> '%s'", code, desc, op, t.path, t.dest)
	default:
		e.Message = fmt.Sprintf("%s: %s, %s '%s'", code, desc, op, t.path)
	}

	return e
}

// negativeTransfer reports a provider transfer that returned a negative
// count without an error.
func negativeTransfer(op string, fd, n int) *Error {
	return &Error{
		Code:    "EIO",
		Errno:   syscall.EIO,
		Syscall: op,
		Fd:      fd,
		Message: fmt.Sprintf("EIO: i/o error, %s '%d' (provider returned %d)", op, fd, n),
		Err:     syscall.EIO,
	}
}

func invalidArgType(name, expected string, got any) *Error {
	return &Error{
		Code:    CodeInvalidArgType,
		Fd:      -1,
		Message: fmt.Sprintf("%s: The %q argument must be of type %s. %s", CodeInvalidArgType, name, expected, received(got)),
	}
}

func invalidArgValue(name string, got any, reason string) *Error {
	return &Error{
		Code:    CodeInvalidArgValue,
		Fd:      -1,
		Message: fmt.Sprintf("%s: The argument '%s' %s. %s", CodeInvalidArgValue, name, reason, received(got)),
	}
}

func outOfRange(name, bounds string, got any) *Error {
	return &Error{
		Code:    CodeOutOfRange,
		Fd:      -1,
		Message: fmt.Sprintf("%s: The value of %q is out of range. It must be %s. Received %v", CodeOutOfRange, name, bounds, got),
	}
}

func closedError(code, message string) *Error {
	return &Error{Code: code, Fd: -1, Message: code + ": " + message}
}

func errFSClosed() *Error {
	return closedError(CodeFSClosed, "filesystem context is shut down")
}

func received(v any) string {
	switch x := v.(type) {
	case nil:
		return "Received null"
	case string:
		return fmt.Sprintf("Received type string (%q)", x)
	case []byte:
		return fmt.Sprintf("Received an instance of []byte (len %d)", len(x))
	default:
		return fmt.Sprintf("Received type %T (%v)", v, v)
	}
}
