package nodefs

import (
	"errors"
	iofs "io/fs"
	"os"
	"syscall"
	"testing"
)

func Test_SystemError_Renders_Node_Message_For_Each_Target_Kind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		op   string
		t    target
		err  error
		want string
	}{
		{
			name: "path",
			op:   "open",
			t:    pathTarget("/nope"),
			err:  &iofs.PathError{Op: "open", Path: "/nope", Err: syscall.ENOENT},
			want: "ENOENT: no such file or directory, open '/nope'",
		},
		{
			name: "fd",
			op:   "fstat",
			t:    fdTarget(99),
			err:  syscall.EBADF,
			want: "EBADF: bad file descriptor, fstat '99'",
		},
		{
			name: "two paths",
			op:   "rename",
			t:    linkTarget("/a", "/b"),
			err:  &os.LinkError{Op: "rename", Old: "/a", New: "/b", Err: syscall.EXDEV},
			want: "EXDEV: cross-device link not permitted, rename '/a' -> '/b'",
		},
		{
			name: "not exist without errno",
			op:   "stat",
			t:    pathTarget("/x"),
			err:  os.ErrNotExist,
			want: "ENOENT: no such file or directory, stat '/x'",
		},
		{
			name: "opaque failure",
			op:   "read",
			t:    fdTarget(3),
			err:  errors.New("boom"),
			want: "EIO: i/o error, read '3'",
		},
	}

	for _, tt := range tests {
		got := systemError(tt.op, tt.t, tt.err)
		if got.Error() != tt.want {
			t.Fatalf("%s: Error()=%q, want %q", tt.name, got.Error(), tt.want)
		}

		if !errors.Is(got, tt.err) {
			t.Fatalf("%s: errors.Is(err, cause)=false, want true", tt.name)
		}
	}
}

func Test_Error_Matches_Taxonomy_Sentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want error
	}{
		{systemError("open", pathTarget("/x"), syscall.ENOENT), ErrNotFound},
		{systemError("close", fdTarget(7), syscall.EBADF), ErrBadDescriptor},
		{systemError("open", pathTarget("/x"), syscall.EINVAL), ErrInvalidArgument},
		{systemError("read", fdTarget(7), syscall.EIO), ErrIO},
		{negativeTransfer("read", 7, -1), ErrIO},
		{invalidArgType("path", "string", 1), ErrInvalidArgument},
		{outOfRange("fd", ">= 0", -1), ErrInvalidArgument},
		{closedError(CodeDirClosed, "Directory handle was closed"), ErrClosed},
		{closedError(CodeStreamWriteAfterEnd, "write after end"), ErrClosed},
		{errFSClosed(), ErrClosed},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Fatalf("errors.Is(%q, %v)=false, want true", tt.err, tt.want)
		}
	}

	if errors.Is(systemError("open", pathTarget("/x"), syscall.EACCES), ErrNotFound) {
		t.Fatal("EACCES matched ErrNotFound")
	}
}

func Test_SystemError_Matches_Errno_Through_Unwrap(t *testing.T) {
	t.Parallel()

	err := error(systemError("open", pathTarget("/x"), &iofs.PathError{Op: "open", Path: "/x", Err: syscall.ENOENT}))

	if !errors.Is(err, syscall.ENOENT) {
		t.Fatal("errors.Is(err, ENOENT)=false, want true")
	}

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("errors.As(*Error)=false")
	}

	if e.Code != "ENOENT" || e.Errno != syscall.ENOENT || e.Syscall != "open" || e.Path != "/x" || e.Fd != -1 {
		t.Fatalf("fields=%+v", e)
	}
}
