//go:build linux

package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/unix"
)

func Test_Real_Read_Uses_Current_Offset_When_Position_Is_Sentinel(t *testing.T) {
	t.Parallel()

	p := NewReal(RealOptions{})
	path := filepath.Join(t.TempDir(), "data.txt")

	if err := os.WriteFile(path, []byte("abcdef"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	fd, err := p.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	defer func() { _ = p.Close(fd) }()

	buf := make([]byte, 3)

	if _, err := p.Read(fd, buf, CurrentPosition); err != nil {
		t.Fatalf("read 1: %v", err)
	}

	if got, want := string(buf), "abc"; got != want {
		t.Fatalf("read 1=%q, want %q", got, want)
	}

	if _, err := p.Read(fd, buf, CurrentPosition); err != nil {
		t.Fatalf("read 2: %v", err)
	}

	if got, want := string(buf), "def"; got != want {
		t.Fatalf("read 2=%q, want %q", got, want)
	}

	// Positional reads leave the offset alone.
	n, err := p.Read(fd, buf, 1)
	if err != nil {
		t.Fatalf("pread: %v", err)
	}

	if got, want := string(buf[:n]), "bcd"; got != want {
		t.Fatalf("pread=%q, want %q", got, want)
	}

	n, err = p.Read(fd, buf, CurrentPosition)
	if err != nil {
		t.Fatalf("read eof: %v", err)
	}

	if got, want := n, 0; got != want {
		t.Fatalf("n at eof=%d, want %d", got, want)
	}
}

func Test_Real_Readv_Scatters_Into_Buffers_In_Order(t *testing.T) {
	t.Parallel()

	p := NewReal(RealOptions{})
	path := filepath.Join(t.TempDir(), "data.txt")

	if err := os.WriteFile(path, []byte("abcdef"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	fd, err := p.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	defer func() { _ = p.Close(fd) }()

	bufs := [][]byte{make([]byte, 4), make([]byte, 4)}

	n, err := p.Readv(fd, bufs, 0)
	if err != nil {
		t.Fatalf("readv: %v", err)
	}

	if got, want := n, 6; got != want {
		t.Fatalf("n=%d, want %d", got, want)
	}

	if diff := cmp.Diff([]string{"abcd", "ef\x00\x00"}, []string{string(bufs[0]), string(bufs[1])}); diff != "" {
		t.Fatalf("bufs mismatch (-want +got):\n%s", diff)
	}
}

func Test_Real_Stat_Reports_Type_Bits_And_Size(t *testing.T) {
	t.Parallel()

	p := NewReal(RealOptions{})
	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	if err := os.WriteFile(path, []byte("hello"), 0o640); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := os.Symlink(path, filepath.Join(dir, "link")); err != nil {
		t.Fatalf("setup symlink: %v", err)
	}

	st, err := p.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got, want := st.Mode&unix.S_IFMT, uint32(unix.S_IFREG); got != want {
		t.Fatalf("type=%o, want %o", got, want)
	}

	if got, want := st.Mode&0o777, uint32(0o640); got != want {
		t.Fatalf("perm=%o, want %o", got, want)
	}

	if got, want := st.Size, int64(5); got != want {
		t.Fatalf("size=%d, want %d", got, want)
	}

	if st.MtimeMs <= 0 || st.BirthtimeMs <= 0 {
		t.Fatalf("timestamps not populated: %+v", st)
	}

	lst, err := p.Lstat(filepath.Join(dir, "link"))
	if err != nil {
		t.Fatalf("lstat: %v", err)
	}

	if got, want := lst.Mode&unix.S_IFMT, uint32(unix.S_IFLNK); got != want {
		t.Fatalf("lstat type=%o, want %o", got, want)
	}
}

func Test_Real_Stat_Returns_ENOENT_When_Path_Is_Missing(t *testing.T) {
	t.Parallel()

	p := NewReal(RealOptions{})

	_, err := p.Stat(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, syscall.ENOENT) {
		t.Fatalf("err=%v, want ENOENT", err)
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v should match os.ErrNotExist", err)
	}
}

func Test_Real_Rm_Refuses_Directory_When_Not_Recursive(t *testing.T) {
	t.Parallel()

	p := NewReal(RealOptions{})
	dir := filepath.Join(t.TempDir(), "d")

	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := p.Rm(dir, false); !errors.Is(err, syscall.EISDIR) {
		t.Fatalf("rm non-recursive err=%v, want EISDIR", err)
	}

	if err := p.Rm(dir, true); err != nil {
		t.Fatalf("rm recursive: %v", err)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("dir still exists: %v", err)
	}
}

func Test_Real_Opendir_Yields_Every_Entry_Once(t *testing.T) {
	t.Parallel()

	p := NewReal(RealOptions{})
	dir := t.TempDir()

	want := map[string]bool{}

	for i := range 70 {
		name := "f" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		want[name] = true

		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	it, err := p.Opendir(dir)
	if err != nil {
		t.Fatalf("opendir: %v", err)
	}

	got := map[string]bool{}

	for {
		name, ok, err := it.Next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}

		if !ok {
			break
		}

		if got[name] {
			t.Fatalf("duplicate entry %q", name)
		}

		got[name] = true
	}

	if err := it.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func Test_Real_CopyFile_Fails_With_EEXIST_When_Exclusive_And_Target_Exists(t *testing.T) {
	t.Parallel()

	p := NewReal(RealOptions{})
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	if err := os.WriteFile(src, []byte("src"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := p.CopyFile(src, dst, 0); err != nil {
		t.Fatalf("copy: %v", err)
	}

	if err := p.CopyFile(src, dst, CopyFileExcl); !errors.Is(err, syscall.EEXIST) {
		t.Fatalf("exclusive copy err=%v, want EEXIST", err)
	}
}

func Test_Real_WriteFile_Replaces_Contents_When_Atomic_Writes_Enabled(t *testing.T) {
	t.Parallel()

	p := NewReal(RealOptions{AtomicWrites: true})
	path := filepath.Join(t.TempDir(), "f")

	if err := p.WriteFile(path, []byte("first")); err != nil {
		t.Fatalf("write 1: %v", err)
	}

	if err := p.WriteFile(path, []byte("second")); err != nil {
		t.Fatalf("write 2: %v", err)
	}

	got, err := p.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if got, want := string(got), "second"; got != want {
		t.Fatalf("content=%q, want %q", got, want)
	}
}

func Test_Real_Utimes_Sets_Modification_Time_In_Seconds(t *testing.T) {
	t.Parallel()

	p := NewReal(RealOptions{})
	path := filepath.Join(t.TempDir(), "f")

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := p.Utimes(path, 1_000_000, 2_000_000.5); err != nil {
		t.Fatalf("utimes: %v", err)
	}

	st, err := p.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got, want := st.MtimeMs, 2_000_000_500.0; got != want {
		t.Fatalf("mtimeMs=%v, want %v", got, want)
	}

	if got, want := st.AtimeMs, 1_000_000_000.0; got != want {
		t.Fatalf("atimeMs=%v, want %v", got, want)
	}
}

func Test_Real_Watch_Reports_Created_Entry_As_Rename(t *testing.T) {
	t.Parallel()

	p := NewReal(RealOptions{})
	dir := t.TempDir()

	type event struct{ kind, name string }

	events := make(chan event, 16)

	h, err := p.Watch(dir, func(kind, name string) {
		select {
		case events <- event{kind, name}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	defer func() { _ = h.Close() }()

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ev := <-events:
		if got, want := ev, (event{"rename", "new.txt"}); got != want {
			t.Fatalf("event=%+v, want %+v", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no watch event within 5s")
	}

	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := h.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func Test_Real_Mkdtemp_Appends_Six_Alphanumeric_Characters(t *testing.T) {
	t.Parallel()

	p := NewReal(RealOptions{})
	prefix := filepath.Join(t.TempDir(), "scratch-")

	seen := map[string]bool{}

	for range 20 {
		dir, err := p.Mkdtemp(prefix)
		if err != nil {
			t.Fatalf("mkdtemp: %v", err)
		}

		suffix, ok := strings.CutPrefix(dir, prefix)
		if !ok || len(suffix) != 6 {
			t.Fatalf("dir=%q, want prefix %q plus 6 characters", dir, prefix)
		}

		for _, c := range suffix {
			if !strings.ContainsRune(tempSuffixChars, c) {
				t.Fatalf("suffix %q has %q outside [A-Za-z0-9]", suffix, c)
			}
		}

		if seen[dir] {
			t.Fatalf("mkdtemp returned %q twice", dir)
		}

		seen[dir] = true

		st, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}

		if got, want := st.Mode().Perm(), os.FileMode(0o700); !st.IsDir() || got != want {
			t.Fatalf("mode=%v dir=%v, want %v directory", got, st.IsDir(), want)
		}
	}

	_, err := p.Mkdtemp(filepath.Join(t.TempDir(), "missing", "x-"))
	if !errors.Is(err, syscall.ENOENT) {
		t.Fatalf("mkdtemp under missing parent=%v, want ENOENT", err)
	}
}
