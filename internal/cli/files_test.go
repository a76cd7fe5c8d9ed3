package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinalkan/nodefs/internal/cli"
)

func Test_Write_Then_Cat_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("write", "note.txt", "hello", "world")

	if got, want := c.ReadFile("note.txt"), "hello world"; got != want {
		t.Fatalf("file=%q, want=%q", got, want)
	}

	if got, want := c.MustRun("cat", "note.txt"), "hello world"; got != want {
		t.Fatalf("cat=%q, want=%q", got, want)
	}
}

func Test_Write_From_Stdin_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, code := c.RunWithInput("line one\nline two\n", "write", "in.txt")
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}

	if got, want := c.ReadFile("in.txt"), "line one\nline two\n"; got != want {
		t.Fatalf("file=%q, want=%q", got, want)
	}
}

func Test_Write_Without_Input_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("write", "empty.txt")

	cli.AssertContains(t, stderr, "no input")
}

func Test_Write_Exclusive_Flag_When_File_Exists(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("taken.txt", "old")

	stderr := c.MustFail("write", "--flag", "wx", "taken.txt", "new")

	cli.AssertContains(t, stderr, "EEXIST: file already exists, open '"+c.Path("taken.txt")+"'")

	if got := c.ReadFile("taken.txt"); got != "old" {
		t.Fatalf("file=%q, want unchanged", got)
	}
}

func Test_Write_Stream_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	payload := strings.Repeat("0123456789", 1000)

	_, stderr, code := c.RunWithInput(payload, "write", "--stream", "big.txt")
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}

	if got := c.ReadFile("big.txt"); got != payload {
		t.Fatalf("file has %d bytes, want %d", len(got), len(payload))
	}

	c.WriteFile("patch.txt", "0123456789")

	_, stderr, code = c.RunWithInput("ab", "write", "--stream", "--flag", "r+", "--start", "4", "patch.txt")
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}

	if got, want := c.ReadFile("patch.txt"), "0123ab6789"; got != want {
		t.Fatalf("file=%q, want=%q", got, want)
	}
}

func Test_Append_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("append", "log.txt", "a")
	c.MustRun("append", "log.txt", "b")

	_, stderr, code := c.RunWithInput("c", "append", "log.txt")
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}

	if got, want := c.ReadFile("log.txt"), "abc"; got != want {
		t.Fatalf("file=%q, want=%q", got, want)
	}
}

func Test_Cat_Range_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("digits.txt", "0123456789")

	if got, want := c.MustRun("cat", "--start", "2", "--end", "4", "digits.txt"), "234"; got != want {
		t.Fatalf("cat range=%q, want=%q", got, want)
	}

	if got, want := c.MustRun("cat", "--end", "0", "--chunk", "1", "digits.txt"), "0"; got != want {
		t.Fatalf("cat first byte=%q, want=%q", got, want)
	}

	if got, want := c.MustRun("cat", "--start", "7", "digits.txt", "digits.txt"), "789789"; got != want {
		t.Fatalf("cat twice=%q, want=%q", got, want)
	}
}

func Test_Cat_Missing_File_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("cat", "missing.txt")

	cli.AssertContains(t, stderr, "error: ENOENT: no such file or directory, open '"+c.Path("missing.txt")+"'")
}

func Test_Encoding_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("--encoding", "latin1", "write", "latin.txt", "café")

	if got, want := []byte(c.ReadFile("latin.txt")), []byte{'c', 'a', 'f', 0xe9}; string(got) != string(want) {
		t.Fatalf("bytes=%x, want=%x", got, want)
	}

	if got, want := c.MustRun("-e", "latin1", "cat", "--chunk", "1", "latin.txt"), "café"; got != want {
		t.Fatalf("cat=%q, want=%q", got, want)
	}

	c.MustRun("-e", "hex", "write", "hex.bin", "68690a")

	if got, want := c.ReadFile("hex.bin"), "hi\n"; got != want {
		t.Fatalf("hex file=%q, want=%q", got, want)
	}
}

func Test_Stat_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("five.txt", "12345")

	if err := os.Symlink("five.txt", c.Path("link")); err != nil {
		t.Fatal(err)
	}

	stdout := c.MustRun("stat", "five.txt")

	cli.AssertContains(t, stdout, "File: five.txt")
	cli.AssertContains(t, stdout, "Type: regular file")
	cli.AssertContains(t, stdout, "Size: 5 B (5 bytes)")
	cli.AssertContains(t, stdout, "Mode: 0600 (-rw-------)")

	stdout = c.MustRun("stat", "link")
	cli.AssertContains(t, stdout, "Type: regular file")

	stdout = c.MustRun("stat", "-L", "link")
	cli.AssertContains(t, stdout, "File: link -> five.txt")
	cli.AssertContains(t, stdout, "Type: symbolic link")
}

func Test_Stat_Missing_Path_Warns_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("here.txt", "x")

	stdout, stderr, code := c.Run("stat", "here.txt", "gone.txt")
	if code != 1 {
		t.Fatalf("exit=%d, want 1 for warnings", code)
	}

	cli.AssertContains(t, stdout, "File: here.txt")
	cli.AssertContains(t, stderr, "warning: gone.txt: ENOENT: no such file or directory, stat")
}

func Test_Ls_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("b.txt", "bb")
	c.WriteFile("a.txt", "a")
	c.WriteFile("sub/inner.txt", "x")

	if err := os.Symlink("a.txt", c.Path("zlink")); err != nil {
		t.Fatal(err)
	}

	if got, want := c.MustRun("ls"), "a.txt\nb.txt\nsub/\nzlink@"; got != want {
		t.Fatalf("ls=%q, want=%q", got, want)
	}

	if got, want := c.MustRun("ls", "sub"), "inner.txt"; got != want {
		t.Fatalf("ls sub=%q, want=%q", got, want)
	}

	long := c.MustRun("ls", "-l")
	cli.AssertContains(t, long, "-rw------- ")
	cli.AssertContains(t, long, " b.txt\n")
	cli.AssertContains(t, long, " sub/")

	stdout, stderr, code := c.Run("ls", ".", "nope")
	if code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}

	cli.AssertContains(t, stdout, ".:\na.txt")
	cli.AssertContains(t, stdout, "nope:")
	cli.AssertContains(t, stderr, "warning: nope: ENOENT")
}

func Test_Mkdir_And_Rm_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("mkdir", "x/y/z")
	cli.AssertContains(t, stderr, "ENOENT")

	c.MustRun("mkdir", "-p", "x/y/z")
	c.MustRun("mkdir", "-p", "x/y/z")

	if fi, err := os.Stat(c.Path("x/y/z")); err != nil || !fi.IsDir() {
		t.Fatalf("x/y/z not created: %v", err)
	}

	stderr = c.MustFail("rm", "x")
	cli.AssertContains(t, stderr, "warning: x:")

	c.MustRun("rm", "-r", "x")

	if _, err := os.Stat(c.Path("x")); !os.IsNotExist(err) {
		t.Fatalf("x still exists: %v", err)
	}

	c.MustRun("rm", "-f", "x")
	c.MustFail("rm", "x")
}

func Test_Cp_Mv_Ln_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("src.txt", "data")

	c.MustRun("cp", "src.txt", "copy.txt")

	if got := c.ReadFile("copy.txt"); got != "data" {
		t.Fatalf("copy=%q", got)
	}

	c.WriteFile("copy.txt", "mine")

	stderr := c.MustFail("cp", "-n", "src.txt", "copy.txt")
	cli.AssertContains(t, stderr, "EEXIST")

	if got := c.ReadFile("copy.txt"); got != "mine" {
		t.Fatalf("cp -n overwrote destination: %q", got)
	}

	c.MustRun("mv", "copy.txt", "moved.txt")

	if _, err := os.Stat(c.Path("copy.txt")); !os.IsNotExist(err) {
		t.Fatalf("copy.txt still exists: %v", err)
	}

	c.MustRun("ln", "-s", "moved.txt", "soft")
	c.MustRun("ln", "moved.txt", "hard")

	if target, err := os.Readlink(c.Path("soft")); err != nil || target != "moved.txt" {
		t.Fatalf("readlink=%q, %v", target, err)
	}

	if got := c.ReadFile("hard"); got != "mine" {
		t.Fatalf("hard link=%q", got)
	}

	resolved, err := filepath.EvalSymlinks(c.Path("moved.txt"))
	if err != nil {
		t.Fatal(err)
	}

	if got := c.MustRun("realpath", "soft"); got != resolved {
		t.Fatalf("realpath=%q, want=%q", got, resolved)
	}
}

func Test_Truncate_Touch_Mktemp_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("long.txt", "0123456789")

	c.MustRun("truncate", "-s", "3", "long.txt")

	if got := c.ReadFile("long.txt"); got != "012" {
		t.Fatalf("truncated=%q", got)
	}

	c.MustRun("touch", "-d", "1000000000", "new.txt", "long.txt")

	for _, name := range []string{"new.txt", "long.txt"} {
		fi, err := os.Stat(c.Path(name))
		if err != nil {
			t.Fatal(err)
		}

		if got := fi.ModTime().Unix(); got != 1_000_000_000 {
			t.Fatalf("%s mtime=%d, want 1000000000", name, got)
		}
	}

	dir := c.MustRun("mktemp", "scratch-")

	if !strings.HasPrefix(dir, c.Path("scratch-")) || len(dir) != len(c.Path("scratch-"))+6 {
		t.Fatalf("mktemp=%q", dir)
	}

	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("mktemp dir missing: %v", err)
	}
}
