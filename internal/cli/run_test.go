package cli_test

import (
	"bytes"
	"testing"

	"github.com/calvinalkan/nodefs/internal/cli"
)

func Test_Invalid_Global_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--invalid-flag", "ls")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	// Should show error message
	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")

	// Should show valid global options
	cli.AssertContains(t, stderr, "Global flags:")
	cli.AssertContains(t, stderr, "--help")
	cli.AssertContains(t, stderr, "--cwd")
	cli.AssertContains(t, stderr, "--config")
	cli.AssertContains(t, stderr, "--encoding")
}

func Test_Bare_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	// Call Run directly without test helper (which adds --cwd)
	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"nodefs"}, nil, nil)

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stderr.String(), ""; got != want {
		t.Errorf("stderr=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stdout.String(), "nodefs - Node.js fs API")
	cli.AssertContains(t, stdout.String(), "--cwd")
	cli.AssertContains(t, stdout.String(), "cat [--start N] [--end N] <path>...")
	cli.AssertContains(t, stdout.String(), "watch [-n N] <path>...")
}

func Test_Help_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("--help")

	cli.AssertContains(t, stdout, "Commands:")
	cli.AssertContains(t, stdout, "print-config")
}

func Test_Unknown_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "unknown command: frobnicate")
	cli.AssertContains(t, stderr, "Commands:")
}

func Test_Command_Help_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("rm", "--help")

	cli.AssertContains(t, stdout, "Usage: nodefs rm [-rf] <path>...")
	cli.AssertContains(t, stdout, "--recursive")
	cli.AssertContains(t, stdout, "--force")
}

func Test_Unknown_Command_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	_, stderr, exitCode := c.Run("cat", "--bogus", "x")

	if exitCode != 1 {
		t.Errorf("exitCode=%d, want=1", exitCode)
	}

	cli.AssertContains(t, stderr, "unknown flag: --bogus")
	cli.AssertContains(t, c.MustRun("cat", "--help"), "--start")
}

func Test_Wrong_Arity_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("cp", "only-one")

	cli.AssertContains(t, stderr, "wrong number of arguments: want 2, got 1")
}

func Test_Invalid_Config_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".nodefs.json", `{"poll_interval_ms": 0}`)

	stderr := c.MustFail("ls")

	cli.AssertContains(t, stderr, "invalid config")
	cli.AssertContains(t, stderr, "poll_interval_ms must be > 0")
	cli.AssertContains(t, stderr, "Global flags:")
}

func Test_Invalid_Encoding_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("--encoding", "ebcdic", "ls")

	cli.AssertContains(t, stderr, `unknown encoding "ebcdic"`)
}

func Test_Arity_Errors_Show_Usage_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("stat")
	cli.AssertContains(t, stderr, "wrong number of arguments: want at least 1, got 0")
	cli.AssertContains(t, stderr, "usage: nodefs stat [-L] <path>...")

	stderr = c.MustFail("mktemp", "a", "b")
	cli.AssertContains(t, stderr, "want at most 1, got 2")

	stderr = c.MustFail("print-config", "extra")
	cli.AssertContains(t, stderr, "want 0, got 1")
}

func Test_Node_Function_Aliases_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	c.MustRun("writefile", "a.txt", "hello")
	c.MustRun("copyfile", "a.txt", "b.txt")
	c.MustRun("rename", "b.txt", "c.txt")

	if got := c.ReadFile("c.txt"); got != "hello" {
		t.Fatalf("c.txt=%q, want %q", got, "hello")
	}

	cli.AssertContains(t, c.MustRun("readdir"), "c.txt")
	cli.AssertContains(t, c.MustRun("cp", "--help"), "Aliases: copyfile")
}
