package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
)

// CLI runs nodefs in-process against a temp directory.
//
// Every run gets "--cwd Dir" prepended, the Env map as environment and a
// signal channel that [CLI.Interrupt] writes to.
type CLI struct {
	t   *testing.T
	sig chan os.Signal

	Dir string
	Env map[string]string
}

// NewCLI returns a CLI rooted in a fresh t.TempDir().
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{
		t:   t,
		sig: make(chan os.Signal, 1),
		Dir: t.TempDir(),
		Env: map[string]string{},
	}
}

// Run executes args with no stdin and returns stdout, stderr and the exit
// code.
func (r *CLI) Run(args ...string) (string, string, int) {
	return r.run(nil, args)
}

// RunWithInput is [CLI.Run] with stdin.
func (r *CLI) RunWithInput(stdin string, args ...string) (string, string, int) {
	return r.run(strings.NewReader(stdin), args)
}

func (r *CLI) run(stdin io.Reader, args []string) (string, string, int) {
	var stdout, stderr bytes.Buffer

	argv := make([]string, 0, len(args)+3)
	argv = append(argv, "nodefs", "--cwd", r.Dir)
	argv = append(argv, args...)

	code := Run(stdin, &stdout, &stderr, argv, r.Env, r.sig)

	return stdout.String(), stderr.String(), code
}

// Interrupt delivers SIGINT to the running command. It does not block if
// an earlier signal is still pending.
func (r *CLI) Interrupt() {
	select {
	case r.sig <- syscall.SIGINT:
	default:
	}
}

// MustRun fails the test on a non-zero exit and returns trimmed stdout.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("nodefs %s: exit %d\nstderr: %s", strings.Join(args, " "), code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail fails the test unless the command exits non-zero with empty
// stdout. It returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)

	switch {
	case code == 0:
		r.t.Fatalf("nodefs %s: succeeded, want failure\nstdout: %s", strings.Join(args, " "), stdout)
	case stdout != "":
		r.t.Fatalf("nodefs %s: failed with output on stdout\nstdout: %s", strings.Join(args, " "), stdout)
	}

	return strings.TrimSpace(stderr)
}

// Path joins name to Dir.
func (r *CLI) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// ReadFile returns the content of name under Dir.
func (r *CLI) ReadFile(name string) string {
	r.t.Helper()

	data, err := os.ReadFile(r.Path(name))
	if err != nil {
		r.t.Fatalf("read %s: %v", name, err)
	}

	return string(data)
}

// WriteFile creates name under Dir, with parents, holding content.
func (r *CLI) WriteFile(name, content string) {
	r.t.Helper()

	path := r.Path(name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatalf("mkdir for %s: %v", name, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		r.t.Fatalf("write %s: %v", name, err)
	}
}

// AssertContains reports an error unless content contains substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("missing %q in:\n%s", substr, content)
	}
}

// AssertNotContains reports an error if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("unexpected %q in:\n%s", substr, content)
	}
}
