//go:build linux

package nodefs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/calvinalkan/nodefs/pkg/fs"
)

const testTimeout = 5 * time.Second

// newTestFS returns an FS over the host filesystem that is shut down when
// the test ends.
func newTestFS(t *testing.T) *FS {
	t.Helper()

	return newTestFSWith(t, fs.NewReal(fs.RealOptions{}), Options{})
}

func newTestFSWith(t *testing.T, p fs.Provider, opts Options) *FS {
	t.Helper()

	f := New(p, opts)
	t.Cleanup(f.Shutdown)

	return f
}

// recv waits for one value from ch.
func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for notification")

		var zero T

		return zero
	}
}

// quiet fails if ch delivers anything within d.
func quiet[T any](t *testing.T, ch <-chan T, d time.Duration) {
	t.Helper()

	select {
	case v := <-ch:
		t.Fatalf("unexpected notification: %v", v)
	case <-time.After(d):
	}
}

func writeFixture(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func readFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	return data
}

// allBytes returns every byte value, repeated to n bytes.
func allBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}

	return b
}
