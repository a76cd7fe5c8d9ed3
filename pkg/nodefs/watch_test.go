//go:build linux

package nodefs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/calvinalkan/nodefs/pkg/fs"
)

const pollInterval = 5 * time.Millisecond

// statProvider serves Stat from a record the test controls.
type statProvider struct {
	fs.Provider

	mu      sync.Mutex
	mtime   float64
	missing bool
}

func (p *statProvider) Stat(path string) (fs.StatRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.missing {
		return fs.StatRecord{}, &iofs.PathError{Op: "stat", Path: path, Err: syscall.ENOENT}
	}

	return fs.StatRecord{Mode: S_IFREG | 0o644, MtimeMs: p.mtime}, nil
}

func (p *statProvider) set(mtime float64, missing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.mtime, p.missing = mtime, missing
}

type pollEvent struct {
	curr, prev float64
}

func Test_WatchFile_Notifies_Once_Per_Mtime_Change(t *testing.T) {
	t.Parallel()

	p := &statProvider{mtime: 1000}
	f := newTestFSWith(t, p, Options{})
	events := make(chan pollEvent, 16)

	_, err := f.WatchFile("/watched", WatchFileOptions{Interval: pollInterval}, func(curr, prev *Stats) {
		events <- pollEvent{curr.MtimeMs, prev.MtimeMs}
	})
	if err != nil {
		t.Fatalf("WatchFile: %v", err)
	}

	f.Idle()
	quiet(t, events, 10*pollInterval)

	p.set(2000, false)

	if got, want := recv(t, events), (pollEvent{2000, 1000}); got != want {
		t.Fatalf("event=%+v, want %+v", got, want)
	}

	quiet(t, events, 10*pollInterval)

	p.set(0, true)

	if got, want := recv(t, events), (pollEvent{0, 2000}); got != want {
		t.Fatalf("vanish event=%+v, want %+v", got, want)
	}

	quiet(t, events, 10*pollInterval)

	if err := f.UnwatchFile("/watched"); err != nil {
		t.Fatalf("UnwatchFile: %v", err)
	}

	f.Idle()

	if n := f.loop.Timers(); n != 0 {
		t.Fatalf("timers=%d after unwatch, want 0", n)
	}

	if got := testutil.ToFloat64(f.metrics.pollWatchers); got != 0 {
		t.Fatalf("poll_watchers=%v, want 0", got)
	}
}

func Test_WatchFile_Shares_One_Timer_Per_Path(t *testing.T) {
	t.Parallel()

	p := &statProvider{mtime: 1}
	f := newTestFSWith(t, p, Options{PollInterval: pollInterval})
	a := make(chan pollEvent, 4)
	b := make(chan pollEvent, 4)

	la, err := f.WatchFile("/x", func(curr, prev *Stats) { a <- pollEvent{curr.MtimeMs, prev.MtimeMs} })
	if err != nil {
		t.Fatalf("WatchFile(a): %v", err)
	}

	if _, err := f.WatchFile("/x", func(curr, prev *Stats) { b <- pollEvent{curr.MtimeMs, prev.MtimeMs} }); err != nil {
		t.Fatalf("WatchFile(b): %v", err)
	}

	f.Idle()

	if n := f.loop.Timers(); n != 1 {
		t.Fatalf("timers=%d, want 1", n)
	}

	if la.Path() != "/x" {
		t.Fatalf("Path()=%q", la.Path())
	}

	p.set(2, false)
	recv(t, a)
	recv(t, b)

	if err := f.UnwatchFile("/x", la); err != nil {
		t.Fatalf("UnwatchFile(a): %v", err)
	}

	f.Idle()

	if n := f.loop.Timers(); n != 1 {
		t.Fatalf("timers=%d after removing one listener, want 1", n)
	}

	p.set(3, false)
	recv(t, b)
	quiet(t, a, 10*pollInterval)

	if err := f.UnwatchFile("/x"); err != nil {
		t.Fatalf("UnwatchFile: %v", err)
	}

	f.Idle()

	if n := f.loop.Timers(); n != 0 {
		t.Fatalf("timers=%d, want 0", n)
	}
}

func Test_WatchFile_Requires_Listener(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)

	if _, err := f.WatchFile("/x", WatchFileOptions{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("WatchFile without listener=%v, want ErrInvalidArgument", err)
	}

	if err := f.UnwatchFile("/never-watched"); err != nil {
		t.Fatalf("UnwatchFile(unknown)=%v, want nil", err)
	}
}

func Test_Shutdown_Stops_Poll_Timers(t *testing.T) {
	t.Parallel()

	p := &statProvider{mtime: 1}
	f := New(p, Options{PollInterval: pollInterval})

	if _, err := f.WatchFile("/x", func(*Stats, *Stats) {}); err != nil {
		t.Fatalf("WatchFile: %v", err)
	}

	f.Shutdown()

	if n := f.loop.Timers(); n != 0 {
		t.Fatalf("timers=%d after Shutdown, want 0", n)
	}

	if _, err := f.WatchFile("/x", func(*Stats, *Stats) {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("WatchFile after Shutdown=%v, want ERR_FS_CLOSED", err)
	}
}

type watchEventRecord struct {
	event, name string
}

func Test_Watch_Reports_Created_Entry_And_Closes_Once(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	dir := t.TempDir()
	events := make(chan watchEventRecord, 16)

	w, err := f.Watch(dir, func(event, filename string) { events <- watchEventRecord{event, filename} })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	closed := make(chan struct{}, 2)
	w.OnClose(func() { closed <- struct{}{} })
	w.OnError(func(err error) { t.Errorf("watch error: %v", err) })

	// The provider watch is established on the loop.
	f.Idle()

	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	for {
		ev := recv(t, events)
		if ev.name == "new.txt" && ev.event == "rename" {
			break
		}
	}

	w.Close()
	w.Close()
	recv(t, closed)

	f.Idle()

	if len(closed) != 0 {
		t.Fatal("close notified more than once")
	}

	if w.Ref() != w || w.Unref() != w || w.Path() != dir {
		t.Fatal("Ref/Unref/Path mismatch")
	}
}

func Test_Watch_Delivers_Failure_To_Error_Listener(t *testing.T) {
	t.Parallel()

	f := newTestFS(t)
	path := filepath.Join(t.TempDir(), "missing")

	w, err := f.Watch(path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	f.Idle()

	errs := make(chan error, 1)
	closed := make(chan struct{}, 1)

	w.OnError(func(err error) { errs <- err })
	w.OnClose(func() { closed <- struct{}{} })

	if err := recv(t, errs); !errors.Is(err, ErrNotFound) {
		t.Fatalf("watch error=%v, want ErrNotFound", err)
	}

	recv(t, closed)
}

func Test_Shutdown_Closes_Open_Watchers(t *testing.T) {
	t.Parallel()

	f := New(fs.NewReal(fs.RealOptions{}), Options{})

	w, err := f.Watch(t.TempDir())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	closed := make(chan struct{}, 2)
	w.OnClose(func() { closed <- struct{}{} })

	f.Idle()
	f.Shutdown()

	recv(t, closed)

	if len(closed) != 0 {
		t.Fatal("close notified more than once")
	}
}
