package loop

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func Test_Loop_Runs_Tasks_In_Post_Order(t *testing.T) {
	t.Parallel()

	l := New()
	defer l.Close()

	var got []int

	for i := range 100 {
		l.Post(func() { got = append(got, i) })
	}

	l.Idle()

	want := make([]int, 100)
	for i := range want {
		want[i] = i
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func Test_Loop_Appends_Tasks_Posted_From_Tasks_To_The_End(t *testing.T) {
	t.Parallel()

	l := New()
	defer l.Close()

	var got []string

	l.Post(func() {
		got = append(got, "a")
		l.Post(func() { got = append(got, "c") })
	})
	l.Post(func() { got = append(got, "b") })

	l.Idle()

	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func Test_Loop_Drains_Queue_And_Rejects_Posts_When_Closed(t *testing.T) {
	t.Parallel()

	l := New()

	var ran atomic.Int64

	for range 10 {
		l.Post(func() { ran.Add(1) })
	}

	l.Close()

	if got, want := ran.Load(), int64(10); got != want {
		t.Fatalf("ran=%d, want %d", got, want)
	}

	if got, want := l.Post(func() { ran.Add(1) }), false; got != want {
		t.Fatalf("Post after close=%v, want %v", got, want)
	}

	select {
	case <-l.Done():
	default:
		t.Fatal("Done not closed after Close")
	}

	l.Close()
}

func Test_Timer_AfterFunc_Runs_Once_On_Loop(t *testing.T) {
	t.Parallel()

	l := New()
	defer l.Close()

	fired := make(chan struct{}, 2)

	l.AfterFunc(time.Millisecond, func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timer did not fire")
	}

	time.Sleep(20 * time.Millisecond)

	if got, want := len(fired), 0; got != want {
		t.Fatalf("extra fires=%d, want %d", got, want)
	}

	if got, want := l.Timers(), 0; got != want {
		t.Fatalf("live timers=%d, want %d", got, want)
	}
}

func Test_Timer_Every_Repeats_Until_Stopped(t *testing.T) {
	t.Parallel()

	l := New()
	defer l.Close()

	var ticks atomic.Int64

	done := make(chan struct{})

	var self atomic.Pointer[Timer]

	tm := l.Every(time.Millisecond, func() {
		if ticks.Add(1) == 3 {
			for self.Load() == nil {
				time.Sleep(time.Millisecond)
			}

			self.Load().Stop()
			close(done)
		}
	})
	self.Store(tm)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ticker did not reach 3 ticks")
	}

	time.Sleep(20 * time.Millisecond)
	l.Idle()

	if got, want := ticks.Load(), int64(3); got != want {
		t.Fatalf("ticks=%d, want %d", got, want)
	}

	if !tm.Stopped() {
		t.Fatal("timer not stopped")
	}

	if got, want := l.Timers(), 0; got != want {
		t.Fatalf("live timers=%d, want %d", got, want)
	}
}

func Test_Loop_Close_Stops_Live_Timers(t *testing.T) {
	t.Parallel()

	l := New()

	tm := l.Every(time.Hour, func() {})
	l.Close()

	if !tm.Stopped() {
		t.Fatal("timer still live after Close")
	}

	late := l.AfterFunc(time.Millisecond, func() { t.Error("timer on closed loop fired") })
	if !late.Stopped() {
		t.Fatal("timer created after Close should start stopped")
	}
}
