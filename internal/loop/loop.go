// Package loop implements a single-threaded cooperative task queue.
//
// A [Loop] runs posted functions one at a time, in posting order, on a single
// worker goroutine. Timers do not run their callbacks directly; they post
// them onto the queue, so every callback observes the same serial order.
package loop

import (
	"sync"
	"time"
)

// Loop is a FIFO task queue drained by one goroutine.
//
// The zero value is not usable; create loops with [New].
type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closed  bool
	running bool
	timers  map[*Timer]struct{}
	done    chan struct{}
}

// New starts a loop and its worker goroutine.
func New() *Loop {
	l := &Loop{
		timers: make(map[*Timer]struct{}),
		done:   make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)

	go l.run()

	return l
}

// Post appends fn to the queue. It reports false, dropping fn, once the loop
// is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false
	}

	l.queue = append(l.queue, fn)
	l.cond.Broadcast()

	return true
}

// Idle blocks until the queue is empty and no task is running, or the loop
// is closed. Timers that fire later can make the loop busy again.
func (l *Loop) Idle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for (len(l.queue) > 0 || l.running) && !l.closed {
		l.cond.Wait()
	}
}

// Done is closed after [Loop.Close] has drained the queue and the worker
// exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Close stops all timers, runs every task already queued, and waits for the
// worker to exit. Close is idempotent. It must not be called from a task
// running on the loop, which would wait for itself.
func (l *Loop) Close() {
	l.mu.Lock()

	if l.closed {
		l.mu.Unlock()
		<-l.done

		return
	}

	l.closed = true
	timers := l.timers
	l.timers = nil
	l.cond.Broadcast()
	l.mu.Unlock()

	for t := range timers {
		t.stop()
	}

	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)

	for {
		l.mu.Lock()

		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}

		if len(l.queue) == 0 && l.closed {
			l.mu.Unlock()

			return
		}

		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.running = true
		l.mu.Unlock()

		fn()

		l.mu.Lock()
		l.running = false
		l.cond.Broadcast()
		l.mu.Unlock()
	}
}

// Timer is a one-shot or repeating timer whose callback runs on a [Loop].
type Timer struct {
	l        *Loop
	interval time.Duration
	repeat   bool
	fn       func()

	mu      sync.Mutex
	t       *time.Timer
	stopped bool
}

// AfterFunc posts fn to the loop once after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	return l.startTimer(d, false, fn)
}

// Every posts fn to the loop every d until the timer is stopped. Ticks are
// not queued while a previous tick is still pending, so slow callbacks do
// not pile up.
func (l *Loop) Every(d time.Duration, fn func()) *Timer {
	return l.startTimer(d, true, fn)
}

func (l *Loop) startTimer(d time.Duration, repeat bool, fn func()) *Timer {
	t := &Timer{l: l, interval: d, repeat: repeat, fn: fn}

	l.mu.Lock()

	if l.closed {
		l.mu.Unlock()

		t.stopped = true

		return t
	}

	l.timers[t] = struct{}{}
	l.mu.Unlock()

	t.mu.Lock()
	t.t = time.AfterFunc(d, t.fire)
	t.mu.Unlock()

	return t
}

// fire runs on the runtime timer goroutine and hands the tick to the loop.
func (t *Timer) fire() {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()

	if stopped {
		return
	}

	posted := t.l.Post(func() {
		t.mu.Lock()
		stopped := t.stopped
		t.mu.Unlock()

		if stopped {
			return
		}

		if !t.repeat {
			t.l.forget(t)
		}

		t.fn()

		if t.repeat {
			t.rearm()
		}
	})

	if !posted {
		t.stop()
	}
}

func (t *Timer) rearm() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	t.t.Reset(t.interval)
}

// Stop cancels the timer. A tick already posted to the loop is skipped.
// Stop is idempotent.
func (t *Timer) Stop() {
	t.stop()
	t.l.forget(t)
}

func (t *Timer) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	t.stopped = true

	if t.t != nil {
		t.t.Stop()
	}
}

// Stopped reports whether the timer has been stopped.
func (t *Timer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.stopped
}

func (l *Loop) forget(t *Timer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.timers != nil {
		delete(l.timers, t)
	}
}

// Timers returns the number of live timers.
func (l *Loop) Timers() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.timers)
}
