package fs

import (
	"strconv"
	"strings"
	"sync"
)

// TraceEvent is one provider call observed by [Chaos].
type TraceEvent struct {
	Seq uint64
	Op  string

	// Target is the path, or the descriptor number for descriptor calls.
	Target string

	// Fault is what Chaos did to the call, or "" when it passed through:
	// "fail", "short_read", "short_write" or "partial_read". A short read
	// carries a fault and a nil Err.
	Fault string

	Err    error
	Fields []TraceField
}

// TraceField is an extra detail of a [TraceEvent], such as a byte count.
type TraceField struct {
	Key   string
	Value string
}

// Injected reports whether Chaos altered the call.
func (e TraceEvent) Injected() bool { return e.Fault != "" }

// String renders e on one line:
//
//	#7 read 5 n=3 ok
//	#8 stat /tmp/x errno=EIO fault=fail err=stat /tmp/x: input/output error
func (e TraceEvent) String() string {
	var b strings.Builder

	b.WriteString("#")
	b.WriteString(strconv.FormatUint(e.Seq, 10))
	b.WriteString(" ")
	b.WriteString(e.Op)

	if e.Target != "" {
		b.WriteString(" ")
		b.WriteString(e.Target)
	}

	for _, f := range e.Fields {
		b.WriteString(" ")
		b.WriteString(f.Key)
		b.WriteString("=")
		b.WriteString(f.Value)
	}

	if e.Fault != "" {
		b.WriteString(" fault=")
		b.WriteString(e.Fault)
	}

	switch {
	case e.Err != nil:
		b.WriteString(" err=")
		b.WriteString(e.Err.Error())
	case e.Fault == "":
		b.WriteString(" ok")
	}

	return b.String()
}

// callTrace keeps the most recent provider calls. Event seq lands in slot
// (seq-1) % len(slots), so the ring needs no separate head. A nil
// *callTrace records nothing.
type callTrace struct {
	mu    sync.Mutex
	slots []TraceEvent
	seq   uint64
}

func newCallTrace(capacity int) *callTrace {
	if capacity <= 0 {
		return nil
	}

	return &callTrace{slots: make([]TraceEvent, capacity)}
}

func (t *callTrace) record(op, target string, err error, fault string, fields ...TraceField) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	t.slots[(t.seq-1)%uint64(len(t.slots))] = TraceEvent{
		Seq:    t.seq,
		Op:     op,
		Target: target,
		Fault:  fault,
		Err:    err,
		Fields: fields,
	}
}

// events returns the retained calls, oldest first.
func (t *callTrace) events() []TraceEvent {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	size := uint64(len(t.slots))
	kept := min(t.seq, size)
	out := make([]TraceEvent, 0, kept)

	for seq := t.seq - kept + 1; seq <= t.seq; seq++ {
		out = append(out, t.slots[(seq-1)%size])
	}

	return out
}

func (t *callTrace) String() string {
	evs := t.events()

	lines := make([]string, len(evs))
	for i, e := range evs {
		lines[i] = e.String()
	}

	return strings.Join(lines, "\n")
}
