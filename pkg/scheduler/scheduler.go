// Package scheduler provides single-threaded cooperative scheduling of
// delayed callbacks. Callbacks are keyed by name and at most one callback per
// name is outstanding: scheduling under a name cancels the previous one.
package scheduler

import (
	"sort"
	"time"
)

// Scheduler accepts delayed callbacks. Implementations must run callbacks on
// the caller's goroutine, never concurrently with each other.
type Scheduler interface {
	// Schedule runs fn after delay. Any outstanding callback under the same
	// name is cancelled first.
	Schedule(name string, delay time.Duration, fn func())

	// Cancel drops the outstanding callback under name and reports whether
	// there was one.
	Cancel(name string) bool
}

type entry struct {
	name string
	due  time.Duration
	seq  uint64
	fn   func()
}

// Virtual is a deterministic Scheduler driven by an explicit clock. Nothing
// fires until Step or Advance is called.
type Virtual struct {
	now     time.Duration
	seq     uint64
	entries []entry
}

var _ Scheduler = (*Virtual)(nil)

func NewVirtual() *Virtual {
	return &Virtual{}
}

func (v *Virtual) Schedule(name string, delay time.Duration, fn func()) {
	v.Cancel(name)
	if delay < 0 {
		delay = 0
	}
	v.seq++
	v.entries = append(v.entries, entry{name: name, due: v.now + delay, seq: v.seq, fn: fn})
	sort.SliceStable(v.entries, func(i, j int) bool {
		if v.entries[i].due != v.entries[j].due {
			return v.entries[i].due < v.entries[j].due
		}
		return v.entries[i].seq < v.entries[j].seq
	})
}

func (v *Virtual) Cancel(name string) bool {
	for i, e := range v.entries {
		if e.name == name {
			v.entries = append(v.entries[:i], v.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Step advances the clock to the next due callback and runs it. It returns
// false when nothing is pending.
func (v *Virtual) Step() bool {
	if len(v.entries) == 0 {
		return false
	}
	next := v.entries[0]
	v.entries = v.entries[1:]
	v.now = next.due
	next.fn()
	return true
}

// Advance moves the clock forward by d, running every callback that falls due
// on the way, including ones scheduled by callbacks during the advance.
func (v *Virtual) Advance(d time.Duration) {
	target := v.now + d
	for len(v.entries) > 0 && v.entries[0].due <= target {
		v.Step()
	}
	v.now = target
}

// RunUntilIdle steps until nothing is pending or limit steps have run.
// It returns the number of callbacks run.
func (v *Virtual) RunUntilIdle(limit int) int {
	n := 0
	for n < limit && v.Step() {
		n++
	}
	return n
}

// Now reports the virtual clock.
func (v *Virtual) Now() time.Duration {
	return v.now
}

// Pending reports whether a callback is outstanding under name.
func (v *Virtual) Pending(name string) bool {
	for _, e := range v.entries {
		if e.name == name {
			return true
		}
	}
	return false
}

// Len reports the number of outstanding callbacks.
func (v *Virtual) Len() int {
	return len(v.entries)
}
