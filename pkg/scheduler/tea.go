package scheduler

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FireMsg is delivered to the bubbletea model when a scheduled callback is
// due. Pass it to Tea.Handle.
type FireMsg struct {
	name string
	gen  uint64
}

type teaEntry struct {
	gen uint64
	fn  func()
}

// Tea schedules callbacks as tea.Tick commands so they run inside the
// program's Update loop. Cancelled or replaced callbacks still tick, but
// Handle drops them by generation.
type Tea struct {
	gen     uint64
	pending map[string]teaEntry
	cmds    []tea.Cmd
}

var _ Scheduler = (*Tea)(nil)

func NewTea() *Tea {
	return &Tea{pending: make(map[string]teaEntry)}
}

func (t *Tea) Schedule(name string, delay time.Duration, fn func()) {
	t.gen++
	gen := t.gen
	t.pending[name] = teaEntry{gen: gen, fn: fn}
	t.cmds = append(t.cmds, tea.Tick(delay, func(time.Time) tea.Msg {
		return FireMsg{name: name, gen: gen}
	}))
}

func (t *Tea) Cancel(name string) bool {
	if _, ok := t.pending[name]; !ok {
		return false
	}
	delete(t.pending, name)
	return true
}

// Handle runs the callback for msg if it is a live FireMsg. It reports
// whether msg belonged to the scheduler.
func (t *Tea) Handle(msg tea.Msg) bool {
	fire, ok := msg.(FireMsg)
	if !ok {
		return false
	}
	e, live := t.pending[fire.name]
	if !live || e.gen != fire.gen {
		return true
	}
	delete(t.pending, fire.name)
	e.fn()
	return true
}

// Flush returns the tick commands accumulated since the last Flush.
func (t *Tea) Flush() tea.Cmd {
	if len(t.cmds) == 0 {
		return nil
	}
	cmds := t.cmds
	t.cmds = nil
	return tea.Batch(cmds...)
}

// Pending reports whether a live callback is outstanding under name.
func (t *Tea) Pending(name string) bool {
	_, ok := t.pending[name]
	return ok
}
