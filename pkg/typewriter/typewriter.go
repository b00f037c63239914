// Package typewriter reveals a list of messages one character at a time.
package typewriter

import (
	"strings"
	"time"

	"github.com/jwebster45206/quell/pkg/scheduler"
)

// Separator is appended between consecutive messages.
const Separator = "\n\n"

// DefaultTickName is the scheduler name used when Config.TickName is empty.
const DefaultTickName = "typewriter"

// Surface is the display region the typewriter writes into.
type Surface interface {
	Append(s string)
	Clear()
	String() string
}

// Buffer is an in-memory Surface.
type Buffer struct {
	sb strings.Builder
}

func (b *Buffer) Append(s string) { b.sb.WriteString(s) }
func (b *Buffer) Clear()          { b.sb.Reset() }
func (b *Buffer) String() string  { return b.sb.String() }

type Config struct {
	CharDelay    time.Duration
	MessageDelay time.Duration
	// TickName keys the single outstanding tick in the scheduler.
	TickName string
	// OnFinish runs once per run when the last message is exhausted.
	OnFinish func()
}

// Typewriter is a restartable typing session. It is not safe for concurrent
// use; all calls and scheduled ticks must happen on one goroutine.
type Typewriter struct {
	messages [][]rune
	cfg      Config
	sched    scheduler.Scheduler
	surface  Surface

	msgIdx   int
	charIdx  int
	running  bool
	finished bool
}

func New(sched scheduler.Scheduler, surface Surface, messages []string, cfg Config) *Typewriter {
	if cfg.TickName == "" {
		cfg.TickName = DefaultTickName
	}
	runes := make([][]rune, len(messages))
	for i, m := range messages {
		runes[i] = []rune(m)
	}
	return &Typewriter{
		messages: runes,
		cfg:      cfg,
		sched:    sched,
		surface:  surface,
	}
}

// Start clears the surface and types from the first character. Any tick left
// over from a previous run is cancelled before the first character is shown.
func (t *Typewriter) Start() {
	t.sched.Cancel(t.cfg.TickName)
	t.surface.Clear()
	t.msgIdx = 0
	t.charIdx = 0
	t.finished = false
	t.running = true
	t.step()
}

// Skip reveals everything that is left and finishes the run.
func (t *Typewriter) Skip() {
	if !t.running {
		return
	}
	t.sched.Cancel(t.cfg.TickName)
	if t.msgIdx < len(t.messages) {
		t.surface.Append(string(t.messages[t.msgIdx][t.charIdx:]))
		for _, m := range t.messages[t.msgIdx+1:] {
			t.surface.Append(Separator)
			t.surface.Append(string(m))
		}
	}
	t.msgIdx = len(t.messages)
	t.charIdx = 0
	t.finish()
}

func (t *Typewriter) step() {
	if t.msgIdx >= len(t.messages) {
		t.finish()
		return
	}

	current := t.messages[t.msgIdx]
	if t.charIdx < len(current) {
		t.surface.Append(string(current[t.charIdx]))
		t.charIdx++
		t.sched.Schedule(t.cfg.TickName, t.cfg.CharDelay, t.step)
		return
	}

	t.msgIdx++
	t.charIdx = 0
	if t.msgIdx < len(t.messages) {
		t.surface.Append(Separator)
		t.sched.Schedule(t.cfg.TickName, t.cfg.MessageDelay, t.step)
		return
	}
	t.finish()
}

func (t *Typewriter) finish() {
	if t.finished {
		return
	}
	t.running = false
	t.finished = true
	if t.cfg.OnFinish != nil {
		t.cfg.OnFinish()
	}
}

// Text returns what is currently on the surface.
func (t *Typewriter) Text() string {
	return t.surface.String()
}

func (t *Typewriter) Running() bool {
	return t.running
}

func (t *Typewriter) Finished() bool {
	return t.finished
}

// Progress reports the current message and character position.
func (t *Typewriter) Progress() (message, char int) {
	return t.msgIdx, t.charIdx
}
