package typewriter

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/jwebster45206/quell/pkg/scheduler"
	"github.com/stretchr/testify/assert"
)

// recorder snapshots the surface after every Append.
type recorder struct {
	Buffer
	snapshots []string
}

func (r *recorder) Append(s string) {
	r.Buffer.Append(s)
	r.snapshots = append(r.snapshots, r.String())
}

func newTestTypewriter(messages []string) (*Typewriter, *scheduler.Virtual, *recorder, *int) {
	sched := scheduler.NewVirtual()
	rec := &recorder{}
	finished := 0
	tw := New(sched, rec, messages, Config{
		CharDelay:    time.Millisecond,
		MessageDelay: time.Millisecond,
		OnFinish:     func() { finished++ },
	})
	return tw, sched, rec, &finished
}

func TestTypewriter_TwoMessageScenario(t *testing.T) {
	tw, sched, rec, finished := newTestTypewriter([]string{"AB", "C"})

	tw.Start()
	assert.Equal(t, []string{"A"}, rec.snapshots, "first character is typed synchronously")

	sched.RunUntilIdle(100)

	want := []string{"A", "AB", "AB\n\n", "AB\n\nC"}
	if diff := cmp.Diff(want, rec.snapshots); diff != "" {
		t.Errorf("surface sequence mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, tw.Finished())
	assert.False(t, tw.Running())
	assert.Equal(t, 1, *finished)
	assert.Equal(t, 0, sched.Len())
}

func TestTypewriter_UpdateCount(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
	}{
		{"single", []string{"hello"}},
		{"three", []string{"one", "two", "three"}},
		{"multibyte", []string{"Leave me alone…", "…cursed"}},
		{"empty message inside", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw, sched, rec, finished := newTestTypewriter(tt.messages)
			tw.Start()
			sched.RunUntilIdle(1000)

			chars := 0
			for _, m := range tt.messages {
				chars += utf8.RuneCountInString(m)
			}
			gaps := len(tt.messages) - 1

			assert.Len(t, rec.snapshots, chars+gaps)
			assert.Equal(t, 1, *finished)
		})
	}
}

func TestTypewriter_Delays(t *testing.T) {
	sched := scheduler.NewVirtual()
	buf := &Buffer{}
	tw := New(sched, buf, []string{"AB", "C"}, Config{
		CharDelay:    60 * time.Millisecond,
		MessageDelay: 700 * time.Millisecond,
	})

	tw.Start()
	sched.Advance(60 * time.Millisecond)
	assert.Equal(t, "AB", buf.String())
	sched.Advance(60 * time.Millisecond)
	assert.Equal(t, "AB\n\n", buf.String())
	sched.Advance(699 * time.Millisecond)
	assert.Equal(t, "AB\n\n", buf.String(), "next message waits for the message delay")
	sched.Advance(time.Millisecond)
	assert.Equal(t, "AB\n\nC", buf.String())
	assert.False(t, tw.Finished())
	sched.Advance(60 * time.Millisecond)
	assert.True(t, tw.Finished())
}

func TestTypewriter_EmptyListFinishesImmediately(t *testing.T) {
	tw, sched, rec, finished := newTestTypewriter(nil)

	tw.Start()

	assert.True(t, tw.Finished())
	assert.Equal(t, 1, *finished)
	assert.Equal(t, 0, sched.Len(), "no tick scheduled")
	assert.Empty(t, rec.snapshots)
}

func TestTypewriter_RestartAfterFinishReproducesSequence(t *testing.T) {
	tw, sched, rec, finished := newTestTypewriter([]string{"AB", "C"})

	tw.Start()
	sched.RunUntilIdle(100)
	first := append([]string(nil), rec.snapshots...)

	rec.snapshots = nil
	tw.Start()
	assert.Equal(t, "A", tw.Text(), "restart clears previous text")
	sched.RunUntilIdle(100)

	if diff := cmp.Diff(first, rec.snapshots); diff != "" {
		t.Errorf("rerun differs (-first +rerun):\n%s", diff)
	}
	assert.Equal(t, 2, *finished)
}

func TestTypewriter_RestartMidRunCancelsOutstandingTick(t *testing.T) {
	tw, sched, _, finished := newTestTypewriter([]string{"ABCDEF"})

	tw.Start()
	sched.Step()
	sched.Step()
	assert.Equal(t, "ABC", tw.Text())

	tw.Start()
	assert.Equal(t, 1, sched.Len(), "only one tick outstanding")
	sched.RunUntilIdle(100)

	assert.Equal(t, "ABCDEF", tw.Text(), "no interleaved output")
	assert.Equal(t, 1, *finished)
}

func TestTypewriter_Skip(t *testing.T) {
	tw, sched, _, finished := newTestTypewriter([]string{"AB", "CD", "E"})

	tw.Start()
	sched.Step()
	tw.Skip()

	assert.Equal(t, "AB\n\nCD\n\nE", tw.Text())
	assert.True(t, tw.Finished())
	assert.Equal(t, 1, *finished)
	assert.Equal(t, 0, sched.Len())

	tw.Skip()
	assert.Equal(t, 1, *finished, "skip after finish is a no-op")
}

func TestTypewriter_SkipDuringMessageGap(t *testing.T) {
	tw, sched, _, _ := newTestTypewriter([]string{"A", "B"})

	tw.Start()
	sched.Step() // separator appended, next message pending
	assert.Equal(t, "A\n\n", tw.Text())

	tw.Skip()
	assert.Equal(t, "A\n\nB", tw.Text())
}

func TestTypewriter_Progress(t *testing.T) {
	tw, sched, _, _ := newTestTypewriter([]string{"AB", "C"})

	tw.Start()
	type pos struct{ message, char int }
	at := func() pos {
		m, c := tw.Progress()
		return pos{m, c}
	}

	got := []pos{at()}
	for sched.Step() {
		got = append(got, at())
	}

	want := []pos{{0, 1}, {0, 2}, {1, 0}, {1, 1}, {2, 0}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(pos{})); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}
}
