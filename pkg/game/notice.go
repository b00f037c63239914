package game

import (
	"fmt"
	"slices"
)

type NoticeKind string

const (
	NoticeObtained NoticeKind = "obtained"
	NoticeError    NoticeKind = "error"
)

// Notice is a short-lived message layered over the current screen.
type Notice struct {
	ID   int
	Kind NoticeKind
	Text string
}

// showNotice displays a notice and schedules its removal. Each notice has its
// own timer, so overlapping notices expire independently.
func (g *Game) showNotice(kind NoticeKind, text string) {
	g.nextNotice++
	n := Notice{ID: g.nextNotice, Kind: kind, Text: text}
	g.notices = append(g.notices, n)

	g.sched.Schedule(fmt.Sprintf("notice-%d", n.ID), g.timings.NoticeLifetime, func() {
		g.notices = slices.DeleteFunc(g.notices, func(other Notice) bool {
			return other.ID == n.ID
		})
	})
}

// Notices returns the notices currently on screen, oldest first.
func (g *Game) Notices() []Notice {
	return slices.Clone(g.notices)
}
