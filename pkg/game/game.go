// Package game is the page controller. It owns the screen state machine and
// the three interactive pieces (monologue typewriter, inventory, puzzle) and
// exposes one command handler per user action. Presentation layers call the
// handlers and read state back through the accessors; every delayed effect
// goes through the injected scheduler.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jwebster45206/quell/pkg/inventory"
	"github.com/jwebster45206/quell/pkg/puzzle"
	"github.com/jwebster45206/quell/pkg/scheduler"
	"github.com/jwebster45206/quell/pkg/story"
	"github.com/jwebster45206/quell/pkg/typewriter"
)

type Screen string

const (
	ScreenTitle     Screen = "title"
	ScreenWords     Screen = "words"
	ScreenText      Screen = "text"
	ScreenDoor      Screen = "door"
	ScreenMonologue Screen = "monologue"
	ScreenBranch    Screen = "branch"
)

// Scheduler names. Each has at most one outstanding callback.
const (
	tickTransition = "transition"
	tickPuzzle     = "puzzle"
	tickCompletion = "completion"
	tickMonologue  = "monologue"
)

// Timings are the delays between a command and its visible effect.
type Timings struct {
	StartFade       time.Duration
	Fade            time.Duration
	PuzzleDelay     time.Duration
	PuzzleReveal    time.Duration
	CompletionDelay time.Duration
	NoticeLifetime  time.Duration
	CharDelay       time.Duration
	MessageDelay    time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		StartFade:       500 * time.Millisecond,
		Fade:            1000 * time.Millisecond,
		PuzzleDelay:     5000 * time.Millisecond,
		PuzzleReveal:    1000 * time.Millisecond,
		CompletionDelay: 1000 * time.Millisecond,
		NoticeLifetime:  2000 * time.Millisecond,
		CharDelay:       60 * time.Millisecond,
		MessageDelay:    700 * time.Millisecond,
	}
}

var ErrPuzzleHidden = errors.New("puzzle is not on screen")

type Options struct {
	Script    *story.Script
	Inventory *inventory.Inventory
	Scheduler scheduler.Scheduler
	Player    Player
	Logger    *slog.Logger
	Timings   Timings
}

type Game struct {
	script  *story.Script
	inv     *inventory.Inventory
	sched   scheduler.Scheduler
	player  Player
	logger  *slog.Logger
	timings Timings

	screen        Screen
	transitioning bool
	word          string

	surface        typewriter.Buffer
	monologue      *typewriter.Typewriter
	choicesEnabled bool

	choice       string
	branchTexts  []string
	puzzle       *puzzle.Puzzle
	puzzleRising bool
	puzzleShown  bool
	completed    bool

	notices    []Notice
	nextNotice int
}

func New(opts Options) *Game {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Player == nil {
		opts.Player = LogPlayer{Logger: opts.Logger}
	}

	g := &Game{
		script:  opts.Script,
		inv:     opts.Inventory,
		sched:   opts.Scheduler,
		player:  opts.Player,
		logger:  opts.Logger,
		timings: opts.Timings,
		screen:  ScreenTitle,
	}
	g.monologue = typewriter.New(g.sched, &g.surface, opts.Script.Monologue, typewriter.Config{
		CharDelay:    opts.Timings.CharDelay,
		MessageDelay: opts.Timings.MessageDelay,
		TickName:     tickMonologue,
		OnFinish:     g.enableChoices,
	})
	g.puzzle = puzzle.New(g.onPuzzleComplete)
	return g
}

// transition moves to screen after delay, running then on arrival. Commands
// that would start another transition are ignored until it lands.
func (g *Game) transition(delay time.Duration, screen Screen, then func()) {
	g.transitioning = true
	g.sched.Schedule(tickTransition, delay, func() {
		g.transitioning = false
		g.screen = screen
		g.logger.Debug("Screen changed", "screen", screen)
		if then != nil {
			then()
		}
	})
}

func (g *Game) ignore(command string) bool {
	g.logger.Debug("Command ignored", "command", command, "screen", g.screen, "transitioning", g.transitioning)
	return false
}

// Start leaves the title screen.
func (g *Game) Start() bool {
	if g.screen != ScreenTitle || g.transitioning {
		return g.ignore("start")
	}
	g.player.Play(CueEchoes, true)
	g.transition(g.timings.StartFade, ScreenWords, nil)
	return true
}

// SelectWord opens the text behind a word.
func (g *Game) SelectWord(key string) bool {
	if g.screen != ScreenWords || g.transitioning {
		return g.ignore("select_word")
	}
	if _, ok := g.script.Word(key); !ok {
		g.logger.Warn("Unknown word selected", "word", key)
		return false
	}
	g.player.Play(CueButtonClicked, false)
	g.transition(g.timings.Fade, ScreenText, func() { g.word = key })
	return true
}

// Back returns from a text to the word list.
func (g *Game) Back() bool {
	if g.screen != ScreenText || g.transitioning {
		return g.ignore("back")
	}
	g.transition(g.timings.Fade, ScreenWords, func() { g.word = "" })
	return true
}

// Follow activates the link in the current text. Only inventory persistence
// failures are returned; a missing item is reported as a notice.
func (g *Game) Follow(ctx context.Context) error {
	if g.screen != ScreenText || g.transitioning {
		g.ignore("follow")
		return nil
	}
	word, _ := g.script.Word(g.word)
	if word.Link == nil {
		g.ignore("follow")
		return nil
	}

	switch word.Link.Action {
	case story.ActionCollect:
		added, err := g.inv.Add(ctx, word.Link.Item)
		if added {
			g.showNotice(NoticeObtained, g.script.ObtainedNotice(word.Link.Item))
			g.logger.Info("Item collected", "item", word.Link.Item, "inventory", g.inv.Items())
		}
		if err != nil {
			g.logger.Error("Failed to persist inventory", "item", word.Link.Item, "error", err)
			return fmt.Errorf("failed to collect %s: %w", word.Link.Item, err)
		}

	case story.ActionListen:
		if !g.inv.Has(word.Link.Item) {
			g.showNotice(NoticeError, g.script.Notices.MissingItem)
			return nil
		}
		g.transition(g.timings.Fade, ScreenDoor, func() {
			g.player.Stop(CueEchoes)
			g.player.Play(CueHeartBeat, true)
		})
	}
	return nil
}

// OpenDoor starts the monologue.
func (g *Game) OpenDoor() bool {
	if g.screen != ScreenDoor || g.transitioning {
		return g.ignore("open_door")
	}
	g.player.Stop(CueHeartBeat)
	g.player.Play(CueUnlock, false)
	g.transition(g.timings.Fade, ScreenMonologue, func() {
		g.player.Play(CueRust, false)
		g.choicesEnabled = false
		g.monologue.Start()
	})
	return true
}

// SkipMonologue reveals the rest of the monologue at once.
func (g *Game) SkipMonologue() bool {
	if g.screen != ScreenMonologue || !g.monologue.Running() {
		return g.ignore("skip")
	}
	g.monologue.Skip()
	return true
}

func (g *Game) enableChoices() {
	g.choicesEnabled = true
	g.logger.Debug("Monologue finished")
}

// Choose picks a branch once the monologue is over.
func (g *Game) Choose(key string) bool {
	if g.screen != ScreenMonologue || !g.choicesEnabled || g.transitioning {
		return g.ignore("choose")
	}
	choice, ok := g.script.Choice(key)
	if !ok {
		g.logger.Warn("Unknown choice", "choice", key)
		return false
	}

	g.player.Play(CueButtonClicked, false)
	g.transition(g.timings.Fade, ScreenBranch, func() {
		g.choice = key
		// The branch text goes in ahead of whatever the branch already holds.
		g.branchTexts = slices.Insert(g.branchTexts, 0, choice.Text)
		if choice.Puzzle {
			g.sched.Schedule(tickPuzzle, g.timings.PuzzleDelay, g.revealPuzzle)
		}
	})
	g.logger.Info("Branch chosen", "choice", key)
	return true
}

func (g *Game) revealPuzzle() {
	g.puzzleRising = true
	g.sched.Schedule(tickPuzzle, g.timings.PuzzleReveal, func() {
		g.puzzleShown = true
		g.logger.Debug("Puzzle revealed")
	})
}

// PickUp starts dragging a pool piece.
func (g *Game) PickUp(piece int) error {
	if !g.puzzleShown {
		return ErrPuzzleHidden
	}
	return g.puzzle.PickUp(piece)
}

// Drop places a piece. source is puzzle.NoSource for pool pieces. Rejected
// drops change nothing and are reported as false.
func (g *Game) Drop(cell, piece, source int) bool {
	if !g.puzzleShown {
		return g.ignore("drop")
	}
	if err := g.puzzle.Drop(cell, piece, source); err != nil {
		g.logger.Debug("Drop rejected", "cell", cell, "piece", piece, "source", source, "reason", err)
		return false
	}
	return true
}

func (g *Game) onPuzzleComplete() {
	g.player.Play(CuePuzzleComplete, false)
	g.logger.Info("Puzzle complete")
	g.sched.Schedule(tickCompletion, g.timings.CompletionDelay, func() {
		g.completed = true
	})
}

// Accessors for presentation.

func (g *Game) Screen() Screen { return g.screen }

func (g *Game) Transitioning() bool { return g.transitioning }

func (g *Game) Script() *story.Script { return g.script }

// Word returns the word whose text is on screen.
func (g *Game) Word() (story.Word, bool) {
	if g.word == "" {
		return story.Word{}, false
	}
	return g.script.Word(g.word)
}

// LinkCollected reports whether the current text's link collects an item
// that is already held.
func (g *Game) LinkCollected() bool {
	word, ok := g.Word()
	if !ok || word.Link == nil || word.Link.Action != story.ActionCollect {
		return false
	}
	return g.inv.Has(word.Link.Item)
}

func (g *Game) Items() []string { return g.inv.Items() }

func (g *Game) MonologueText() string { return g.monologue.Text() }

func (g *Game) MonologueFinished() bool { return g.monologue.Finished() }

// MonologueProgress reports which message is being typed, counting from 1,
// out of the total.
func (g *Game) MonologueProgress() (current, total int) {
	total = len(g.script.Monologue)
	message, _ := g.monologue.Progress()
	return min(message+1, total), total
}

func (g *Game) ChoicesEnabled() bool { return g.choicesEnabled }

// Choice returns the chosen branch key, or "" before a choice.
func (g *Game) Choice() string { return g.choice }

func (g *Game) BranchTexts() []string { return slices.Clone(g.branchTexts) }

// PuzzleRising reports that the branch text has moved aside for the puzzle.
func (g *Game) PuzzleRising() bool { return g.puzzleRising }

func (g *Game) PuzzleShown() bool { return g.puzzleShown }

func (g *Game) Puzzle() *puzzle.Puzzle { return g.puzzle }

// Completed reports that the completion message is on screen.
func (g *Game) Completed() bool { return g.completed }
