package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/quell/pkg/game"
	"github.com/jwebster45206/quell/pkg/puzzle"
	"github.com/jwebster45206/quell/pkg/scheduler"
	"github.com/jwebster45206/quell/pkg/story"
)

const poolCols = 8

// held is a piece being dragged.
type held struct {
	piece  int
	source int // puzzle.NoSource for pool pieces
}

// ConsoleUI is the BubbleTea model that presents the game.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	game   *game.Game
	sched  *scheduler.Tea
	logger *slog.Logger

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	cursor        int // word or choice selection
	showInventory bool
	showQuitModal bool
	status        string
	err           error

	// Puzzle interaction
	boardFocus  bool
	poolCursor  int
	boardCursor int
	holding     *held
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // amber
			Underline(true)

	collectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true).
			Padding(0, 1)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	monologueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Italic(true)

	lightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("255"))

	obtainedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))
)

func NewConsoleUI(g *game.Game, sched *scheduler.Tea, logger *slog.Logger) ConsoleUI {
	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		game:     g,
		sched:    sched,
		logger:   logger,
		viewport: vp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.sched.Handle(msg) {
		m.refresh()
		return m, m.sched.Flush()
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.storyWidth()
		m.viewport.Height = max(m.height-4, 5)
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "ctrl+c":
			m.showQuitModal = true
			return m, nil
		case "esc":
			if m.holding != nil {
				m.holding = nil
				return m, nil
			}
			m.showQuitModal = true
			return m, nil
		case "i":
			m.showInventory = !m.showInventory
			m.viewport.Width = m.storyWidth()
			m.refresh()
			return m, nil
		case "y":
			m.copyText()
			return m, nil
		}

		m.handleKey(msg)
		m.refresh()
		return m, m.sched.Flush()
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

func (m *ConsoleUI) handleKey(msg tea.KeyMsg) {
	script := m.game.Script()
	key := msg.String()

	switch m.game.Screen() {
	case game.ScreenTitle:
		if key == "enter" {
			m.game.Start()
			m.cursor = 0
		}

	case game.ScreenWords:
		switch key {
		case "left", "up", "h", "k":
			m.cursor = (m.cursor + len(script.Words) - 1) % len(script.Words)
		case "right", "down", "l", "j", "tab":
			m.cursor = (m.cursor + 1) % len(script.Words)
		case "enter":
			m.game.SelectWord(script.Words[m.cursor].Key)
		}

	case game.ScreenText:
		switch key {
		case "enter":
			if err := m.game.Follow(context.Background()); err != nil {
				m.err = err
			}
		case "b", "backspace":
			m.game.Back()
		}

	case game.ScreenDoor:
		if key == "enter" {
			m.game.OpenDoor()
			m.cursor = 0
		}

	case game.ScreenMonologue:
		if !m.game.ChoicesEnabled() {
			if key == "s" {
				m.game.SkipMonologue()
			}
			return
		}
		switch key {
		case "left", "up", "h", "k":
			m.cursor = (m.cursor + len(script.Choices) - 1) % len(script.Choices)
		case "right", "down", "l", "j", "tab":
			m.cursor = (m.cursor + 1) % len(script.Choices)
		case "enter":
			m.game.Choose(script.Choices[m.cursor].Key)
		}

	case game.ScreenBranch:
		if m.game.PuzzleShown() && !m.game.Puzzle().Complete() {
			m.handlePuzzleKey(key)
		}
	}
}

func (m *ConsoleUI) handlePuzzleKey(key string) {
	switch key {
	case "tab":
		m.boardFocus = !m.boardFocus
	case "left", "h":
		m.moveCursor(-1, 0)
	case "right", "l":
		m.moveCursor(1, 0)
	case "up", "k":
		m.moveCursor(0, -1)
	case "down", "j":
		m.moveCursor(0, 1)
	case " ":
		m.pickUp()
	case "enter":
		m.drop()
	}
}

func (m *ConsoleUI) moveCursor(dx, dy int) {
	if m.boardFocus {
		col := (m.boardCursor%puzzle.Cols + dx + puzzle.Cols) % puzzle.Cols
		row := (m.boardCursor/puzzle.Cols + dy + puzzle.Rows) % puzzle.Rows
		m.boardCursor = row*puzzle.Cols + col
		return
	}
	rows := puzzle.Size / poolCols
	col := (m.poolCursor%poolCols + dx + poolCols) % poolCols
	row := (m.poolCursor/poolCols + dy + rows) % rows
	m.poolCursor = row*poolCols + col
}

func (m *ConsoleUI) pickUp() {
	if !m.boardFocus {
		if err := m.game.PickUp(m.poolCursor); err != nil {
			m.logger.Debug("Pick up refused", "piece", m.poolCursor, "reason", err)
			return
		}
		m.holding = &held{piece: m.poolCursor, source: puzzle.NoSource}
		m.boardFocus = true
		return
	}
	if piece, ok := m.game.Puzzle().Occupant(m.boardCursor); ok {
		m.holding = &held{piece: piece, source: m.boardCursor}
	}
}

func (m *ConsoleUI) drop() {
	if m.holding == nil || !m.boardFocus {
		return
	}
	if m.game.Drop(m.boardCursor, m.holding.piece, m.holding.source) {
		m.holding = nil
	}
}

func (m *ConsoleUI) copyText() {
	text := m.plainText()
	if text == "" {
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		m.logger.Warn("Clipboard copy failed", "error", err)
		m.status = "Clipboard unavailable"
		return
	}
	m.status = "Copied to clipboard"
}

// plainText is the story text on screen without styling.
func (m ConsoleUI) plainText() string {
	switch m.game.Screen() {
	case game.ScreenText:
		if word, ok := m.game.Word(); ok {
			return story.Plain(word.Text)
		}
	case game.ScreenDoor:
		return m.game.Script().Door.Text
	case game.ScreenMonologue:
		return m.game.MonologueText()
	case game.ScreenBranch:
		return strings.Join(m.game.BranchTexts(), "\n\n")
	}
	return ""
}

func (m *ConsoleUI) refresh() {
	m.viewport.SetContent(m.renderStory(m.viewport.Width))
	if m.game.Screen() == game.ScreenMonologue {
		m.viewport.GotoBottom()
	}
}

func (m ConsoleUI) storyWidth() int {
	w := m.width - 4
	if m.showInventory {
		w -= 28
	}
	return max(w, 20)
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "enter", "y", "Y":
			return m, tea.Quit
		case "n", "N", "esc":
			m.showQuitModal = false
		}
	}
	return m, nil
}
