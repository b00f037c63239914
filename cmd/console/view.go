package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/quell/pkg/game"
	"github.com/jwebster45206/quell/pkg/puzzle"
	"github.com/jwebster45206/quell/pkg/story"
	"github.com/muesli/reflow/wordwrap"
)

var (
	cellStyle = lipgloss.NewStyle().
			Width(4).
			Align(lipgloss.Center).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	cursorCellStyle = cellStyle.
			BorderForeground(lipgloss.Color("205"))

	consumedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderNotices(),
		m.renderHelp(),
	)
	if m.showInventory {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderInventory())
	}
	return lipgloss.NewStyle().Padding(1, 2, 0, 2).Render(body)
}

func (m ConsoleUI) renderStory(width int) string {
	g := m.game
	script := g.Script()
	var content strings.Builder

	switch g.Screen() {
	case game.ScreenTitle:
		content.WriteString(titleStyle.Render(strings.ToUpper(script.Title)) + "\n\n")
		if !g.Transitioning() {
			content.WriteString(selectedStyle.Render(script.Start))
		}

	case game.ScreenWords:
		var options []string
		for i, w := range script.Words {
			style := optionStyle
			if i == m.cursor {
				style = selectedStyle
			}
			options = append(options, style.Render(w.Label))
		}
		content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, options...))

	case game.ScreenText:
		word, _ := g.Word()
		content.WriteString(wordwrap.String(m.renderLinkedText(word), width))

	case game.ScreenDoor:
		content.WriteString(textStyle.Render(wordwrap.String(script.Door.Text, width)) + "\n\n")
		content.WriteString(selectedStyle.Render(script.Door.Prompt))

	case game.ScreenMonologue:
		content.WriteString(monologueStyle.Render(wordwrap.String(g.MonologueText(), width)))
		if !g.MonologueFinished() {
			current, total := g.MonologueProgress()
			content.WriteString("\n\n" + promptStyle.Render(fmt.Sprintf("%d/%d", current, total)))
		}
		if g.ChoicesEnabled() {
			var options []string
			for i, c := range script.Choices {
				style := optionStyle
				if i == m.cursor {
					style = selectedStyle
				}
				options = append(options, style.Render(c.Label))
			}
			content.WriteString("\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, options...))
		}

	case game.ScreenBranch:
		content.WriteString(m.renderBranch(width))
	}

	return content.String()
}

func (m ConsoleUI) renderLinkedText(word story.Word) string {
	before, link, after, ok := story.SplitLink(word.Text)
	if !ok || word.Link == nil {
		return textStyle.Render(story.Plain(word.Text))
	}
	style := linkStyle
	if m.game.LinkCollected() {
		style = collectedStyle
	}
	return textStyle.Render(before) + style.Render(link) + textStyle.Render(after)
}

func (m ConsoleUI) renderBranch(width int) string {
	g := m.game
	style := textStyle
	if choice, ok := g.Script().Choice(g.Choice()); ok && choice.Puzzle {
		style = lightStyle
	}

	var content strings.Builder
	for _, text := range g.BranchTexts() {
		content.WriteString(style.Render(wordwrap.String(text, width)) + "\n\n")
	}
	if g.PuzzleShown() {
		content.WriteString(m.renderPuzzle())
	}
	if g.Completed() {
		completion := g.Script().Completion
		content.WriteString("\n\n" + titleStyle.Render(completion.Title) + "\n" + textStyle.Render(completion.Body))
	}
	return content.String()
}

func (m ConsoleUI) renderPuzzle() string {
	p := m.game.Puzzle()

	var boardRows []string
	for row := 0; row < puzzle.Rows; row++ {
		var cells []string
		for col := 0; col < puzzle.Cols; col++ {
			cell := row*puzzle.Cols + col
			label := "  "
			if piece, ok := p.Occupant(cell); ok {
				label = puzzle.Label(piece)
			}
			style := cellStyle
			if m.boardFocus && cell == m.boardCursor {
				style = cursorCellStyle
			}
			cells = append(cells, style.Render(label))
		}
		boardRows = append(boardRows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	board := lipgloss.JoinVertical(lipgloss.Left, boardRows...)

	var poolRows []string
	for row := 0; row < puzzle.Size/poolCols; row++ {
		var pieces []string
		for col := 0; col < poolCols; col++ {
			piece := row*poolCols + col
			label := puzzle.Label(piece)
			if p.Consumed(piece) {
				label = consumedStyle.Render("··")
			}
			style := cellStyle
			if !m.boardFocus && piece == m.poolCursor {
				style = cursorCellStyle
			}
			pieces = append(pieces, style.Render(label))
		}
		poolRows = append(poolRows, lipgloss.JoinHorizontal(lipgloss.Top, pieces...))
	}
	pool := lipgloss.JoinVertical(lipgloss.Left, poolRows...)

	holding := ""
	if m.holding != nil {
		holding = promptStyle.Render(fmt.Sprintf("holding %s", puzzle.Label(m.holding.piece)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, board, "", pool, holding)
}

func (m ConsoleUI) renderNotices() string {
	var lines []string
	for _, n := range m.game.Notices() {
		switch n.Kind {
		case game.NoticeObtained:
			lines = append(lines, obtainedStyle.Render(n.Text))
		default:
			lines = append(lines, errorStyle.Render(n.Text))
		}
	}
	if m.err != nil {
		lines = append(lines, errorStyle.Render("Error: "+m.err.Error()))
	}
	if m.status != "" {
		lines = append(lines, promptStyle.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

func (m ConsoleUI) renderInventory() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("INVENTORY") + "\n\n")
	items := m.game.Items()
	if len(items) == 0 {
		content.WriteString(promptStyle.Render("Empty"))
	}
	for _, item := range items {
		content.WriteString("• " + item + "\n")
	}
	return panelStyle.Width(24).Render(content.String())
}

func (m ConsoleUI) renderHelp() string {
	var help string
	switch m.game.Screen() {
	case game.ScreenTitle, game.ScreenDoor:
		help = "enter: continue"
	case game.ScreenWords:
		help = "←/→: choose • enter: read"
	case game.ScreenText:
		help = "enter: follow link • b: back"
	case game.ScreenMonologue:
		if m.game.ChoicesEnabled() {
			help = "←/→: choose • enter: decide"
		} else {
			help = "s: skip"
		}
	case game.ScreenBranch:
		if m.game.PuzzleShown() {
			help = "tab: pool/board • arrows: move • space: pick up • enter: drop"
		}
	}
	if help != "" {
		help += " • "
	}
	return promptStyle.Render(help + "i: inventory • y: copy • ctrl+c: quit")
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("Leave?"))
	content.WriteString("\n\n")
	content.WriteString("Your inventory stays with this session.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to stay"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}
