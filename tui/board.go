package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/moodgrid/flow"
	"github.com/nathoo/moodgrid/view"
)

const gameplayHint = "arrows/wasd move  r retry  p pause  / command  q quit"

// renderBoard draws the level grid during gameplay and the menu text of
// every other screen.
func (m Model) renderBoard() string {
	if m.game.State() == flow.StateGameplay {
		if cells := view.Cells(m.level()); cells != nil {
			rows := make([]string, len(cells))
			for i, row := range cells {
				var b strings.Builder
				for _, c := range row {
					b.WriteString(cellStyle(c).Render(string(c.Glyph)))
				}
				rows[i] = b.String()
			}
			return styleBoard.Render(strings.Join(rows, "\n"))
		}
	}

	lines := view.Screen(m.game)
	if len(lines) == 0 {
		return ""
	}
	styled := make([]string, len(lines))
	for i, line := range lines {
		if i == 0 {
			styled[i] = styleTitle.Render(line)
			continue
		}
		styled[i] = styleMenu.Render(line)
	}
	return styleBoard.Render(strings.Join(styled, "\n"))
}

// renderStatusBar produces a full-width inverted status line: the level
// summary while playing, the game title and screen name otherwise.
func (m Model) renderStatusBar() string {
	c := m.game.Context()

	left := " " + view.Status(c)
	if m.game.State() != flow.StateGameplay || left == " " {
		left = fmt.Sprintf(" %s", c.Defs.Game.Title)
	}
	right := fmt.Sprintf("%s ", m.game.State())
	if m.out.trace {
		right = "trace | " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// renderPrompt shows the text input, or the key hints while moves go
// straight to the board.
func (m Model) renderPrompt() string {
	if m.directKeys() {
		return styleHint.Render(gameplayHint)
	}
	return m.input.View()
}
