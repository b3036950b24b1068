package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/moodgrid/view"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleHint = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleMenu = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleBoard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleMood = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213"))

	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Grid cell styles, keyed by cell kind.
var cellStyles = map[view.Kind]lipgloss.Style{
	view.KindVoid:    lipgloss.NewStyle(),
	view.KindWall:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	view.KindFloor:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	view.KindPlayer:  lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
	view.KindChaser:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	view.KindKey:     lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	view.KindExit:    lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
	view.KindHazard:  lipgloss.NewStyle().Foreground(lipgloss.Color("202")),
	view.KindCracked: lipgloss.NewStyle().Foreground(lipgloss.Color("137")),
	view.KindPush:    lipgloss.NewStyle().Foreground(lipgloss.Color("180")),
	view.KindTotem:   lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
	view.KindOther:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
}

var (
	styleAngry      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleActiveExit = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
)

// cellStyle picks the style for one grid cell. Angry movers are drawn red
// and an open exit is drawn bright.
func cellStyle(c view.Cell) lipgloss.Style {
	switch {
	case c.Angry && (c.Kind == view.KindPlayer || c.Kind == view.KindChaser):
		return styleAngry
	case c.Kind == view.KindExit && c.Active:
		return styleActiveExit
	}
	if st, ok := cellStyles[c.Kind]; ok {
		return st
	}
	return styleNarration
}

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindMood
	kindSuccess
	kindSystem
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You died"),
		strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "I don't understand"),
		strings.HasPrefix(line, "No such level"),
		strings.HasPrefix(line, "Nothing happens"),
		strings.HasSuffix(line, "gives way!"):
		return kindError
	case strings.HasSuffix(line, "reached the exit!"),
		strings.HasPrefix(line, "Level complete"),
		strings.HasPrefix(line, "Key collected"):
		return kindSuccess
	case strings.HasPrefix(line, "You feel"),
		strings.HasSuffix(line, "turns calm."),
		strings.HasSuffix(line, "turns angry."):
		return kindMood
	default:
		return kindNarration
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindMood:
		return styleMood.Render(line)
	case kindSuccess:
		return styleSuccess.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}
