// Package tui is an interactive browser for a premium calculation
// breakdown: a section list on the left, item and adjustment detail on the
// right.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quoteline/quoteline/internal/domain"
)

// Pane identifies the detail pane on display.
type Pane int

const (
	PaneItems Pane = iota
	PaneAdjustments
	PaneProRata
)

// KeyMap defines the key bindings.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Tab   key.Binding
	Quit  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous section")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next section")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous pane")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next pane")),
		Tab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "cycle pane")),
		Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the TUI application state.
type Model struct {
	breakdown *domain.CalculationBreakdown
	keys      KeyMap

	selectedSection int
	pane            Pane

	width  int
	height int
}

// NewModel creates a TUI model around a normalized breakdown.
func NewModel(breakdown *domain.CalculationBreakdown) Model {
	return Model{
		breakdown: breakdown,
		keys:      DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}
