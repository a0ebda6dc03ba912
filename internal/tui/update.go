package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.selectedSection > 0 {
				m.selectedSection--
			}
			return m, nil

		case key.Matches(msg, m.keys.Down):
			if m.selectedSection < len(m.breakdown.SectionCalculations)-1 {
				m.selectedSection++
			}
			return m, nil

		case key.Matches(msg, m.keys.Left):
			m.pane = m.prevPane()
			return m, nil

		case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Tab):
			m.pane = m.nextPane()
			return m, nil
		}
	}

	return m, nil
}

// nextPane advances to the next pane that has content to show.
func (m Model) nextPane() Pane {
	p := m.pane
	for i := 0; i < 3; i++ {
		p = (p + 1) % 3
		if m.paneAvailable(p) {
			return p
		}
	}
	return m.pane
}

func (m Model) prevPane() Pane {
	p := m.pane
	for i := 0; i < 3; i++ {
		p = (p + 2) % 3
		if m.paneAvailable(p) {
			return p
		}
	}
	return m.pane
}

func (m Model) paneAvailable(p Pane) bool {
	switch p {
	case PaneAdjustments:
		return m.breakdown.Adjustments != nil
	case PaneProRata:
		return m.breakdown.ProRata != nil
	default:
		return true
	}
}
