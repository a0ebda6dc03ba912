package tui

import (
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteline/quoteline/internal/domain"
)

func testBreakdown() *domain.CalculationBreakdown {
	return &domain.CalculationBreakdown{
		ProposalID:  "prop-1",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		SectionCalculations: []domain.SectionCalculation{
			{
				SectionID:   "sec-a",
				SectionName: "Building",
				Items: []domain.ItemCalculation{
					{ItemNo: 1, SMICode: "SMI-01", Description: "Warehouse",
						SumInsured: decimal.NewFromInt(500000), Premium: decimal.NewFromInt(2500)},
				},
				SectionGrossPremium: decimal.NewFromInt(2500),
			},
			{
				SectionID:   "sec-b",
				SectionName: "Contents",
			},
		},
		Adjustments: &domain.AdjustmentResult{
			StartingPremium: decimal.NewFromInt(5500),
			NetPremiumDue:   decimal.NewFromInt(4950),
			DiscountsApplied: []domain.AdjustmentLine{
				{Name: "Special Discount", Rate: decimal.NewFromInt(10), Amount: decimal.NewFromInt(550)},
			},
		},
		FinalResults: domain.FinalResults{
			SectionCount:      2,
			RiskItemCount:     1,
			TotalGrossPremium: decimal.NewFromInt(2500),
		},
	}
}

func TestViewRendersSectionsAndItems(t *testing.T) {
	m := NewModel(testBreakdown())
	out := m.View()

	assert.Contains(t, out, "Premium Breakdown")
	assert.Contains(t, out, "prop-1")
	assert.Contains(t, out, "Building")
	assert.Contains(t, out, "Contents")
	assert.Contains(t, out, "SMI-01")
}

func TestUpdateNavigation(t *testing.T) {
	m := NewModel(testBreakdown())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 1, m.selectedSection)

	// Already at the last section: stays put.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 1, m.selectedSection)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	assert.Equal(t, 0, m.selectedSection)
}

func TestUpdatePaneCyclingSkipsMissingPanes(t *testing.T) {
	b := testBreakdown()
	b.ProRata = nil
	m := NewModel(b)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, PaneAdjustments, m.pane, "adjustments exist, so tab lands there")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, PaneItems, m.pane, "pro-rata is absent and gets skipped")

	out := m.View()
	assert.NotEmpty(t, out)
}

func TestClipCountsRunes(t *testing.T) {
	tests := []struct {
		in       string
		n        int
		expected string
	}{
		{"Warehouse", 24, "Warehouse"},
		{"a rather long description", 12, "a rather lo…"},
		{"Кирпичный склад на Невском", 12, "Кирпичный с…"},
		{"日本語の説明テキスト", 4, "日本語…"},
		{"abcdef", 1, "a"},
	}
	for _, tt := range tests {
		got := clip(tt.in, tt.n)
		assert.Equal(t, tt.expected, got, "input %q", tt.in)
		assert.True(t, utf8.ValidString(got), "input %q must clip to valid UTF-8", tt.in)
	}
}

func TestUpdateQuit(t *testing.T) {
	m := NewModel(testBreakdown())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
