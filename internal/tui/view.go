package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quoteline/quoteline/internal/domain"
	"github.com/quoteline/quoteline/internal/output"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.breakdown == nil {
		return AppStyle.Render(ErrorStyle.Render("no breakdown loaded"))
	}

	header := TitleStyle.Render("Premium Breakdown") + "  " +
		SubtitleStyle.Render("Proposal "+m.breakdown.ProposalID)

	left := m.renderSectionList()
	right := m.renderDetail()
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		m.renderTotals(),
		m.renderHelp(),
	))
}

func (m Model) renderSectionList() string {
	var sb strings.Builder
	sb.WriteString(SubtitleStyle.Render("SECTIONS") + "\n")
	for i := range m.breakdown.SectionCalculations {
		sc := &m.breakdown.SectionCalculations[i]
		label := fmt.Sprintf("%s (%d items)", sc.SectionName, len(sc.Items))
		if i == m.selectedSection {
			sb.WriteString(SelectedItemStyle.Render("> " + label))
		} else {
			sb.WriteString(UnselectedItemStyle.Render("  " + label))
		}
		sb.WriteString("\n")
	}
	return PanelStyle.Render(sb.String())
}

func (m Model) renderDetail() string {
	switch m.pane {
	case PaneAdjustments:
		return m.renderAdjustments()
	case PaneProRata:
		return m.renderProRata()
	default:
		return m.renderItems()
	}
}

func (m Model) renderItems() string {
	if m.selectedSection >= len(m.breakdown.SectionCalculations) {
		return PanelStyle.Render("no sections")
	}
	sc := &m.breakdown.SectionCalculations[m.selectedSection]

	var sb strings.Builder
	sb.WriteString(SubtitleStyle.Render("RISK ITEMS — "+sc.SectionName) + "\n")
	for i := range sc.Items {
		item := &sc.Items[i]
		sb.WriteString(fmt.Sprintf("%2d. %-10s %-24s %14s  %12s\n",
			item.ItemNo, item.SMICode, clip(item.Description, 24),
			output.FormatCurrency(item.SumInsured), output.FormatCurrency(item.Premium)))
		if item.Formula != "" {
			sb.WriteString(SubtitleStyle.Render("    "+item.Formula) + "\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(metric("Sum Insured", output.FormatCurrency(sc.SectionSumInsured)))
	sb.WriteString(metric("Gross Premium", output.FormatCurrency(sc.SectionGrossPremium)))
	sb.WriteString(metric("Net Premium", output.FormatCurrency(sc.SectionNetPremium)))
	return PanelStyle.Render(sb.String())
}

func (m Model) renderAdjustments() string {
	adj := m.breakdown.Adjustments
	var sb strings.Builder
	sb.WriteString(SubtitleStyle.Render("ADJUSTMENTS") + "\n")
	sb.WriteString(metric("Starting Premium", output.FormatCurrency(adj.StartingPremium)))
	for _, line := range adj.DiscountsApplied {
		sb.WriteString(adjLine("-", line))
	}
	for _, line := range adj.LoadingsApplied {
		sb.WriteString(adjLine("+", line))
	}
	sb.WriteString(metric("Net Premium Due", output.FormatCurrency(adj.NetPremiumDue)))
	return PanelStyle.Render(sb.String())
}

func (m Model) renderProRata() string {
	pr := m.breakdown.ProRata
	var sb strings.Builder
	sb.WriteString(SubtitleStyle.Render("PRO-RATA") + "\n")
	sb.WriteString(metric("Cover Days", fmt.Sprintf("%d of %d", pr.CoverDays, pr.StandardDays)))
	sb.WriteString(metric("Factor", pr.ProRataFactor.StringFixed(6)))
	sb.WriteString(metric("Premium Due", output.FormatCurrency(pr.ProRataPremium)))
	if !pr.IsProRated {
		sb.WriteString(SubtitleStyle.Render("full annual term") + "\n")
	}
	return PanelStyle.Render(sb.String())
}

func (m Model) renderTotals() string {
	fr := m.breakdown.FinalResults
	return lipgloss.JoinHorizontal(lipgloss.Top,
		totalsCell("Sections", fmt.Sprintf("%d", fr.SectionCount)),
		totalsCell("Items", fmt.Sprintf("%d", fr.RiskItemCount)),
		totalsCell("Sum Insured", output.FormatCurrency(fr.TotalSumInsured)),
		totalsCell("Gross", output.FormatCurrency(fr.TotalGrossPremium)),
		totalsCell("Net", output.FormatCurrency(fr.TotalNetPremium)),
	)
}

func (m Model) renderHelp() string {
	pairs := [][2]string{
		{"↑/↓", "section"},
		{"←/→/tab", "pane"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, HelpKeyStyle.Render(p[0])+" "+HelpDescStyle.Render(p[1]))
	}
	return strings.Join(parts, "  ")
}

func metric(label, value string) string {
	return MetricLabelStyle.Render(fmt.Sprintf("%-18s", label)) +
		MetricValueStyle.Render(value) + "\n"
}

func adjLine(sign string, line domain.AdjustmentLine) string {
	label := fmt.Sprintf("%s %s (%s%%)", sign, line.Name, line.Rate.StringFixed(2))
	return MetricLabelStyle.Render(fmt.Sprintf("%-28s", label)) +
		MetricValueStyle.Render(output.FormatCurrency(line.Amount)) + "\n"
}

func totalsCell(label, value string) string {
	return PanelStyle.Render(MetricLabelStyle.Render(label) + " " + MetricValueStyle.Render(value))
}

// clip shortens a string to n characters, counting runes so multibyte
// descriptions never get cut mid-character.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
