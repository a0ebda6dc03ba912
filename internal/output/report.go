package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/quoteline/quoteline/internal/domain"
	"github.com/quoteline/quoteline/internal/refdata"
)

// ReportGenerator renders a calculation breakdown in various formats.
type ReportGenerator struct {
	labels refdata.Lookup
}

// NewReportGenerator creates a new report generator.
func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{}
}

// NewReportGeneratorWithLabels creates a report generator that resolves SMI
// codes to display labels through the given lookup.
func NewReportGeneratorWithLabels(labels refdata.Lookup) *ReportGenerator {
	return &ReportGenerator{labels: labels}
}

// Generate writes the breakdown in the specified format.
func (rg *ReportGenerator) Generate(w io.Writer, breakdown *domain.CalculationBreakdown, format string) error {
	switch format {
	case "console":
		return rg.GenerateConsoleReport(w, breakdown)
	case "json":
		return rg.GenerateJSONReport(w, breakdown)
	case "csv":
		return rg.GenerateCSVReport(w, breakdown)
	case "pdf":
		return rg.GeneratePDFReport(w, breakdown)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// GenerateReport writes the breakdown in the specified format.
func GenerateReport(w io.Writer, breakdown *domain.CalculationBreakdown, format string) error {
	return NewReportGenerator().Generate(w, breakdown, format)
}

// smiLabel resolves an SMI code for display, falling back to the raw code
// when no label feed is configured or the code is unknown.
func (rg *ReportGenerator) smiLabel(code string) string {
	if rg.labels == nil {
		return code
	}
	label, err := rg.labels.Label(context.Background(), refdata.KindSMI, code)
	if err != nil {
		return code
	}
	return label
}

// GenerateConsoleReport writes a detailed console-formatted report.
func (rg *ReportGenerator) GenerateConsoleReport(w io.Writer, b *domain.CalculationBreakdown) error {
	var sb strings.Builder

	sb.WriteString("PREMIUM CALCULATION BREAKDOWN\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Proposal:        %s\n", b.ProposalID))
	sb.WriteString(fmt.Sprintf("Proportion Rate: %s%%\n", b.Inputs.ProportionRate.StringFixed(2)))
	if b.Inputs.CoverDays > 0 {
		sb.WriteString(fmt.Sprintf("Cover Days:      %d\n", b.Inputs.CoverDays))
	}
	sb.WriteString("\n")

	for i := range b.SectionCalculations {
		sc := &b.SectionCalculations[i]
		sb.WriteString(fmt.Sprintf("SECTION %d: %s\n", i+1, sc.SectionName))
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for j := range sc.Items {
			item := &sc.Items[j]
			sb.WriteString(fmt.Sprintf("  %2d. %-18s %-28s %14s %12s\n",
				item.ItemNo, truncate(rg.smiLabel(item.SMICode), 18), truncate(item.Description, 28),
				FormatCurrency(item.SumInsured), FormatCurrency(item.Premium)))
			if item.Formula != "" {
				sb.WriteString(fmt.Sprintf("      %s\n", item.Formula))
			}
		}
		sb.WriteString(fmt.Sprintf("  Sum Insured:   %s\n", FormatCurrency(sc.SectionSumInsured)))
		sb.WriteString(fmt.Sprintf("  Gross Premium: %s\n", FormatCurrency(sc.SectionGrossPremium)))
		sb.WriteString(fmt.Sprintf("  Net Premium:   %s\n", FormatCurrency(sc.SectionNetPremium)))
		if sc.Adjustments != nil {
			writeWaterfall(&sb, "  ", sc.Adjustments.StartingPremium,
				sc.Adjustments.DiscountsApplied, sc.Adjustments.LoadingsApplied, sc.Adjustments.FinalNetPremium)
		}
		sb.WriteString("\n")
	}

	if b.Adjustments != nil {
		sb.WriteString("PROPOSAL ADJUSTMENTS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		writeWaterfall(&sb, "", b.Adjustments.StartingPremium,
			b.Adjustments.DiscountsApplied, b.Adjustments.LoadingsApplied, b.Adjustments.NetPremiumDue)
		sb.WriteString("\n")
	}

	if b.ProRata != nil {
		sb.WriteString("PRO-RATA\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		sb.WriteString(fmt.Sprintf("Cover Days:       %d of %d\n", b.ProRata.CoverDays, b.ProRata.StandardDays))
		sb.WriteString(fmt.Sprintf("Pro-Rata Factor:  %s\n", b.ProRata.ProRataFactor.StringFixed(6)))
		sb.WriteString(fmt.Sprintf("Premium Due:      %s\n", FormatCurrency(b.ProRata.ProRataPremium)))
		if !b.ProRata.IsProRated {
			sb.WriteString("(full annual term, no pro-rata reduction)\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("FINAL RESULTS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Sections:            %d\n", b.FinalResults.SectionCount))
	sb.WriteString(fmt.Sprintf("Risk Items:          %d\n", b.FinalResults.RiskItemCount))
	sb.WriteString(fmt.Sprintf("Total Sum Insured:   %s\n", FormatCurrency(b.FinalResults.TotalSumInsured)))
	sb.WriteString(fmt.Sprintf("Total Gross Premium: %s\n", FormatCurrency(b.FinalResults.TotalGrossPremium)))
	sb.WriteString(fmt.Sprintf("Total Net Premium:   %s\n", FormatCurrency(b.FinalResults.TotalNetPremium)))

	_, err := io.WriteString(w, sb.String())
	return err
}

// writeWaterfall renders an adjustment sequence in display order: starting
// premium, discounts, loadings, final figure. Amounts are all computed
// against the starting premium; the running order here is presentational.
func writeWaterfall(sb *strings.Builder, indent string, starting decimal.Decimal, discounts, loadings []domain.AdjustmentLine, final decimal.Decimal) {
	sb.WriteString(fmt.Sprintf("%sStarting Premium:  %s\n", indent, FormatCurrency(starting)))
	for _, line := range discounts {
		sb.WriteString(fmt.Sprintf("%s  - %-22s %6s%%  %s\n", indent, line.Name, line.Rate.StringFixed(2), FormatCurrency(line.Amount)))
	}
	for _, line := range loadings {
		sb.WriteString(fmt.Sprintf("%s  + %-22s %6s%%  %s\n", indent, line.Name, line.Rate.StringFixed(2), FormatCurrency(line.Amount)))
	}
	sb.WriteString(fmt.Sprintf("%sNet Premium Due:   %s\n", indent, FormatCurrency(final)))
}

// GenerateJSONReport writes the breakdown as indented JSON.
func (rg *ReportGenerator) GenerateJSONReport(w io.Writer, b *domain.CalculationBreakdown) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// FormatCurrency formats a decimal as a currency amount with thousands
// separators.
func FormatCurrency(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]

	var out strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	result := out.String() + "." + parts[1]
	if neg {
		return "-" + result
	}
	return result
}

// truncate shortens a string to n characters. It counts runes so multibyte
// descriptions never get cut mid-character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
