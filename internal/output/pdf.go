package output

import (
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/quoteline/quoteline/internal/domain"
)

// GeneratePDFReport writes a premium schedule PDF.
func (rg *ReportGenerator) GeneratePDFReport(w io.Writer, b *domain.CalculationBreakdown) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Premium Calculation Schedule", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Proposal "+b.ProposalID, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for i := range b.SectionCalculations {
		sc := &b.SectionCalculations[i]

		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, sc.SectionName, "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(10, 6, "No", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 6, "SMI Code", "1", 0, "L", true, 0, "")
		pdf.CellFormat(65, 6, "Description", "1", 0, "L", true, 0, "")
		pdf.CellFormat(30, 6, "Sum Insured", "1", 0, "R", true, 0, "")
		pdf.CellFormat(20, 6, "Rate %", "1", 0, "R", true, 0, "")
		pdf.CellFormat(30, 6, "Premium", "1", 1, "R", true, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for j := range sc.Items {
			item := &sc.Items[j]
			pdf.CellFormat(10, 6, itoa(item.ItemNo), "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 6, truncate(rg.smiLabel(item.SMICode), 18), "1", 0, "L", false, 0, "")
			pdf.CellFormat(65, 6, truncate(item.Description, 40), "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, FormatCurrency(item.SumInsured), "1", 0, "R", false, 0, "")
			pdf.CellFormat(20, 6, item.Rate.StringFixed(4), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 6, FormatCurrency(item.Premium), "1", 1, "R", false, 0, "")
		}

		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(100, 6, "Section Totals", "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, FormatCurrency(sc.SectionSumInsured), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, "", "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, FormatCurrency(sc.SectionGrossPremium), "1", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	if b.Adjustments != nil {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Adjustments", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(120, 6, "Starting Premium", "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, FormatCurrency(b.Adjustments.StartingPremium), "", 1, "R", false, 0, "")
		for _, line := range b.Adjustments.DiscountsApplied {
			pdf.CellFormat(120, 6, "Less "+line.Name+" ("+line.Rate.StringFixed(2)+"%)", "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, "-"+FormatCurrency(line.Amount), "", 1, "R", false, 0, "")
		}
		for _, line := range b.Adjustments.LoadingsApplied {
			pdf.CellFormat(120, 6, "Plus "+line.Name+" ("+line.Rate.StringFixed(2)+"%)", "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, FormatCurrency(line.Amount), "", 1, "R", false, 0, "")
		}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(120, 6, "Net Premium Due", "T", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, FormatCurrency(b.Adjustments.NetPremiumDue), "T", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	if b.ProRata != nil {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Pro-Rata", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(120, 6, "Cover Days "+itoa(b.ProRata.CoverDays)+" of "+itoa(b.ProRata.StandardDays), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, FormatCurrency(b.ProRata.ProRataPremium), "", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 7, "Total Premium", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, FormatCurrency(finalPremium(b)), "T", 1, "R", false, 0, "")

	return pdf.Output(w)
}

// finalPremium picks the most final figure the breakdown carries.
func finalPremium(b *domain.CalculationBreakdown) decimal.Decimal {
	switch {
	case b.ProRata != nil:
		return b.ProRata.ProRataPremium
	case b.Adjustments != nil:
		return b.Adjustments.NetPremiumDue
	default:
		return b.FinalResults.TotalNetPremium
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
