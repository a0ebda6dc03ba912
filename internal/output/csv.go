package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/quoteline/quoteline/internal/domain"
)

// GenerateCSVReport writes one row per risk item plus a totals row.
func (rg *ReportGenerator) GenerateCSVReport(w io.Writer, b *domain.CalculationBreakdown) error {
	cw := csv.NewWriter(w)

	header := []string{"section", "item_no", "smi_code", "description", "sum_insured", "rate", "multiplier", "premium", "share_value", "net_premium"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range b.SectionCalculations {
		sc := &b.SectionCalculations[i]
		for j := range sc.Items {
			item := &sc.Items[j]
			row := []string{
				sc.SectionName,
				strconv.Itoa(item.ItemNo),
				item.SMICode,
				item.Description,
				item.SumInsured.StringFixed(2),
				item.Rate.StringFixed(4),
				item.Multiplier.StringFixed(2),
				item.Premium.StringFixed(2),
				item.ShareValue.StringFixed(2),
				item.NetPremium.StringFixed(2),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	totals := []string{
		"TOTAL",
		strconv.Itoa(b.FinalResults.RiskItemCount),
		"", "",
		b.FinalResults.TotalSumInsured.StringFixed(2),
		"", "",
		b.FinalResults.TotalGrossPremium.StringFixed(2),
		"",
		b.FinalResults.TotalNetPremium.StringFixed(2),
	}
	if err := cw.Write(totals); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}
