package calculation

import (
	"fmt"
	"time"

	"github.com/quoteline/quoteline/internal/domain"
	"github.com/shopspring/decimal"
)

// BreakdownNormalizer reshapes heterogeneous breakdown responses into the
// canonical CalculationBreakdown. The server may have done all the work
// (fully-computed calculationSteps) or only echoed the raw section inputs;
// both paths land on the same structure. Normalization is idempotent: running
// a normalized breakdown back through yields an equivalent structure.
type BreakdownNormalizer struct {
	// Now stamps GeneratedAt. Defaults to time.Now.
	Now func() time.Time
}

// NewBreakdownNormalizer creates a new breakdown normalizer.
func NewBreakdownNormalizer() *BreakdownNormalizer {
	return &BreakdownNormalizer{}
}

func (bn *BreakdownNormalizer) now() time.Time {
	if bn.Now != nil {
		return bn.Now()
	}
	return time.Now()
}

// Normalize converts a raw breakdown response into the canonical shape.
func (bn *BreakdownNormalizer) Normalize(raw *domain.RawBreakdown) *domain.CalculationBreakdown {
	out := &domain.CalculationBreakdown{
		ProposalID:  raw.ProposalID,
		GeneratedAt: bn.now(),
		Inputs:      raw.Inputs,
		Adjustments: raw.Adjustments,
		ProRata:     raw.ProRata,
	}

	if raw.CalculationSteps != nil && len(raw.CalculationSteps.SectionCalculations) > 0 {
		// Server did the work; pass through unchanged.
		out.SectionCalculations = make([]domain.SectionCalculation, len(raw.CalculationSteps.SectionCalculations))
		copy(out.SectionCalculations, raw.CalculationSteps.SectionCalculations)
	} else {
		out.SectionCalculations = make([]domain.SectionCalculation, 0, len(raw.Sections))
		for i := range raw.Sections {
			out.SectionCalculations = append(out.SectionCalculations, synthesizeSection(&raw.Sections[i]))
		}
	}

	if raw.FinalResults != nil {
		out.FinalResults = *raw.FinalResults
	} else {
		out.FinalResults = deriveFinalResults(out.SectionCalculations)
	}
	return out
}

// synthesizeSection builds a SectionCalculation from a raw section input.
// Item rows pull computed fields where present and default to zero
// otherwise; section totals fall back to sums over the raw item fields.
func synthesizeSection(sp *domain.SectionPayload) domain.SectionCalculation {
	sc := domain.SectionCalculation{
		SectionID:   sp.SectionID,
		SectionName: sp.SectionName,
		Items:       make([]domain.ItemCalculation, 0, len(sp.Items)),
	}
	for i := range sp.Items {
		item := &sp.Items[i]
		row := domain.ItemCalculation{
			ItemID:      item.ItemID,
			ItemNo:      item.ItemNo,
			SMICode:     item.SMICode,
			Description: item.Description,
			SumInsured:  item.ActualValue,
			Rate:        item.ItemRate,
			Multiplier:  item.MultiplyRate,
			Premium:     item.Result.PremiumValue,
			ShareValue:  item.Result.ShareValue,
			NetPremium:  item.Result.NetPremiumAfterDiscounts,
			Formula:     item.Result.PremiumValueFormula,
		}
		sc.Items = append(sc.Items, row)

		sc.SectionSumInsured = sc.SectionSumInsured.Add(item.ActualValue)
		if item.Stock != nil {
			sc.SectionSumInsured = sc.SectionSumInsured.Add(item.Stock.StockSumInsured)
		}
		sc.SectionGrossPremium = sc.SectionGrossPremium.Add(row.Premium)
		sc.SectionNetPremium = sc.SectionNetPremium.Add(row.NetPremium)
	}
	return sc
}

// deriveFinalResults sums section-level totals into proposal-level totals.
func deriveFinalResults(sections []domain.SectionCalculation) domain.FinalResults {
	fr := domain.FinalResults{SectionCount: len(sections)}
	for i := range sections {
		sc := &sections[i]
		fr.TotalSumInsured = fr.TotalSumInsured.Add(sc.SectionSumInsured)
		fr.TotalGrossPremium = fr.TotalGrossPremium.Add(sc.SectionGrossPremium)
		fr.TotalNetPremium = fr.TotalNetPremium.Add(sc.SectionNetPremium)
		fr.RiskItemCount += len(sc.Items)
	}
	return fr
}

// FormatPremiumFormula renders the display derivation for an item premium.
func FormatPremiumFormula(sumInsured, rate, multiplier, premium decimal.Decimal) string {
	return fmt.Sprintf("%s × %s%% × %s = %s",
		sumInsured.StringFixed(2), rate.StringFixed(4), multiplier.StringFixed(2), premium.StringFixed(2))
}
