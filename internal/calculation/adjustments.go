package calculation

import (
	"github.com/quoteline/quoteline/internal/domain"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// AdjustmentEngine applies the nine named proposal-level discount and
// loading rates to an aggregate premium.
type AdjustmentEngine struct{}

// NewAdjustmentEngine creates a new adjustment engine.
func NewAdjustmentEngine() *AdjustmentEngine {
	return &AdjustmentEngine{}
}

// StartingPremium sums the sections' premium fields, clamped at zero.
func StartingPremium(sections []domain.Section) decimal.Decimal {
	total := decimal.Zero
	for i := range sections {
		s := &sections[i]
		if s.SectionGrossPremium.IsPositive() {
			total = total.Add(s.SectionGrossPremium)
		} else {
			total = total.Add(s.LocalGrossPremium())
		}
	}
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Apply computes the nine named amounts and the resulting net premium due.
//
// Each rate is applied independently against startingPremium; the rates do
// not compound on a running balance. The waterfall ordering seen in reports
// (discounts before loadings) is display-only. netPremiumDue is floored at
// zero.
func (ae *AdjustmentEngine) Apply(startingPremium decimal.Decimal, rates domain.ProposalAdjustments) domain.AdjustmentResult {
	if startingPremium.IsNegative() {
		startingPremium = decimal.Zero
	}

	amount := func(rate decimal.Decimal) decimal.Decimal {
		return startingPremium.Mul(rate).Div(oneHundred)
	}

	res := domain.AdjustmentResult{
		StartingPremium: startingPremium,

		SpecialDiscountAmount:    amount(rates.SpecialDiscountRate),
		DeductibleDiscountAmount: amount(rates.DeductibleDiscountRate),
		SpreadDiscountAmount:     amount(rates.SpreadDiscountRate),
		LTADiscountAmount:        amount(rates.LTADiscountRate),
		OtherDiscountsAmount:     amount(rates.OtherDiscountsRate),

		TheftLoadingAmount:  amount(rates.TheftLoadingRate),
		SRCCLoadingAmount:   amount(rates.SRCCLoadingRate),
		OtherLoading2Amount: amount(rates.OtherLoading2Rate),
		OtherLoadingsAmount: amount(rates.OtherLoadingsRate),
	}

	res.TotalDiscounts = res.SpecialDiscountAmount.
		Add(res.DeductibleDiscountAmount).
		Add(res.SpreadDiscountAmount).
		Add(res.LTADiscountAmount).
		Add(res.OtherDiscountsAmount)
	res.TotalLoadings = res.TheftLoadingAmount.
		Add(res.SRCCLoadingAmount).
		Add(res.OtherLoading2Amount).
		Add(res.OtherLoadingsAmount)

	res.NetPremiumDue = startingPremium.Sub(res.TotalDiscounts).Add(res.TotalLoadings)
	if res.NetPremiumDue.IsNegative() {
		res.NetPremiumDue = decimal.Zero
	}

	res.DiscountsApplied = appliedLines(rates.DiscountRates(), startingPremium)
	res.LoadingsApplied = appliedLines(rates.LoadingRates(), startingPremium)

	return res
}

// appliedLines builds the display lines for the non-zero rates.
func appliedLines(rates []domain.NamedRate, startingPremium decimal.Decimal) []domain.AdjustmentLine {
	lines := make([]domain.AdjustmentLine, 0, len(rates))
	for _, nr := range rates {
		if nr.Rate.IsZero() {
			continue
		}
		lines = append(lines, domain.AdjustmentLine{
			Name:   nr.Name,
			Rate:   nr.Rate,
			Amount: startingPremium.Mul(nr.Rate).Div(oneHundred),
		})
	}
	return lines
}
