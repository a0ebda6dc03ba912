package domain

import "github.com/shopspring/decimal"

// StandardCoverDays is the standard annual policy term used by the pro-rata
// step.
const StandardCoverDays = 365

// ProposalAdjustments is the ordered set of named discount and loading rates
// applied at proposal level. Rates are plain percentages in [0,100].
type ProposalAdjustments struct {
	SpecialDiscountRate    decimal.Decimal `json:"specialDiscountRate" yaml:"specialDiscountRate"`
	DeductibleDiscountRate decimal.Decimal `json:"deductibleDiscountRate" yaml:"deductibleDiscountRate"`
	SpreadDiscountRate     decimal.Decimal `json:"spreadDiscountRate" yaml:"spreadDiscountRate"`
	LTADiscountRate        decimal.Decimal `json:"ltaDiscountRate" yaml:"ltaDiscountRate"`
	OtherDiscountsRate     decimal.Decimal `json:"otherDiscountsRate" yaml:"otherDiscountsRate"`

	TheftLoadingRate  decimal.Decimal `json:"theftLoadingRate" yaml:"theftLoadingRate"`
	SRCCLoadingRate   decimal.Decimal `json:"srccLoadingRate" yaml:"srccLoadingRate"`
	OtherLoading2Rate decimal.Decimal `json:"otherLoading2Rate" yaml:"otherLoading2Rate"`
	OtherLoadingsRate decimal.Decimal `json:"otherLoadingsRate" yaml:"otherLoadingsRate"`
}

// DiscountRates returns the named discount rates in display order.
func (pa ProposalAdjustments) DiscountRates() []NamedRate {
	return []NamedRate{
		{Name: "Special Discount", Rate: pa.SpecialDiscountRate},
		{Name: "Deductible Discount", Rate: pa.DeductibleDiscountRate},
		{Name: "Spread Discount", Rate: pa.SpreadDiscountRate},
		{Name: "LTA Discount", Rate: pa.LTADiscountRate},
		{Name: "Other Discounts", Rate: pa.OtherDiscountsRate},
	}
}

// LoadingRates returns the named loading rates in display order.
func (pa ProposalAdjustments) LoadingRates() []NamedRate {
	return []NamedRate{
		{Name: "Theft Loading", Rate: pa.TheftLoadingRate},
		{Name: "SRCC Loading", Rate: pa.SRCCLoadingRate},
		{Name: "Other Loading 2", Rate: pa.OtherLoading2Rate},
		{Name: "Other Loadings", Rate: pa.OtherLoadingsRate},
	}
}

// NamedRate pairs a display name with a percentage rate.
type NamedRate struct {
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

// AdjustmentLine is one applied discount or loading with its computed amount.
type AdjustmentLine struct {
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// AdjustmentResult is the outcome of applying the nine proposal-level rates.
// Every amount is computed against StartingPremium independently; the rates
// do not compound on a running balance.
type AdjustmentResult struct {
	StartingPremium decimal.Decimal `json:"startingPremium"`

	SpecialDiscountAmount    decimal.Decimal `json:"specialDiscountAmount"`
	DeductibleDiscountAmount decimal.Decimal `json:"deductibleDiscountAmount"`
	SpreadDiscountAmount     decimal.Decimal `json:"spreadDiscountAmount"`
	LTADiscountAmount        decimal.Decimal `json:"ltaDiscountAmount"`
	OtherDiscountsAmount     decimal.Decimal `json:"otherDiscountsAmount"`

	TheftLoadingAmount  decimal.Decimal `json:"theftLoadingAmount"`
	SRCCLoadingAmount   decimal.Decimal `json:"srccLoadingAmount"`
	OtherLoading2Amount decimal.Decimal `json:"otherLoading2Amount"`
	OtherLoadingsAmount decimal.Decimal `json:"otherLoadingsAmount"`

	TotalDiscounts decimal.Decimal `json:"totalDiscounts"`
	TotalLoadings  decimal.Decimal `json:"totalLoadings"`
	NetPremiumDue  decimal.Decimal `json:"netPremiumDue"`

	DiscountsApplied []AdjustmentLine `json:"discountsApplied"`
	LoadingsApplied  []AdjustmentLine `json:"loadingsApplied"`
}

// ProRataResult is the outcome of the day-count adjustment.
type ProRataResult struct {
	NetPremiumDue  decimal.Decimal `json:"netPremiumDue"`
	CoverDays      int             `json:"coverDays"`
	StandardDays   int             `json:"standardDays"`
	ProRataFactor  decimal.Decimal `json:"proRataFactor"`
	ProRataPremium decimal.Decimal `json:"proRataPremium"`
	IsProRated     bool            `json:"isProRated"`
}
