package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemCalculation is one risk-item row of a breakdown.
type ItemCalculation struct {
	ItemID      string          `json:"itemId"`
	ItemNo      int             `json:"itemNo"`
	SMICode     string          `json:"smiCode"`
	Description string          `json:"description"`
	SumInsured  decimal.Decimal `json:"sumInsured"`
	Rate        decimal.Decimal `json:"rate"`
	Multiplier  decimal.Decimal `json:"multiplier"`
	Premium     decimal.Decimal `json:"premium"`
	ShareValue  decimal.Decimal `json:"shareValue"`
	NetPremium  decimal.Decimal `json:"netPremium"`
	Formula     string          `json:"formula,omitempty"`
}

// SectionAdjustments is a section's adjustment waterfall: starting premium,
// applied discounts, applied loadings, final net premium.
type SectionAdjustments struct {
	StartingPremium  decimal.Decimal  `json:"startingPremium"`
	DiscountsApplied []AdjustmentLine `json:"discountsApplied"`
	LoadingsApplied  []AdjustmentLine `json:"loadingsApplied"`
	FinalNetPremium  decimal.Decimal  `json:"finalNetPremium"`
}

// SectionCalculation is one section's calculation detail in a breakdown.
type SectionCalculation struct {
	SectionID           string              `json:"sectionId"`
	SectionName         string              `json:"sectionName"`
	Items               []ItemCalculation   `json:"items"`
	SectionSumInsured   decimal.Decimal     `json:"sectionSumInsured"`
	SectionGrossPremium decimal.Decimal     `json:"sectionGrossPremium"`
	SectionNetPremium   decimal.Decimal     `json:"sectionNetPremium"`
	Adjustments         *SectionAdjustments `json:"sectionAdjustments,omitempty"`
}

// FinalResults holds the proposal-level totals of a breakdown.
type FinalResults struct {
	TotalSumInsured   decimal.Decimal `json:"totalSumInsured"`
	TotalGrossPremium decimal.Decimal `json:"totalGrossPremium"`
	TotalNetPremium   decimal.Decimal `json:"totalNetPremium"`
	SectionCount      int             `json:"sectionCount"`
	RiskItemCount     int             `json:"riskItemCount"`
}

// BreakdownInputs echoes the inputs a breakdown was derived from.
type BreakdownInputs struct {
	ProportionRate decimal.Decimal `json:"proportionRate"`
	CoverDays      int             `json:"coverDays"`
	Currency       string          `json:"currency,omitempty"`
}

// CalculationSteps is the fully-computed portion of a raw breakdown response.
type CalculationSteps struct {
	SectionCalculations []SectionCalculation `json:"sectionCalculations"`
}

// RawBreakdown is the heterogeneous wire shape of the calculation-breakdown
// endpoint. The server may return fully-computed CalculationSteps, or only
// echo the raw section inputs; the normalizer reconciles both into a
// CalculationBreakdown.
type RawBreakdown struct {
	ProposalID       string            `json:"proposalId"`
	Inputs           BreakdownInputs   `json:"inputs"`
	CalculationSteps *CalculationSteps `json:"calculationSteps,omitempty"`
	Sections         []SectionPayload  `json:"sections,omitempty"`
	Adjustments      *AdjustmentResult `json:"adjustments,omitempty"`
	ProRata          *ProRataResult    `json:"proRata,omitempty"`
	FinalResults     *FinalResults     `json:"finalResults,omitempty"`
}

// CalculationBreakdown is the canonical, display-oriented snapshot.
type CalculationBreakdown struct {
	ProposalID          string               `json:"proposalId"`
	GeneratedAt         time.Time            `json:"generatedAt"`
	Inputs              BreakdownInputs      `json:"inputs"`
	SectionCalculations []SectionCalculation `json:"sectionCalculations"`
	Adjustments         *AdjustmentResult    `json:"adjustments,omitempty"`
	ProRata             *ProRataResult       `json:"proRata,omitempty"`
	FinalResults        FinalResults         `json:"finalResults"`
}

// Clone returns a deep copy of the raw breakdown. Producers that keep
// updating a stored breakdown hand out clones so readers never share
// mutable state with them.
func (rb *RawBreakdown) Clone() *RawBreakdown {
	if rb == nil {
		return nil
	}
	out := *rb
	if rb.CalculationSteps != nil {
		out.CalculationSteps = &CalculationSteps{
			SectionCalculations: cloneSectionCalculations(rb.CalculationSteps.SectionCalculations),
		}
	}
	if rb.Sections != nil {
		out.Sections = make([]SectionPayload, len(rb.Sections))
		for i := range rb.Sections {
			sp := rb.Sections[i]
			sp.Items = make([]CalculatedItem, len(rb.Sections[i].Items))
			copy(sp.Items, rb.Sections[i].Items)
			for j := range sp.Items {
				if st := sp.Items[j].Stock; st != nil {
					cp := *st
					sp.Items[j].Stock = &cp
				}
			}
			out.Sections[i] = sp
		}
	}
	if rb.Adjustments != nil {
		adj := *rb.Adjustments
		adj.DiscountsApplied = append([]AdjustmentLine(nil), rb.Adjustments.DiscountsApplied...)
		adj.LoadingsApplied = append([]AdjustmentLine(nil), rb.Adjustments.LoadingsApplied...)
		out.Adjustments = &adj
	}
	if rb.ProRata != nil {
		pr := *rb.ProRata
		out.ProRata = &pr
	}
	if rb.FinalResults != nil {
		fr := *rb.FinalResults
		out.FinalResults = &fr
	}
	return &out
}

func cloneSectionCalculations(in []SectionCalculation) []SectionCalculation {
	out := make([]SectionCalculation, len(in))
	for i := range in {
		sc := in[i]
		sc.Items = append([]ItemCalculation(nil), in[i].Items...)
		if in[i].Adjustments != nil {
			adj := *in[i].Adjustments
			adj.DiscountsApplied = append([]AdjustmentLine(nil), in[i].Adjustments.DiscountsApplied...)
			adj.LoadingsApplied = append([]AdjustmentLine(nil), in[i].Adjustments.LoadingsApplied...)
			sc.Adjustments = &adj
		}
		out[i] = sc
	}
	return out
}

// AsRaw reshapes a normalized breakdown back into the wire form. Feeding the
// result through the normalizer again yields an equivalent breakdown.
func (cb *CalculationBreakdown) AsRaw() *RawBreakdown {
	fr := cb.FinalResults
	return &RawBreakdown{
		ProposalID:       cb.ProposalID,
		Inputs:           cb.Inputs,
		CalculationSteps: &CalculationSteps{SectionCalculations: cb.SectionCalculations},
		Adjustments:      cb.Adjustments,
		ProRata:          cb.ProRata,
		FinalResults:     &fr,
	}
}
