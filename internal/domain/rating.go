package domain

import "github.com/shopspring/decimal"

// CalculatedItem is the wire shape for one risk item in rating payloads and
// responses: the full rating inputs plus the computed fields, which default
// to zero outbound when no calculation has happened yet.
type CalculatedItem struct {
	ItemID          string          `json:"itemId"`
	ItemNo          int             `json:"itemNo"`
	SectionID       string          `json:"sectionId"`
	SMICode         string          `json:"smiCode"`
	Description     string          `json:"description"`
	ActualValue     decimal.Decimal `json:"actualValue"`
	ItemRate        decimal.Decimal `json:"itemRate"`
	MultiplyRate    decimal.Decimal `json:"multiplyRate"`
	Location        string          `json:"location"`
	FEADiscountRate decimal.Decimal `json:"feaDiscountRate"`
	Stock           *StockItem      `json:"stockItem,omitempty"`

	Result RiskItemResult `json:"result"`
}

// SectionTotals carries response-level section aggregates.
type SectionTotals struct {
	SectionSumInsured   decimal.Decimal `json:"sectionSumInsured"`
	SectionGrossPremium decimal.Decimal `json:"sectionGrossPremium"`
	SectionNetPremium   decimal.Decimal `json:"sectionNetPremium"`
}

// RiskItemCalcRequest is the payload for the calculate-risk-items operation.
type RiskItemCalcRequest struct {
	SubRisk        string           `json:"subRisk"`
	SectionID      string           `json:"sectionId"`
	ProportionRate decimal.Decimal  `json:"proportionRate"`
	RiskItems      []CalculatedItem `json:"riskItems"`
}

// RiskItemCalcResponse is the rating service's answer: one calculated item
// per submitted item, plus optional section totals.
type RiskItemCalcResponse struct {
	CalculatedItems []CalculatedItem `json:"calculatedItems"`
	Totals          *SectionTotals   `json:"totals,omitempty"`
	Success         bool             `json:"success"`
	Message         string           `json:"message,omitempty"`
}

// SectionPayload is the per-section shape of the aggregate payload.
type SectionPayload struct {
	SectionID      string           `json:"sectionId"`
	SectionName    string           `json:"sectionName"`
	Location       string           `json:"location,omitempty"`
	ProportionRate decimal.Decimal  `json:"proportionRate"`
	Items          []CalculatedItem `json:"riskItems"`
}

// AggregateRequest is the payload for the calculate-aggregate operation.
type AggregateRequest struct {
	ProposalID string           `json:"proposalId"`
	Sections   []SectionPayload `json:"sections"`
}

// SectionAggregate is one section's server-computed aggregate.
type SectionAggregate struct {
	SectionID         string          `json:"sectionId"`
	SectionSumInsured decimal.Decimal `json:"sectionSumInsured"`
	SectionPremium    decimal.Decimal `json:"sectionPremium"`
	SectionNetPremium decimal.Decimal `json:"sectionNetPremium"`
	RiskItemCount     int             `json:"riskItemCount"`
}

// AggregateResponse is the rating service's aggregate answer.
type AggregateResponse struct {
	SectionAggregates []SectionAggregate `json:"sectionAggregates"`
	Success           bool               `json:"success"`
	Message           string             `json:"message,omitempty"`
}

// AggregateTotals is the proposal-level rollup of section aggregates.
type AggregateTotals struct {
	TotalSumInsured       decimal.Decimal `json:"totalSumInsured"`
	TotalAggregatePremium decimal.Decimal `json:"totalAggregatePremium"`
	TotalNetPremium       decimal.Decimal `json:"totalNetPremium"`
	SectionCount          int             `json:"sectionCount"`
	RiskItemCount         int             `json:"riskItemCount"`
}

// AdjustmentRequest is the payload for the apply-proposal-adjustments
// operation.
type AdjustmentRequest struct {
	ProposalID            string              `json:"proposalId"`
	TotalAggregatePremium decimal.Decimal     `json:"totalAggregatePremium"`
	Adjustments           ProposalAdjustments `json:"adjustments"`
}

// ProRataRequest is the payload for the calculate-pro-rata operation.
type ProRataRequest struct {
	ProposalID    string          `json:"proposalId"`
	NetPremiumDue decimal.Decimal `json:"netPremiumDue"`
	CoverDays     int             `json:"coverDays"`
	StandardDays  int             `json:"standardDays"`
}
