package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItem is an optional stock sub-record attached to a risk item.
type StockItem struct {
	Code              string          `json:"code" yaml:"code"`
	Description       string          `json:"description" yaml:"description"`
	StockSumInsured   decimal.Decimal `json:"stockSumInsured" yaml:"stockSumInsured"`
	StockRate         decimal.Decimal `json:"stockRate" yaml:"stockRate"`
	StockDiscountRate decimal.Decimal `json:"stockDiscountRate" yaml:"stockDiscountRate"`
}

// RiskItemResult holds the server-owned computed fields for one risk item.
// They are only authoritative once returned by the rating stage.
type RiskItemResult struct {
	ActualPremium            decimal.Decimal `json:"actualPremium"`
	ShareValue               decimal.Decimal `json:"shareValue"`
	PremiumValue             decimal.Decimal `json:"premiumValue"`
	StockDiscountAmount      decimal.Decimal `json:"stockDiscountAmount"`
	FEADiscountAmount        decimal.Decimal `json:"feaDiscountAmount"`
	NetPremiumAfterDiscounts decimal.Decimal `json:"netPremiumAfterDiscounts"`

	// Human-readable derivations for display surfaces.
	ActualPremiumFormula string `json:"actualPremiumFormula,omitempty"`
	ShareValueFormula    string `json:"shareValueFormula,omitempty"`
	PremiumValueFormula  string `json:"premiumValueFormula,omitempty"`
	StockDiscountFormula string `json:"stockDiscountFormula,omitempty"`
	FEADiscountFormula   string `json:"feaDiscountFormula,omitempty"`
}

// RiskItem is one insurable line within a section.
//
// ID is the stable merge key between local and server state. ItemNo is a
// 1-based display position only; it is renumbered when items are removed and
// must never be used to reconcile a rating response.
type RiskItem struct {
	ID              string          `json:"id" yaml:"id"`
	ItemNo          int             `json:"itemNo" yaml:"itemNo"`
	SectionID       string          `json:"sectionId" yaml:"sectionId"`
	SMICode         string          `json:"smiCode" yaml:"smiCode"`
	Description     string          `json:"description" yaml:"description"`
	ActualValue     decimal.Decimal `json:"actualValue" yaml:"actualValue"`
	ItemRate        decimal.Decimal `json:"itemRate" yaml:"itemRate"`
	MultiplyRate    decimal.Decimal `json:"multiplyRate" yaml:"multiplyRate"`
	Location        string          `json:"location" yaml:"location"`
	FEADiscountRate decimal.Decimal `json:"feaDiscountRate" yaml:"feaDiscountRate"`
	Stock           *StockItem      `json:"stockItem,omitempty" yaml:"stockItem,omitempty"`

	// Computed is nil until the rating stage has filled it. Stale marks the
	// last computed result as superseded by a local edit; the values are kept
	// for display but must not be treated as authoritative.
	Computed *RiskItemResult `json:"computed,omitempty" yaml:"-"`
	Stale    bool            `json:"stale,omitempty" yaml:"-"`
}

// NewRiskItem creates a risk item with a generated stable id and empty
// computed fields. MultiplyRate defaults to 1.
func NewRiskItem(sectionID, smiCode, description string) *RiskItem {
	return &RiskItem{
		ID:           uuid.NewString(),
		SectionID:    sectionID,
		SMICode:      smiCode,
		Description:  strings.TrimSpace(description),
		MultiplyRate: decimal.NewFromInt(1),
	}
}

// Invalidate marks any computed result stale. Called on every rating-input
// edit; values are kept, not zeroed.
func (ri *RiskItem) Invalidate() {
	if ri.Computed != nil {
		ri.Stale = true
	}
}

// SetResult installs a rating result and clears the stale flag.
func (ri *RiskItem) SetResult(res RiskItemResult) {
	r := res
	ri.Computed = &r
	ri.Stale = false
}

// HasFreshResult reports whether the item carries a computed result that has
// not been invalidated by a later edit.
func (ri *RiskItem) HasFreshResult() bool {
	return ri.Computed != nil && !ri.Stale
}

// EstimatedPremium is the local fallback formula used for instant UI
// feedback before a rating round-trip. Never persisted as authoritative.
func (ri *RiskItem) EstimatedPremium() decimal.Decimal {
	mult := ri.MultiplyRate
	if mult.IsZero() {
		mult = decimal.NewFromInt(1)
	}
	return ri.ActualValue.Mul(ri.ItemRate).Mul(mult).Div(decimal.NewFromInt(100))
}
