package calculation

import (
	"fmt"

	"github.com/quoteline/quoteline/internal/domain"
	"github.com/shopspring/decimal"
)

// RiskItemCalculator builds rating requests for risk items and merges the
// server-returned computed fields back into local state. Merges are keyed by
// the item's stable id, never by array position.
type RiskItemCalculator struct{}

// NewRiskItemCalculator creates a new risk item calculator.
func NewRiskItemCalculator() *RiskItemCalculator {
	return &RiskItemCalculator{}
}

// ItemToPayload maps a risk item into the wire shape. Computed fields carry
// the item's fresh result when one exists, else zero values for the server to
// fill.
func ItemToPayload(item *domain.RiskItem) domain.CalculatedItem {
	out := domain.CalculatedItem{
		ItemID:          item.ID,
		ItemNo:          item.ItemNo,
		SectionID:       item.SectionID,
		SMICode:         item.SMICode,
		Description:     item.Description,
		ActualValue:     item.ActualValue,
		ItemRate:        item.ItemRate,
		MultiplyRate:    item.MultiplyRate,
		Location:        item.Location,
		FEADiscountRate: item.FEADiscountRate,
	}
	if item.Stock != nil {
		st := *item.Stock
		out.Stock = &st
	}
	if item.HasFreshResult() {
		out.Result = *item.Computed
	}
	return out
}

// ValidateItem rejects rating inputs before any network call.
func ValidateItem(item *domain.RiskItem) error {
	if item.SMICode == "" {
		return fmt.Errorf("risk item %d: smi code is required", item.ItemNo)
	}
	if item.ActualValue.IsNegative() {
		return fmt.Errorf("risk item %d: sum insured cannot be negative", item.ItemNo)
	}
	if item.ItemRate.IsNegative() {
		return fmt.Errorf("risk item %d: rate cannot be negative", item.ItemNo)
	}
	if item.Stock != nil && item.Stock.StockSumInsured.IsNegative() {
		return fmt.Errorf("risk item %d: stock sum insured cannot be negative", item.ItemNo)
	}
	return nil
}

// BuildItemRequest builds a single-item calculation request for a per-item
// apply.
func (rc *RiskItemCalculator) BuildItemRequest(section *domain.Section, itemID, subRisk string, proportionRate decimal.Decimal) (domain.RiskItemCalcRequest, error) {
	item := section.ItemByID(itemID)
	if item == nil {
		return domain.RiskItemCalcRequest{}, fmt.Errorf("section %s has no risk item %s", section.ID, itemID)
	}
	if err := ValidateItem(item); err != nil {
		return domain.RiskItemCalcRequest{}, err
	}
	return domain.RiskItemCalcRequest{
		SubRisk:        subRisk,
		SectionID:      section.ID,
		ProportionRate: proportionRate,
		RiskItems:      []domain.CalculatedItem{ItemToPayload(item)},
	}, nil
}

// BuildSectionRequest builds a calculation request carrying the section's
// full current item list, including items without a stock sub-record.
func (rc *RiskItemCalculator) BuildSectionRequest(section *domain.Section, subRisk string, proportionRate decimal.Decimal) (domain.RiskItemCalcRequest, error) {
	if len(section.RiskItems) == 0 {
		return domain.RiskItemCalcRequest{}, fmt.Errorf("section %s (%s) has no risk items to calculate", section.ID, section.Name)
	}
	req := domain.RiskItemCalcRequest{
		SubRisk:        subRisk,
		SectionID:      section.ID,
		ProportionRate: proportionRate,
		RiskItems:      make([]domain.CalculatedItem, 0, len(section.RiskItems)),
	}
	for i := range section.RiskItems {
		item := &section.RiskItems[i]
		if err := ValidateItem(item); err != nil {
			return domain.RiskItemCalcRequest{}, err
		}
		req.RiskItems = append(req.RiskItems, ItemToPayload(item))
	}
	return req, nil
}

// MergeResults installs calculated results into the section's items, matched
// by item id. All matches are resolved before any item is written, so a
// response that references an unknown item leaves the section untouched and
// returns ErrUnmatchedItem.
func (rc *RiskItemCalculator) MergeResults(section *domain.Section, calculated []domain.CalculatedItem) error {
	targets := make([]*domain.RiskItem, len(calculated))
	for i := range calculated {
		item := section.ItemByID(calculated[i].ItemID)
		if item == nil {
			return fmt.Errorf("%w: item %q in section %s", ErrUnmatchedItem, calculated[i].ItemID, section.ID)
		}
		targets[i] = item
	}
	for i := range calculated {
		targets[i].SetResult(calculated[i].Result)
	}
	return nil
}
