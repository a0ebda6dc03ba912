// Package rating provides implementations of the rating-service boundary:
// an HTTP client for a remote rating back end and a local reference engine
// that powers the bundled server and tests.
package rating

import (
	"context"
	"fmt"
	"sync"

	"github.com/quoteline/quoteline/internal/calculation"
	"github.com/quoteline/quoteline/internal/domain"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// LocalService is an in-process rating engine implementing the same contract
// as the remote rating back end. It keeps the most recent calculation per
// proposal so the breakdown endpoint can replay it.
type LocalService struct {
	mu         sync.Mutex
	breakdowns map[string]*domain.RawBreakdown

	adjust  *calculation.AdjustmentEngine
	prorata *calculation.ProRataEngine
}

// NewLocalService creates a new local rating engine.
func NewLocalService() *LocalService {
	return &LocalService{
		breakdowns: make(map[string]*domain.RawBreakdown),
		adjust:     calculation.NewAdjustmentEngine(),
		prorata:    calculation.NewProRataEngine(),
	}
}

// RateItem computes the full result for one payload item at the given
// proportion rate.
func RateItem(item *domain.CalculatedItem, proportionRate decimal.Decimal) domain.RiskItemResult {
	mult := item.MultiplyRate
	if mult.IsZero() {
		mult = decimal.NewFromInt(1)
	}
	prop := proportionRate.Div(oneHundred)

	basePremium := item.ActualValue.Mul(item.ItemRate).Mul(mult).Div(oneHundred)
	stockPremium := decimal.Zero
	stockDiscount := decimal.Zero
	if item.Stock != nil {
		stockPremium = item.Stock.StockSumInsured.Mul(item.Stock.StockRate).Div(oneHundred)
		stockDiscount = stockPremium.Mul(item.Stock.StockDiscountRate).Div(oneHundred)
	}

	actualPremium := basePremium.Add(stockPremium)
	shareValue := item.ActualValue.Mul(prop)
	premiumValue := actualPremium.Mul(prop)
	stockDiscountAmount := stockDiscount.Mul(prop)
	feaDiscountAmount := premiumValue.Mul(item.FEADiscountRate).Div(oneHundred)

	net := premiumValue.Sub(stockDiscountAmount).Sub(feaDiscountAmount)
	if net.IsNegative() {
		net = decimal.Zero
	}

	res := domain.RiskItemResult{
		ActualPremium:            actualPremium,
		ShareValue:               shareValue,
		PremiumValue:             premiumValue,
		StockDiscountAmount:      stockDiscountAmount,
		FEADiscountAmount:        feaDiscountAmount,
		NetPremiumAfterDiscounts: net,

		ActualPremiumFormula: calculation.FormatPremiumFormula(item.ActualValue, item.ItemRate, mult, actualPremium),
		ShareValueFormula: fmt.Sprintf("%s × %s%% = %s",
			item.ActualValue.StringFixed(2), proportionRate.StringFixed(2), shareValue.StringFixed(2)),
		PremiumValueFormula: fmt.Sprintf("%s × %s%% = %s",
			actualPremium.StringFixed(2), proportionRate.StringFixed(2), premiumValue.StringFixed(2)),
	}
	if item.Stock != nil {
		res.StockDiscountFormula = fmt.Sprintf("%s × %s%% = %s",
			stockPremium.StringFixed(2), item.Stock.StockDiscountRate.StringFixed(2), stockDiscountAmount.StringFixed(2))
	}
	if !item.FEADiscountRate.IsZero() {
		res.FEADiscountFormula = fmt.Sprintf("%s × %s%% = %s",
			premiumValue.StringFixed(2), item.FEADiscountRate.StringFixed(2), feaDiscountAmount.StringFixed(2))
	}
	return res
}

// CalculateRiskItems rates every submitted item and returns section totals.
func (ls *LocalService) CalculateRiskItems(_ context.Context, req domain.RiskItemCalcRequest) (*domain.RiskItemCalcResponse, error) {
	if len(req.RiskItems) == 0 {
		return &domain.RiskItemCalcResponse{Success: false, Message: "empty rating payload"}, nil
	}

	resp := &domain.RiskItemCalcResponse{
		CalculatedItems: make([]domain.CalculatedItem, 0, len(req.RiskItems)),
		Totals:          &domain.SectionTotals{},
		Success:         true,
	}
	for i := range req.RiskItems {
		item := req.RiskItems[i]
		item.Result = RateItem(&item, req.ProportionRate)
		resp.CalculatedItems = append(resp.CalculatedItems, item)

		resp.Totals.SectionSumInsured = resp.Totals.SectionSumInsured.Add(item.ActualValue)
		if item.Stock != nil {
			resp.Totals.SectionSumInsured = resp.Totals.SectionSumInsured.Add(item.Stock.StockSumInsured)
		}
		resp.Totals.SectionGrossPremium = resp.Totals.SectionGrossPremium.Add(item.Result.PremiumValue)
		resp.Totals.SectionNetPremium = resp.Totals.SectionNetPremium.Add(item.Result.NetPremiumAfterDiscounts)
	}
	return resp, nil
}

// CalculateAggregate computes per-section aggregates. Items arriving with
// computed fields keep them; items without are rated here first.
func (ls *LocalService) CalculateAggregate(_ context.Context, req domain.AggregateRequest) (*domain.AggregateResponse, error) {
	if len(req.Sections) == 0 {
		return &domain.AggregateResponse{Success: false, Message: "aggregate payload has no sections"}, nil
	}

	resp := &domain.AggregateResponse{
		SectionAggregates: make([]domain.SectionAggregate, 0, len(req.Sections)),
		Success:           true,
	}
	rated := make([]domain.SectionPayload, 0, len(req.Sections))
	for i := range req.Sections {
		sp := req.Sections[i]
		agg := domain.SectionAggregate{SectionID: sp.SectionID, RiskItemCount: len(sp.Items)}
		for j := range sp.Items {
			item := sp.Items[j]
			if item.Result.PremiumValue.IsZero() {
				item.Result = RateItem(&item, sp.ProportionRate)
				sp.Items[j] = item
			}
			agg.SectionSumInsured = agg.SectionSumInsured.Add(item.ActualValue)
			if item.Stock != nil {
				agg.SectionSumInsured = agg.SectionSumInsured.Add(item.Stock.StockSumInsured)
			}
			agg.SectionPremium = agg.SectionPremium.Add(item.Result.PremiumValue)
			agg.SectionNetPremium = agg.SectionNetPremium.Add(item.Result.NetPremiumAfterDiscounts)
		}
		resp.SectionAggregates = append(resp.SectionAggregates, agg)
		rated = append(rated, sp)
	}

	if req.ProposalID != "" {
		ls.recordAggregate(req.ProposalID, rated, resp.SectionAggregates)
	}
	return resp, nil
}

// recordAggregate keeps the latest calculation for the breakdown endpoint.
func (ls *LocalService) recordAggregate(proposalID string, sections []domain.SectionPayload, aggs []domain.SectionAggregate) {
	fr := &domain.FinalResults{SectionCount: len(aggs)}
	for i := range aggs {
		fr.TotalSumInsured = fr.TotalSumInsured.Add(aggs[i].SectionSumInsured)
		fr.TotalGrossPremium = fr.TotalGrossPremium.Add(aggs[i].SectionPremium)
		fr.TotalNetPremium = fr.TotalNetPremium.Add(aggs[i].SectionNetPremium)
		fr.RiskItemCount += aggs[i].RiskItemCount
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	raw := &domain.RawBreakdown{
		ProposalID:   proposalID,
		Sections:     sections,
		FinalResults: fr,
	}
	if len(sections) > 0 {
		raw.Inputs.ProportionRate = sections[0].ProportionRate
	}
	ls.breakdowns[proposalID] = raw.Clone()
}

// ApplyAdjustments applies the nine named rates to the aggregate premium.
func (ls *LocalService) ApplyAdjustments(_ context.Context, req domain.AdjustmentRequest) (*domain.AdjustmentResult, error) {
	res := ls.adjust.Apply(req.TotalAggregatePremium, req.Adjustments)

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if raw, ok := ls.breakdowns[req.ProposalID]; ok {
		r := res
		raw.Adjustments = &r
	}
	return &res, nil
}

// CalculateProRata applies the day-count ratio.
func (ls *LocalService) CalculateProRata(_ context.Context, req domain.ProRataRequest) (*domain.ProRataResult, error) {
	res, err := ls.prorata.Apply(req.NetPremiumDue, req.CoverDays, req.StandardDays)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if raw, ok := ls.breakdowns[req.ProposalID]; ok {
		raw.ProRata = res
		raw.Inputs.CoverDays = req.CoverDays
	}
	return res, nil
}

// GetBreakdown returns a snapshot of the latest recorded calculation for a
// proposal. The stored breakdown keeps being updated by later adjustment and
// pro-rata calls, so callers get a deep copy they can read without locking.
func (ls *LocalService) GetBreakdown(_ context.Context, proposalID string) (*domain.RawBreakdown, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	raw, ok := ls.breakdowns[proposalID]
	if !ok {
		return nil, fmt.Errorf("no calculation recorded for proposal %s", proposalID)
	}
	return raw.Clone(), nil
}
