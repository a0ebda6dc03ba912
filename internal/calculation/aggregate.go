package calculation

import (
	"fmt"

	"github.com/quoteline/quoteline/internal/domain"
)

// MultiSectionAggregate combines all sections of a proposal into
// proposal-level totals and builds the outbound aggregate payload from the
// most authoritative source available per section.
type MultiSectionAggregate struct{}

// NewMultiSectionAggregate creates a new multi-section aggregate.
func NewMultiSectionAggregate() *MultiSectionAggregate {
	return &MultiSectionAggregate{}
}

// BuildPayload assembles the aggregate request. For each section a cached
// calculated-items array, when present, is used verbatim so server-computed
// fields survive the round trip; otherwise the section's raw items are mapped
// into the payload shape with computed fields zeroed for the server to fill.
func (ma *MultiSectionAggregate) BuildPayload(proposal *domain.Proposal, cc *CalcContext) (domain.AggregateRequest, error) {
	if len(proposal.Sections) == 0 {
		return domain.AggregateRequest{}, fmt.Errorf("proposal %s has no sections to aggregate", proposal.ProposalNo)
	}

	req := domain.AggregateRequest{
		ProposalID: proposal.ID,
		Sections:   make([]domain.SectionPayload, 0, len(proposal.Sections)),
	}
	for i := range proposal.Sections {
		s := &proposal.Sections[i]
		payload := domain.SectionPayload{
			SectionID:      s.ID,
			SectionName:    s.Name,
			Location:       s.Location,
			ProportionRate: proposal.ProportionRate,
		}
		if cached := cc.Calculated(s.ID); len(cached) > 0 {
			payload.Items = make([]domain.CalculatedItem, len(cached))
			copy(payload.Items, cached)
		} else {
			payload.Items = make([]domain.CalculatedItem, 0, len(s.RiskItems))
			for j := range s.RiskItems {
				payload.Items = append(payload.Items, ItemToPayload(&s.RiskItems[j]))
			}
		}
		req.Sections = append(req.Sections, payload)
	}
	return req, nil
}

// MergeAggregates applies server section aggregates to the proposal's
// sections, matched strictly by section id. Section ids are stable, so there
// is no heuristic fallback at this level: an aggregate for an unknown id
// fails the whole merge, and an empty aggregate list is treated as a
// contract mismatch rather than a zero premium.
func (ma *MultiSectionAggregate) MergeAggregates(proposal *domain.Proposal, aggs []domain.SectionAggregate) (domain.AggregateTotals, error) {
	if len(aggs) == 0 {
		return domain.AggregateTotals{}, ErrEmptyAggregate
	}

	// Resolve every target before writing anything.
	targets := make([]*domain.Section, len(aggs))
	for i := range aggs {
		section := proposal.SectionByID(aggs[i].SectionID)
		if section == nil {
			return domain.AggregateTotals{}, fmt.Errorf("aggregate response references unknown section %q", aggs[i].SectionID)
		}
		targets[i] = section
	}

	totals := domain.AggregateTotals{SectionCount: len(aggs)}
	for i := range aggs {
		agg := aggs[i]
		section := targets[i]
		section.SectionSumInsured = agg.SectionSumInsured
		section.SectionGrossPremium = agg.SectionPremium
		section.SectionNetPremium = agg.SectionNetPremium

		totals.TotalSumInsured = totals.TotalSumInsured.Add(agg.SectionSumInsured)
		totals.TotalAggregatePremium = totals.TotalAggregatePremium.Add(agg.SectionPremium)
		totals.TotalNetPremium = totals.TotalNetPremium.Add(agg.SectionNetPremium)
		totals.RiskItemCount += agg.RiskItemCount
	}
	return totals, nil
}
