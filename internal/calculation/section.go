package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/quoteline/quoteline/internal/domain"
	"github.com/shopspring/decimal"
)

// SectionAggregator runs "calculate all" for a section and maintains its
// derived totals and lastCalculated stamp.
type SectionAggregator struct {
	calc *RiskItemCalculator

	// Now is the clock used for lastCalculated stamps. Defaults to time.Now.
	Now func() time.Time
}

// NewSectionAggregator creates a new section aggregator.
func NewSectionAggregator() *SectionAggregator {
	return &SectionAggregator{calc: NewRiskItemCalculator()}
}

func (sa *SectionAggregator) now() time.Time {
	if sa.Now != nil {
		return sa.Now()
	}
	return time.Now()
}

// CalculateAll sends the section's full item list to the rating service and
// merges every returned calculated item back by id. On success the section's
// totals are taken from the response when present (prior values are kept
// otherwise) and lastCalculated is set. On any failure the section is left
// untouched.
//
// The merged calculated items are returned so the caller can cache them for
// later aggregate payloads.
func (sa *SectionAggregator) CalculateAll(ctx context.Context, svc Service, section *domain.Section, subRisk string, proportionRate decimal.Decimal) ([]domain.CalculatedItem, error) {
	req, err := sa.calc.BuildSectionRequest(section, subRisk, proportionRate)
	if err != nil {
		return nil, err
	}

	resp, err := svc.CalculateRiskItems(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("calculate section %s: %w", section.ID, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("calculate section %s: rating service rejected the request: %s", section.ID, resp.Message)
	}

	// Merge into a clone first so a mid-merge failure cannot leave the
	// section half updated.
	work := section.Clone()
	if err := sa.calc.MergeResults(&work, resp.CalculatedItems); err != nil {
		return nil, err
	}

	if resp.Totals != nil {
		work.SectionSumInsured = resp.Totals.SectionSumInsured
		work.SectionGrossPremium = resp.Totals.SectionGrossPremium
		work.SectionNetPremium = resp.Totals.SectionNetPremium
	}
	ts := sa.now()
	work.LastCalculated = &ts

	*section = work
	return resp.CalculatedItems, nil
}

// DedupSections collapses duplicate entries sharing a section id, keeping
// the entry with the greatest lastCalculated. An entry without a timestamp
// is treated as older than any timestamped entry. First-seen order of the
// surviving ids is preserved.
func DedupSections(sections []domain.Section) []domain.Section {
	best := make(map[string]int, len(sections))
	order := make([]string, 0, len(sections))

	for i := range sections {
		id := sections[i].ID
		j, seen := best[id]
		if !seen {
			best[id] = i
			order = append(order, id)
			continue
		}
		if newerSection(&sections[i], &sections[j]) {
			best[id] = i
		}
	}

	out := make([]domain.Section, 0, len(order))
	for _, id := range order {
		out = append(out, sections[best[id]])
	}
	return out
}

// newerSection reports whether a should replace b on a duplicate-id merge.
func newerSection(a, b *domain.Section) bool {
	if a.LastCalculated == nil {
		return false
	}
	if b.LastCalculated == nil {
		return true
	}
	return a.LastCalculated.After(*b.LastCalculated)
}
