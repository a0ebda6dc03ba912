package calculation

import "github.com/quoteline/quoteline/internal/domain"

// CalcContext holds a proposal session's calculation cache: the last full
// calculated-items array per section. It is owned by the session lifecycle
// and passed explicitly into the aggregation functions; nothing here is
// ambient module state.
type CalcContext struct {
	calculated map[string][]domain.CalculatedItem
}

// NewCalcContext creates an empty calculation context.
func NewCalcContext() *CalcContext {
	return &CalcContext{
		calculated: make(map[string][]domain.CalculatedItem),
	}
}

// PutCalculated stores a copy of the calculated-items array for a section.
func (cc *CalcContext) PutCalculated(sectionID string, items []domain.CalculatedItem) {
	cp := make([]domain.CalculatedItem, len(items))
	copy(cp, items)
	cc.calculated[sectionID] = cp
}

// Calculated returns the cached calculated-items array for a section, or nil.
func (cc *CalcContext) Calculated(sectionID string) []domain.CalculatedItem {
	return cc.calculated[sectionID]
}

// Invalidate drops the cached calculated items for a section. Called when
// the section's contents change or the section is deleted, so stale
// calculations cannot resurface in later aggregate payloads.
func (cc *CalcContext) Invalidate(sectionID string) {
	delete(cc.calculated, sectionID)
}
