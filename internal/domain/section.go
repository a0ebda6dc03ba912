package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SectionNames is the controlled vocabulary for section names.
var SectionNames = []string{
	"Building",
	"Contents",
	"Stock",
	"Machinery",
	"Loss of Profits",
	"All Risks",
}

// Section is a named grouping of risk items sharing a location.
//
// SectionSumInsured/SectionGrossPremium/SectionNetPremium are derived: either
// recomputed locally from RiskItems or overwritten by the most recent server
// aggregate response. LastCalculated orders competing snapshots.
type Section struct {
	ID                  string          `json:"sectionId" yaml:"sectionId"`
	Name                string          `json:"sectionName" yaml:"sectionName"`
	Location            string          `json:"location" yaml:"location"`
	RiskItems           []RiskItem      `json:"riskItems" yaml:"riskItems"`
	SectionSumInsured   decimal.Decimal `json:"sectionSumInsured" yaml:"-"`
	SectionGrossPremium decimal.Decimal `json:"sectionGrossPremium" yaml:"-"`
	SectionNetPremium   decimal.Decimal `json:"sectionNetPremium" yaml:"-"`
	ProportionRate      decimal.Decimal `json:"proportionRate" yaml:"proportionRate"`
	LastCalculated      *time.Time      `json:"lastCalculated,omitempty" yaml:"-"`
}

// NewSection creates a section with a generated stable id.
func NewSection(name, location string) *Section {
	return &Section{
		ID:       uuid.NewString(),
		Name:     name,
		Location: location,
	}
}

// ValidSectionName reports whether name is in the controlled vocabulary.
func ValidSectionName(name string) bool {
	for _, n := range SectionNames {
		if n == name {
			return true
		}
	}
	return false
}

// AddItem appends an item and assigns its display position.
func (s *Section) AddItem(item *RiskItem) {
	item.SectionID = s.ID
	item.ItemNo = len(s.RiskItems) + 1
	s.RiskItems = append(s.RiskItems, *item)
}

// RemoveItem deletes the item with the given id and renumbers the remaining
// items so ItemNo runs 1..n-1 in order. Returns an error if the id is not
// present.
func (s *Section) RemoveItem(itemID string) error {
	idx := -1
	for i := range s.RiskItems {
		if s.RiskItems[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("section %s has no risk item %s", s.ID, itemID)
	}
	s.RiskItems = append(s.RiskItems[:idx], s.RiskItems[idx+1:]...)
	for i := range s.RiskItems {
		s.RiskItems[i].ItemNo = i + 1
	}
	return nil
}

// ItemByID returns a pointer into RiskItems, or nil.
func (s *Section) ItemByID(itemID string) *RiskItem {
	for i := range s.RiskItems {
		if s.RiskItems[i].ID == itemID {
			return &s.RiskItems[i]
		}
	}
	return nil
}

// LocalSumInsured sums the item sum-insured values, including any stock
// sub-records.
func (s *Section) LocalSumInsured() decimal.Decimal {
	total := decimal.Zero
	for i := range s.RiskItems {
		total = total.Add(s.RiskItems[i].ActualValue)
		if s.RiskItems[i].Stock != nil {
			total = total.Add(s.RiskItems[i].Stock.StockSumInsured)
		}
	}
	return total
}

// LocalGrossPremium sums fresh computed premiums where present, falling back
// to the local estimate for unrated items.
func (s *Section) LocalGrossPremium() decimal.Decimal {
	total := decimal.Zero
	for i := range s.RiskItems {
		if s.RiskItems[i].HasFreshResult() {
			total = total.Add(s.RiskItems[i].Computed.PremiumValue)
		} else {
			total = total.Add(s.RiskItems[i].EstimatedPremium())
		}
	}
	return total
}

// Clone returns a deep copy. Session writes replace whole sections so readers
// never observe a half-updated one.
func (s *Section) Clone() Section {
	out := *s
	out.RiskItems = make([]RiskItem, len(s.RiskItems))
	copy(out.RiskItems, s.RiskItems)
	for i := range out.RiskItems {
		if st := out.RiskItems[i].Stock; st != nil {
			cp := *st
			out.RiskItems[i].Stock = &cp
		}
		if c := out.RiskItems[i].Computed; c != nil {
			cp := *c
			out.RiskItems[i].Computed = &cp
		}
	}
	if s.LastCalculated != nil {
		ts := *s.LastCalculated
		out.LastCalculated = &ts
	}
	return out
}
