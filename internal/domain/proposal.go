package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Proposal is the top-level quotation/policy record.
type Proposal struct {
	ID             string              `json:"id" yaml:"id"`
	ProposalNo     string              `json:"proposalNo" yaml:"proposalNo"`
	PolicyNo       string              `json:"policyNo,omitempty" yaml:"policyNo,omitempty"`
	InsuredID      string              `json:"insuredId" yaml:"insuredId"`
	InsuredName    string              `json:"insuredName" yaml:"insuredName"`
	ProductCode    string              `json:"productCode" yaml:"productCode"`
	SubRiskCode    string              `json:"subRiskCode" yaml:"subRiskCode"`
	Sections       []Section           `json:"sections" yaml:"sections"`
	ProportionRate decimal.Decimal     `json:"proportionRate" yaml:"proportionRate"`
	Currency       string              `json:"currency" yaml:"currency"`
	ExchangeRate   decimal.Decimal     `json:"exchangeRate" yaml:"exchangeRate"`
	CoverDays      int                 `json:"coverDays" yaml:"coverDays"`
	Adjustments    ProposalAdjustments `json:"adjustments" yaml:"adjustments"`
}

// NewProposal creates a proposal with a generated id and sensible defaults
// (full proportion, unit exchange rate, annual cover).
func NewProposal(proposalNo, insuredName string) *Proposal {
	return &Proposal{
		ID:             uuid.NewString(),
		ProposalNo:     proposalNo,
		InsuredName:    insuredName,
		ProportionRate: decimal.NewFromInt(100),
		ExchangeRate:   decimal.NewFromInt(1),
		CoverDays:      StandardCoverDays,
	}
}

// SectionByID returns a pointer into Sections, or nil.
func (p *Proposal) SectionByID(sectionID string) *Section {
	for i := range p.Sections {
		if p.Sections[i].ID == sectionID {
			return &p.Sections[i]
		}
	}
	return nil
}

// TotalSumInsured sums section-level sum insured, falling back to the local
// item sum for sections the server has not aggregated yet.
func (p *Proposal) TotalSumInsured() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Sections {
		s := &p.Sections[i]
		if s.SectionSumInsured.IsPositive() {
			total = total.Add(s.SectionSumInsured)
		} else {
			total = total.Add(s.LocalSumInsured())
		}
	}
	return total
}

// TotalGrossPremium sums section-level premium, falling back to local
// estimates for unaggregated sections.
func (p *Proposal) TotalGrossPremium() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Sections {
		s := &p.Sections[i]
		if s.SectionGrossPremium.IsPositive() {
			total = total.Add(s.SectionGrossPremium)
		} else {
			total = total.Add(s.LocalGrossPremium())
		}
	}
	return total
}

// RiskItemCount returns the number of risk items across all sections.
func (p *Proposal) RiskItemCount() int {
	n := 0
	for i := range p.Sections {
		n += len(p.Sections[i].RiskItems)
	}
	return n
}
