package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/quoteline/quoteline/internal/domain"
)

var oneHundred = decimal.NewFromInt(100)

// InputParser handles parsing of proposal input files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a proposal from a YAML file, assigns any missing stable
// ids and validates it.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Proposal, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var proposal domain.Proposal
	if err := yaml.Unmarshal(data, &proposal); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ip.assignIdentifiers(&proposal)
	ip.applyDefaults(&proposal)

	if err := ip.ValidateProposal(&proposal); err != nil {
		return nil, fmt.Errorf("proposal validation failed: %w", err)
	}
	return &proposal, nil
}

// assignIdentifiers fills in stable ids for the proposal, its sections and
// risk items where the file omits them, and renumbers item positions.
func (ip *InputParser) assignIdentifiers(p *domain.Proposal) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for i := range p.Sections {
		s := &p.Sections[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		for j := range s.RiskItems {
			item := &s.RiskItems[j]
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			item.SectionID = s.ID
			item.ItemNo = j + 1
		}
	}
}

// applyDefaults fills zero-valued optional fields.
func (ip *InputParser) applyDefaults(p *domain.Proposal) {
	if p.ProportionRate.IsZero() {
		p.ProportionRate = oneHundred
	}
	if p.ExchangeRate.IsZero() {
		p.ExchangeRate = decimal.NewFromInt(1)
	}
	if p.CoverDays == 0 {
		p.CoverDays = domain.StandardCoverDays
	}
	for i := range p.Sections {
		for j := range p.Sections[i].RiskItems {
			item := &p.Sections[i].RiskItems[j]
			if item.MultiplyRate.IsZero() {
				item.MultiplyRate = decimal.NewFromInt(1)
			}
		}
	}
}

// ValidateProposal validates the loaded proposal before any calculation.
func (ip *InputParser) ValidateProposal(p *domain.Proposal) error {
	if p.ProposalNo == "" {
		return fmt.Errorf("proposal number is required")
	}
	if len(p.Sections) == 0 {
		return fmt.Errorf("at least one section is required")
	}
	if p.CoverDays <= 0 {
		return fmt.Errorf("cover days must be positive, got %d", p.CoverDays)
	}
	if p.ProportionRate.IsNegative() || p.ProportionRate.GreaterThan(oneHundred) {
		return fmt.Errorf("proportion rate must be between 0 and 100, got %s", p.ProportionRate)
	}
	if err := ip.validateRates(&p.Adjustments); err != nil {
		return err
	}

	for i := range p.Sections {
		if err := ip.validateSection(&p.Sections[i]); err != nil {
			return fmt.Errorf("section %d (%s) validation failed: %w", i, p.Sections[i].Name, err)
		}
	}
	return nil
}

// validateSection validates a single section.
func (ip *InputParser) validateSection(s *domain.Section) error {
	if s.Name == "" {
		return fmt.Errorf("section name is required")
	}
	if !domain.ValidSectionName(s.Name) {
		return fmt.Errorf("unknown section name %q", s.Name)
	}
	for j := range s.RiskItems {
		item := &s.RiskItems[j]
		if item.SMICode == "" {
			return fmt.Errorf("risk item %d: smi code is required", j+1)
		}
		if item.ActualValue.IsNegative() {
			return fmt.Errorf("risk item %d: sum insured cannot be negative", j+1)
		}
		if item.ItemRate.IsNegative() {
			return fmt.Errorf("risk item %d: rate cannot be negative", j+1)
		}
		if item.Stock != nil && item.Stock.StockSumInsured.IsNegative() {
			return fmt.Errorf("risk item %d: stock sum insured cannot be negative", j+1)
		}
	}
	return nil
}

// validateRates checks every adjustment rate lies in [0,100].
func (ip *InputParser) validateRates(adj *domain.ProposalAdjustments) error {
	all := append(adj.DiscountRates(), adj.LoadingRates()...)
	for _, nr := range all {
		if nr.Rate.IsNegative() || nr.Rate.GreaterThan(oneHundred) {
			return fmt.Errorf("%s rate must be between 0 and 100, got %s", nr.Name, nr.Rate)
		}
	}
	return nil
}
