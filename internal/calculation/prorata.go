package calculation

import (
	"fmt"

	"github.com/quoteline/quoteline/internal/domain"
	"github.com/shopspring/decimal"
)

// ProRataEngine applies a day-count ratio to an adjusted net premium.
type ProRataEngine struct{}

// NewProRataEngine creates a new pro-rata engine.
func NewProRataEngine() *ProRataEngine {
	return &ProRataEngine{}
}

// Apply computes proRataPremium = netPremiumDue × coverDays/standardDays,
// rounded to 2 decimal places half-up.
//
// netPremiumDue must be the authoritative figure from the most recent
// adjustment run (or, failing that, the most recent aggregate): a zero or
// negative figure is rejected as a usage error rather than computed through.
// coverDays is the user-confirmed integer, never recomputed from policy
// dates; standardDays defaults to 365 when non-positive.
func (pe *ProRataEngine) Apply(netPremiumDue decimal.Decimal, coverDays, standardDays int) (*domain.ProRataResult, error) {
	if standardDays <= 0 {
		standardDays = domain.StandardCoverDays
	}
	if coverDays <= 0 {
		return nil, fmt.Errorf("cover days must be positive, got %d", coverDays)
	}
	if !netPremiumDue.IsPositive() {
		return nil, fmt.Errorf("%w: net premium due is %s", ErrStalePremium, netPremiumDue)
	}

	days := decimal.NewFromInt(int64(coverDays))
	std := decimal.NewFromInt(int64(standardDays))
	return &domain.ProRataResult{
		NetPremiumDue:  netPremiumDue,
		CoverDays:      coverDays,
		StandardDays:   standardDays,
		ProRataFactor:  days.Div(std),
		ProRataPremium: netPremiumDue.Mul(days).Div(std).Round(2),
		IsProRated:     coverDays != standardDays,
	}, nil
}
