package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRiskItemDefaults(t *testing.T) {
	item := NewRiskItem("sec-1", "SMI-01", "  Warehouse  ")

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "sec-1", item.SectionID)
	assert.Equal(t, "Warehouse", item.Description)
	assert.True(t, item.MultiplyRate.Equal(decimal.NewFromInt(1)))
	assert.Nil(t, item.Computed)

	other := NewRiskItem("sec-1", "SMI-01", "Warehouse")
	assert.NotEqual(t, item.ID, other.ID, "every item gets its own id")
}

func TestRiskItemResultLifecycle(t *testing.T) {
	item := NewRiskItem("sec-1", "SMI-01", "Warehouse")

	// Invalidate before any result is a no-op.
	item.Invalidate()
	assert.False(t, item.Stale)
	assert.False(t, item.HasFreshResult())

	item.SetResult(RiskItemResult{PremiumValue: decimal.NewFromInt(2500)})
	assert.True(t, item.HasFreshResult())

	item.Invalidate()
	assert.False(t, item.HasFreshResult())
	require.NotNil(t, item.Computed, "stale values are kept, not zeroed")
	assert.True(t, item.Computed.PremiumValue.Equal(decimal.NewFromInt(2500)))

	// A fresh result clears the stale flag.
	item.SetResult(RiskItemResult{PremiumValue: decimal.NewFromInt(3000)})
	assert.True(t, item.HasFreshResult())
}

func TestEstimatedPremium(t *testing.T) {
	tests := []struct {
		name     string
		value    decimal.Decimal
		rate     decimal.Decimal
		mult     decimal.Decimal
		expected decimal.Decimal
	}{
		{
			name:     "basic estimate",
			value:    decimal.NewFromInt(500000),
			rate:     decimal.NewFromFloat(0.5),
			mult:     decimal.NewFromInt(1),
			expected: decimal.NewFromInt(2500),
		},
		{
			name:     "multiplier scales the estimate",
			value:    decimal.NewFromInt(100000),
			rate:     decimal.NewFromInt(1),
			mult:     decimal.NewFromFloat(1.5),
			expected: decimal.NewFromInt(1500),
		},
		{
			name:     "zero multiplier treated as one",
			value:    decimal.NewFromInt(100000),
			rate:     decimal.NewFromInt(1),
			mult:     decimal.Zero,
			expected: decimal.NewFromInt(1000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := NewRiskItem("", "SMI-01", "Warehouse")
			item.ActualValue = tt.value
			item.ItemRate = tt.rate
			item.MultiplyRate = tt.mult
			got := item.EstimatedPremium()
			assert.True(t, got.Equal(tt.expected), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestProposalTotalsFallBackToLocalSums(t *testing.T) {
	proposal := NewProposal("P-1001", "Acme Trading Ltd")
	assert.Equal(t, StandardCoverDays, proposal.CoverDays)
	assert.True(t, proposal.ProportionRate.Equal(decimal.NewFromInt(100)))

	aggregated := *NewSection("Building", "Main St")
	aggregated.SectionSumInsured = decimal.NewFromInt(500000)
	aggregated.SectionGrossPremium = decimal.NewFromInt(2500)

	local := *NewSection("Contents", "Main St")
	item := NewRiskItem("", "SMI-02", "Fixtures")
	item.ActualValue = decimal.NewFromInt(300000)
	item.ItemRate = decimal.NewFromInt(1)
	local.AddItem(item)

	proposal.Sections = []Section{aggregated, local}

	assert.True(t, proposal.TotalSumInsured().Equal(decimal.NewFromInt(800000)))
	assert.True(t, proposal.TotalGrossPremium().Equal(decimal.NewFromInt(5500)))
	assert.Equal(t, 1, proposal.RiskItemCount())
}

func TestAdjustmentRateDisplayOrder(t *testing.T) {
	adj := ProposalAdjustments{}

	discounts := adj.DiscountRates()
	require.Len(t, discounts, 5)
	assert.Equal(t, "Special Discount", discounts[0].Name)
	assert.Equal(t, "Other Discounts", discounts[4].Name)

	loadings := adj.LoadingRates()
	require.Len(t, loadings, 4)
	assert.Equal(t, "Theft Loading", loadings[0].Name)
	assert.Equal(t, "Other Loadings", loadings[3].Name)
}
