package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/quoteline/quoteline/internal/domain"
)

func TestAdjustmentEngineApply(t *testing.T) {
	engine := NewAdjustmentEngine()

	tests := []struct {
		name              string
		startingPremium   decimal.Decimal
		rates             domain.ProposalAdjustments
		expectedDiscounts decimal.Decimal
		expectedLoadings  decimal.Decimal
		expectedNet       decimal.Decimal
	}{
		{
			name:            "discount and loading against the same base",
			startingPremium: decimal.NewFromInt(100000),
			rates: domain.ProposalAdjustments{
				SpecialDiscountRate: decimal.NewFromInt(10),
				TheftLoadingRate:    decimal.NewFromInt(5),
			},
			expectedDiscounts: decimal.NewFromInt(10000),
			expectedLoadings:  decimal.NewFromInt(5000),
			expectedNet:       decimal.NewFromInt(95000),
		},
		{
			name:            "two discounts do not compound",
			startingPremium: decimal.NewFromInt(100000),
			rates: domain.ProposalAdjustments{
				SpecialDiscountRate:    decimal.NewFromInt(10),
				DeductibleDiscountRate: decimal.NewFromInt(10),
			},
			expectedDiscounts: decimal.NewFromInt(20000),
			expectedLoadings:  decimal.Zero,
			expectedNet:       decimal.NewFromInt(80000),
		},
		{
			name:              "all zero rates pass the premium through",
			startingPremium:   decimal.NewFromInt(5500),
			rates:             domain.ProposalAdjustments{},
			expectedDiscounts: decimal.Zero,
			expectedLoadings:  decimal.Zero,
			expectedNet:       decimal.NewFromInt(5500),
		},
		{
			name:            "net premium floored at zero",
			startingPremium: decimal.NewFromInt(1000),
			rates: domain.ProposalAdjustments{
				SpecialDiscountRate: decimal.NewFromInt(60),
				SpreadDiscountRate:  decimal.NewFromInt(60),
			},
			expectedDiscounts: decimal.NewFromInt(1200),
			expectedLoadings:  decimal.Zero,
			expectedNet:       decimal.Zero,
		},
		{
			name:            "negative starting premium clamped to zero",
			startingPremium: decimal.NewFromInt(-500),
			rates: domain.ProposalAdjustments{
				SpecialDiscountRate: decimal.NewFromInt(10),
			},
			expectedDiscounts: decimal.Zero,
			expectedLoadings:  decimal.Zero,
			expectedNet:       decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := engine.Apply(tt.startingPremium, tt.rates)
			assert.True(t, res.TotalDiscounts.Equal(tt.expectedDiscounts),
				"TotalDiscounts: expected %s, got %s", tt.expectedDiscounts, res.TotalDiscounts)
			assert.True(t, res.TotalLoadings.Equal(tt.expectedLoadings),
				"TotalLoadings: expected %s, got %s", tt.expectedLoadings, res.TotalLoadings)
			assert.True(t, res.NetPremiumDue.Equal(tt.expectedNet),
				"NetPremiumDue: expected %s, got %s", tt.expectedNet, res.NetPremiumDue)
		})
	}
}

func TestAdjustmentEngineAppliedLines(t *testing.T) {
	engine := NewAdjustmentEngine()

	rates := domain.ProposalAdjustments{
		SpecialDiscountRate: decimal.NewFromInt(10),
		LTADiscountRate:     decimal.NewFromInt(5),
		SRCCLoadingRate:     decimal.NewFromInt(2),
	}
	res := engine.Apply(decimal.NewFromInt(10000), rates)

	// Only non-zero rates produce lines, in display order.
	assert.Len(t, res.DiscountsApplied, 2)
	assert.Equal(t, "Special Discount", res.DiscountsApplied[0].Name)
	assert.Equal(t, "LTA Discount", res.DiscountsApplied[1].Name)
	assert.True(t, res.DiscountsApplied[0].Amount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, res.DiscountsApplied[1].Amount.Equal(decimal.NewFromInt(500)))

	assert.Len(t, res.LoadingsApplied, 1)
	assert.Equal(t, "SRCC Loading", res.LoadingsApplied[0].Name)
	assert.True(t, res.LoadingsApplied[0].Amount.Equal(decimal.NewFromInt(200)))
}

func TestAdjustmentEngineNamedAmounts(t *testing.T) {
	engine := NewAdjustmentEngine()

	rates := domain.ProposalAdjustments{
		SpecialDiscountRate:    decimal.NewFromInt(1),
		DeductibleDiscountRate: decimal.NewFromInt(2),
		SpreadDiscountRate:     decimal.NewFromInt(3),
		LTADiscountRate:        decimal.NewFromInt(4),
		OtherDiscountsRate:     decimal.NewFromInt(5),
		TheftLoadingRate:       decimal.NewFromInt(6),
		SRCCLoadingRate:        decimal.NewFromInt(7),
		OtherLoading2Rate:      decimal.NewFromInt(8),
		OtherLoadingsRate:      decimal.NewFromInt(9),
	}
	res := engine.Apply(decimal.NewFromInt(100), rates)

	assert.True(t, res.SpecialDiscountAmount.Equal(decimal.NewFromInt(1)))
	assert.True(t, res.DeductibleDiscountAmount.Equal(decimal.NewFromInt(2)))
	assert.True(t, res.SpreadDiscountAmount.Equal(decimal.NewFromInt(3)))
	assert.True(t, res.LTADiscountAmount.Equal(decimal.NewFromInt(4)))
	assert.True(t, res.OtherDiscountsAmount.Equal(decimal.NewFromInt(5)))
	assert.True(t, res.TheftLoadingAmount.Equal(decimal.NewFromInt(6)))
	assert.True(t, res.SRCCLoadingAmount.Equal(decimal.NewFromInt(7)))
	assert.True(t, res.OtherLoading2Amount.Equal(decimal.NewFromInt(8)))
	assert.True(t, res.OtherLoadingsAmount.Equal(decimal.NewFromInt(9)))
	assert.True(t, res.TotalDiscounts.Equal(decimal.NewFromInt(15)))
	assert.True(t, res.TotalLoadings.Equal(decimal.NewFromInt(30)))
	assert.True(t, res.NetPremiumDue.Equal(decimal.NewFromInt(115)))
}

func TestStartingPremium(t *testing.T) {
	aggregated := domain.Section{
		SectionGrossPremium: decimal.NewFromInt(2500),
	}
	unrated := domain.Section{
		RiskItems: []domain.RiskItem{
			{
				ActualValue:  decimal.NewFromInt(300000),
				ItemRate:     decimal.NewFromInt(1),
				MultiplyRate: decimal.NewFromInt(1),
			},
		},
	}

	total := StartingPremium([]domain.Section{aggregated, unrated})
	assert.True(t, total.Equal(decimal.NewFromInt(5500)),
		"expected 5500, got %s", total)
}
