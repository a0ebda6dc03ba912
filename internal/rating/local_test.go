package rating

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteline/quoteline/internal/calculation"
	"github.com/quoteline/quoteline/internal/domain"
)

func TestRateItem(t *testing.T) {
	fullShare := decimal.NewFromInt(100)

	tests := []struct {
		name            string
		item            domain.CalculatedItem
		proportionRate  decimal.Decimal
		expectedPremium decimal.Decimal
		expectedNet     decimal.Decimal
	}{
		{
			name: "plain item at full proportion",
			item: domain.CalculatedItem{
				ActualValue:  decimal.NewFromInt(500000),
				ItemRate:     decimal.NewFromFloat(0.5),
				MultiplyRate: decimal.NewFromInt(1),
			},
			proportionRate:  fullShare,
			expectedPremium: decimal.NewFromInt(2500),
			expectedNet:     decimal.NewFromInt(2500),
		},
		{
			name: "zero multiplier treated as one",
			item: domain.CalculatedItem{
				ActualValue: decimal.NewFromInt(100000),
				ItemRate:    decimal.NewFromInt(1),
			},
			proportionRate:  fullShare,
			expectedPremium: decimal.NewFromInt(1000),
			expectedNet:     decimal.NewFromInt(1000),
		},
		{
			name: "half proportion halves the booked premium",
			item: domain.CalculatedItem{
				ActualValue:  decimal.NewFromInt(500000),
				ItemRate:     decimal.NewFromFloat(0.5),
				MultiplyRate: decimal.NewFromInt(1),
			},
			proportionRate:  decimal.NewFromInt(50),
			expectedPremium: decimal.NewFromInt(1250),
			expectedNet:     decimal.NewFromInt(1250),
		},
		{
			name: "stock premium and discount",
			item: domain.CalculatedItem{
				ActualValue:  decimal.NewFromInt(100000),
				ItemRate:     decimal.NewFromInt(1),
				MultiplyRate: decimal.NewFromInt(1),
				Stock: &domain.StockItem{
					StockSumInsured:   decimal.NewFromInt(50000),
					StockRate:         decimal.NewFromInt(2),
					StockDiscountRate: decimal.NewFromInt(10),
				},
			},
			proportionRate: fullShare,
			// 1000 base + 1000 stock premium, less 100 stock discount.
			expectedPremium: decimal.NewFromInt(2000),
			expectedNet:     decimal.NewFromInt(1900),
		},
		{
			name: "fea discount on the booked premium",
			item: domain.CalculatedItem{
				ActualValue:     decimal.NewFromInt(100000),
				ItemRate:        decimal.NewFromInt(1),
				MultiplyRate:    decimal.NewFromInt(1),
				FEADiscountRate: decimal.NewFromInt(5),
			},
			proportionRate:  fullShare,
			expectedPremium: decimal.NewFromInt(1000),
			expectedNet:     decimal.NewFromInt(950),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := RateItem(&tt.item, tt.proportionRate)
			assert.True(t, res.PremiumValue.Equal(tt.expectedPremium),
				"PremiumValue: expected %s, got %s", tt.expectedPremium, res.PremiumValue)
			assert.True(t, res.NetPremiumAfterDiscounts.Equal(tt.expectedNet),
				"NetPremiumAfterDiscounts: expected %s, got %s", tt.expectedNet, res.NetPremiumAfterDiscounts)
		})
	}
}

func TestRateItemShareValue(t *testing.T) {
	item := domain.CalculatedItem{
		ActualValue:  decimal.NewFromInt(500000),
		ItemRate:     decimal.NewFromFloat(0.5),
		MultiplyRate: decimal.NewFromInt(1),
	}
	res := RateItem(&item, decimal.NewFromInt(60))
	assert.True(t, res.ShareValue.Equal(decimal.NewFromInt(300000)),
		"expected 300000, got %s", res.ShareValue)
	assert.NotEmpty(t, res.PremiumValueFormula)
	assert.NotEmpty(t, res.ShareValueFormula)
}

func TestLocalServiceCalculateRiskItems(t *testing.T) {
	ls := NewLocalService()

	req := domain.RiskItemCalcRequest{
		SectionID:      "sec-a",
		ProportionRate: decimal.NewFromInt(100),
		RiskItems: []domain.CalculatedItem{
			{ItemID: "i-1", ActualValue: decimal.NewFromInt(500000), ItemRate: decimal.NewFromFloat(0.5), MultiplyRate: decimal.NewFromInt(1)},
			{ItemID: "i-2", ActualValue: decimal.NewFromInt(300000), ItemRate: decimal.NewFromInt(1), MultiplyRate: decimal.NewFromInt(1)},
		},
	}
	resp, err := ls.CalculateRiskItems(context.Background(), req)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Len(t, resp.CalculatedItems, 2)
	assert.Equal(t, "i-1", resp.CalculatedItems[0].ItemID)
	assert.True(t, resp.CalculatedItems[0].Result.PremiumValue.Equal(decimal.NewFromInt(2500)))
	assert.True(t, resp.CalculatedItems[1].Result.PremiumValue.Equal(decimal.NewFromInt(3000)))
	require.NotNil(t, resp.Totals)
	assert.True(t, resp.Totals.SectionSumInsured.Equal(decimal.NewFromInt(800000)))
	assert.True(t, resp.Totals.SectionGrossPremium.Equal(decimal.NewFromInt(5500)))

	empty, err := ls.CalculateRiskItems(context.Background(), domain.RiskItemCalcRequest{})
	require.NoError(t, err)
	assert.False(t, empty.Success)
	assert.NotEmpty(t, empty.Message)
}

func TestLocalServiceBreakdownLifecycle(t *testing.T) {
	ls := NewLocalService()
	ctx := context.Background()

	_, err := ls.GetBreakdown(ctx, "unknown")
	assert.Error(t, err, "breakdown before any aggregate is an error")

	req := domain.AggregateRequest{
		ProposalID: "prop-1",
		Sections: []domain.SectionPayload{
			{
				SectionID:      "sec-a",
				SectionName:    "Building",
				ProportionRate: decimal.NewFromInt(100),
				Items: []domain.CalculatedItem{
					{ItemID: "i-1", ActualValue: decimal.NewFromInt(500000), ItemRate: decimal.NewFromFloat(0.5), MultiplyRate: decimal.NewFromInt(1)},
				},
			},
		},
	}
	aggResp, err := ls.CalculateAggregate(ctx, req)
	require.NoError(t, err)
	require.True(t, aggResp.Success)
	require.Len(t, aggResp.SectionAggregates, 1)
	assert.True(t, aggResp.SectionAggregates[0].SectionPremium.Equal(decimal.NewFromInt(2500)))

	_, err = ls.ApplyAdjustments(ctx, domain.AdjustmentRequest{
		ProposalID:            "prop-1",
		TotalAggregatePremium: decimal.NewFromInt(2500),
		Adjustments:           domain.ProposalAdjustments{SpecialDiscountRate: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)

	_, err = ls.CalculateProRata(ctx, domain.ProRataRequest{
		ProposalID:    "prop-1",
		NetPremiumDue: decimal.NewFromInt(2250),
		CoverDays:     182,
		StandardDays:  365,
	})
	require.NoError(t, err)

	raw, err := ls.GetBreakdown(ctx, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, "prop-1", raw.ProposalID)
	require.NotNil(t, raw.Adjustments)
	assert.True(t, raw.Adjustments.NetPremiumDue.Equal(decimal.NewFromInt(2250)))
	require.NotNil(t, raw.ProRata)
	assert.Equal(t, 182, raw.ProRata.CoverDays)
	assert.Equal(t, 182, raw.Inputs.CoverDays)
	require.NotNil(t, raw.FinalResults)
	assert.True(t, raw.FinalResults.TotalGrossPremium.Equal(decimal.NewFromInt(2500)))
}

// A fetched breakdown is a snapshot: later adjustment and pro-rata calls for
// the same proposal must not show through it, and reading it concurrently
// with those calls must be safe.
func TestGetBreakdownReturnsSnapshot(t *testing.T) {
	ls := NewLocalService()
	ctx := context.Background()

	req := domain.AggregateRequest{
		ProposalID: "prop-1",
		Sections: []domain.SectionPayload{
			{
				SectionID:      "sec-a",
				SectionName:    "Building",
				ProportionRate: decimal.NewFromInt(100),
				Items: []domain.CalculatedItem{
					{ItemID: "i-1", ActualValue: decimal.NewFromInt(500000), ItemRate: decimal.NewFromFloat(0.5), MultiplyRate: decimal.NewFromInt(1)},
				},
			},
		},
	}
	_, err := ls.CalculateAggregate(ctx, req)
	require.NoError(t, err)

	snap, err := ls.GetBreakdown(ctx, "prop-1")
	require.NoError(t, err)
	require.Nil(t, snap.Adjustments)

	adjReq := domain.AdjustmentRequest{
		ProposalID:            "prop-1",
		TotalAggregatePremium: decimal.NewFromInt(2500),
		Adjustments:           domain.ProposalAdjustments{SpecialDiscountRate: decimal.NewFromInt(10)},
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if _, err := ls.ApplyAdjustments(ctx, adjReq); err != nil {
				assert.NoError(t, err)
				return
			}
		}
	}()
	for i := 0; i < 200; i++ {
		_, err := json.Marshal(snap)
		assert.NoError(t, err)
	}
	<-done

	assert.Nil(t, snap.Adjustments, "snapshot must not see later adjustments")

	fresh, err := ls.GetBreakdown(ctx, "prop-1")
	require.NoError(t, err)
	require.NotNil(t, fresh.Adjustments)
	assert.NotSame(t, snap, fresh, "each fetch gets its own copy")
	fresh.Sections[0].Items[0].ActualValue = decimal.Zero
	again, err := ls.GetBreakdown(ctx, "prop-1")
	require.NoError(t, err)
	assert.True(t, again.Sections[0].Items[0].ActualValue.Equal(decimal.NewFromInt(500000)),
		"mutating a fetched breakdown must not reach the stored one")
}

// Drives a complete two-section proposal through the session against the
// local engine: rate each section, aggregate, discount, pro-rate, and read
// the breakdown back.
func TestFullPipelineAgainstLocalService(t *testing.T) {
	ctx := context.Background()

	proposal := domain.NewProposal("P-1001", "Acme Trading Ltd")
	proposal.Adjustments.SpecialDiscountRate = decimal.NewFromInt(10)

	building := domain.NewSection("Building", "Main St")
	itemA := domain.NewRiskItem("", "SMI-01", "Warehouse")
	itemA.ActualValue = decimal.NewFromInt(500000)
	itemA.ItemRate = decimal.NewFromFloat(0.5)
	building.AddItem(itemA)

	contents := domain.NewSection("Contents", "Main St")
	itemB := domain.NewRiskItem("", "SMI-02", "Fixtures")
	itemB.ActualValue = decimal.NewFromInt(300000)
	itemB.ItemRate = decimal.NewFromInt(1)
	contents.AddItem(itemB)

	proposal.Sections = []domain.Section{*building, *contents}

	session := calculation.NewProposalSession(proposal, NewLocalService())

	require.NoError(t, session.CalculateSection(ctx, building.ID))
	require.NoError(t, session.CalculateSection(ctx, contents.ID))

	totals, err := session.CalculateAggregate(ctx)
	require.NoError(t, err)
	assert.True(t, totals.TotalAggregatePremium.Equal(decimal.NewFromInt(5500)),
		"expected 5500, got %s", totals.TotalAggregatePremium)
	assert.Equal(t, 2, totals.RiskItemCount)

	adj, err := session.ApplyAdjustments(ctx)
	require.NoError(t, err)
	assert.True(t, adj.NetPremiumDue.Equal(decimal.NewFromInt(4950)),
		"expected 4950, got %s", adj.NetPremiumDue)

	pr, err := session.ApplyProRata(ctx)
	require.NoError(t, err)
	assert.False(t, pr.IsProRated)
	assert.True(t, pr.ProRataPremium.Equal(decimal.NewFromInt(4950)))

	breakdown, err := session.Breakdown(ctx)
	require.NoError(t, err)
	assert.Equal(t, proposal.ID, breakdown.ProposalID)
	assert.Len(t, breakdown.SectionCalculations, 2)
	require.NotNil(t, breakdown.ProRata)
	assert.True(t, breakdown.ProRata.ProRataPremium.Equal(decimal.NewFromInt(4950)))
	assert.Equal(t, 2, breakdown.FinalResults.RiskItemCount)
}
