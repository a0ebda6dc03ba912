package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteline/quoteline/internal/domain"
)

func twoSectionProposal(t *testing.T) *domain.Proposal {
	t.Helper()
	proposal := domain.NewProposal("P-1001", "Acme Trading Ltd")

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
	return proposal
}

func TestBuildPayloadUsesCachedCalculatedItemsVerbatim(t *testing.T) {
	ma := NewMultiSectionAggregate()
	cc := NewCalcContext()
	proposal := twoSectionProposal(t)
	buildingID := proposal.Sections[0].ID

	cached := []domain.CalculatedItem{
		{
			ItemID:      proposal.Sections[0].RiskItems[0].ID,
			SMICode:     "SMI-01",
			ActualValue: decimal.NewFromInt(500000),
			Result: domain.RiskItemResult{
				PremiumValue:             decimal.NewFromInt(2500),
				NetPremiumAfterDiscounts: decimal.NewFromInt(2500),
			},
		},
	}
	cc.PutCalculated(buildingID, cached)

	req, err := ma.BuildPayload(proposal, cc)
	require.NoError(t, err)
	require.Len(t, req.Sections, 2)
	assert.Equal(t, proposal.ID, req.ProposalID)

	// Cached section ships the server-computed array untouched.
	require.Len(t, req.Sections[0].Items, 1)
	assert.True(t, req.Sections[0].Items[0].Result.PremiumValue.Equal(decimal.NewFromInt(2500)))

	// Uncached section ships raw items with zeroed computed fields.
	require.Len(t, req.Sections[1].Items, 1)
	assert.True(t, req.Sections[1].Items[0].Result.PremiumValue.IsZero())
	assert.Equal(t, proposal.Sections[1].RiskItems[0].ID, req.Sections[1].Items[0].ItemID)
}

func TestBuildPayloadRejectsEmptyProposal(t *testing.T) {
	ma := NewMultiSectionAggregate()
	proposal := domain.NewProposal("P-1002", "Empty Co")
	_, err := ma.BuildPayload(proposal, NewCalcContext())
	assert.Error(t, err)
}

func TestMergeAggregates(t *testing.T) {
	ma := NewMultiSectionAggregate()
	proposal := twoSectionProposal(t)

	aggs := []domain.SectionAggregate{
		{
			SectionID:         proposal.Sections[0].ID,
			SectionSumInsured: decimal.NewFromInt(500000),
			SectionPremium:    decimal.NewFromInt(2500),
			SectionNetPremium: decimal.NewFromInt(2500),
			RiskItemCount:     1,
		},
		{
			SectionID:         proposal.Sections[1].ID,
			SectionSumInsured: decimal.NewFromInt(300000),
			SectionPremium:    decimal.NewFromInt(3000),
			SectionNetPremium: decimal.NewFromInt(3000),
			RiskItemCount:     1,
		},
	}

	totals, err := ma.MergeAggregates(proposal, aggs)
	require.NoError(t, err)

	assert.True(t, totals.TotalSumInsured.Equal(decimal.NewFromInt(800000)))
	assert.True(t, totals.TotalAggregatePremium.Equal(decimal.NewFromInt(5500)))
	assert.True(t, totals.TotalNetPremium.Equal(decimal.NewFromInt(5500)))
	assert.Equal(t, 2, totals.SectionCount)
	assert.Equal(t, 2, totals.RiskItemCount)

	assert.True(t, proposal.Sections[0].SectionGrossPremium.Equal(decimal.NewFromInt(2500)))
	assert.True(t, proposal.Sections[1].SectionGrossPremium.Equal(decimal.NewFromInt(3000)))
}

func TestMergeAggregatesEmptyResponse(t *testing.T) {
	ma := NewMultiSectionAggregate()
	proposal := twoSectionProposal(t)

	_, err := ma.MergeAggregates(proposal, nil)
	assert.ErrorIs(t, err, ErrEmptyAggregate, "an empty aggregate list is a contract mismatch, not a zero premium")
	assert.True(t, proposal.Sections[0].SectionGrossPremium.IsZero())
}

func TestMergeAggregatesUnknownSectionWritesNothing(t *testing.T) {
	ma := NewMultiSectionAggregate()
	proposal := twoSectionProposal(t)

	aggs := []domain.SectionAggregate{
		{SectionID: proposal.Sections[0].ID, SectionPremium: decimal.NewFromInt(2500)},
		{SectionID: "ghost", SectionPremium: decimal.NewFromInt(999)},
	}

	_, err := ma.MergeAggregates(proposal, aggs)
	assert.Error(t, err)
	assert.True(t, proposal.Sections[0].SectionGrossPremium.IsZero(),
		"a partially matching response must not write any section")
}

func TestCalcContext(t *testing.T) {
	cc := NewCalcContext()

	items := []domain.CalculatedItem{{ItemID: "i-1"}}
	cc.PutCalculated("sec-a", items)
	items[0].ItemID = "mutated"
	assert.Equal(t, "i-1", cc.Calculated("sec-a")[0].ItemID, "cache must hold its own copy")

	cc.Invalidate("sec-a")
	assert.Nil(t, cc.Calculated("sec-a"), "invalidation drops the cached array")

	cc.PutCalculated("sec-a", items)
	cc.Invalidate("sec-b")
	assert.NotNil(t, cc.Calculated("sec-a"), "invalidation is per section")
}
