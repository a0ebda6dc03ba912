package calculation

import (
	"context"
	"fmt"
	"sync"

	"github.com/quoteline/quoteline/internal/domain"
	"github.com/shopspring/decimal"
)

// SyncState tracks which source the proposal's displayed totals come from.
type SyncState int

const (
	// StateClean means no local edits and no server calculation yet.
	StateClean SyncState = iota
	// StateLocallyEdited means the local edit buffer is ahead of the last
	// server calculation; only locally-summed totals may be shown.
	StateLocallyEdited
	// StateServerSynced means the last server calculation covers the current
	// section contents.
	StateServerSynced
)

func (s SyncState) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateLocallyEdited:
		return "locally-edited"
	case StateServerSynced:
		return "server-synced"
	default:
		return "unknown"
	}
}

// TotalsSource identifies which of the three totals states is current.
type TotalsSource int

const (
	// SourceLocal: raw locally-summed section totals.
	SourceLocal TotalsSource = iota
	// SourceAggregate: a server-calculated aggregate.
	SourceAggregate
	// SourceFinal: a server-adjusted / pro-rated final figure.
	SourceFinal
)

func (ts TotalsSource) String() string {
	switch ts {
	case SourceLocal:
		return "local"
	case SourceAggregate:
		return "aggregate"
	case SourceFinal:
		return "final"
	default:
		return "unknown"
	}
}

// TotalsView is the totals snapshot handed to display surfaces, tagged with
// its source so stale aggregates are never silently mixed with fresh edits.
type TotalsView struct {
	Source          TotalsSource
	TotalSumInsured decimal.Decimal
	TotalPremium    decimal.Decimal
}

// FetchToken stamps a whole-collection fetch with the generation current at
// its start. A commit presenting a superseded token is discarded.
type FetchToken struct {
	gen uint64
}

// ProposalSession owns one proposal's calculation lifecycle: the canonical
// section list, the calculation context, in-flight apply markers and the
// fetch generation. All writes replace whole sections so concurrent readers
// never observe a half-updated one.
type ProposalSession struct {
	mu  sync.Mutex
	svc Service

	proposal *domain.Proposal
	state    SyncState
	calc     *CalcContext

	sections   *SectionAggregator
	multi      *MultiSectionAggregate
	adjust     *AdjustmentEngine
	prorata    *ProRataEngine
	normalizer *BreakdownNormalizer

	inflight map[string]struct{}
	fetchGen uint64
	editSeq  uint64
	itemSeq  map[string]uint64

	lastAggregate  *domain.AggregateTotals
	lastAdjustment *domain.AdjustmentResult
	lastProRata    *domain.ProRataResult
}

// NewProposalSession creates a session around a proposal and a rating
// service.
func NewProposalSession(proposal *domain.Proposal, svc Service) *ProposalSession {
	return &ProposalSession{
		svc:        svc,
		proposal:   proposal,
		state:      StateClean,
		calc:       NewCalcContext(),
		sections:   NewSectionAggregator(),
		multi:      NewMultiSectionAggregate(),
		adjust:     NewAdjustmentEngine(),
		prorata:    NewProRataEngine(),
		normalizer: NewBreakdownNormalizer(),
		inflight:   make(map[string]struct{}),
		itemSeq:    make(map[string]uint64),
	}
}

// State returns the session's sync state.
func (ps *ProposalSession) State() SyncState {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.state
}

// AuthoritativeSections returns a deduplicated deep copy of the canonical
// section list together with the state that qualifies it.
func (ps *ProposalSession) AuthoritativeSections() ([]domain.Section, SyncState) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	deduped := DedupSections(ps.proposal.Sections)
	out := make([]domain.Section, 0, len(deduped))
	for i := range deduped {
		out = append(out, deduped[i].Clone())
	}
	return out, ps.state
}

// AddSection creates a section in the proposal. The name must come from the
// controlled vocabulary.
func (ps *ProposalSession) AddSection(name, location string) (string, error) {
	if !domain.ValidSectionName(name) {
		return "", fmt.Errorf("unknown section name %q", name)
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	section := domain.NewSection(name, location)
	ps.proposal.Sections = append(ps.proposal.Sections, *section)
	ps.markEditedLocked("")
	return section.ID, nil
}

// RemoveSection deletes a section by id and purges its cached calculations.
func (ps *ProposalSession) RemoveSection(sectionID string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	idx := -1
	for i := range ps.proposal.Sections {
		if ps.proposal.Sections[i].ID == sectionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("proposal has no section %s", sectionID)
	}
	ps.proposal.Sections = append(ps.proposal.Sections[:idx], ps.proposal.Sections[idx+1:]...)
	ps.calc.Invalidate(sectionID)
	ps.markEditedLocked("")
	return nil
}

// AddItem appends a risk item to a section.
func (ps *ProposalSession) AddItem(sectionID string, item *domain.RiskItem) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	section := ps.proposal.SectionByID(sectionID)
	if section == nil {
		return fmt.Errorf("proposal has no section %s", sectionID)
	}
	section.AddItem(item)
	ps.markEditedLocked(item.ID)
	return nil
}

// RemoveItem deletes a risk item; remaining items are renumbered 1..n-1.
func (ps *ProposalSession) RemoveItem(sectionID, itemID string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	section := ps.proposal.SectionByID(sectionID)
	if section == nil {
		return fmt.Errorf("proposal has no section %s", sectionID)
	}
	if err := section.RemoveItem(itemID); err != nil {
		return err
	}
	delete(ps.itemSeq, itemID)
	ps.calc.Invalidate(sectionID)
	ps.markEditedLocked("")
	return nil
}

// MutateItem applies an edit to a risk item's rating inputs. The item's
// computed fields become stale (kept for display, no longer authoritative)
// and the session drops to locally-edited.
func (ps *ProposalSession) MutateItem(sectionID, itemID string, edit func(*domain.RiskItem)) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	section := ps.proposal.SectionByID(sectionID)
	if section == nil {
		return fmt.Errorf("proposal has no section %s", sectionID)
	}
	item := section.ItemByID(itemID)
	if item == nil {
		return fmt.Errorf("section %s has no risk item %s", sectionID, itemID)
	}
	edit(item)
	item.Invalidate()
	ps.calc.Invalidate(sectionID)
	ps.markEditedLocked(itemID)
	return nil
}

// markEditedLocked records a local edit: bumps the edit sequence (defusing
// in-flight item merges for itemID when given), supersedes in-flight
// collection fetches, and drops the state to locally-edited.
func (ps *ProposalSession) markEditedLocked(itemID string) {
	ps.editSeq++
	if itemID != "" {
		ps.itemSeq[itemID] = ps.editSeq
	}
	ps.fetchGen++
	ps.state = StateLocallyEdited
}

// IsApplying reports whether a per-item apply is in flight for the item, so
// its control surface can disable re-entry.
func (ps *ProposalSession) IsApplying(sectionID, itemID string) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	_, ok := ps.inflight[applyKey(sectionID, itemID)]
	return ok
}

func applyKey(sectionID, itemID string) string {
	return sectionID + "|" + itemID
}

// ApplyItem rates a single item and merges the result by id. While the
// request is in flight the item is marked applying; a second apply for the
// same item is rejected. If the item is edited while the request is in
// flight, the response is discarded so the edit is preserved.
func (ps *ProposalSession) ApplyItem(ctx context.Context, sectionID, itemID string) error {
	key := applyKey(sectionID, itemID)

	ps.mu.Lock()
	if _, ok := ps.inflight[key]; ok {
		ps.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrApplyInFlight, key)
	}
	section := ps.proposal.SectionByID(sectionID)
	if section == nil {
		ps.mu.Unlock()
		return fmt.Errorf("proposal has no section %s", sectionID)
	}
	calc := NewRiskItemCalculator()
	req, err := calc.BuildItemRequest(section, itemID, ps.proposal.SubRiskCode, ps.proposal.ProportionRate)
	if err != nil {
		ps.mu.Unlock()
		return err
	}
	ps.inflight[key] = struct{}{}
	seqAtSend := ps.itemSeq[itemID]
	ps.mu.Unlock()

	resp, err := ps.svc.CalculateRiskItems(ctx, req)

	ps.mu.Lock()
	defer ps.mu.Unlock()
	delete(ps.inflight, key)

	if err != nil {
		return fmt.Errorf("apply item %s: %w", itemID, err)
	}
	if !resp.Success {
		return fmt.Errorf("apply item %s: rating service rejected the request: %s", itemID, resp.Message)
	}
	if ps.itemSeq[itemID] != seqAtSend {
		return fmt.Errorf("%w: item %s edited while applying", ErrStaleFetch, itemID)
	}
	section = ps.proposal.SectionByID(sectionID)
	if section == nil {
		return fmt.Errorf("%w: section %s removed while applying", ErrStaleFetch, sectionID)
	}
	work := section.Clone()
	if err := calc.MergeResults(&work, resp.CalculatedItems); err != nil {
		return err
	}
	*section = work
	return nil
}

// CalculateSection runs "calculate all" for a section: every current item is
// sent in one request and each returned item merges back by id. Items edited
// while the request was in flight keep their edits (their stale results are
// not overwritten); everything else is installed, the section totals and
// lastCalculated are updated, and the calculated array is cached for later
// aggregate payloads.
func (ps *ProposalSession) CalculateSection(ctx context.Context, sectionID string) error {
	ps.mu.Lock()
	section := ps.proposal.SectionByID(sectionID)
	if section == nil {
		ps.mu.Unlock()
		return fmt.Errorf("proposal has no section %s", sectionID)
	}
	calc := NewRiskItemCalculator()
	req, err := calc.BuildSectionRequest(section, ps.proposal.SubRiskCode, ps.proposal.ProportionRate)
	if err != nil {
		ps.mu.Unlock()
		return err
	}
	seqAtSend := make(map[string]uint64, len(req.RiskItems))
	for _, item := range req.RiskItems {
		seqAtSend[item.ItemID] = ps.itemSeq[item.ItemID]
	}
	editSeqAtSend := ps.editSeq
	ps.mu.Unlock()

	resp, err := ps.svc.CalculateRiskItems(ctx, req)

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if err != nil {
		return fmt.Errorf("calculate section %s: %w", sectionID, err)
	}
	if !resp.Success {
		return fmt.Errorf("calculate section %s: rating service rejected the request: %s", sectionID, resp.Message)
	}
	section = ps.proposal.SectionByID(sectionID)
	if section == nil {
		return fmt.Errorf("%w: section %s removed while calculating", ErrStaleFetch, sectionID)
	}

	// Keep results for items untouched since the request went out; drop the
	// rest so local edits survive.
	mergeable := make([]domain.CalculatedItem, 0, len(resp.CalculatedItems))
	for _, ci := range resp.CalculatedItems {
		sent, known := seqAtSend[ci.ItemID]
		if !known {
			return fmt.Errorf("%w: item %q in section %s", ErrUnmatchedItem, ci.ItemID, sectionID)
		}
		if ps.itemSeq[ci.ItemID] != sent {
			continue
		}
		if section.ItemByID(ci.ItemID) == nil {
			continue
		}
		mergeable = append(mergeable, ci)
	}

	work := section.Clone()
	if err := calc.MergeResults(&work, mergeable); err != nil {
		return err
	}
	if resp.Totals != nil {
		work.SectionSumInsured = resp.Totals.SectionSumInsured
		work.SectionGrossPremium = resp.Totals.SectionGrossPremium
		work.SectionNetPremium = resp.Totals.SectionNetPremium
	}
	ts := ps.sections.now()
	work.LastCalculated = &ts
	*section = work

	ps.calc.PutCalculated(sectionID, mergeable)
	if ps.editSeq == editSeqAtSend {
		ps.state = StateServerSynced
	}
	return nil
}

// beginFetchLocked opens a new whole-collection fetch generation.
func (ps *ProposalSession) beginFetchLocked() FetchToken {
	ps.fetchGen++
	return FetchToken{gen: ps.fetchGen}
}

// tokenCurrentLocked reports whether the token still names the latest fetch.
func (ps *ProposalSession) tokenCurrentLocked(t FetchToken) bool {
	return t.gen == ps.fetchGen
}

// CalculateAggregate builds the aggregate payload from the most
// authoritative per-section source (cached calculated arrays, else raw
// items), dispatches it, and merges the per-section aggregates back strictly
// by section id. A response superseded by a newer fetch or a local edit is
// discarded; an empty aggregate list is surfaced as a contract error.
func (ps *ProposalSession) CalculateAggregate(ctx context.Context) (*domain.AggregateTotals, error) {
	ps.mu.Lock()
	token := ps.beginFetchLocked()
	req, err := ps.multi.BuildPayload(ps.proposal, ps.calc)
	if err != nil {
		ps.mu.Unlock()
		return nil, err
	}
	ps.mu.Unlock()

	resp, err := ps.svc.CalculateAggregate(ctx, req)

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("calculate aggregate: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("calculate aggregate: rating service rejected the request: %s", resp.Message)
	}
	if !ps.tokenCurrentLocked(token) {
		return nil, fmt.Errorf("%w: aggregate response discarded", ErrStaleFetch)
	}

	totals, err := ps.multi.MergeAggregates(ps.proposal, resp.SectionAggregates)
	if err != nil {
		return nil, err
	}
	ps.lastAggregate = &totals
	ps.state = StateServerSynced
	return &totals, nil
}

// ApplyAdjustments applies the proposal's nine named rates against the
// summed section premium. The result is cached so the pro-rata step and any
// redisplay use this exact figure until adjustments are re-applied.
func (ps *ProposalSession) ApplyAdjustments(ctx context.Context) (*domain.AdjustmentResult, error) {
	ps.mu.Lock()
	starting := StartingPremium(ps.proposal.Sections)
	req := domain.AdjustmentRequest{
		ProposalID:            ps.proposal.ID,
		TotalAggregatePremium: starting,
		Adjustments:           ps.proposal.Adjustments,
	}
	editSeqAtSend := ps.editSeq
	ps.mu.Unlock()

	res, err := ps.svc.ApplyAdjustments(ctx, req)

	ps.mu.Lock()
	defer ps.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("apply adjustments: %w", err)
	}
	if ps.editSeq != editSeqAtSend {
		return nil, fmt.Errorf("%w: adjustment response discarded", ErrStaleFetch)
	}
	ps.lastAdjustment = res
	ps.lastProRata = nil
	return res, nil
}

// ApplyProRata runs the day-count adjustment against the authoritative net
// premium: the cached adjustment result when one exists, else the most
// recent aggregate net premium. Calling without either is a usage error.
func (ps *ProposalSession) ApplyProRata(ctx context.Context) (*domain.ProRataResult, error) {
	ps.mu.Lock()
	if ps.proposal.CoverDays <= 0 {
		ps.mu.Unlock()
		return nil, fmt.Errorf("cover days must be positive, got %d", ps.proposal.CoverDays)
	}
	net, err := ps.authoritativeNetPremiumLocked()
	if err != nil {
		ps.mu.Unlock()
		return nil, err
	}
	req := domain.ProRataRequest{
		ProposalID:    ps.proposal.ID,
		NetPremiumDue: net,
		CoverDays:     ps.proposal.CoverDays,
		StandardDays:  domain.StandardCoverDays,
	}
	editSeqAtSend := ps.editSeq
	ps.mu.Unlock()

	res, err := ps.svc.CalculateProRata(ctx, req)

	ps.mu.Lock()
	defer ps.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("calculate pro-rata: %w", err)
	}
	if ps.editSeq != editSeqAtSend {
		return nil, fmt.Errorf("%w: pro-rata response discarded", ErrStaleFetch)
	}
	ps.lastProRata = res
	return res, nil
}

// authoritativeNetPremiumLocked resolves the figure the pro-rata step may
// consume: last adjustment result, else last aggregate, in that order.
func (ps *ProposalSession) authoritativeNetPremiumLocked() (decimal.Decimal, error) {
	if ps.lastAdjustment != nil && ps.lastAdjustment.NetPremiumDue.IsPositive() {
		return ps.lastAdjustment.NetPremiumDue, nil
	}
	if ps.lastAggregate != nil {
		if ps.lastAggregate.TotalNetPremium.IsPositive() {
			return ps.lastAggregate.TotalNetPremium, nil
		}
		if ps.lastAggregate.TotalAggregatePremium.IsPositive() {
			return ps.lastAggregate.TotalAggregatePremium, nil
		}
	}
	return decimal.Zero, ErrStalePremium
}

// Breakdown fetches the raw calculation breakdown and normalizes it.
func (ps *ProposalSession) Breakdown(ctx context.Context) (*domain.CalculationBreakdown, error) {
	ps.mu.Lock()
	proposalID := ps.proposal.ID
	ps.mu.Unlock()

	raw, err := ps.svc.GetBreakdown(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("fetch breakdown: %w", err)
	}
	return ps.normalizer.Normalize(raw), nil
}

// CurrentTotals reports the totals to display and which of the three states
// they come from. A locally-edited session always falls back to local sums;
// cached server figures are shown only while they still cover the section
// contents.
func (ps *ProposalSession) CurrentTotals() TotalsView {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.state != StateLocallyEdited {
		if ps.lastProRata != nil {
			return TotalsView{
				Source:          SourceFinal,
				TotalSumInsured: ps.aggregateSumInsuredLocked(),
				TotalPremium:    ps.lastProRata.ProRataPremium,
			}
		}
		if ps.lastAdjustment != nil {
			return TotalsView{
				Source:          SourceFinal,
				TotalSumInsured: ps.aggregateSumInsuredLocked(),
				TotalPremium:    ps.lastAdjustment.NetPremiumDue,
			}
		}
		if ps.lastAggregate != nil {
			return TotalsView{
				Source:          SourceAggregate,
				TotalSumInsured: ps.lastAggregate.TotalSumInsured,
				TotalPremium:    ps.lastAggregate.TotalAggregatePremium,
			}
		}
	}
	return TotalsView{
		Source:          SourceLocal,
		TotalSumInsured: ps.proposal.TotalSumInsured(),
		TotalPremium:    ps.proposal.TotalGrossPremium(),
	}
}

func (ps *ProposalSession) aggregateSumInsuredLocked() decimal.Decimal {
	if ps.lastAggregate != nil {
		return ps.lastAggregate.TotalSumInsured
	}
	return ps.proposal.TotalSumInsured()
}
