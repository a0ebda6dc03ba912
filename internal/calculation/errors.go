package calculation

import "errors"

var (
	// ErrUnmatchedItem is returned when a calculated item from the rating
	// service cannot be matched to any local risk item by id. The response is
	// rejected outright instead of being attached to an arbitrary item.
	ErrUnmatchedItem = errors.New("calculated item does not match any local risk item")

	// ErrEmptyAggregate is returned when an aggregate call succeeds but
	// carries zero section aggregates. That almost always signals a payload
	// contract mismatch, not a legitimately empty proposal.
	ErrEmptyAggregate = errors.New("aggregate response contains no section aggregates")

	// ErrStaleFetch is returned when a collection fetch completes after a
	// newer fetch of the same kind has superseded it.
	ErrStaleFetch = errors.New("fetch superseded by a newer request")

	// ErrStalePremium is returned when the pro-rata step is invoked without
	// an authoritative net premium from a preceding stage.
	ErrStalePremium = errors.New("no authoritative net premium; run adjustments or an aggregate first")

	// ErrApplyInFlight is returned when a per-item apply is requested while
	// one is already pending for the same item.
	ErrApplyInFlight = errors.New("a calculation is already in flight for this item")
)
