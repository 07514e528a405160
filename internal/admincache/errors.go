package admincache

import "errors"

var (
	// ErrAllFetchesFailed is returned by Load when no slice could be refreshed.
	ErrAllFetchesFailed = errors.New("admincache: all dashboard fetches failed")

	// ErrMutationInFlight is returned when a mutation targets an entity that
	// already has one outstanding.
	ErrMutationInFlight = errors.New("admincache: mutation already in flight for entity")

	// ErrInvalidTransition is returned when the cached copy of a campaign
	// cannot move to the requested status.
	ErrInvalidTransition = errors.New("admincache: invalid campaign status transition")

	ErrInvalidStateTransition = errors.New("admincache: invalid freshness transition")
)
