package feedcache

import "errors"

var (
	// ErrInvalidKey indicates a feed key string could not be parsed
	ErrInvalidKey = errors.New("invalid feed key")

	// ErrMutationInFlight indicates another mutation of the same kind is already
	// running for this tweet in this session
	ErrMutationInFlight = errors.New("a mutation for this tweet is already in flight")

	// ErrPendingDeletion indicates the tweet is being deleted, so it cannot be liked
	ErrPendingDeletion = errors.New("tweet is pending deletion")

	// ErrLoadInFlight indicates a page of this feed is already being fetched
	ErrLoadInFlight = errors.New("feed page already loading")

	// ErrNotCached indicates the feed has no cached view to extend
	ErrNotCached = errors.New("feed is not cached")

	// ErrNoMorePages indicates the server reported no further pages for the feed
	ErrNoMorePages = errors.New("feed has no more pages")
)
