package appview

import (
	"errors"
	"fmt"

	"github.com/bluesky-social/indigo/atproto/atclient"

	"github.com/josh-w-mason/twitter-clone/internal/core/tweets"
)

// Typed errors for API calls.
// These allow callers to use errors.Is() instead of matching on messages.
var (
	// ErrUnauthorized indicates the access token was missing, invalid or expired (HTTP 401).
	// It also matches tweets.ErrUnauthenticated.
	ErrUnauthorized = fmt.Errorf("unauthorized: %w", tweets.ErrUnauthenticated)

	// ErrForbidden indicates the viewer may not perform the call (HTTP 403).
	// It also matches tweets.ErrNotAuthorized.
	ErrForbidden = fmt.Errorf("forbidden: %w", tweets.ErrNotAuthorized)

	// ErrNotFound indicates the tweet does not exist (HTTP 404).
	// It also matches tweets.ErrNotFound.
	ErrNotFound = fmt.Errorf("not found: %w", tweets.ErrNotFound)

	// ErrBadRequest indicates the request was malformed or invalid (HTTP 400).
	ErrBadRequest = errors.New("bad request")

	// ErrConflict indicates the call conflicted with the current server state (HTTP 409).
	// It also matches tweets.ErrConflict.
	ErrConflict = fmt.Errorf("conflict: %w", tweets.ErrConflict)

	// ErrRateLimited indicates the API is throttling this client (HTTP 429).
	// It also matches tweets.ErrRateLimited.
	ErrRateLimited = fmt.Errorf("rate limited: %w", tweets.ErrRateLimited)
)

// wrapAPIError inspects an error from atclient and wraps it with our typed errors
func wrapAPIError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var apiErr *atclient.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 400:
			return fmt.Errorf("%s: %w: %s", operation, ErrBadRequest, apiErr.Message)
		case 401:
			return fmt.Errorf("%s: %w: %s", operation, ErrUnauthorized, apiErr.Message)
		case 403:
			return fmt.Errorf("%s: %w: %s", operation, ErrForbidden, apiErr.Message)
		case 404:
			return fmt.Errorf("%s: %w: %s", operation, ErrNotFound, apiErr.Message)
		case 409:
			return fmt.Errorf("%s: %w: %s", operation, ErrConflict, apiErr.Message)
		case 429:
			return fmt.Errorf("%s: %w: %s", operation, ErrRateLimited, apiErr.Message)
		}
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}
