package web

import (
	"errors"
	"log"
	"net/http"

	"github.com/josh-w-mason/twitter-clone/internal/core/feedcache"
	"github.com/josh-w-mason/twitter-clone/internal/core/feeds"
	"github.com/josh-w-mason/twitter-clone/internal/core/tweets"
)

// serviceError converts service errors to an HTTP status and a message fit
// for the viewer
func serviceError(err error) (int, string) {
	var valErr *tweets.ValidationError
	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest, valErr.Message
	case errors.Is(err, tweets.ErrUnauthenticated):
		return http.StatusUnauthorized, "Sign in to do that."
	case errors.Is(err, tweets.ErrNotAuthorized):
		return http.StatusForbidden, "You can only delete your own tweets."
	case errors.Is(err, tweets.ErrNotFound):
		return http.StatusNotFound, "That tweet no longer exists."
	case errors.Is(err, tweets.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests. Slow down and try again."
	case errors.Is(err, tweets.ErrConflict):
		return http.StatusConflict, "That tweet changed in the meantime. Reload and try again."
	case errors.Is(err, tweets.ErrDeleteRejected):
		return http.StatusBadGateway, "The tweet could not be deleted. Try again."
	case errors.Is(err, feedcache.ErrPendingDeletion):
		return http.StatusConflict, "That tweet is being deleted."
	case feeds.IsBusy(err):
		return http.StatusConflict, "Still working on your last action. Try again in a moment."
	case errors.Is(err, feedcache.ErrInvalidKey):
		return http.StatusBadRequest, "Unknown feed."
	case errors.Is(err, feedcache.ErrNotCached):
		return http.StatusNotFound, "This feed is no longer loaded. Reload the page."
	default:
		log.Printf("web handler error: %v", err)
		return http.StatusBadGateway, "Something went wrong. Try again."
	}
}

// errorMessage is the viewer-facing text of err
func errorMessage(err error) string {
	_, msg := serviceError(err)
	return msg
}

// handleServiceError writes err as a plain-text HTTP error
func handleServiceError(w http.ResponseWriter, err error) {
	status, msg := serviceError(err)
	http.Error(w, msg, status)
}
