package feeds

import (
	"github.com/josh-w-mason/twitter-clone/internal/core/feedcache"
	"github.com/josh-w-mason/twitter-clone/internal/core/tweets"
)

// Session status values, as reported by the session provider
const (
	StatusAuthenticated   = "authenticated"
	StatusUnauthenticated = "unauthenticated"
)

// Viewer is the person looking at the feeds
type Viewer struct {
	ID          string
	AccessToken string
	Status      string
}

// Authenticated reports whether the viewer is signed in
func (v Viewer) Authenticated() bool {
	return v.Status == StatusAuthenticated && v.ID != ""
}

// Session bundles a viewer with the feed cache it owns
type Session struct {
	Store  *feedcache.Store
	Viewer Viewer
}

// FeedState is what the feed renderer needs to draw one feed
type FeedState struct {
	Err     error
	View    *feedcache.View
	Key     feedcache.Key
	Loading bool
}

// Tweets returns the cached tweets in order, or nil when nothing is loaded
func (s FeedState) Tweets() []tweets.Tweet {
	if s.View == nil {
		return nil
	}
	return s.View.Tweets()
}

// HasMore is nil until the first page arrives
func (s FeedState) HasMore() *bool {
	if s.View == nil {
		return nil
	}
	more := s.View.HasMore()
	return &more
}

// MoreResult is the outcome of FetchMore
type MoreResult struct {
	View   *feedcache.View
	Tweets []tweets.Tweet
}
