package feeds

import (
	"context"

	"github.com/josh-w-mason/twitter-clone/internal/core/feedcache"
	"github.com/josh-w-mason/twitter-clone/internal/core/tweets"
)

// Service coordinates feed reads and tweet mutations for one session at a time.
//
// Reads are served from the session's feedcache.Store when possible. Mutations
// follow confirm-then-patch: the store is only patched after the remote API has
// confirmed the mutation, and never when it fails.
type Service interface {
	// Feed returns the cached view for key, fetching the first page when the feed
	// was never loaded in this session. Fetch failures are reported in FeedState.Err.
	Feed(ctx context.Context, sess Session, key feedcache.Key) FeedState

	// FetchMore fetches the page after the last cached one and appends it.
	// Returns the new page's tweets and the updated view.
	FetchMore(ctx context.Context, sess Session, key feedcache.Key) (*MoreResult, error)

	// ToggleLike likes or unlikes a tweet and, once confirmed, patches every cached
	// feed that holds it
	ToggleLike(ctx context.Context, sess Session, tweetID string) (*tweets.ToggleLikeResult, error)

	// DeleteTweet deletes one of the viewer's tweets and, once confirmed, removes it
	// from every cached feed
	DeleteTweet(ctx context.Context, sess Session, tweetID string) error

	// CreateTweet publishes a tweet and invalidates the feeds it will show up in
	CreateTweet(ctx context.Context, sess Session, content string) (*tweets.Tweet, error)
}
