package tweets

import "context"

// Client is the typed remote-procedure contract of the tweet API.
// Implementations are scoped to one viewer: the access token (if any) is bound at
// construction, so every call is made on behalf of that viewer.
type Client interface {
	// InfiniteFeed fetches one page of the global or following-only feed,
	// or of a single author's profile feed when req.AuthorID is set.
	InfiniteFeed(ctx context.Context, req FeedRequest) (*Page, error)

	// ToggleLike adds the viewer's like when absent, removes it otherwise.
	// The transport does not make this idempotent: calling it twice toggles twice.
	ToggleLike(ctx context.Context, tweetID string) (*ToggleLikeResult, error)

	// DeleteTweet deletes a tweet authored by the viewer.
	// Callers must check Success before treating the deletion as confirmed.
	DeleteTweet(ctx context.Context, tweetID string) (*DeleteResult, error)

	// CreateTweet publishes a new tweet authored by the viewer
	CreateTweet(ctx context.Context, content string) (*Tweet, error)
}

// ClientFactory builds a Client for the given access token.
// An empty token yields an anonymous client that can only read feeds.
type ClientFactory func(accessToken string) Client

// FeedRequest selects one page of one feed
type FeedRequest struct {
	AuthorID      string `json:"userId,omitempty"`
	Cursor        string `json:"cursor,omitempty"`
	Limit         int    `json:"limit"`
	OnlyFollowing bool   `json:"onlyFollowing,omitempty"`
}

// ToggleLikeResult reports which way a toggle went on the server
type ToggleLikeResult struct {
	AddedLike bool `json:"addedLike"`
}

// DeleteResult reports whether the server actually deleted the tweet
type DeleteResult struct {
	Success bool `json:"success"`
}
