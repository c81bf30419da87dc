// Package appview is the typed remote-procedure client of the tweet API.
// It wraps indigo's atclient.APIClient: queries are XRPC GETs, mutations are XRPC
// POSTs, and every call made for a signed-in viewer carries their Bearer token.
package appview

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bluesky-social/indigo/atproto/atclient"
	"github.com/bluesky-social/indigo/atproto/syntax"

	"github.com/josh-w-mason/twitter-clone/internal/core/tweets"
)

// Procedure names served by the tweet API
const (
	nsidInfiniteFeed        = syntax.NSID("com.twitterclone.tweet.infiniteFeed")
	nsidInfiniteProfileFeed = syntax.NSID("com.twitterclone.tweet.infiniteProfileFeed")
	nsidToggleLike          = syntax.NSID("com.twitterclone.tweet.toggleLike")
	nsidDeleteTweet         = syntax.NSID("com.twitterclone.tweet.deleteTweet")
	nsidCreate              = syntax.NSID("com.twitterclone.tweet.create")
)

// client implements tweets.Client using indigo's APIClient
type client struct {
	apiClient *atclient.APIClient
}

// Ensure client implements tweets.Client.
var _ tweets.Client = (*client)(nil)

// NewClient creates an API client for host. With an empty accessToken the client
// is anonymous. httpClient may be nil to use the APIClient default.
func NewClient(host, accessToken string, httpClient *http.Client) tweets.Client {
	apiClient := atclient.NewAPIClient(host)
	if httpClient != nil {
		apiClient.Client = httpClient
	}
	if accessToken != "" {
		apiClient.Auth = &bearerAuth{token: accessToken}
	}
	return &client{apiClient: apiClient}
}

// NewClientFactory returns a tweets.ClientFactory that shares one http.Client
// across every viewer's API client
func NewClientFactory(host string, httpClient *http.Client) tweets.ClientFactory {
	return func(accessToken string) tweets.Client {
		return NewClient(host, accessToken, httpClient)
	}
}

type feedOutput struct {
	NextCursor string         `json:"nextCursor"`
	Tweets     []tweets.Tweet `json:"tweets"`
}

// InfiniteFeed fetches one page of the global, following-only or profile feed
func (c *client) InfiniteFeed(ctx context.Context, req tweets.FeedRequest) (*tweets.Page, error) {
	params := map[string]any{}
	if req.Limit > 0 {
		params["limit"] = strconv.Itoa(req.Limit)
	}
	if req.Cursor != "" {
		params["cursor"] = req.Cursor
	}

	endpoint := nsidInfiniteFeed
	operation := "infiniteFeed"
	if req.AuthorID != "" {
		endpoint = nsidInfiniteProfileFeed
		operation = "infiniteProfileFeed"
		params["userId"] = req.AuthorID
	} else if req.OnlyFollowing {
		params["onlyFollowing"] = "true"
	}

	var result feedOutput
	if err := c.apiClient.Get(ctx, endpoint, params, &result); err != nil {
		return nil, wrapAPIError(err, operation)
	}

	if result.Tweets == nil {
		result.Tweets = []tweets.Tweet{}
	}
	return &tweets.Page{
		NextCursor: result.NextCursor,
		Tweets:     result.Tweets,
	}, nil
}

// ToggleLike adds or removes the viewer's like
func (c *client) ToggleLike(ctx context.Context, tweetID string) (*tweets.ToggleLikeResult, error) {
	if tweetID == "" {
		return nil, fmt.Errorf("toggleLike: %w: id is required", ErrBadRequest)
	}

	var result tweets.ToggleLikeResult
	err := c.apiClient.Post(ctx, nsidToggleLike, map[string]any{"id": tweetID}, &result)
	if err != nil {
		return nil, wrapAPIError(err, "toggleLike")
	}
	return &result, nil
}

// DeleteTweet deletes one of the viewer's tweets
func (c *client) DeleteTweet(ctx context.Context, tweetID string) (*tweets.DeleteResult, error) {
	if tweetID == "" {
		return nil, fmt.Errorf("deleteTweet: %w: id is required", ErrBadRequest)
	}

	var result tweets.DeleteResult
	err := c.apiClient.Post(ctx, nsidDeleteTweet, map[string]any{"id": tweetID}, &result)
	if err != nil {
		return nil, wrapAPIError(err, "deleteTweet")
	}
	return &result, nil
}

// CreateTweet publishes a new tweet
func (c *client) CreateTweet(ctx context.Context, content string) (*tweets.Tweet, error) {
	var result struct {
		Tweet *tweets.Tweet `json:"tweet"`
	}
	err := c.apiClient.Post(ctx, nsidCreate, map[string]any{"content": content}, &result)
	if err != nil {
		return nil, wrapAPIError(err, "create")
	}
	if result.Tweet == nil {
		return nil, fmt.Errorf("create: response missing tweet")
	}
	return result.Tweet, nil
}

// bearerAuth implements atclient.AuthMethod for Bearer access tokens
type bearerAuth struct {
	token string
}

// Ensure bearerAuth implements atclient.AuthMethod.
var _ atclient.AuthMethod = (*bearerAuth)(nil)

// DoWithAuth adds the Bearer token to the request and executes it.
func (b *bearerAuth) DoWithAuth(c *http.Client, req *http.Request, _ syntax.NSID) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+b.token)
	return c.Do(req)
}
