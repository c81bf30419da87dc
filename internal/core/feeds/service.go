package feeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/josh-w-mason/twitter-clone/internal/core/feedcache"
	"github.com/josh-w-mason/twitter-clone/internal/core/tweets"
)

const (
	// DefaultPageSize is used when no page size is configured
	DefaultPageSize = 10
	// MaxPageSize caps the page size sent to the API
	MaxPageSize = 50
)

type feedService struct {
	clients  tweets.ClientFactory
	logger   *slog.Logger
	pageSize int
}

// NewService creates a feed service.
// clients builds the per-viewer remote client; pageSize is clamped to [1, MaxPageSize].
func NewService(clients tweets.ClientFactory, pageSize int, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &feedService{
		clients:  clients,
		logger:   logger,
		pageSize: pageSize,
	}
}

// Feed returns the session's cached view for key, loading the first page on a miss
func (s *feedService) Feed(ctx context.Context, sess Session, key feedcache.Key) FeedState {
	state := FeedState{Key: key}

	if key.Kind() == feedcache.KindFollowing && !sess.Viewer.Authenticated() {
		state.Err = tweets.ErrUnauthenticated
		return state
	}

	if v, ok := sess.Store.View(key); ok {
		state.View = v
		return state
	}

	done, err := sess.Store.BeginLoad(key)
	if err != nil {
		// another request of this session is fetching the first page
		state.Loading = true
		return state
	}
	defer done()

	// the concurrent load may have finished between the miss and BeginLoad
	if v, ok := sess.Store.View(key); ok {
		state.View = v
		return state
	}

	page, err := s.client(sess).InfiniteFeed(ctx, s.request(key, ""))
	if err != nil {
		s.logger.Warn("failed to load feed",
			"feed", key.String(),
			"viewer", sess.Viewer.ID,
			"error", err)
		state.Err = fmt.Errorf("load feed %s: %w", key, err)
		return state
	}

	state.View = sess.Store.AppendPage(key, *page)
	return state
}

// FetchMore appends the next page of an already loaded feed
func (s *feedService) FetchMore(ctx context.Context, sess Session, key feedcache.Key) (*MoreResult, error) {
	v, ok := sess.Store.View(key)
	if !ok {
		return nil, feedcache.ErrNotCached
	}
	if !v.HasMore() {
		return nil, feedcache.ErrNoMorePages
	}

	done, err := sess.Store.BeginLoad(key)
	if err != nil {
		return nil, err
	}
	defer done()

	// re-read under the load guard; the view may have changed since the first check
	v, ok = sess.Store.View(key)
	if !ok {
		return nil, feedcache.ErrNotCached
	}
	cursor := v.NextCursor()
	if cursor == "" {
		return nil, feedcache.ErrNoMorePages
	}

	page, err := s.client(sess).InfiniteFeed(ctx, s.request(key, cursor))
	if err != nil {
		s.logger.Warn("failed to fetch next feed page",
			"feed", key.String(),
			"viewer", sess.Viewer.ID,
			"error", err)
		return nil, fmt.Errorf("fetch more %s: %w", key, err)
	}

	v, ok = sess.Store.Extend(key, *page)
	if !ok {
		return nil, feedcache.ErrNotCached
	}

	return &MoreResult{
		View:   v,
		Tweets: page.Tweets,
	}, nil
}

// ToggleLike toggles the viewer's like and patches the cache after confirmation
func (s *feedService) ToggleLike(ctx context.Context, sess Session, tweetID string) (*tweets.ToggleLikeResult, error) {
	if !sess.Viewer.Authenticated() {
		return nil, tweets.ErrUnauthenticated
	}
	if tweetID == "" {
		return nil, tweets.NewValidationError("id", "tweet id is required")
	}

	release, err := sess.Store.BeginMutation(tweetID, feedcache.OpToggleLike)
	if err != nil {
		return nil, err
	}
	defer release()

	// resolve the author before the call; a concurrent delete may drop the tweet
	authorID := ""
	if cached, ok := sess.Store.FindTweet(tweetID); ok {
		authorID = cached.Author.ID
	}

	result, err := s.client(sess).ToggleLike(ctx, tweetID)
	if err != nil {
		s.logger.Warn("toggle like failed, cache left untouched",
			"tweet", tweetID,
			"viewer", sess.Viewer.ID,
			"error", err)
		return nil, fmt.Errorf("toggle like: %w", err)
	}

	changed := sess.Store.ApplyLikeDelta(tweetID, authorID, result.AddedLike)

	s.logger.Info("like toggled",
		"tweet", tweetID,
		"viewer", sess.Viewer.ID,
		"added", result.AddedLike,
		"views_patched", changed)

	return result, nil
}

// DeleteTweet deletes the viewer's tweet and removes it from the cache after confirmation
func (s *feedService) DeleteTweet(ctx context.Context, sess Session, tweetID string) error {
	if !sess.Viewer.Authenticated() {
		return tweets.ErrUnauthenticated
	}
	if tweetID == "" {
		return tweets.NewValidationError("id", "tweet id is required")
	}

	authorID := sess.Viewer.ID
	if cached, ok := sess.Store.FindTweet(tweetID); ok {
		if cached.Author.ID != sess.Viewer.ID {
			return tweets.ErrNotAuthorized
		}
		authorID = cached.Author.ID
	}

	release, err := sess.Store.BeginMutation(tweetID, feedcache.OpDelete)
	if err != nil {
		return err
	}
	defer release()

	result, err := s.client(sess).DeleteTweet(ctx, tweetID)
	if err != nil {
		s.logger.Warn("delete failed, cache left untouched",
			"tweet", tweetID,
			"viewer", sess.Viewer.ID,
			"error", err)
		return fmt.Errorf("delete tweet: %w", err)
	}
	if !result.Success {
		s.logger.Warn("delete not confirmed by server, cache left untouched",
			"tweet", tweetID,
			"viewer", sess.Viewer.ID)
		return tweets.ErrDeleteRejected
	}

	changed := sess.Store.ApplyDeletion(tweetID, authorID)

	s.logger.Info("tweet deleted",
		"tweet", tweetID,
		"viewer", sess.Viewer.ID,
		"views_patched", changed)

	return nil
}

// CreateTweet publishes a tweet. The new tweet is never inserted locally; the
// feeds it belongs to are invalidated and refetched on the next read.
func (s *feedService) CreateTweet(ctx context.Context, sess Session, content string) (*tweets.Tweet, error) {
	if !sess.Viewer.Authenticated() {
		return nil, tweets.ErrUnauthenticated
	}

	content, err := tweets.NormalizeContent(content)
	if err != nil {
		return nil, err
	}

	created, err := s.client(sess).CreateTweet(ctx, content)
	if err != nil {
		s.logger.Warn("create tweet failed",
			"viewer", sess.Viewer.ID,
			"error", err)
		return nil, fmt.Errorf("create tweet: %w", err)
	}

	sess.Store.Invalidate(feedcache.PatchTargets(sess.Viewer.ID)...)

	s.logger.Info("tweet created",
		"tweet", created.ID,
		"viewer", sess.Viewer.ID)

	return created, nil
}

func (s *feedService) client(sess Session) tweets.Client {
	token := ""
	if sess.Viewer.Authenticated() {
		token = sess.Viewer.AccessToken
	}
	return s.clients(token)
}

// request maps a feed key onto the remote query parameters
func (s *feedService) request(key feedcache.Key, cursor string) tweets.FeedRequest {
	req := tweets.FeedRequest{
		Cursor: cursor,
		Limit:  s.pageSize,
	}
	switch key.Kind() {
	case feedcache.KindGlobal:
	case feedcache.KindFollowing:
		req.OnlyFollowing = true
	case feedcache.KindAuthor:
		req.AuthorID = key.AuthorID()
	}
	return req
}

// IsBusy reports whether err means the tweet or feed is busy with another request
func IsBusy(err error) bool {
	return errors.Is(err, feedcache.ErrMutationInFlight) ||
		errors.Is(err, feedcache.ErrPendingDeletion) ||
		errors.Is(err, feedcache.ErrLoadInFlight)
}
