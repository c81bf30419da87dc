package web

import (
	"net/url"
	"time"

	"github.com/josh-w-mason/twitter-clone/internal/core/feedcache"
	"github.com/josh-w-mason/twitter-clone/internal/core/feeds"
	"github.com/josh-w-mason/twitter-clone/internal/core/tweets"
)

// ListState is the one state a feed list is drawn in
type ListState string

const (
	ListLoading ListState = "loading"
	ListError   ListState = "error"
	ListEmpty   ListState = "empty"
	ListLoaded  ListState = "loaded"
)

// FeedListInput is everything the feed list is drawn from
type FeedListInput struct {
	Err error
	// HasMore is nil until the first page arrived; nil is treated as false
	HasMore *bool
	// Pending reports the in-flight mutation of a tweet, if any
	Pending  func(tweetID string) (feedcache.Op, bool)
	Key      feedcache.Key
	Viewer   feeds.Viewer
	Dates    DateFormatter
	ReturnTo string
	Tweets   []tweets.Tweet
	Loading  bool
}

// FeedListData is the template data of a feed list
type FeedListData struct {
	State   ListState
	MoreURL string
	Error   string
	Cards   []TweetCardData
	HasMore bool
}

// TweetCardData is the template data of one tweet card
type TweetCardData struct {
	ProfileURL  string
	AuthorName  string
	AuthorImage string
	Date        string
	DateTime    string
	ID          string
	ReturnTo    string
	Content     []Segment
	LikeCount   int
	LikedByMe   bool
	// LikeEnabled is false for anonymous viewers and while a toggle is in flight
	LikeEnabled bool
	LikePending bool
	CanDelete   bool
	// DeletePending hides the delete control while a delete is in flight
	DeletePending bool
}

// NewFeedList resolves the list state with precedence
// loading > error > empty > loaded and builds the cards of a loaded list
func NewFeedList(in FeedListInput) FeedListData {
	switch {
	case in.Loading:
		return FeedListData{State: ListLoading}
	case in.Err != nil:
		return FeedListData{State: ListError, Error: errorMessage(in.Err)}
	case len(in.Tweets) == 0:
		return FeedListData{State: ListEmpty}
	}

	data := FeedListData{
		State: ListLoaded,
		Cards: NewTweetCards(in),
	}
	if in.HasMore != nil && *in.HasMore {
		data.HasMore = true
		data.MoreURL = MoreURL(in.Key)
	}
	return data
}

// NewTweetCards builds the cards for in.Tweets, in order
func NewTweetCards(in FeedListInput) []TweetCardData {
	cards := make([]TweetCardData, 0, len(in.Tweets))
	for _, t := range in.Tweets {
		cards = append(cards, newTweetCard(t, in))
	}
	return cards
}

func newTweetCard(t tweets.Tweet, in FeedListInput) TweetCardData {
	card := TweetCardData{
		ID:          t.ID,
		ProfileURL:  ProfileURL(t.Author.ID),
		AuthorName:  t.Author.Name,
		AuthorImage: t.Author.Image,
		Date:        in.Dates.Format(t.CreatedAt),
		Content:     SplitContent(t.Content),
		LikeCount:   max(t.LikeCount, 0),
		LikedByMe:   t.LikedByMe,
		ReturnTo:    in.ReturnTo,
	}
	if !t.CreatedAt.IsZero() {
		card.DateTime = t.CreatedAt.UTC().Format(time.RFC3339)
	}

	if in.Pending != nil {
		if op, ok := in.Pending(t.ID); ok {
			card.LikePending = op == feedcache.OpToggleLike
			card.DeletePending = op == feedcache.OpDelete
		}
	}

	authed := in.Viewer.Authenticated()
	card.LikeEnabled = authed && !card.LikePending && !card.DeletePending
	card.CanDelete = authed && t.Author.ID == in.Viewer.ID && !card.DeletePending
	return card
}

// ProfileURL is the page of an author's tweets
func ProfileURL(authorID string) string {
	return "/profiles/" + url.PathEscape(authorID)
}

// MoreURL fetches the page after the cached ones of key
func MoreURL(key feedcache.Key) string {
	return "/feeds/more?" + url.Values{"feed": {key.String()}}.Encode()
}
