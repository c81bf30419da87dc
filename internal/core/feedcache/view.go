package feedcache

import (
	"time"

	"github.com/josh-w-mason/twitter-clone/internal/core/tweets"
)

// View is the cached, paginated result of one feed query (a PagedView).
//
// A View is immutable once published by a Store: patches build a new View that
// shares every page they did not touch, so a reader holding an old View keeps a
// consistent snapshot.
type View struct {
	FetchedAt time.Time
	Key       Key
	Pages     []tweets.Page
}

// Tweets flattens the pages in order
func (v *View) Tweets() []tweets.Tweet {
	if v == nil {
		return nil
	}
	n := 0
	for _, p := range v.Pages {
		n += len(p.Tweets)
	}
	out := make([]tweets.Tweet, 0, n)
	for _, p := range v.Pages {
		out = append(out, p.Tweets...)
	}
	return out
}

// HasMore reports whether the last fetched page advertised a next cursor
func (v *View) HasMore() bool {
	if v == nil || len(v.Pages) == 0 {
		return false
	}
	return v.Pages[len(v.Pages)-1].HasMore()
}

// NextCursor returns the cursor for the page after the last fetched one
func (v *View) NextCursor() string {
	if v == nil || len(v.Pages) == 0 {
		return ""
	}
	return v.Pages[len(v.Pages)-1].NextCursor
}

// find returns the first occurrence of tweetID in the view
func (v *View) find(tweetID string) (tweets.Tweet, bool) {
	for _, p := range v.Pages {
		for _, t := range p.Tweets {
			if t.ID == tweetID {
				return t, true
			}
		}
	}
	return tweets.Tweet{}, false
}

// withAppendedPage returns a copy of v with page added at the end
func (v *View) withAppendedPage(page tweets.Page, now time.Time) *View {
	pages := make([]tweets.Page, len(v.Pages), len(v.Pages)+1)
	copy(pages, v.Pages)
	return &View{
		Key:       v.Key,
		Pages:     append(pages, page),
		FetchedAt: now,
	}
}

// mapTweet rewrites every page containing tweetID with fn applied to that page's
// tweets. Pages without the tweet are shared with v. It returns v itself when the
// tweet does not occur anywhere.
func (v *View) mapTweet(tweetID string, fn func([]tweets.Tweet) []tweets.Tweet) *View {
	var pages []tweets.Page
	for i, p := range v.Pages {
		if !containsTweet(p.Tweets, tweetID) {
			continue
		}
		if pages == nil {
			pages = make([]tweets.Page, len(v.Pages))
			copy(pages, v.Pages)
		}
		pages[i] = tweets.Page{
			NextCursor: p.NextCursor,
			Tweets:     fn(p.Tweets),
		}
	}
	if pages == nil {
		return v
	}
	return &View{
		Key:       v.Key,
		Pages:     pages,
		FetchedAt: v.FetchedAt,
	}
}

// withLikeDelta applies a confirmed toggleLike outcome to every occurrence of tweetID
func (v *View) withLikeDelta(tweetID string, added bool) *View {
	return v.mapTweet(tweetID, func(in []tweets.Tweet) []tweets.Tweet {
		out := make([]tweets.Tweet, len(in))
		for i, t := range in {
			if t.ID == tweetID {
				t = applyLikeDelta(t, added)
			}
			out[i] = t
		}
		return out
	})
}

// withoutTweet removes every occurrence of tweetID, keeping the order of the rest.
// Pages may shrink; they are never merged or re-split.
func (v *View) withoutTweet(tweetID string) *View {
	return v.mapTweet(tweetID, func(in []tweets.Tweet) []tweets.Tweet {
		out := make([]tweets.Tweet, 0, len(in))
		for _, t := range in {
			if t.ID != tweetID {
				out = append(out, t)
			}
		}
		return out
	})
}

func applyLikeDelta(t tweets.Tweet, added bool) tweets.Tweet {
	if added {
		t.LikeCount++
	} else {
		t.LikeCount--
	}
	t.LikedByMe = added
	return t
}

func containsTweet(ts []tweets.Tweet, tweetID string) bool {
	for _, t := range ts {
		if t.ID == tweetID {
			return true
		}
	}
	return false
}
