package feedcache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-w-mason/twitter-clone/internal/core/tweets"
)

func tweet(id, authorID string, likes int, liked bool) tweets.Tweet {
	return tweets.Tweet{
		ID:        id,
		Content:   "content of " + id,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Author:    tweets.Author{ID: authorID, Name: "user " + authorID},
		LikeCount: likes,
		LikedByMe: liked,
	}
}

func ids(ts []tweets.Tweet) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestStore_EndToEndExample(t *testing.T) {
	store := NewStore(nil)
	store.AppendPage(Global(), tweets.Page{Tweets: []tweets.Tweet{
		tweet("a", "u1", 3, false),
		tweet("b", "u2", 0, true),
	}})

	store.ApplyLikeDelta("a", "u1", true)

	v, ok := store.View(Global())
	require.True(t, ok)
	got := v.Tweets()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 4, got[0].LikeCount)
	assert.True(t, got[0].LikedByMe)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, 0, got[1].LikeCount)
	assert.True(t, got[1].LikedByMe)

	store.ApplyDeletion("b", "u2")

	v, _ = store.View(Global())
	got = v.Tweets()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 4, got[0].LikeCount)
	assert.True(t, got[0].LikedByMe)
}

func TestStore_AbsentTweetLeavesViewUnchanged(t *testing.T) {
	store := NewStore(nil)
	page := tweets.Page{NextCursor: "c1", Tweets: []tweets.Tweet{tweet("a", "u1", 1, false)}}
	before := store.AppendPage(Global(), page)

	assert.Equal(t, 0, store.ApplyLikeDelta("missing", "u1", true))
	assert.Equal(t, 0, store.ApplyDeletion("missing", "u1"))

	after, ok := store.View(Global())
	require.True(t, ok)
	assert.Same(t, before, after, "view must not be republished when the tweet is absent")
	assert.Equal(t, page.Tweets, after.Tweets())
	assert.Equal(t, "c1", after.NextCursor())
}

func TestStore_UncachedViewsAreNotCreated(t *testing.T) {
	store := NewStore(nil)

	assert.Equal(t, 0, store.ApplyLikeDelta("a", "u1", true))
	assert.Equal(t, 0, store.ApplyDeletion("a", "u1"))
	assert.Equal(t, 0, store.Len())

	called := false
	ok := store.Patch(Following(), func(v *View) *View {
		called = true
		return v
	})
	assert.False(t, ok)
	assert.False(t, called)
}

func TestStore_LikeCountInvariant(t *testing.T) {
	tests := []struct {
		name      string
		initial   int
		sequence  []bool
		wantCount int
		wantLiked bool
	}{
		{name: "single add", initial: 3, sequence: []bool{true}, wantCount: 4, wantLiked: true},
		{name: "add then remove", initial: 3, sequence: []bool{true, false}, wantCount: 3, wantLiked: false},
		{name: "interleaved", initial: 5, sequence: []bool{false, true, true, false, true}, wantCount: 6, wantLiked: true},
		{name: "removes only", initial: 4, sequence: []bool{false, false}, wantCount: 2, wantLiked: false},
		{name: "remove before add", initial: 0, sequence: []bool{false, true}, wantCount: 0, wantLiked: true},
		{name: "add before remove", initial: 0, sequence: []bool{true, false}, wantCount: 0, wantLiked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(nil)
			store.AppendPage(Global(), tweets.Page{Tweets: []tweets.Tweet{tweet("p", "u1", tt.initial, false)}})

			for _, added := range tt.sequence {
				store.ApplyLikeDelta("p", "u1", added)
			}

			got, ok := store.FindTweet("p")
			require.True(t, ok)
			assert.Equal(t, tt.wantCount, got.LikeCount)
			assert.Equal(t, tt.wantLiked, got.LikedByMe)
		})
	}
}

func TestStore_CrossViewConsistency(t *testing.T) {
	store := NewStore(nil)
	shared := tweet("p", "u1", 2, false)

	store.AppendPage(Global(), tweets.Page{Tweets: []tweets.Tweet{tweet("x", "u2", 0, false), shared}})
	store.AppendPage(Following(), tweets.Page{Tweets: []tweets.Tweet{shared}})
	store.AppendPage(ByAuthor("u1"), tweets.Page{Tweets: []tweets.Tweet{shared}})
	other := store.AppendPage(ByAuthor("u2"), tweets.Page{Tweets: []tweets.Tweet{tweet("x", "u2", 0, false)}})

	changed := store.ApplyLikeDelta("p", "u1", true)
	assert.Equal(t, 3, changed)

	for _, key := range []Key{Global(), Following(), ByAuthor("u1")} {
		v, ok := store.View(key)
		require.True(t, ok, key.String())
		found, ok := v.find("p")
		require.True(t, ok, key.String())
		assert.Equal(t, 3, found.LikeCount, key.String())
		assert.True(t, found.LikedByMe, key.String())
	}

	v, _ := store.View(ByAuthor("u2"))
	assert.Same(t, other, v)
}

func TestStore_DeletionRemovesExactlyOne(t *testing.T) {
	store := NewStore(nil)
	first := tweets.Page{NextCursor: "c1", Tweets: []tweets.Tweet{
		tweet("a", "u1", 0, false),
		tweet("b", "u1", 0, false),
		tweet("c", "u2", 0, false),
		tweet("d", "u1", 0, false),
	}}
	second := tweets.Page{Tweets: []tweets.Tweet{tweet("e", "u1", 0, false)}}
	store.AppendPage(Global(), first)
	before := store.AppendPage(Global(), second)

	store.ApplyDeletion("b", "u1")

	v, _ := store.View(Global())
	require.Len(t, v.Pages, 2, "pages are never merged")
	assert.Equal(t, []string{"a", "c", "d"}, ids(v.Pages[0].Tweets))
	assert.Equal(t, "c1", v.Pages[0].NextCursor)
	assert.Equal(t, []string{"e"}, ids(v.Pages[1].Tweets))

	// untouched page is shared with the previous snapshot
	assert.Same(t, &before.Pages[1].Tweets[0], &v.Pages[1].Tweets[0])
	// and the old snapshot is still intact
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(before.Pages[0].Tweets))
}

func TestStore_ProfileFeedOfOtherAuthorUntouchedByDeletion(t *testing.T) {
	store := NewStore(nil)
	store.AppendPage(ByAuthor("u1"), tweets.Page{Tweets: []tweets.Tweet{tweet("a", "u1", 0, false)}})
	store.AppendPage(ByAuthor("u2"), tweets.Page{Tweets: []tweets.Tweet{tweet("b", "u2", 0, false)}})

	assert.Equal(t, 1, store.ApplyDeletion("a", "u1"))

	v, _ := store.View(ByAuthor("u1"))
	assert.Empty(t, v.Tweets())
	v, _ = store.View(ByAuthor("u2"))
	assert.Equal(t, []string{"b"}, ids(v.Tweets()))
}

func TestStore_UnknownAuthorPatchesEveryView(t *testing.T) {
	store := NewStore(nil)
	store.AppendPage(ByAuthor("u1"), tweets.Page{Tweets: []tweets.Tweet{tweet("a", "u1", 0, false)}})
	store.AppendPage(Global(), tweets.Page{Tweets: []tweets.Tweet{tweet("a", "u1", 0, false)}})

	assert.Equal(t, 2, store.ApplyDeletion("a", ""))
	_, found := store.FindTweet("a")
	assert.False(t, found)
}

func TestStore_PatchAndInvalidate(t *testing.T) {
	store := NewStore(nil)
	store.AppendPage(Global(), tweets.Page{Tweets: []tweets.Tweet{tweet("a", "u1", 0, false)}})
	store.AppendPage(Following(), tweets.Page{Tweets: []tweets.Tweet{tweet("a", "u1", 0, false)}})

	ok := store.Patch(Global(), func(v *View) *View { return v.withoutTweet("a") })
	require.True(t, ok)
	v, _ := store.View(Global())
	assert.Empty(t, v.Tweets())

	ok = store.Patch(Global(), func(*View) *View { return nil })
	require.True(t, ok)
	_, cached := store.View(Global())
	assert.False(t, cached)

	store.Invalidate(Following(), ByAuthor("nobody"))
	assert.Equal(t, 0, store.Len())
}

func TestStore_AppendPageTracksCursor(t *testing.T) {
	store := NewStore(nil)
	v := store.AppendPage(Following(), tweets.Page{NextCursor: "next", Tweets: []tweets.Tweet{tweet("a", "u1", 0, false)}})
	assert.True(t, v.HasMore())
	assert.Equal(t, "next", v.NextCursor())

	v = store.AppendPage(Following(), tweets.Page{Tweets: []tweets.Tweet{tweet("b", "u1", 0, false)}})
	assert.False(t, v.HasMore())
	assert.Equal(t, []string{"a", "b"}, ids(v.Tweets()))
	assert.Equal(t, 1, store.Len())
}

func TestStore_BeginLoad(t *testing.T) {
	store := NewStore(nil)

	done, err := store.BeginLoad(Global())
	require.NoError(t, err)

	_, err = store.BeginLoad(Global())
	assert.ErrorIs(t, err, ErrLoadInFlight)

	// other feeds are independent
	doneOther, err := store.BeginLoad(Following())
	require.NoError(t, err)
	doneOther()

	done()
	done()
	done, err = store.BeginLoad(Global())
	require.NoError(t, err)
	done()
}

func TestStore_ReadersSeeWholeSnapshots(t *testing.T) {
	store := NewStore(nil)
	page := make([]tweets.Tweet, 0, 50)
	for i := 0; i < 50; i++ {
		page = append(page, tweet("p", "u1", 0, false))
	}
	// the same id 50 times: a partially patched view would show mixed counts
	store.AppendPage(Global(), tweets.Page{Tweets: page})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			store.ApplyLikeDelta("p", "u1", i%2 == 0)
		}
	}()

	for i := 0; i < 200; i++ {
		v, _ := store.View(Global())
		ts := v.Tweets()
		for _, tw := range ts {
			require.Equal(t, ts[0].LikeCount, tw.LikeCount)
			require.Equal(t, ts[0].LikedByMe, tw.LikedByMe)
		}
	}
	wg.Wait()
}

func TestStore_Reset(t *testing.T) {
	store := NewStore(nil)
	store.AppendPage(Global(), tweets.Page{Tweets: []tweets.Tweet{tweet("a", "u1", 0, false)}})
	_, err := store.BeginMutation("a", OpDelete)
	require.NoError(t, err)

	store.Reset()

	assert.Equal(t, 0, store.Len())
	_, pending := store.Pending("a")
	assert.False(t, pending)
}
