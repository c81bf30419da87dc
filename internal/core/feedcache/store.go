package feedcache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/josh-w-mason/twitter-clone/internal/core/tweets"
)

// Store owns the PagedViews of one session.
//
// Every write happens under a single lock and publishes new immutable Views,
// so a reader sees either the state before a patch or the state after it for
// every view, never a partly patched one.
type Store struct {
	views   map[Key]*View
	loading map[Key]struct{}
	pending map[string]*claims // tweetID -> mutations in flight
	logger  *slog.Logger
	now     func() time.Time
	mu      sync.RWMutex
}

// NewStore creates an empty store
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		views:   make(map[Key]*View),
		loading: make(map[Key]struct{}),
		pending: make(map[string]*claims),
		logger:  logger,
		now:     time.Now,
	}
}

// View returns the cached view for key, or nil and false if the feed was never fetched
func (s *Store) View(key Key) (*View, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.views[key]
	return v, ok
}

// FindTweet looks a tweet up in any cached view
func (s *Store) FindTweet(tweetID string) (tweets.Tweet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.views {
		if t, ok := v.find(tweetID); ok {
			return t, true
		}
	}
	return tweets.Tweet{}, false
}

// AppendPage adds a freshly fetched page to the view for key, creating the view
// on its first page. It returns the published view.
func (s *Store) AppendPage(key Key, page tweets.Page) *View {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v, ok := s.views[key]
	if !ok {
		v = &View{Key: key}
	}
	v = v.withAppendedPage(page, now)
	s.views[key] = v

	s.logger.Debug("feed page cached",
		"feed", key.String(),
		"pages", len(v.Pages),
		"tweets", len(page.Tweets),
		"has_more", page.HasMore())

	return v
}

// Extend appends a follow-up page to an already cached view. Unlike AppendPage
// it never creates a view: when the view was invalidated while the page was in
// flight the page is discarded and ok is false.
func (s *Store) Extend(key Key, page tweets.Page) (*View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[key]
	if !ok {
		return nil, false
	}
	v = v.withAppendedPage(page, s.now())
	s.views[key] = v
	return v, true
}

// Patch applies fn to the cached view for key and publishes the result.
// It is a no-op returning false when nothing is cached for key; fn never runs
// in that case. Returning nil from fn drops the view.
func (s *Store) Patch(key Key, fn func(*View) *View) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.patchLocked(key, fn)
	return ok
}

// patchLocked is Patch with s.mu already held. changed is false when fn
// returned the view it was given.
func (s *Store) patchLocked(key Key, fn func(*View) *View) (changed, ok bool) {
	v, ok := s.views[key]
	if !ok {
		return false, false
	}
	next := fn(v)
	switch {
	case next == nil:
		delete(s.views, key)
		return true, true
	case next == v:
		return false, true
	}
	s.views[key] = next
	return true, true
}

// ApplyLikeDelta applies a confirmed toggleLike outcome for tweetID to every
// cached view that can contain a tweet by authorID (all views when authorID is
// empty). Each matching tweet gets LikeCount +1 (added) or -1 (removed) and
// LikedByMe = added, so the count is exact in any order of outcomes. Views without the tweet are left untouched,
// and views never fetched are not created.
//
// Must be called exactly once per confirmed outcome: applying it twice counts twice.
// It returns the number of views that changed.
func (s *Store) ApplyLikeDelta(tweetID, authorID string, added bool) int {
	changed := s.patchAffected(authorID, func(v *View) *View {
		return v.withLikeDelta(tweetID, added)
	})

	s.logger.Debug("like delta applied",
		"tweet", tweetID,
		"author", authorID,
		"added", added,
		"views_changed", changed)

	return changed
}

// ApplyDeletion removes tweetID from every cached view that can contain a tweet
// by authorID (all views when authorID is empty). Remaining tweets keep their
// order and page boundaries stay where they were. It returns the number of views
// that changed.
func (s *Store) ApplyDeletion(tweetID, authorID string) int {
	changed := s.patchAffected(authorID, func(v *View) *View {
		return v.withoutTweet(tweetID)
	})

	s.logger.Debug("deletion applied",
		"tweet", tweetID,
		"author", authorID,
		"views_changed", changed)

	return changed
}

// patchAffected runs fn over all views affected by authorID under one write lock
func (s *Store) patchAffected(authorID string, fn func(*View) *View) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for key := range s.views {
		if !key.affectedBy(authorID) {
			continue
		}
		if c, _ := s.patchLocked(key, fn); c {
			changed++
		}
	}
	return changed
}

// Invalidate drops the cached views for keys so the next read refetches them
func (s *Store) Invalidate(keys ...Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.views, k)
	}
}

// Len returns the number of cached views
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

// Reset tears the store down: every view, load guard and pending mutation is forgotten
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.views = make(map[Key]*View)
	s.loading = make(map[Key]struct{})
	s.pending = make(map[string]*claims)
}

// BeginLoad marks key as being fetched. It fails with ErrLoadInFlight when a
// fetch for the same key is already running. The returned func ends the load
// and is safe to call more than once.
func (s *Store) BeginLoad(key Key) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.loading[key]; busy {
		return nil, ErrLoadInFlight
	}
	s.loading[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.loading, key)
			s.mu.Unlock()
		})
	}, nil
}

