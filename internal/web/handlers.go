package web

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/josh-w-mason/twitter-clone/internal/api/middleware"
	"github.com/josh-w-mason/twitter-clone/internal/core/feedcache"
	"github.com/josh-w-mason/twitter-clone/internal/core/feeds"
	"github.com/josh-w-mason/twitter-clone/internal/core/tweets"
)

// Handlers provides HTTP handlers for the twitter-clone web interface.
// Mutations follow post/redirect/get: the redirected page is rendered from the
// session's patched feed cache, failures come back as flash messages.
type Handlers struct {
	templates *Templates
	feeds     feeds.Service
	sessions  *middleware.SessionManager
}

// NewHandlers creates a new Handlers instance with the provided dependencies.
func NewHandlers(templates *Templates, feedService feeds.Service, sessions *middleware.SessionManager) *Handlers {
	return &Handlers{
		templates: templates,
		feeds:     feedService,
		sessions:  sessions,
	}
}

// PageData holds data for the feed page template.
type PageData struct {
	Viewer feeds.Viewer
	// Title is the page title
	Title string
	// Active names the selected tab: home, following or profile
	Active string
	// ViewerProfileURL links to the signed-in viewer's own tweets
	ViewerProfileURL string
	ReturnTo         string
	Flashes          []string
	Feed             FeedListData
	MaxContentLength int
	// ShowComposer is set for signed-in viewers on their home and own profile
	ShowComposer bool
	// Refresh makes the browser reload while the first page is being fetched
	Refresh bool
}

// HomeHandler renders the global feed
// GET /
func (h *Handlers) HomeHandler(w http.ResponseWriter, r *http.Request) {
	h.renderFeed(w, r, feedcache.Global(), PageData{Title: "Home", Active: "home"})
}

// FollowingHandler renders the tweets of people the viewer follows
// GET /following
func (h *Handlers) FollowingHandler(w http.ResponseWriter, r *http.Request) {
	h.renderFeed(w, r, feedcache.Following(), PageData{Title: "Following", Active: "following"})
}

// ProfileHandler renders one author's tweets
// GET /profiles/{authorID}
func (h *Handlers) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	authorID := chi.URLParam(r, "authorID")
	if authorID == "" {
		http.NotFound(w, r)
		return
	}
	h.renderFeed(w, r, feedcache.ByAuthor(authorID), PageData{Title: "Profile", Active: "profile"})
}

func (h *Handlers) renderFeed(w http.ResponseWriter, r *http.Request, key feedcache.Key, data PageData) {
	sess, ok := middleware.GetSession(r)
	if !ok {
		log.Printf("feed page %s served without session middleware", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// flashes must be popped before anything is written
	data.Flashes = h.sessions.Flashes(w, r)

	state := h.feeds.Feed(r.Context(), sess, key)

	data.Viewer = sess.Viewer
	data.ReturnTo = r.URL.RequestURI()
	data.MaxContentLength = tweets.MaxContentLength
	data.Refresh = state.Loading
	if sess.Viewer.Authenticated() {
		data.ViewerProfileURL = ProfileURL(sess.Viewer.ID)
		data.ShowComposer = key.Kind() == feedcache.KindGlobal ||
			(key.Kind() == feedcache.KindAuthor && key.AuthorID() == sess.Viewer.ID)
	}
	if key.Kind() == feedcache.KindAuthor {
		if ts := state.Tweets(); len(ts) > 0 && ts[0].Author.Name != "" {
			data.Title = ts[0].Author.Name
		}
	}

	data.Feed = NewFeedList(FeedListInput{
		Loading:  state.Loading,
		Err:      state.Err,
		Tweets:   state.Tweets(),
		HasMore:  state.HasMore(),
		Key:      key,
		Viewer:   sess.Viewer,
		Pending:  sess.Store.Pending,
		Dates:    NewDateFormatter(r.Header.Get("Accept-Language"), nil),
		ReturnTo: data.ReturnTo,
	})

	status := http.StatusOK
	if data.Feed.State == ListError {
		status, _ = serviceError(state.Err)
	}

	if err := h.templates.RenderStatus(w, status, "page.html", data); err != nil {
		log.Printf("Failed to render feed page: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// MoreHandler renders the next page of a cached feed as an HTML fragment.
// Responds 204 when the feed has no more pages.
// GET /feeds/more?feed=<key>
func (h *Handlers) MoreHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r)
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	key, err := feedcache.ParseKey(r.URL.Query().Get("feed"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	result, err := h.feeds.FetchMore(r.Context(), sess, key)
	if errors.Is(err, feedcache.ErrNoMorePages) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	returnTo := safeReturnTo(r.Header.Get("X-Return-To"))
	in := FeedListInput{
		Tweets:   result.Tweets,
		Key:      key,
		Viewer:   sess.Viewer,
		Pending:  sess.Store.Pending,
		Dates:    NewDateFormatter(r.Header.Get("Accept-Language"), nil),
		ReturnTo: returnTo,
	}
	data := FeedListData{
		State: ListLoaded,
		Cards: NewTweetCards(in),
	}
	if result.View.HasMore() {
		data.HasMore = true
		data.MoreURL = MoreURL(key)
	}

	if err := h.templates.Render(w, "more.html", data); err != nil {
		log.Printf("Failed to render feed fragment: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// LikeHandler toggles the viewer's like on a tweet
// POST /tweets/{id}/like
func (h *Handlers) LikeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r)
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if _, err := h.feeds.ToggleLike(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "toggle like", err)
		return
	}
	h.redirectBack(w, r)
}

// DeleteHandler deletes one of the viewer's tweets
// POST /tweets/{id}/delete
func (h *Handlers) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r)
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := h.feeds.DeleteTweet(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete tweet", err)
		return
	}
	h.redirectBack(w, r)
}

// CreateHandler publishes a tweet from the composer
// POST /tweets
func (h *Handlers) CreateHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r)
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if _, err := h.feeds.CreateTweet(r.Context(), sess, r.FormValue("content")); err != nil {
		h.fail(w, r, "create tweet", err)
		return
	}
	h.redirectBack(w, r)
}

// SessionHandler installs an access token issued by the tweet API
// POST /session
func (h *Handlers) SessionHandler(w http.ResponseWriter, r *http.Request) {
	token := r.FormValue("access_token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}

	viewer, err := h.sessions.SignIn(w, r, token)
	if err != nil {
		log.Printf("[AUTH_FAILURE] type=session_handoff ip=%s error=%v", r.RemoteAddr, err)
		h.sessions.AddFlash(w, r, "Sign-in failed: the access token was rejected.")
		h.redirectBack(w, r)
		return
	}

	log.Printf("session started for viewer %s", viewer.ID)
	h.redirectBack(w, r)
}

// LogoutHandler ends the session and drops its feed cache
// POST /logout
func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// fail reports a failed mutation back to the page it came from
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	_, msg := serviceError(err)
	log.Printf("%s failed: %v", action, err)
	h.sessions.AddFlash(w, r, msg)
	h.redirectBack(w, r)
}

func (h *Handlers) redirectBack(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, safeReturnTo(r.FormValue("return_to")), http.StatusSeeOther)
}

// safeReturnTo only accepts local absolute paths
func safeReturnTo(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}
