package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/josh-w-mason/twitter-clone/internal/atproto/auth"
	"github.com/josh-w-mason/twitter-clone/internal/core/feedcache"
	"github.com/josh-w-mason/twitter-clone/internal/core/feeds"
)

const (
	// SessionCookieName is the name of the browser session cookie
	SessionCookieName = "twitterclone_session"

	// SessionMaxAge is the cookie lifetime in seconds (7 days)
	SessionMaxAge = 7 * 24 * 60 * 60

	// MinSessionSecretLength is the minimum length of the cookie signing secret
	MinSessionSecretLength = 32

	sessionIDValue    = "sid"
	accessTokenValue  = "access_token"
	sessionContextKey = contextKey("feed_session")
	cookieContextKey  = contextKey("cookie_session")
)

// ErrSecretTooShort is returned by NewSessionManager for weak secrets
var ErrSecretTooShort = fmt.Errorf("session secret must be at least %d bytes", MinSessionSecretLength)

// SessionManager ties the browser cookie session to the viewer identity and
// to the feed cache store owned by that session
type SessionManager struct {
	cookies  *sessions.CookieStore
	registry *feedcache.Registry
	tokens   *auth.Parser
	now      func() time.Time
}

// NewSessionManager creates a session manager.
// secure marks cookies HTTPS-only and should be false only in development.
func NewSessionManager(secret string, registry *feedcache.Registry, tokens *auth.Parser, secure bool) (*SessionManager, error) {
	if len(secret) < MinSessionSecretLength {
		return nil, ErrSecretTooShort
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   SessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionManager{
		cookies:  store,
		registry: registry,
		tokens:   tokens,
		now:      time.Now,
	}, nil
}

// Middleware loads (or starts) the cookie session, resolves the viewer from the
// stored access token and injects a feeds.Session into the request context.
// It never rejects a request; anonymous viewers get their own store.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs, err := m.cookies.Get(r, SessionCookieName)
		if err != nil {
			// tampered or signed with an old secret; start over
			log.Printf("[SESSION] discarding unreadable cookie ip=%s error=%v", getClientIP(r), err)
		}

		dirty := false
		sid, _ := cs.Values[sessionIDValue].(string)
		if sid == "" {
			sid = uuid.NewString()
			cs.Values[sessionIDValue] = sid
			dirty = true
		}

		viewer := feeds.Viewer{Status: feeds.StatusUnauthenticated}
		if token, _ := cs.Values[accessTokenValue].(string); token != "" {
			claims, err := m.tokens.Parse(token)
			if err == nil && !claims.Expired(m.now()) {
				viewer = feeds.Viewer{
					ID:          claims.Subject,
					AccessToken: token,
					Status:      feeds.StatusAuthenticated,
				}
			} else {
				log.Printf("[SESSION] dropping invalid access token sid=%s error=%v", sid, err)
				// cached likedByMe flags belong to the old viewer
				m.registry.Drop(sid)
				sid = uuid.NewString()
				cs.Values[sessionIDValue] = sid
				delete(cs.Values, accessTokenValue)
				dirty = true
			}
		}

		if dirty {
			if err := cs.Save(r, w); err != nil {
				log.Printf("[SESSION] failed to save session: %v", err)
			}
		}

		sess := feeds.Session{
			Store:  m.registry.ForSession(sid),
			Viewer: viewer,
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		ctx = context.WithValue(ctx, cookieContextKey, cs)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SignIn validates accessToken and binds it to the current session. The
// session's feed store is replaced since cached like flags are per viewer.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, accessToken string) (feeds.Viewer, error) {
	claims, err := m.tokens.Parse(accessToken)
	if err != nil {
		return feeds.Viewer{}, err
	}
	if claims.Expired(m.now()) {
		return feeds.Viewer{}, errors.New("access token expired")
	}

	cs := m.cookieSession(r)
	if sid, _ := cs.Values[sessionIDValue].(string); sid != "" {
		m.registry.Drop(sid)
	}
	cs.Values[sessionIDValue] = uuid.NewString()
	cs.Values[accessTokenValue] = accessToken
	if err := cs.Save(r, w); err != nil {
		return feeds.Viewer{}, fmt.Errorf("save session: %w", err)
	}

	return feeds.Viewer{
		ID:          claims.Subject,
		AccessToken: accessToken,
		Status:      feeds.StatusAuthenticated,
	}, nil
}

// SignOut drops the session's feed store and clears the cookie
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) {
	cs := m.cookieSession(r)
	if sid, _ := cs.Values[sessionIDValue].(string); sid != "" {
		m.registry.Drop(sid)
	}

	cs.Values = map[interface{}]interface{}{}
	cs.Options.MaxAge = -1 // Delete cookie
	if err := cs.Save(r, w); err != nil {
		log.Printf("[SESSION] failed to clear session: %v", err)
	}
}

// AddFlash queues a one-shot message shown on the next rendered page
func (m *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, message string) {
	cs := m.cookieSession(r)
	cs.AddFlash(message)
	if err := cs.Save(r, w); err != nil {
		log.Printf("[SESSION] failed to save flash: %v", err)
	}
}

// Flashes pops the queued messages. Must be called before the response body is written.
func (m *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	cs := m.cookieSession(r)
	raw := cs.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := cs.Save(r, w); err != nil {
		log.Printf("[SESSION] failed to save session after reading flashes: %v", err)
	}

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}

// cookieSession returns the cookie session loaded by Middleware, or loads it
func (m *SessionManager) cookieSession(r *http.Request) *sessions.Session {
	if cs, ok := r.Context().Value(cookieContextKey).(*sessions.Session); ok {
		return cs
	}
	cs, err := m.cookies.Get(r, SessionCookieName)
	if err != nil {
		log.Printf("[SESSION] discarding unreadable cookie: %v", err)
	}
	return cs
}

// GetSession returns the feed session injected by SessionManager.Middleware
func GetSession(r *http.Request) (feeds.Session, bool) {
	sess, ok := r.Context().Value(sessionContextKey).(feeds.Session)
	return sess, ok
}

// GetViewer returns the viewer of the request, anonymous when there is none
func GetViewer(r *http.Request) feeds.Viewer {
	if sess, ok := GetSession(r); ok {
		return sess.Viewer
	}
	return feeds.Viewer{Status: feeds.StatusUnauthenticated}
}

// WithSession sets the feed session in the context.
// This function should ONLY be used in tests to stand in for Middleware.
func WithSession(ctx context.Context, sess feeds.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
