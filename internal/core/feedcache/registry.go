package feedcache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Registry hands out one Store per browser session.
//
// Stores live until the session logs out (Drop), goes idle for longer than the
// TTL, or is pushed out because more than maxSessions sessions are active. In
// all three cases the store is Reset so no stale view outlives its session.
type Registry struct {
	stores *expirable.LRU[string, *Store]
	logger *slog.Logger
	mu     sync.Mutex
}

// NewRegistry creates a registry holding at most maxSessions stores, each
// expiring ttl after it was last handed out
func NewRegistry(maxSessions int, ttl time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if maxSessions <= 0 {
		maxSessions = 1
	}
	r := &Registry{logger: logger}
	r.stores = expirable.NewLRU[string, *Store](maxSessions, r.onEvict, ttl)
	return r
}

func (r *Registry) onEvict(sessionID string, store *Store) {
	store.Reset()
	r.logger.Debug("session feed cache released", "session", sessionID)
}

// ForSession returns the store of sessionID, creating it on first use.
// Each call refreshes the store's expiry.
func (r *Registry) ForSession(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores.Get(sessionID); ok {
		r.stores.Add(sessionID, store)
		return store
	}

	store := NewStore(r.logger.With("session", sessionID))
	r.stores.Add(sessionID, store)
	r.logger.Debug("session feed cache created", "session", sessionID)
	return store
}

// Drop tears down the store of sessionID, e.g. on logout
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stores.Remove(sessionID)
}

// Len returns the number of live stores
func (r *Registry) Len() int {
	return r.stores.Len()
}
