package feedcache

import "sync"

// Op is the kind of mutation in flight for a tweet
type Op int

const (
	// OpToggleLike is a like or unlike request
	OpToggleLike Op = iota + 1
	// OpDelete is a delete request
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpToggleLike:
		return "toggleLike"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// claims holds the mutations in flight for one tweet
type claims struct {
	toggle bool
	delete bool
}

func (c *claims) has(op Op) bool {
	switch op {
	case OpToggleLike:
		return c.toggle
	case OpDelete:
		return c.delete
	default:
		return false
	}
}

func (c *claims) set(op Op, v bool) {
	switch op {
	case OpToggleLike:
		c.toggle = v
	case OpDelete:
		c.delete = v
	}
}

// BeginMutation claims tweetID for op until the returned release func runs.
//
// Rules:
//   - a second toggle while one is in flight fails with ErrMutationInFlight
//   - a toggle while a delete is in flight fails with ErrPendingDeletion
//   - a second delete fails with ErrMutationInFlight
//   - a delete may start while a toggle is in flight; the toggle keeps its own
//     claim until it finishes
//
// Release is idempotent and only clears the claim it made.
func (s *Store) BeginMutation(tweetID string, op Op) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.pending[tweetID]
	if !ok {
		c = &claims{}
	}
	switch {
	case op == OpToggleLike && c.delete:
		return nil, ErrPendingDeletion
	case c.has(op):
		return nil, ErrMutationInFlight
	}
	c.set(op, true)
	s.pending[tweetID] = c

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			// Reset may have replaced the claim since
			if cur, ok := s.pending[tweetID]; ok && cur == c {
				c.set(op, false)
				if !c.toggle && !c.delete {
					delete(s.pending, tweetID)
				}
			}
		})
	}, nil
}

// Pending returns the mutation in flight for tweetID, if any. A pending delete
// wins over a pending toggle.
func (s *Store) Pending(tweetID string) (Op, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.pending[tweetID]
	switch {
	case !ok:
		return 0, false
	case c.delete:
		return OpDelete, true
	case c.toggle:
		return OpToggleLike, true
	default:
		return 0, false
	}
}
