package tweets

import "time"

// MaxContentLength is the maximum number of runes accepted for a new tweet
const MaxContentLength = 280

// Author is the read-only profile reference carried by every tweet.
// Authors are owned by the remote API; the client never edits them.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Tweet is a single authored text entry as returned by the feed procedures.
// LikeCount and LikedByMe are the only fields the client ever rewrites locally,
// and only after the remote API has confirmed a toggleLike.
type Tweet struct {
	CreatedAt time.Time `json:"createdAt"`
	Author    Author    `json:"user"`
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	LikeCount int       `json:"likeCount"`
	LikedByMe bool      `json:"likedByMe"`
}

// Page is one fetched page of a feed.
// NextCursor is opaque to the client; empty means the server has no more pages.
type Page struct {
	NextCursor string  `json:"nextCursor,omitempty"`
	Tweets     []Tweet `json:"tweets"`
}

// HasMore reports whether another page can be requested after this one
func (p Page) HasMore() bool {
	return p.NextCursor != ""
}
