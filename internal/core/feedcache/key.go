package feedcache

import (
	"fmt"
	"strings"
)

// Kind tags which feed a Key addresses
type Kind int

const (
	// KindGlobal is the unfiltered feed of every tweet
	KindGlobal Kind = iota
	// KindFollowing is the feed restricted to authors the viewer follows
	KindFollowing
	// KindAuthor is a single author's profile feed
	KindAuthor
)

const authorKeyPrefix = "author:"

// Key identifies one PagedView. It is comparable and safe to use as a map key.
// Build keys with Global, Following or ByAuthor; the zero Key is the global feed.
type Key struct {
	authorID string
	kind     Kind
}

// Global returns the key of the unfiltered feed
func Global() Key { return Key{kind: KindGlobal} }

// Following returns the key of the following-only feed
func Following() Key { return Key{kind: KindFollowing} }

// ByAuthor returns the key of one author's profile feed
func ByAuthor(authorID string) Key { return Key{kind: KindAuthor, authorID: authorID} }

// Kind returns the variant tag
func (k Key) Kind() Kind { return k.kind }

// AuthorID returns the author of a profile feed key, or "" for the other kinds
func (k Key) AuthorID() string { return k.authorID }

// String renders the key in the form accepted by ParseKey
func (k Key) String() string {
	switch k.kind {
	case KindGlobal:
		return "global"
	case KindFollowing:
		return "following"
	case KindAuthor:
		return authorKeyPrefix + k.authorID
	default:
		return fmt.Sprintf("unknown(%d)", int(k.kind))
	}
}

// ParseKey parses the output of Key.String
func ParseKey(s string) (Key, error) {
	switch {
	case s == "global" || s == "":
		return Global(), nil
	case s == "following":
		return Following(), nil
	case strings.HasPrefix(s, authorKeyPrefix):
		authorID := strings.TrimPrefix(s, authorKeyPrefix)
		if authorID == "" {
			return Key{}, fmt.Errorf("%w: missing author id", ErrInvalidKey)
		}
		return ByAuthor(authorID), nil
	default:
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
}

// affectedBy reports whether a tweet written by authorID can appear in the view
// addressed by k. An empty authorID means the author is unknown, so every view
// is a candidate.
func (k Key) affectedBy(authorID string) bool {
	switch k.kind {
	case KindGlobal, KindFollowing:
		return true
	case KindAuthor:
		return authorID == "" || k.authorID == authorID
	default:
		return false
	}
}

// PatchTargets lists the keys a confirmed mutation on a tweet by authorID must patch
func PatchTargets(authorID string) []Key {
	return []Key{Global(), Following(), ByAuthor(authorID)}
}
