package web

import (
	"strings"

	"mvdan.cc/xurls/v2"
)

var strictURLs = xurls.Strict()

// Segment is a run of tweet content; Href is set for detected links
type Segment struct {
	Text string
	Href string
}

// SplitContent splits tweet content into plain text and link segments.
// The text is kept verbatim so whitespace and newlines survive rendering.
func SplitContent(content string) []Segment {
	matches := strictURLs.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		if content == "" {
			return nil
		}
		return []Segment{{Text: content}}
	}

	segments := make([]Segment, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segments = append(segments, Segment{Text: content[last:m[0]]})
		}
		link := content[m[0]:m[1]]
		segments = append(segments, Segment{Text: link, Href: safeHref(link)})
		last = m[1]
	}
	if last < len(content) {
		segments = append(segments, Segment{Text: content[last:]})
	}
	return segments
}

// safeHref only lets web links through; other schemes are rendered as text
func safeHref(link string) string {
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	return ""
}
