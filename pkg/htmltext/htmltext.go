// Package htmltext turns arbitrary, possibly malformed HTML fragments into
// plain text suitable for console output and message bodies.
package htmltext

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// descriptionLimit caps sanitized descriptions in bytes. Telegram rejects
// messages over 4096 characters, so the description must leave headroom for
// the title, price, and seller lines around it.
const descriptionLimit = 3500

var imgSrcPattern = regexp.MustCompile(` src="([^"]+)"`)

// StripTags removes all tags and comments from an HTML fragment and returns
// the remaining text with entities decoded. Malformed markup is tolerated;
// the parser recovers rather than failing.
func StripTags(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	text := doc.Text()

	// The parser decodes &nbsp; to U+00A0, which renders badly in
	// terminals and Telegram clients alike.
	return strings.ReplaceAll(text, " ", " ")
}

// Sanitize strips tags from a fragment, trims surrounding whitespace, and
// caps the result at a fixed length, appending an ellipsis when truncated.
func Sanitize(fragment string) string {
	text := strings.TrimSpace(StripTags(fragment))
	if len(text) < descriptionLimit {
		return text
	}
	return truncate(text, descriptionLimit-1) + "…"
}

// FindImageURL returns the value of the first src attribute in a raw markup
// fragment. Classifieds feed descriptions embed a thumbnail <img> whose URL
// is useful even when the detail page yields no photos.
func FindImageURL(fragment string) (string, bool) {
	m := imgSrcPattern.FindStringSubmatch(fragment)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
