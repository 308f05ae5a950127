// Package feed parses the classifieds RSS feed into validated listings.
package feed

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/mmcdole/gofeed"

	"gliderwatch/pkg/htmltext"
)

// Listing is one classifieds feed entry. Instances are immutable after
// parsing and live for a single processing cycle; only the ID outlives the
// cycle, in the seen store.
type Listing struct {
	ID          string
	Title       string
	Link        string
	Description string // plain text, length-capped
	ImageURL    string // thumbnail derived from the raw description markup
}

// Rejection records a feed entry that failed validation. The surrounding
// entries are unaffected.
type Rejection struct {
	Index int
	Err   error
}

// The osclass feed wraps some payloads in JavaScript-style comment markers
// around CDATA sections, which trips up XML parsers.
var scriptCommentPattern = regexp.MustCompile(`//\s*(<!\[CDATA\[|\]\]>)`)

// Parse turns raw feed bytes into listings, preserving feed order. Entries
// missing an id, title, or link are returned as rejections rather than
// silently coerced. A malformed top-level document is an error.
func Parse(data []byte) ([]Listing, []Rejection, error) {
	normalized := scriptCommentPattern.ReplaceAll(data, []byte("$1"))

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(normalized))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing RSS feed: %w", err)
	}

	listings := make([]Listing, 0, len(parsed.Items))
	var rejects []Rejection

	for i, item := range parsed.Items {
		listing, err := fromItem(item)
		if err != nil {
			rejects = append(rejects, Rejection{Index: i, Err: err})
			continue
		}
		listings = append(listings, listing)
	}

	return listings, rejects, nil
}

func fromItem(item *gofeed.Item) (Listing, error) {
	if item.GUID == "" {
		return Listing{}, fmt.Errorf("missing guid element")
	}
	if item.Title == "" {
		return Listing{}, fmt.Errorf("missing title element")
	}
	if item.Link == "" {
		return Listing{}, fmt.Errorf("missing link element")
	}

	listing := Listing{
		ID:    item.GUID,
		Title: item.Title,
		Link:  item.Link,
	}

	if item.Description != "" {
		listing.Description = htmltext.Sanitize(item.Description)
		if url, ok := htmltext.FindImageURL(item.Description); ok {
			listing.ImageURL = url
		}
	}

	return listing, nil
}
