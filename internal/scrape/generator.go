// Package scrape extracts listing and seller data from classifieds pages.
// The site mixes two generators (Osclass and DJ-Classifieds on Joomla) with
// structurally different markup, so every extractor dispatches on the
// detected generator first.
package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Generator identifies the site-building platform behind a page.
type Generator int

const (
	GeneratorUnknown Generator = iota
	GeneratorOsclass
	GeneratorDJClassifieds
)

// String returns the generator name for logging.
func (g Generator) String() string {
	switch g {
	case GeneratorOsclass:
		return "osclass"
	case GeneratorDJClassifieds:
		return "dj-classifieds"
	default:
		return "unknown"
	}
}

// DetectGenerator classifies a page by the content prefix of its
// meta[name="generator"] element. The raw content is returned alongside so
// callers can log it when the generator is unrecognized. Callers treat
// Unknown as DJ-Classifieds; that matches the more common target but is a
// guess, so they emit a diagnostic when falling back.
func DetectGenerator(doc *goquery.Document) (Generator, string) {
	content, _ := doc.Find(`meta[name="generator"]`).First().Attr("content")

	switch {
	case strings.HasPrefix(content, "Osclass"):
		return GeneratorOsclass, content
	case strings.HasPrefix(content, "Joomla"):
		return GeneratorDJClassifieds, content
	default:
		return GeneratorUnknown, content
	}
}
