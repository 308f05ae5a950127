// Package notify formats listing announcements and delivers them to the
// messaging endpoint.
package notify

import "context"

// Payload carries everything needed to announce one listing: the listing
// fields plus whatever enrichment the scrapers managed to extract. Empty
// strings mean the field is unknown.
type Payload struct {
	Title string
	Link  string

	Price       string
	Description string

	SellerName     string
	SellerLink     string
	SellerLocation string

	// PhotoURL is the first photo scraped from the detail page;
	// ThumbnailURL is the image derived from the feed description. Either
	// may be empty.
	PhotoURL     string
	ThumbnailURL string
}

// Notifier delivers a listing announcement. Implementations must return an
// error only when delivery failed terminally; partial success (for example
// a delivered photo without its follow-up text) counts as delivered.
type Notifier interface {
	Announce(ctx context.Context, p Payload) error
}
