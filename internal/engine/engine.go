// Package engine sequences one processing cycle: fetch the feed, pick out
// unseen listings oldest-first, enrich, announce, and persist the seen set.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"

	"gliderwatch/internal/feed"
	"gliderwatch/internal/metrics"
	"gliderwatch/internal/notify"
	"gliderwatch/internal/scrape"
	"gliderwatch/internal/seen"
)

// FeedLoader fetches and parses the classifieds feed.
type FeedLoader interface {
	Load(ctx context.Context) ([]feed.Listing, []feed.Rejection, error)
}

// PageFetcher downloads and parses a detail or profile page.
type PageFetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

// Engine runs processing cycles. Listings are handled strictly one at a
// time, in feed order (oldest first); that keeps load on the scraped site
// bounded and makes the seen-set updates trivially ordered.
type Engine struct {
	feed     FeedLoader
	fetcher  PageFetcher
	store    *seen.Store
	notifier notify.Notifier

	out io.Writer
	log *slog.Logger
}

// NewEngine creates an Engine with injected dependencies.
func NewEngine(
	f FeedLoader,
	fetcher PageFetcher,
	store *seen.Store,
	notifier notify.Notifier,
	opts ...Option,
) *Engine {
	e := &Engine{
		feed:     f,
		fetcher:  fetcher,
		store:    store,
		notifier: notifier,
		out:      os.Stdout,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithOutput redirects console output, used by tests.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.out = w
	}
}

// RunCycle executes one full processing cycle. Feed failures and state
// persistence failures abort the cycle; anything that goes wrong for a
// single listing is logged and absorbed, and the listing is still marked
// seen (at-most-once delivery). Cancellation stops before the next
// listing, never between an attempt and its seen-mark, and the
// accumulated marks are persisted before returning.
func (e *Engine) RunCycle(ctx context.Context) error {
	start := time.Now()
	metrics.CyclesTotal.Inc()
	defer func() {
		metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}()

	guids := e.store.Load()

	listings, rejects, err := e.feed.Load(ctx)
	if err != nil {
		metrics.CycleFailuresTotal.Inc()
		return fmt.Errorf("loading feed: %w", err)
	}

	for _, r := range rejects {
		metrics.FeedRejectsTotal.Inc()
		e.log.Warn("skipping malformed feed entry", "index", r.Index, "error", r.Err)
	}
	metrics.FeedListingsTotal.Add(float64(len(listings)))
	e.log.Debug("feed loaded", "listings", len(listings), "rejected", len(rejects))

	// The feed lists newest first; reversing yields oldest-first delivery.
	var fresh []feed.Listing
	for i := len(listings) - 1; i >= 0; i-- {
		if !guids.Contains(listings[i].ID) {
			fresh = append(fresh, listings[i])
		}
	}

	fmt.Fprintf(e.out, "✈️  Found %d new classifieds on Segelflug.de\n\n", len(fresh))

	var interrupted error
	for i := range fresh {
		// Stop attempting new listings on cancellation, but fall through
		// to Save: anything already delivered must be on disk before the
		// process exits, or it would be re-notified on the next run.
		if err := ctx.Err(); err != nil {
			interrupted = err
			break
		}

		listing := &fresh[i]
		e.process(ctx, listing)

		// Marked seen even when enrichment or delivery failed: each
		// listing gets exactly one attempt, ever.
		guids.Add(listing.ID)
	}

	if err := e.store.Save(guids); err != nil {
		metrics.CycleFailuresTotal.Inc()
		return fmt.Errorf("persisting seen listings: %w", err)
	}

	return interrupted
}

func (e *Engine) process(ctx context.Context, listing *feed.Listing) {
	metrics.NewListingsTotal.Inc()
	e.log.Info("processing listing", "id", listing.ID, "title", listing.Title)

	details := e.loadDetails(ctx, listing)

	var seller scrape.Seller
	if details.SellerLink != "" {
		seller = e.loadSeller(ctx, details.SellerLink)
	}

	payload := buildPayload(listing, details, seller)

	fmt.Fprintln(e.out, payload.ConsoleSummary())

	if err := e.notifier.Announce(ctx, payload); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		e.log.Warn("notification delivery failed", "id", listing.ID, "error", err)
		return
	}
	metrics.NotificationsSentTotal.Inc()
}

func (e *Engine) loadDetails(ctx context.Context, listing *feed.Listing) scrape.Details {
	doc, err := e.fetcher.Document(ctx, listing.Link)
	if err != nil {
		metrics.EnrichmentFailuresTotal.Inc()
		e.log.Warn("detail page unavailable", "id", listing.ID, "error", err)
		return scrape.Details{}
	}

	return scrape.ExtractDetails(doc, e.detectGenerator(doc, listing.Link))
}

func (e *Engine) loadSeller(ctx context.Context, profileURL string) scrape.Seller {
	doc, err := e.fetcher.Document(ctx, profileURL)
	if err != nil {
		metrics.EnrichmentFailuresTotal.Inc()
		e.log.Warn("profile page unavailable", "url", profileURL, "error", err)
		return scrape.Seller{}
	}

	return scrape.ExtractSeller(doc, e.detectGenerator(doc, profileURL))
}

func (e *Engine) detectGenerator(doc *goquery.Document, pageURL string) scrape.Generator {
	gen, raw := scrape.DetectGenerator(doc)
	if gen == scrape.GeneratorUnknown {
		metrics.UnknownGeneratorTotal.Inc()
		e.log.Warn("unrecognized site generator, assuming dj-classifieds",
			"url", pageURL,
			"generator", raw,
		)
	}
	return gen
}

func buildPayload(listing *feed.Listing, details scrape.Details, seller scrape.Seller) notify.Payload {
	p := notify.Payload{
		Title:          listing.Title,
		Link:           listing.Link,
		Description:    listing.Description,
		ThumbnailURL:   listing.ImageURL,
		Price:          details.Price,
		SellerName:     seller.Name,
		SellerLink:     details.SellerLink,
		SellerLocation: seller.Location,
	}

	if p.SellerLocation == "" {
		p.SellerLocation = details.Location
	}
	if len(details.PhotoURLs) > 0 {
		p.PhotoURL = details.PhotoURLs[0]
	}

	return p
}
