package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Fetcher downloads detail and profile pages. A token-bucket limiter keeps
// the scrape rate polite; listings are processed sequentially anyway, so a
// small burst is enough.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewFetcher creates a Fetcher with the given per-second rate and burst.
func NewFetcher(client *http.Client, perSecond float64, burst int, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetcherLogger sets a custom logger.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.log = l
	}
}

// Document fetches a URL and parses the response as an HTML document.
// Structural errors in the markup do not fail the parse; the parser
// recovers and extraction proceeds on what it understood.
func (f *Fetcher) Document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	f.log.Debug("downloading HTML page", "url", pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating page request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading HTML page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("page server returned %d for %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML page: %w", err)
	}

	return doc, nil
}
