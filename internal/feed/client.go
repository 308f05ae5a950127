package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Client fetches and parses the classifieds feed.
type Client struct {
	feedURL string
	client  *http.Client
	log     *slog.Logger
}

// NewClient creates a feed Client for the given URL.
func NewClient(feedURL string, httpClient *http.Client, opts ...ClientOption) *Client {
	c := &Client{
		feedURL: feedURL,
		client:  httpClient,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// Load fetches the feed and parses it into listings. Any failure here is
// fatal to the current processing cycle.
func (c *Client) Load(ctx context.Context) ([]Listing, []Rejection, error) {
	c.log.Debug("downloading RSS feed", "url", c.feedURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating feed request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("downloading RSS feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("feed server returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading feed response: %w", err)
	}

	return Parse(data)
}
