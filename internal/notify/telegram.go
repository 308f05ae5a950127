package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"gliderwatch/internal/metrics"
)

const (
	defaultAPIURL      = "https://api.telegram.org"
	defaultMaxAttempts = 5

	// Telegram's per-message ceilings, in characters.
	maxMessageLength = 4096
	maxCaptionLength = 1024
)

// ErrRetriesExhausted is returned when the rate-limit retry budget for a
// single request has been used up.
var ErrRetriesExhausted = errors.New("telegram: maximum number of retries reached")

// Telegram delivers announcements through the Telegram Bot API.
type Telegram struct {
	token  string
	chatID string
	apiURL string

	client      *http.Client
	maxAttempts int
	sleep       func(context.Context, time.Duration) error
	log         *slog.Logger
}

// NewTelegram creates a Telegram notifier for a fixed chat.
func NewTelegram(token, chatID string, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		token:       token,
		chatID:      chatID,
		apiURL:      defaultAPIURL,
		client:      http.DefaultClient,
		maxAttempts: defaultMaxAttempts,
		sleep:       sleepContext,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TelegramOption configures a Telegram notifier.
type TelegramOption func(*Telegram)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) TelegramOption {
	return func(t *Telegram) {
		t.client = c
	}
}

// WithAPIURL overrides the Bot API base URL, used by tests.
func WithAPIURL(u string) TelegramOption {
	return func(t *Telegram) {
		t.apiURL = u
	}
}

// WithMaxAttempts sets the per-request attempt budget.
func WithMaxAttempts(n int) TelegramOption {
	return func(t *Telegram) {
		t.maxAttempts = n
	}
}

// WithSleepFunc overrides the rate-limit wait, used by tests to avoid real
// sleeping.
func WithSleepFunc(f func(context.Context, time.Duration) error) TelegramOption {
	return func(t *Telegram) {
		t.sleep = f
	}
}

// WithTelegramLogger sets a custom logger.
func WithTelegramLogger(l *slog.Logger) TelegramOption {
	return func(t *Telegram) {
		t.log = l
	}
}

// Announce delivers one listing, preferring a photo message: first the
// scraped detail-page photo, then the feed thumbnail, finally text-only.
// The first successful send wins; a photo failure is logged and the chain
// moves on.
func (t *Telegram) Announce(ctx context.Context, p Payload) error {
	for _, photo := range []string{p.PhotoURL, p.ThumbnailURL} {
		if photo == "" {
			continue
		}
		if err := t.announcePhoto(ctx, photo, p); err != nil {
			t.log.Warn("photo delivery failed, falling back",
				"photo", photo,
				"error", err,
			)
			continue
		}
		return nil
	}

	body := p.RichBody()
	if utf8.RuneCountInString(body) > maxMessageLength {
		body = p.ShortBody()
	}

	_, err := t.sendMessage(ctx, body, 0)
	return err
}

// announcePhoto sends a photo with the rich body as caption. Captions have
// a lower ceiling than messages, so an oversized body is split: the short
// body becomes the caption and the full body follows as a reply.
func (t *Telegram) announcePhoto(ctx context.Context, photoURL string, p Payload) error {
	body := p.RichBody()

	if utf8.RuneCountInString(body) <= maxCaptionLength {
		_, err := t.sendPhoto(ctx, photoURL, body)
		return err
	}

	msgID, err := t.sendPhoto(ctx, photoURL, p.ShortBody())
	if err != nil {
		return err
	}

	if utf8.RuneCountInString(body) > maxMessageLength {
		body = p.ShortBody()
	}
	if _, err := t.sendMessage(ctx, body, msgID); err != nil {
		// The photo got through; losing the follow-up text is not worth
		// re-sending the listing.
		t.log.Warn("follow-up message failed after photo", "error", err)
	}

	return nil
}

func (t *Telegram) sendMessage(ctx context.Context, text string, replyTo int64) (int64, error) {
	params := map[string]any{
		"chat_id":                  t.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	if replyTo != 0 {
		params["reply_to_message_id"] = replyTo
	}
	return t.invoke(ctx, "sendMessage", params)
}

func (t *Telegram) sendPhoto(ctx context.Context, photoURL, caption string) (int64, error) {
	return t.invoke(ctx, "sendPhoto", map[string]any{
		"chat_id":    t.chatID,
		"photo":      photoURL,
		"caption":    caption,
		"parse_mode": "HTML",
	})
}

// invoke posts one Bot API request, retrying after the server-specified
// interval when rate-limited. Any other failure propagates immediately.
func (t *Telegram) invoke(ctx context.Context, method string, params map[string]any) (int64, error) {
	var retryAfter time.Duration

	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		if attempt > 1 {
			t.log.Debug("rate limited, retrying",
				"method", method,
				"attempt", attempt,
				"max_attempts", t.maxAttempts,
				"wait", retryAfter,
			)
			metrics.TelegramRetriesTotal.Inc()
			if err := t.sleep(ctx, retryAfter); err != nil {
				return 0, fmt.Errorf("waiting out rate limit: %w", err)
			}
		}

		msgID, ra, err := t.post(ctx, method, params)
		if err == nil {
			return msgID, nil
		}
		if ra < 0 {
			return 0, err
		}
		retryAfter = ra
	}

	return 0, fmt.Errorf("%w (%d attempts)", ErrRetriesExhausted, t.maxAttempts)
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
	Result      *struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
	Parameters *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// post performs a single API call. The returned duration is non-negative
// only for rate-limit errors, carrying the server-specified wait.
func (t *Telegram) post(ctx context.Context, method string, params map[string]any) (int64, time.Duration, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return 0, -1, fmt.Errorf("encoding %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", t.apiURL, t.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, -1, fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, -1, fmt.Errorf("sending %s request: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, -1, fmt.Errorf("reading %s response: %w", method, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return 0, -1, fmt.Errorf("decoding %s response (%d): %w", method, resp.StatusCode, err)
	}

	if parsed.OK {
		if parsed.Result == nil {
			return 0, -1, fmt.Errorf("%s response missing result", method)
		}
		return parsed.Result.MessageID, -1, nil
	}

	if parsed.Parameters != nil && parsed.Parameters.RetryAfter > 0 {
		wait := time.Duration(parsed.Parameters.RetryAfter) * time.Second
		return 0, wait, fmt.Errorf("%s rate limited, retry after %s", method, wait)
	}

	return 0, -1, fmt.Errorf("%s failed (%d): %s", method, parsed.ErrorCode, parsed.Description)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
