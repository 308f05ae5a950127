package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// botCall records one request the fake Bot API received.
type botCall struct {
	Method string
	Params map[string]any
}

// botServer is a scriptable fake of the Telegram Bot API. Responses are
// consumed per method in order; once a method's script runs out, requests
// succeed.
type botServer struct {
	t       *testing.T
	calls   []botCall
	scripts map[string][]func(w http.ResponseWriter)
	nextID  int64
}

func newBotServer(t *testing.T) *botServer {
	return &botServer{t: t, scripts: map[string][]func(w http.ResponseWriter){}}
}

func (b *botServer) failWith(method string, status int, body string) {
	b.scripts[method] = append(b.scripts[method], func(w http.ResponseWriter) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func (b *botServer) rateLimit(method string, retryAfter int) {
	b.failWith(method, http.StatusTooManyRequests, `{
		"ok": false,
		"error_code": 429,
		"description": "Too Many Requests: retry after `+jsonInt(retryAfter)+`",
		"parameters": {"retry_after": `+jsonInt(retryAfter)+`}
	}`)
}

func jsonInt(n int) string {
	data, _ := json.Marshal(n)
	return string(data)
}

func (b *botServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]

		var params map[string]any
		require.NoError(b.t, json.NewDecoder(r.Body).Decode(&params))
		b.calls = append(b.calls, botCall{Method: method, Params: params})

		if script := b.scripts[method]; len(script) > 0 {
			b.scripts[method] = script[1:]
			script[0](w)
			return
		}

		b.nextID++
		json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": b.nextID},
		})
	}
}

func (b *botServer) callsTo(method string) []botCall {
	var out []botCall
	for _, c := range b.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// newTestTelegram wires a Telegram notifier to the fake server with a
// recording sleep function.
func newTestTelegram(t *testing.T, b *botServer, opts ...TelegramOption) (*Telegram, *[]time.Duration) {
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	var sleeps []time.Duration
	base := []TelegramOption{
		WithAPIURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithSleepFunc(func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		}),
	}

	return NewTelegram("test-token", "@glider_deals", append(base, opts...)...), &sleeps
}

func TestTelegram_AnnounceTextOnly(t *testing.T) {
	t.Parallel()

	b := newBotServer(t)
	tg, _ := newTestTelegram(t, b)

	p := samplePayload()
	require.NoError(t, tg.Announce(context.Background(), p))

	msgs := b.callsTo("sendMessage")
	require.Len(t, msgs, 1)
	assert.Empty(t, b.callsTo("sendPhoto"))

	assert.Equal(t, "@glider_deals", msgs[0].Params["chat_id"])
	assert.Equal(t, "HTML", msgs[0].Params["parse_mode"])
	assert.Equal(t, true, msgs[0].Params["disable_web_page_preview"])
	assert.Contains(t, msgs[0].Params["text"], "LS4 mit Hänger")
}

func TestTelegram_AnnouncePhotoPreferred(t *testing.T) {
	t.Parallel()

	b := newBotServer(t)
	tg, _ := newTestTelegram(t, b)

	p := samplePayload()
	p.PhotoURL = "https://example.com/photo.jpg"
	p.ThumbnailURL = "https://example.com/thumb.jpg"

	require.NoError(t, tg.Announce(context.Background(), p))

	photos := b.callsTo("sendPhoto")
	require.Len(t, photos, 1)
	assert.Equal(t, "https://example.com/photo.jpg", photos[0].Params["photo"])
	assert.Contains(t, photos[0].Params["caption"], "LS4 mit Hänger")
	assert.Empty(t, b.callsTo("sendMessage"))
}

func TestTelegram_AnnounceFallsBackToThumbnail(t *testing.T) {
	t.Parallel()

	b := newBotServer(t)
	b.failWith("sendPhoto", http.StatusBadRequest, `{
		"ok": false, "error_code": 400,
		"description": "Bad Request: wrong file identifier"
	}`)
	tg, _ := newTestTelegram(t, b)

	p := samplePayload()
	p.PhotoURL = "https://example.com/broken.jpg"
	p.ThumbnailURL = "https://example.com/thumb.jpg"

	require.NoError(t, tg.Announce(context.Background(), p))

	// Exactly one successful photo send, using the thumbnail, no text
	// fallback.
	photos := b.callsTo("sendPhoto")
	require.Len(t, photos, 2)
	assert.Equal(t, "https://example.com/thumb.jpg", photos[1].Params["photo"])
	assert.Empty(t, b.callsTo("sendMessage"))
}

func TestTelegram_AnnounceFallsBackToText(t *testing.T) {
	t.Parallel()

	b := newBotServer(t)
	b.failWith("sendPhoto", http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"bad photo"}`)
	b.failWith("sendPhoto", http.StatusBadRequest, `{"ok":false,"error_code":400,"description":"bad thumb"}`)
	tg, _ := newTestTelegram(t, b)

	p := samplePayload()
	p.PhotoURL = "https://example.com/broken.jpg"
	p.ThumbnailURL = "https://example.com/also-broken.jpg"

	require.NoError(t, tg.Announce(context.Background(), p))

	assert.Len(t, b.callsTo("sendPhoto"), 2)
	require.Len(t, b.callsTo("sendMessage"), 1)
}

func TestTelegram_RateLimitRetriesAfterServerWait(t *testing.T) {
	t.Parallel()

	b := newBotServer(t)
	b.rateLimit("sendMessage", 3)
	tg, sleeps := newTestTelegram(t, b)

	require.NoError(t, tg.Announce(context.Background(), samplePayload()))

	// One retry after the server-specified wait; the successful second
	// attempt triggers no further requests.
	require.Len(t, b.callsTo("sendMessage"), 2)
	require.Len(t, *sleeps, 1)
	assert.GreaterOrEqual(t, (*sleeps)[0], 3*time.Second)
}

func TestTelegram_RateLimitExhaustsRetryBudget(t *testing.T) {
	t.Parallel()

	b := newBotServer(t)
	for range 5 {
		b.rateLimit("sendMessage", 1)
	}
	tg, sleeps := newTestTelegram(t, b, WithMaxAttempts(3))

	err := tg.Announce(context.Background(), samplePayload())
	require.ErrorIs(t, err, ErrRetriesExhausted)

	assert.Len(t, b.callsTo("sendMessage"), 3)
	assert.Len(t, *sleeps, 2)
}

func TestTelegram_NonRateLimitErrorNotRetried(t *testing.T) {
	t.Parallel()

	b := newBotServer(t)
	b.failWith("sendMessage", http.StatusBadRequest, `{
		"ok": false, "error_code": 400,
		"description": "Bad Request: can't parse entities"
	}`)
	tg, sleeps := newTestTelegram(t, b)

	err := tg.Announce(context.Background(), samplePayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't parse entities")

	assert.Len(t, b.callsTo("sendMessage"), 1)
	assert.Empty(t, *sleeps)
}

func TestTelegram_OversizedCaptionSplitsIntoReply(t *testing.T) {
	t.Parallel()

	b := newBotServer(t)
	tg, _ := newTestTelegram(t, b)

	p := samplePayload()
	p.PhotoURL = "https://example.com/photo.jpg"
	p.Description = strings.Repeat("sehr lang ", 200) // pushes body past 1024

	require.NoError(t, tg.Announce(context.Background(), p))

	photos := b.callsTo("sendPhoto")
	require.Len(t, photos, 1)
	assert.NotContains(t, photos[0].Params["caption"], "sehr lang")

	msgs := b.callsTo("sendMessage")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Params["text"], "sehr lang")
	assert.Equal(t, float64(1), msgs[0].Params["reply_to_message_id"])
}
