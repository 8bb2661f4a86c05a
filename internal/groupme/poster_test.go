package groupme_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-encounter/internal/config"
	"github.com/tartampluch/go-encounter/internal/engine"
	"github.com/tartampluch/go-encounter/internal/groupme"
)

var _ engine.Poster = (*groupme.Poster)(nil)

func TestPoster_Post(t *testing.T) {
	var got map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get(config.HeaderContentType), config.MimeJSON)
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	p := groupme.NewPoster(ts.URL, "bot-123")
	require.NoError(t, p.Post(context.Background(), "Birthdays:\n\tAlice - Fri Mar 15 (34 years)"))

	assert.Equal(t, map[string]string{
		"text":   "Birthdays:\n\tAlice - Fri Mar 15 (34 years)",
		"bot_id": "bot-123",
	}, got)
}

func TestPoster_Post_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"meta":{"code":400,"errors":["bot_id is invalid"]}}`))
	}))
	defer ts.Close()

	err := groupme.NewPoster(ts.URL, "nope").Post(context.Background(), "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPostStatus)
	assert.Contains(t, err.Error(), "400")
}

func TestPoster_Post_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	err := groupme.NewPoster(url, "bot").Post(context.Background(), "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPostMessage)
}

// TestPoster_WithRenderer checks the chunks arrive in order through the real transport.
func TestPoster_WithRenderer(t *testing.T) {
	var (
		mu    sync.Mutex
		texts []string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		mu.Lock()
		texts = append(texts, m["text"])
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	r := engine.NewRenderer(groupme.NewPoster(ts.URL, "bot"))
	r.Limit = 20
	r.Sleep = func(ctx context.Context, _ time.Duration) bool { return ctx.Err() == nil }

	require.NoError(t, r.Send(context.Background(), "first line\n!encounter again"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first line", "$ again"}, texts)
}
