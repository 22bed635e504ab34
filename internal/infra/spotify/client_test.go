package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
)

func TestExtractShowID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Spotify URI format",
			input:    "spotify:show:4rOoJ6Egrf8K2IrywzwOMk",
			expected: "4rOoJ6Egrf8K2IrywzwOMk",
		},
		{
			name:     "Spotify URL format",
			input:    "https://open.spotify.com/show/4rOoJ6Egrf8K2IrywzwOMk",
			expected: "4rOoJ6Egrf8K2IrywzwOMk",
		},
		{
			name:     "Spotify URL with intl prefix and query params",
			input:    "https://open.spotify.com/intl-pt/show/4rOoJ6Egrf8K2IrywzwOMk?si=abc123",
			expected: "4rOoJ6Egrf8K2IrywzwOMk",
		},
		{
			name:     "Plain show ID",
			input:    " 4rOoJ6Egrf8K2IrywzwOMk ",
			expected: "4rOoJ6Egrf8K2IrywzwOMk",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractShowID(tt.input))
		})
	}
}

func TestExtractEpisodeID(t *testing.T) {
	assert.Equal(t, "512ojhOuo1ktJprKbVcKyQ", extractEpisodeID("spotify:episode:512ojhOuo1ktJprKbVcKyQ"))
	assert.Equal(t, "512ojhOuo1ktJprKbVcKyQ", extractEpisodeID("https://open.spotify.com/episode/512ojhOuo1ktJprKbVcKyQ/"))
	assert.Equal(t, "spotify:show:abc", extractEpisodeID("spotify:show:abc"), "other kinds are left untouched")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "rate limit error with 429", err: errors.New("Error 429: rate limit exceeded"), expected: true},
		{name: "rate limit text", err: errors.New("rate limit exceeded"), expected: true},
		{name: "server error 503", err: errors.New("503 Service Unavailable"), expected: true},
		{name: "api error 429", err: spotify.Error{Message: "slow down", Status: http.StatusTooManyRequests}, expected: true},
		{name: "api error 502", err: spotify.Error{Message: "bad gateway", Status: http.StatusBadGateway}, expected: true},
		{name: "api error 404", err: spotify.Error{Message: "non existing id", Status: http.StatusNotFound}, expected: false},
		{name: "client error 400", err: errors.New("400 Bad Request"), expected: false},
		{name: "generic error", err: errors.New("something went wrong"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRetryable(tt.err))
		})
	}
}

func TestParseReleaseDate(t *testing.T) {
	assert.True(t, time.Date(2021, 3, 9, 0, 0, 0, 0, time.UTC).Equal(parseReleaseDate("2021-03-09")))
	assert.True(t, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC).Equal(parseReleaseDate("2021-03")))
	assert.True(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC).Equal(parseReleaseDate("2021")))
	assert.True(t, parseReleaseDate("").IsZero())
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{ShowID: "abc"})
	assert.Error(t, err)

	_, err = newClient(http.DefaultClient, Config{})
	assert.Error(t, err, "show id is required")
}

const episodeItem = `{
	"audio_preview_url": "https://p.scdn.co/mp3-preview/ep1",
	"description": "Primeiro episódio",
	"duration_ms": 3981000,
	"id": "ep1",
	"images": [{"url": "https://i.scdn.co/image/ep1", "height": 640, "width": 640}],
	"name": "Episódio 1",
	"release_date": "2021-01-22",
	"release_date_precision": "day",
	"type": "episode"
}`

func TestShowEpisodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/shows/show1/episodes"):
			assert.Equal(t, "BR", r.URL.Query().Get("market"))
			fmt.Fprintf(w, `{"href": "", "items": [%s], "limit": 12, "offset": 0, "total": 1}`, episodeItem)
		case strings.HasSuffix(r.URL.Path, "/shows/show1"):
			fmt.Fprint(w, `{"id": "show1", "name": "Faladev", "publisher": "Rocketseat"}`)
		case strings.HasSuffix(r.URL.Path, "/episodes/ep1"):
			fmt.Fprint(w, episodeItem)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": {"status": 404, "message": "non existing id"}}`)
		}
	}))
	defer server.Close()

	client, err := newClient(server.Client(), Config{ShowID: "spotify:show:show1"}, spotify.WithBaseURL(server.URL+"/"))
	require.NoError(t, err)
	client.retryDelay = time.Millisecond
	ctx := context.Background()

	list, err := client.ListEpisodes(ctx, 12)
	require.NoError(t, err)
	require.Len(t, list, 1)

	e := list[0]
	assert.Equal(t, "ep1", e.ID)
	assert.Equal(t, "Episódio 1", e.Title)
	assert.Equal(t, "Rocketseat", e.Members)
	assert.Equal(t, 3981, e.Duration)
	assert.Equal(t, "01:06:21", e.DurationAsString)
	assert.Equal(t, "22 jan 21", e.PublishedLabel)
	assert.Equal(t, "https://i.scdn.co/image/ep1", e.Thumbnail)
	assert.Equal(t, "https://p.scdn.co/mp3-preview/ep1", e.URL)

	single, err := client.GetEpisode(ctx, "https://open.spotify.com/episode/ep1")
	require.NoError(t, err)
	assert.Equal(t, e, single)

	_, err = client.GetEpisode(ctx, "missing")
	require.Error(t, err)
	assert.True(t, cerrors.Is(err, ErrEpisodeNotFound))
}

func TestGetEpisodeURL(t *testing.T) {
	assert.Equal(t, "https://open.spotify.com/episode/ep1", GetEpisodeURL("ep1"))
}
