package episodes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const episodeJSON = `{
	"id": "a-importancia-da-contribuicao-em-projetos-open-source",
	"title": "A importância da contribuição em projetos Open Source",
	"members": "Diego Fernandes, João Pedro, Diego Schell Fernandes e Bruno Lemos",
	"published_at": "2021-01-22 19:00:00",
	"thumbnail": "https://example.com/opensource.jpg",
	"description": "<p>Nesse episódio do Faladev.</p>",
	"file": {
		"url": "https://example.com/opensource.m4a",
		"type": "audio/x-m4a",
		"duration": 3981
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL + "/"})
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{BaseURL: "http://localhost:3333"}},
		{name: "empty", cfg: Config{}, wantErr: true},
		{name: "relative", cfg: Config{BaseURL: "/episodes"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListEpisodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/episodes", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("_limit"))
		assert.Equal(t, "published_at", r.URL.Query().Get("_sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("_order"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[%s, {"id": "", "title": "no id"}, {"id": "b", "published_at": "2021-01-08T16:00:00Z", "file": {"url": "u", "duration": "120"}}]`, episodeJSON)
	})

	list, err := client.ListEpisodes(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 2, "episode without id is skipped")

	first := list[0]
	assert.Equal(t, "a-importancia-da-contribuicao-em-projetos-open-source", first.ID)
	assert.Equal(t, 3981, first.Duration)
	assert.Equal(t, "01:06:21", first.DurationAsString)
	assert.Equal(t, "22 jan 21", first.PublishedLabel)
	assert.Equal(t, "https://example.com/opensource.m4a", first.URL)
	assert.True(t, time.Date(2021, 1, 22, 19, 0, 0, 0, time.UTC).Equal(first.PublishedAt))

	assert.Equal(t, 120, list[1].Duration, "string duration is accepted")
	assert.Equal(t, "8 jan 21", list[1].PublishedLabel)
}

func TestGetEpisode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/episodes/a-importancia-da-contribuicao-em-projetos-open-source":
			fmt.Fprint(w, episodeJSON)
		case "/episodes/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	e, err := client.GetEpisode(ctx, "a-importancia-da-contribuicao-em-projetos-open-source")
	require.NoError(t, err)
	assert.Equal(t, "A importância da contribuição em projetos Open Source", e.Title)

	_, err = client.GetEpisode(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEpisodeNotFound))

	_, err = client.GetEpisode(ctx, "broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEpisodeNotFound))
	assert.Contains(t, err.Error(), "episodes API error 500")

	_, err = client.GetEpisode(ctx, "")
	assert.Error(t, err)
}

func TestEnglishLocale(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "x", "published_at": "2021-02-03", "file": {"url": "u", "duration": 59}}`)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Locale: "en"})
	require.NoError(t, err)

	e, err := client.GetEpisode(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "3 feb 21", e.PublishedLabel)
	assert.Equal(t, "00:00:59", e.DurationAsString)
}

func TestParsePublished(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "", want: time.Time{}},
		{in: "2021-01-22 19:00:00", want: time.Date(2021, 1, 22, 19, 0, 0, 0, time.UTC)},
		{in: "2021-01-22T19:00:00", want: time.Date(2021, 1, 22, 19, 0, 0, 0, time.UTC)},
		{in: "2021-01-22", want: time.Date(2021, 1, 22, 0, 0, 0, 0, time.UTC)},
		{in: "22/01/2021", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePublished(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestSeconds_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Seconds
		wantErr bool
	}{
		{name: "number", in: `3981`, want: 3981},
		{name: "fraction", in: `120.7`, want: 120},
		{name: "numeric string", in: `"3981"`, want: 3981},
		{name: "null", in: `null`, want: 0},
		{name: "empty string", in: `""`, want: 0},
		{name: "not a number", in: `"NaN"`, wantErr: true},
		{name: "infinity", in: `"Inf"`, wantErr: true},
		{name: "negative infinity", in: `"-Inf"`, wantErr: true},
		{name: "too large", in: `1e300`, wantErr: true},
		{name: "garbage", in: `"1h"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Seconds
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidDuration))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
