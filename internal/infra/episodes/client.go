// Package episodes provides a client for the podcastr episodes REST API
// (a json-server style backend).
package episodes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// ErrEpisodeNotFound is returned when the API answers 404 for an episode.
var ErrEpisodeNotFound = errors.New("episode not found")

// ErrInvalidDuration is returned for a file duration that is not a finite
// number of seconds within range.
var ErrInvalidDuration = errors.New("invalid duration")

// maxSeconds bounds a duration so it converts to int on every platform.
const maxSeconds = math.MaxInt32

// publishedLayouts are the timestamp layouts accepted for published_at.
var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Client is an episodes API client.
type Client struct {
	baseURL    string
	locale     string
	httpClient *http.Client
}

// Config represents episodes client configuration.
type Config struct {
	BaseURL string
	Locale  string
	Timeout time.Duration
}

// File is the media part of an API episode.
type File struct {
	URL      string  `json:"url"`
	Type     string  `json:"type"`
	Duration Seconds `json:"duration"`
}

// Seconds accepts durations encoded either as a JSON number or as a numeric string.
type Seconds int

// UnmarshalJSON implements json.Unmarshaler.
func (s *Seconds) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "invalid duration %s", string(data)), ErrInvalidDuration)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxSeconds {
		return errors.Wrapf(ErrInvalidDuration, "duration %s", string(data))
	}
	*s = Seconds(f)
	return nil
}

// APIEpisode is the wire representation of an episode.
type APIEpisode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Members     string `json:"members"`
	PublishedAt string `json:"published_at"`
	Thumbnail   string `json:"thumbnail"`
	Description string `json:"description"`
	File        File   `json:"file"`
}

// New creates a new episodes client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("episodes API base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Newf("invalid episodes API base URL %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	locale := cfg.Locale
	if locale == "" {
		locale = episode.LocalePtBR
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		locale:     locale,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// ListEpisodes retrieves the newest episodes, newest first.
func (c *Client) ListEpisodes(ctx context.Context, limit int) (episode.List, error) {
	if limit <= 0 {
		limit = 12
	}

	params := url.Values{}
	params.Set("_limit", strconv.Itoa(limit))
	params.Set("_sort", "published_at")
	params.Set("_order", "desc")

	var raw []APIEpisode
	if err := c.get(ctx, "/episodes?"+params.Encode(), &raw); err != nil {
		return nil, errors.Wrap(err, "failed to list episodes")
	}

	list := make(episode.List, 0, len(raw))
	for _, r := range raw {
		e, err := c.convert(r)
		if err != nil {
			zlog.Warn().Err(err).Msgf("episodes: skipping malformed episode: id=%s", r.ID)
			continue
		}
		list = append(list, e)
	}

	zlog.Debug().Msgf("episodes: listed: count=%d, limit=%d", len(list), limit)
	return list, nil
}

// GetEpisode retrieves a single episode by ID.
func (c *Client) GetEpisode(ctx context.Context, id string) (episode.Episode, error) {
	if id == "" {
		return episode.Episode{}, errors.New("episode id is required")
	}

	var raw APIEpisode
	if err := c.get(ctx, "/episodes/"+url.PathEscape(id), &raw); err != nil {
		return episode.Episode{}, errors.Wrapf(err, "failed to get episode %s", id)
	}

	return c.convert(raw)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrEpisodeNotFound
	case resp.StatusCode >= 400:
		return errors.Newf("episodes API error %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}

// convert maps the wire shape to the domain model.
func (c *Client) convert(r APIEpisode) (episode.Episode, error) {
	if r.ID == "" {
		return episode.Episode{}, errors.New("episode without id")
	}

	published, err := parsePublished(r.PublishedAt)
	if err != nil {
		return episode.Episode{}, err
	}

	return episode.New(
		r.ID,
		r.Title,
		r.Thumbnail,
		r.Members,
		published,
		int(r.File.Duration),
		r.Description,
		r.File.URL,
		c.locale,
	), nil
}

func parsePublished(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Newf("invalid published_at %q", s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
