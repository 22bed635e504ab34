// Package spotify provides a client for Spotify podcast shows.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// ErrEpisodeNotFound is returned when Spotify does not know an episode.
var ErrEpisodeNotFound = errors.New("spotify episode not found")

// maxPageSize is the largest page the shows API returns.
const maxPageSize = 50

// releaseLayouts covers the release_date precisions (day, month, year).
var releaseLayouts = []string{"2006-01-02", "2006-01", "2006"}

// Client is a Spotify API client scoped to one show.
type Client struct {
	client     *spotify.Client
	showID     string
	market     string
	locale     string
	maxRetries int
	retryDelay time.Duration

	// Publisher of the show, used as the episode members line
	publisherMu sync.Mutex
	publisher   string
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	ShowID       string // ID, URL or URI
	Market       string
	Locale       string
}

// New creates a new Spotify client authenticated with the client credentials flow.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify credentials are required")
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	return newClient(creds.Client(ctx), cfg)
}

// newClient builds a client on top of an already authenticated HTTP client.
func newClient(httpClient *http.Client, cfg Config, opts ...spotify.ClientOption) (*Client, error) {
	showID := extractShowID(cfg.ShowID)
	if showID == "" {
		return nil, errors.New("spotify show id is required")
	}

	market := cfg.Market
	if market == "" {
		market = "BR"
	}
	locale := cfg.Locale
	if locale == "" {
		locale = episode.LocalePtBR
	}

	return &Client{
		client:     spotify.New(httpClient, opts...),
		showID:     showID,
		market:     market,
		locale:     locale,
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// ShowID returns the show this client lists episodes of.
func (c *Client) ShowID() string {
	return c.showID
}

// ListEpisodes retrieves the newest episodes of the show, newest first.
func (c *Client) ListEpisodes(ctx context.Context, limit int) (episode.List, error) {
	if limit <= 0 {
		limit = 12
	}

	members := c.showPublisher(ctx)

	list := make(episode.List, 0, limit)
	offset := 0
	for len(list) < limit {
		pageSize := min(limit-len(list), maxPageSize)

		var page *spotify.SimpleEpisodePage
		err := c.retry(ctx, func() error {
			p, err := c.client.GetShowEpisodes(ctx, c.showID,
				spotify.Limit(pageSize),
				spotify.Offset(offset),
				spotify.Market(c.market),
			)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get show episodes")
		}

		for i := range page.Episodes {
			list = append(list, c.convertEpisode(&page.Episodes[i], members))
		}

		if len(page.Episodes) < pageSize {
			break
		}
		offset += pageSize
	}

	zlog.Debug().Msgf("spotify: listed show episodes: show=%s, count=%d", c.showID, len(list))
	return list, nil
}

// GetEpisode retrieves a single episode by ID, URL or URI.
func (c *Client) GetEpisode(ctx context.Context, id string) (episode.Episode, error) {
	episodeID := extractEpisodeID(id)
	if episodeID == "" {
		return episode.Episode{}, errors.New("episode id is required")
	}

	var result *spotify.EpisodePage
	err := c.retry(ctx, func() error {
		e, err := c.client.GetEpisode(ctx, episodeID, spotify.Market(c.market))
		if err != nil {
			return err
		}
		result = e
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			return episode.Episode{}, errors.Wrapf(ErrEpisodeNotFound, "episode %s", episodeID)
		}
		return episode.Episode{}, errors.Wrap(err, "failed to get episode")
	}

	return c.convertEpisode(result, c.showPublisher(ctx)), nil
}

// showPublisher returns the show's publisher, fetching it once.
// Failures are logged and leave the members line empty.
func (c *Client) showPublisher(ctx context.Context) string {
	c.publisherMu.Lock()
	defer c.publisherMu.Unlock()

	if c.publisher != "" {
		return c.publisher
	}

	show, err := c.client.GetShow(ctx, spotify.ID(c.showID), spotify.Market(c.market))
	if err != nil {
		zlog.Warn().Err(err).Msgf("spotify: failed to get show: show=%s", c.showID)
		return ""
	}
	c.publisher = show.Publisher
	return c.publisher
}

// convertEpisode converts a Spotify episode to the domain Episode.
func (c *Client) convertEpisode(e *spotify.EpisodePage, members string) episode.Episode {
	var thumbnail string
	if len(e.Images) > 0 {
		thumbnail = e.Images[0].URL
	}

	return episode.New(
		string(e.ID),
		e.Name,
		thumbnail,
		members,
		parseReleaseDate(e.ReleaseDate),
		int(e.Duration_ms)/1000,
		e.Description,
		e.AudioPreviewURL,
		c.locale,
	)
}

// GetEpisodeURL returns the Spotify URL for an episode.
func GetEpisodeURL(episodeID string) string {
	return fmt.Sprintf("https://open.spotify.com/episode/%s", episodeID)
}

// retry retries an operation with linear backoff.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			zlog.Debug().Err(err).Msgf("spotify: retrying: attempt=%d", i+1)
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "retry aborted")
			case <-time.After(c.retryDelay * time.Duration(i+1)):
			}
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se spotify.Error
	if errors.As(err, &se) && se.Status != 0 {
		return se.Status == http.StatusTooManyRequests || se.Status >= 500
	}
	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// isNotFound checks if an error reports an unknown resource.
func isNotFound(err error) bool {
	var se spotify.Error
	if errors.As(err, &se) {
		return se.Status == http.StatusNotFound || se.Status == http.StatusBadRequest
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "404") || strings.Contains(errStr, "non existing id") || strings.Contains(errStr, "invalid id")
}

func parseReleaseDate(s string) time.Time {
	for _, layout := range releaseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// extractShowID extracts the show ID from a Spotify show URL or URI.
func extractShowID(input string) string {
	return extractID(input, "show")
}

// extractEpisodeID extracts the episode ID from a Spotify episode URL or URI.
func extractEpisodeID(input string) string {
	return extractID(input, "episode")
}

// extractID handles spotify:<kind>:ID, https://open.spotify.com/[intl-XX/]<kind>/ID
// and bare IDs.
func extractID(input, kind string) string {
	input = strings.TrimSpace(input)
	if prefix := "spotify:" + kind + ":"; strings.HasPrefix(input, prefix) {
		return strings.TrimPrefix(input, prefix)
	}

	sep := "/" + kind + "/"
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, sep) {
		parts := strings.Split(input, sep)
		// Remove query parameters and trailing slashes
		id := strings.Split(parts[len(parts)-1], "?")[0]
		return strings.TrimRight(id, "/")
	}

	// Assume it's already an ID
	return input
}
