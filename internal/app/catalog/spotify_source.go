package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/domain/episode"
	"github.com/osa030/podcastr/internal/infra/config"
	"github.com/osa030/podcastr/internal/infra/spotify"
)

// ShowClient defines the Spotify operations needed by SpotifySource.
type ShowClient interface {
	ListEpisodes(ctx context.Context, limit int) (episode.List, error)
	GetEpisode(ctx context.Context, id string) (episode.Episode, error)
}

type SpotifySourceConfig struct {
	ShowID string `mapstructure:"show_id" validate:"required"`
	Market string `mapstructure:"market" validate:"omitempty,len=2"`
}

// SpotifySource reads the episodes of one Spotify show.
type SpotifySource struct {
	client ShowClient
	config *SpotifySourceConfig
}

// NewSpotifySource creates a new SpotifySource from source settings.
// The market falls back to the global Spotify market.
func NewSpotifySource(ctx context.Context, creds config.SpotifyConfig, settings map[string]any, locale string) (*SpotifySource, error) {
	var cfg SpotifySourceConfig
	if err := mapstructure.Decode(settings, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if cfg.Market == "" {
		cfg.Market = creds.Market
	}
	zlog.Debug().Msgf("catalog: spotify source config: %+v", cfg)
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	client, err := spotify.New(ctx, spotify.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		ShowID:       cfg.ShowID,
		Market:       cfg.Market,
		Locale:       locale,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create spotify client")
	}

	return &SpotifySource{client: client, config: &cfg}, nil
}

// ListEpisodes retrieves the newest show episodes.
func (s *SpotifySource) ListEpisodes(ctx context.Context, limit int) (episode.List, error) {
	return s.client.ListEpisodes(ctx, limit)
}

// GetEpisode retrieves one episode.
func (s *SpotifySource) GetEpisode(ctx context.Context, id string) (episode.Episode, error) {
	e, err := s.client.GetEpisode(ctx, id)
	if errors.Is(err, spotify.ErrEpisodeNotFound) {
		return episode.Episode{}, errors.Mark(err, ErrEpisodeNotFound)
	}
	return e, err
}

// Name returns the source name.
func (s *SpotifySource) Name() string {
	return "spotify"
}
