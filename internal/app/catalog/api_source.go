package catalog

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/domain/episode"
	"github.com/osa030/podcastr/internal/infra/episodes"
)

// EpisodesAPI defines the REST API operations needed by APISource.
type EpisodesAPI interface {
	ListEpisodes(ctx context.Context, limit int) (episode.List, error)
	GetEpisode(ctx context.Context, id string) (episode.Episode, error)
}

type APISourceConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"10" validate:"gte=1,lte=120"`
}

// APISource reads episodes from the podcastr REST API.
type APISource struct {
	api    EpisodesAPI
	config *APISourceConfig
}

// NewAPISource creates a new APISource from source settings.
func NewAPISource(settings map[string]any, locale string) (*APISource, error) {
	var config APISourceConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("catalog: api source config: %+v", config)
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	client, err := episodes.New(episodes.Config{
		BaseURL: config.BaseURL,
		Locale:  locale,
		Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	return &APISource{api: client, config: &config}, nil
}

// ListEpisodes retrieves the newest episodes.
func (s *APISource) ListEpisodes(ctx context.Context, limit int) (episode.List, error) {
	return s.api.ListEpisodes(ctx, limit)
}

// GetEpisode retrieves one episode.
func (s *APISource) GetEpisode(ctx context.Context, id string) (episode.Episode, error) {
	e, err := s.api.GetEpisode(ctx, id)
	if errors.Is(err, episodes.ErrEpisodeNotFound) {
		return episode.Episode{}, errors.Mark(err, ErrEpisodeNotFound)
	}
	return e, err
}

// Name returns the source name.
func (s *APISource) Name() string {
	return "api"
}
