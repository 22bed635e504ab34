package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// SourceWithMetadata wraps a source with its metadata.
type SourceWithMetadata struct {
	Source      Source
	DisplayName string
}

// SourceChain tries multiple sources in order.
type SourceChain struct {
	sources []SourceWithMetadata
}

// NewSourceChain creates a new source chain.
func NewSourceChain(sources []SourceWithMetadata) *SourceChain {
	return &SourceChain{
		sources: sources,
	}
}

// ListEpisodes returns the list of the first source that answers.
func (c *SourceChain) ListEpisodes(ctx context.Context, limit int) (episode.List, error) {
	var lastErr error
	for i, sm := range c.sources {
		zlog.Debug().Msgf("catalog: trying source: index=%d total=%d name=%s source_type=%s",
			i+1, len(c.sources), sm.DisplayName, sm.Source.Name())

		list, err := sm.Source.ListEpisodes(ctx, limit)
		if err != nil {
			zlog.Warn().Msgf("catalog: source failed, trying next: source=%s error=%v", sm.DisplayName, err)
			lastErr = err
			continue
		}

		zlog.Debug().Msgf("catalog: source returned episodes: source=%s count=%d", sm.DisplayName, len(list))
		return list, nil
	}

	if lastErr == nil {
		return nil, errors.New("no episode sources configured")
	}
	return nil, errors.Wrap(lastErr, "all sources failed to list episodes")
}

// GetEpisode asks each source in order. A not-found answer moves on to the
// next source; the result is ErrEpisodeNotFound only when every source said so.
func (c *SourceChain) GetEpisode(ctx context.Context, id string) (episode.Episode, error) {
	var lastErr error
	for _, sm := range c.sources {
		e, err := sm.Source.GetEpisode(ctx, id)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, ErrEpisodeNotFound) {
			zlog.Warn().Msgf("catalog: source failed to get episode: source=%s id=%s error=%v", sm.DisplayName, id, err)
			lastErr = err
		}
	}

	if lastErr != nil {
		return episode.Episode{}, errors.Wrapf(lastErr, "failed to get episode %s", id)
	}
	return episode.Episode{}, errors.Wrapf(ErrEpisodeNotFound, "episode %s", id)
}

// Name returns the chain name.
func (c *SourceChain) Name() string {
	return "source_chain"
}

// Sources returns the configured sources in order.
func (c *SourceChain) Sources() []SourceWithMetadata {
	return c.sources
}
