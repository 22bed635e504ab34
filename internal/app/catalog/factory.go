package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/infra/config"
)

// NewSourceChainFromConfig creates a source chain from configuration.
func NewSourceChainFromConfig(ctx context.Context, cfg *config.Config) (*SourceChain, error) {
	if len(cfg.Catalog.Sources) == 0 {
		return nil, errors.New("no episode sources configured")
	}

	var sources []SourceWithMetadata

	for i, scfg := range cfg.Catalog.Sources {
		var source Source
		var err error
		zlog.Debug().Msgf("catalog: creating source: index=%d type=%s", i+1, scfg.Type)
		switch scfg.Type {
		case "api":
			source, err = NewAPISource(scfg.Settings, cfg.Catalog.Locale)

		case "spotify":
			source, err = NewSpotifySource(ctx, cfg.Spotify, scfg.Settings, cfg.Catalog.Locale)

		default:
			return nil, errors.Newf("unsupported source type: %s (source index %d)", scfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create source (index %d, type %s)", i, scfg.Type)
		}

		sources = append(sources, SourceWithMetadata{
			Source:      source,
			DisplayName: scfg.DisplayName,
		})

		zlog.Info().Msgf("catalog: registered source: index=%d type=%s display_name=%s", i+1, scfg.Type, scfg.DisplayName)
	}

	return NewSourceChain(sources), nil
}
