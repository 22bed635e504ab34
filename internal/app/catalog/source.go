// Package catalog provides episode sources and the cached homepage and
// episode views built on top of them.
package catalog

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// ErrEpisodeNotFound is returned when no source knows an episode.
var ErrEpisodeNotFound = errors.New("episode not found")

// Source is the interface for episode sources.
// Different implementations fetch episodes from different backends
// (e.g., the podcastr REST API, a Spotify show).
type Source interface {
	// ListEpisodes retrieves up to limit episodes, newest first.
	ListEpisodes(ctx context.Context, limit int) (episode.List, error)

	// GetEpisode retrieves a single episode.
	// Returns an error matching ErrEpisodeNotFound for unknown IDs.
	GetEpisode(ctx context.Context, id string) (episode.Episode, error)

	// Name returns the source type name (used in config).
	Name() string
}
