package filter

import (
	"context"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// DuplicateEpisodeFilter drops later occurrences of an episode ID so that
// every list handed to the player has unique IDs.
type DuplicateEpisodeFilter struct{}

// NewDuplicateEpisodeFilter creates a new duplicate episode filter.
func NewDuplicateEpisodeFilter() *DuplicateEpisodeFilter {
	return &DuplicateEpisodeFilter{}
}

// Name returns the filter name.
func (f *DuplicateEpisodeFilter) Name() string {
	return "duplicate_episode_filter"
}

// Description returns the filter description.
func (f *DuplicateEpisodeFilter) Description() string {
	return "Drops episodes whose ID already appeared earlier in the list"
}

// ReturnCodes returns possible return codes.
func (f *DuplicateEpisodeFilter) ReturnCodes() []string {
	return []string{"duplicate_episode"}
}

// ValidateConfig validates the filter configuration.
func (f *DuplicateEpisodeFilter) ValidateConfig(settings map[string]any) error {
	// No configuration needed
	return nil
}

// Check rejects e when an accepted episode already carries its ID.
func (f *DuplicateEpisodeFilter) Check(ctx context.Context, e episode.Episode, accepted episode.List) Result {
	if accepted.IndexOf(e.ID) >= 0 {
		return Reject("duplicate_episode")
	}
	return Accept()
}

func init() {
	Register("duplicate_episode_filter", func() Filter {
		return &DuplicateEpisodeFilter{}
	})
}
