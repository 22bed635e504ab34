package filter

import (
	"context"
	"strings"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// PlayableFilter drops episodes the transport cannot play.
type PlayableFilter struct{}

// NewPlayableFilter creates a new playable filter.
func NewPlayableFilter() *PlayableFilter {
	return &PlayableFilter{}
}

func (f *PlayableFilter) Name() string {
	return "playable_filter"
}

func (f *PlayableFilter) Description() string {
	return "Drops episodes without an ID or a media URL"
}

func (f *PlayableFilter) ReturnCodes() []string {
	return []string{"not_playable"}
}

func (f *PlayableFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *PlayableFilter) Check(ctx context.Context, e episode.Episode, accepted episode.List) Result {
	if strings.TrimSpace(e.ID) == "" || !e.IsPlayable() {
		return Reject("not_playable")
	}
	return Accept()
}

func init() {
	Register("playable_filter", func() Filter {
		return &PlayableFilter{}
	})
}
