package podcastrv1

import (
	"time"

	"github.com/osa030/podcastr/internal/app/player"
	"github.com/osa030/podcastr/internal/domain/episode"
)

// FromEpisode converts a domain episode. Descriptions are optional because
// queue listings do not need the HTML body.
func FromEpisode(e episode.Episode, withDescription bool) *Episode {
	out := &Episode{
		ID:               e.ID,
		Title:            e.Title,
		Thumbnail:        e.Thumbnail,
		Members:          e.Members,
		PublishedLabel:   e.PublishedLabel,
		Duration:         e.Duration,
		DurationAsString: e.DurationAsString,
		URL:              e.URL,
	}
	if !e.PublishedAt.IsZero() {
		out.PublishedAt = e.PublishedAt.Format(time.RFC3339)
	}
	if withDescription {
		out.Description = e.Description
	}
	return out
}

// FromList converts a domain episode list.
func FromList(list episode.List, withDescription bool) []*Episode {
	out := make([]*Episode, len(list))
	for i, e := range list {
		out[i] = FromEpisode(e, withDescription)
	}
	return out
}

// FromSnapshot converts a player snapshot.
func FromSnapshot(s player.Snapshot) *PlayerState {
	state := &PlayerState{
		Episodes:     FromList(s.EpisodeList, false),
		CurrentIndex: s.CurrentIndex,
		Status:       s.Status().String(),
		IsPlaying:    s.IsPlaying,
		IsLooping:    s.IsLooping,
		IsShuffling:  s.IsShuffling,
		HasNext:      s.HasNext(),
		HasPrevious:  s.HasPrevious(),
		Progress:     s.Progress,
		Version:      s.Version,
	}
	if e, ok := s.CurrentEpisode(); ok {
		state.CurrentEpisode = FromEpisode(e, false)
	}
	return state
}

// NotificationTypeFromEvent maps a player event type.
func NotificationTypeFromEvent(t player.EventType) NotificationType {
	switch t {
	case player.EventQueueChanged:
		return NotificationTypeQueueChanged
	case player.EventEpisodeChanged:
		return NotificationTypeEpisodeChanged
	case player.EventQueueCleared:
		return NotificationTypeQueueCleared
	case player.EventProgressChanged:
		return NotificationTypeProgressChanged
	default:
		return NotificationTypeStateChanged
	}
}
