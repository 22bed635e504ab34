// Package player provides the playback queue controller for the shared
// podcast playback session.
package player

import "github.com/osa030/podcastr/internal/domain/episode"

// NoIndex is the CurrentIndex value when nothing is selected.
const NoIndex = -1

// Status summarises a snapshot for display.
type Status int

const (
	StatusIdle    Status = iota // Nothing selected
	StatusPlaying               // Episode selected and advancing
	StatusPaused                // Episode selected, not advancing
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable read of the playback state.
// Callers own the returned EpisodeList; the controller never mutates it.
type Snapshot struct {
	EpisodeList  episode.List `json:"episode_list"`
	CurrentIndex int          `json:"current_index"`
	IsPlaying    bool         `json:"is_playing"`
	IsLooping    bool         `json:"is_looping"`
	IsShuffling  bool         `json:"is_shuffling"`
	Progress     int          `json:"progress"` // seconds into the current episode
	Version      uint64       `json:"version"`
}

// CurrentEpisode returns the selected episode, if any.
func (s Snapshot) CurrentEpisode() (episode.Episode, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.EpisodeList) {
		return episode.Episode{}, false
	}
	return s.EpisodeList[s.CurrentIndex], true
}

// HasNext reports whether PlayNext would select an episode.
func (s Snapshot) HasNext() bool {
	if len(s.EpisodeList) == 0 || s.CurrentIndex == NoIndex {
		return false
	}
	return s.IsShuffling || s.CurrentIndex+1 < len(s.EpisodeList) || s.IsLooping
}

// HasPrevious reports whether PlayPrevious would select an episode.
func (s Snapshot) HasPrevious() bool {
	return s.CurrentIndex > 0
}

// Status derives the display status.
func (s Snapshot) Status() Status {
	if _, ok := s.CurrentEpisode(); !ok {
		return StatusIdle
	}
	if s.IsPlaying {
		return StatusPlaying
	}
	return StatusPaused
}

// clone returns a deep copy of the snapshot.
func (s Snapshot) clone() Snapshot {
	s.EpisodeList = s.EpisodeList.Clone()
	return s
}
