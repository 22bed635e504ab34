// Package podcastrv1 defines the podcastr.v1 wire messages exchanged over
// Connect with the JSON codec.
package podcastrv1

// NotificationType identifies what changed in a pushed notification.
type NotificationType string

const (
	NotificationTypeInitialState    NotificationType = "initial_state"
	NotificationTypeQueueChanged    NotificationType = "queue_changed"
	NotificationTypeEpisodeChanged  NotificationType = "episode_changed"
	NotificationTypeStateChanged    NotificationType = "state_changed"
	NotificationTypeQueueCleared    NotificationType = "queue_cleared"
	NotificationTypeProgressChanged NotificationType = "progress_changed"
)

// Episode is the wire representation of an episode.
type Episode struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Thumbnail        string `json:"thumbnail"`
	Members          string `json:"members"`
	PublishedAt      string `json:"published_at,omitempty"` // RFC3339
	PublishedLabel   string `json:"published_label"`
	Duration         int    `json:"duration"` // seconds
	DurationAsString string `json:"duration_as_string"`
	Description      string `json:"description,omitempty"`
	URL              string `json:"url"`
}

// PlayerState is a snapshot of the playback session.
type PlayerState struct {
	Episodes       []*Episode `json:"episodes"`
	CurrentIndex   int        `json:"current_index"` // -1 when nothing is selected
	CurrentEpisode *Episode   `json:"current_episode,omitempty"`
	Status         string     `json:"status"`
	IsPlaying      bool       `json:"is_playing"`
	IsLooping      bool       `json:"is_looping"`
	IsShuffling    bool       `json:"is_shuffling"`
	HasNext        bool       `json:"has_next"`
	HasPrevious    bool       `json:"has_previous"`
	Progress       int        `json:"progress"` // seconds
	Version        uint64     `json:"version"`
}

// Notification is pushed to subscribers on every state change.
type Notification struct {
	Type       NotificationType `json:"type"`
	SequenceNo uint64           `json:"sequence_no"`
	State      *PlayerState     `json:"state"`
}

// Empty is the request of RPCs without arguments.
type Empty struct{}

type GetStateResponse struct {
	State *PlayerState `json:"state"`
}

type PlayEpisodeRequest struct {
	EpisodeID string `json:"episode_id"`
}

type PlayListRequest struct {
	EpisodeIDs []string `json:"episode_ids"`
	Index      int      `json:"index"`
}

type PlayHomeRequest struct {
	Section string `json:"section"` // "latest" or "all"
	Index   int    `json:"index"`   // row within the section
}

type SetPlayingRequest struct {
	Playing bool `json:"playing"`
}

type SeekRequest struct {
	Seconds int `json:"seconds"`
}

// PlayerResponse is returned by every mutating player RPC.
// Success is false for informational no-ops such as "no next episode".
type PlayerResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Code    string       `json:"code,omitempty"`
	State   *PlayerState `json:"state"`
}

type GetHomeResponse struct {
	Latest    []*Episode `json:"latest"`
	All       []*Episode `json:"all"`
	FetchedAt string     `json:"fetched_at"`
}

type GetEpisodeRequest struct {
	ID string `json:"id"`
}

type GetEpisodeResponse struct {
	Episode *Episode `json:"episode"`
}
