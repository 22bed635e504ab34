package player

// EventType represents a player event type.
type EventType int

const (
	EventQueueChanged    EventType = iota // A new queue was loaded
	EventEpisodeChanged                   // Current index moved within the queue
	EventStateChanged                     // Play/loop/shuffle flag changed
	EventQueueCleared                     // Queue was emptied
	EventProgressChanged                  // Playback position moved
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventQueueChanged:
		return "queue_changed"
	case EventEpisodeChanged:
		return "episode_changed"
	case EventStateChanged:
		return "state_changed"
	case EventQueueCleared:
		return "queue_cleared"
	case EventProgressChanged:
		return "progress_changed"
	default:
		return "unknown"
	}
}

// Event represents a player state change.
type Event struct {
	Type     EventType
	Snapshot Snapshot // State after the change
}
