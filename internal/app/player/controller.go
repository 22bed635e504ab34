package player

import (
	"math/rand"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// Errors
var (
	ErrInvalidIndex      = errors.New("index out of range for episode list")
	ErrEmptyQueue        = errors.New("queue is empty")
	ErrNoNextEpisode     = errors.New("no next episode")
	ErrNoPreviousEpisode = errors.New("no previous episode")
)

// Random picks a number in [0, n).
type Random interface {
	IntN(n int) int
}

type defaultRandom struct{}

func (defaultRandom) IntN(n int) int { return rand.Intn(n) }

// Option configures a Controller.
type Option func(*Controller)

// WithRandom overrides the source used for shuffle selection.
func WithRandom(r Random) Option {
	return func(c *Controller) {
		c.random = r
	}
}

// WithEventBuffer sets the event channel capacity.
func WithEventBuffer(size int) Option {
	return func(c *Controller) {
		c.eventBuffer = size
	}
}

// Controller owns the playback queue and flags of one playback session.
// Every action replaces the state wholesale; readers only ever see copies.
type Controller struct {
	mu     sync.Mutex
	state  Snapshot
	closed bool

	random      Random
	eventBuffer int
	eventCh     chan Event
}

// NewController creates a controller with an empty queue and all flags off.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		state: Snapshot{
			EpisodeList:  episode.List{},
			CurrentIndex: NoIndex,
		},
		random:      defaultRandom{},
		eventBuffer: 32,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.eventCh = make(chan Event, c.eventBuffer)
	return c
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// HasNext reports whether PlayNext would select an episode.
func (c *Controller) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.HasNext()
}

// HasPrevious reports whether PlayPrevious would select an episode.
func (c *Controller) HasPrevious() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.HasPrevious()
}

// PlayEpisode replaces the queue with the single episode and starts it.
func (c *Controller) PlayEpisode(e episode.Episode) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state
	next.EpisodeList = episode.List{e}
	next.CurrentIndex = 0
	next.IsPlaying = true
	next.Progress = 0

	zlog.Debug().Msgf("player: play episode: id=%s", e.ID)
	return c.commitLocked(next, EventQueueChanged)
}

// PlayList replaces the queue with list and starts the episode at index.
// An index outside [0, len(list)) returns ErrInvalidIndex and leaves the
// state untouched.
func (c *Controller) PlayList(list episode.List, index int) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(list) {
		return c.state.clone(), errors.Wrapf(ErrInvalidIndex, "index %d, list length %d", index, len(list))
	}

	next := c.state
	next.EpisodeList = list.Clone()
	next.CurrentIndex = index
	next.IsPlaying = true
	next.Progress = 0

	zlog.Debug().Msgf("player: play list: size=%d index=%d id=%s", len(list), index, list[index].ID)
	return c.commitLocked(next, EventQueueChanged), nil
}

// TogglePlay flips IsPlaying.
func (c *Controller) TogglePlay() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state
	next.IsPlaying = !next.IsPlaying
	return c.commitLocked(next, EventStateChanged)
}

// ToggleLoop flips IsLooping.
func (c *Controller) ToggleLoop() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state
	next.IsLooping = !next.IsLooping
	return c.commitLocked(next, EventStateChanged)
}

// ToggleShuffle flips IsShuffling.
func (c *Controller) ToggleShuffle() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state
	next.IsShuffling = !next.IsShuffling
	return c.commitLocked(next, EventStateChanged)
}

// SetIsPlaying sets IsPlaying explicitly, typically from a transport report.
func (c *Controller) SetIsPlaying(playing bool) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsPlaying == playing {
		return c.state.clone()
	}
	next := c.state
	next.IsPlaying = playing
	return c.commitLocked(next, EventStateChanged)
}

// PlayNext advances the current index.
//
// Shuffle picks a uniformly random index other than the current one (when
// the queue holds more than one episode). Otherwise the index advances by
// one, wrapping to 0 at the end only when looping. ErrEmptyQueue and
// ErrNoNextEpisode report a no-op; the state is unchanged.
func (c *Controller) PlayNext() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playNextLocked()
}

func (c *Controller) playNextLocked() (Snapshot, error) {
	n := len(c.state.EpisodeList)
	if n == 0 || c.state.CurrentIndex == NoIndex {
		return c.state.clone(), ErrEmptyQueue
	}

	current := c.state.CurrentIndex
	var target int
	switch {
	case c.state.IsShuffling:
		target = c.shuffleIndexLocked(current, n)
	case current+1 < n:
		target = current + 1
	case c.state.IsLooping:
		target = 0
	default:
		return c.state.clone(), ErrNoNextEpisode
	}

	next := c.state
	next.CurrentIndex = target
	next.Progress = 0

	zlog.Debug().Msgf("player: next: from=%d to=%d shuffle=%v loop=%v", current, target, c.state.IsShuffling, c.state.IsLooping)
	return c.commitLocked(next, EventEpisodeChanged), nil
}

// shuffleIndexLocked returns a uniform random index in [0, n) other than
// current. With a single episode the only index is returned.
func (c *Controller) shuffleIndexLocked(current, n int) int {
	if n <= 1 {
		return 0
	}
	r := c.random.IntN(n - 1)
	if r >= current {
		r++
	}
	return r
}

// PlayPrevious moves back one episode. There is no wraparound: at index 0
// it returns ErrNoPreviousEpisode and leaves the state unchanged.
func (c *Controller) PlayPrevious() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.state.EpisodeList) == 0 || c.state.CurrentIndex == NoIndex {
		return c.state.clone(), ErrEmptyQueue
	}
	if c.state.CurrentIndex == 0 {
		return c.state.clone(), ErrNoPreviousEpisode
	}

	next := c.state
	next.CurrentIndex--
	next.Progress = 0
	return c.commitLocked(next, EventEpisodeChanged), nil
}

// ClearPlayerState empties the queue. Loop and shuffle survive; IsPlaying
// drops to false since nothing is selected.
func (c *Controller) ClearPlayerState() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearLocked()
}

// ClearIfVersion clears the queue only when the state is still at version.
// It reports whether the clear happened.
func (c *Controller) ClearIfVersion(version uint64) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Version != version {
		return c.state.clone(), false
	}
	return c.clearLocked(), true
}

func (c *Controller) clearLocked() Snapshot {
	next := c.state
	next.EpisodeList = episode.List{}
	next.CurrentIndex = NoIndex
	next.IsPlaying = false
	next.Progress = 0

	zlog.Debug().Msg("player: cleared")
	return c.commitLocked(next, EventQueueCleared)
}

// HandleEnded applies an end-of-track report from the transport: advance
// when there is a next episode, otherwise clear the queue.
func (c *Controller) HandleEnded() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.HasNext() {
		snap, err := c.playNextLocked()
		if err == nil {
			return snap
		}
	}
	return c.clearLocked()
}

// Seek moves the playback position of the current episode, clamped to
// [0, duration].
func (c *Controller) Seek(seconds int) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.state.CurrentEpisode()
	if !ok {
		return c.state.clone(), ErrEmptyQueue
	}

	if seconds < 0 {
		seconds = 0
	}
	if seconds > current.Duration {
		seconds = current.Duration
	}

	next := c.state
	next.Progress = seconds
	return c.commitLocked(next, EventProgressChanged), nil
}

// Close stops event delivery.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.eventCh)
}

// commitLocked installs next as the current state and emits an event.
// Must be called with lock held.
func (c *Controller) commitLocked(next Snapshot, eventType EventType) Snapshot {
	next.Version = c.state.Version + 1
	c.state = next

	snap := next.clone()
	c.sendEventLocked(Event{Type: eventType, Snapshot: next.clone()})
	return snap
}

// sendEventLocked sends an event without blocking. When the buffer is full
// the oldest queued event is dropped, so the newest state always gets through.
// Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- e:
		return
	default:
	}

	select {
	case dropped := <-c.eventCh:
		zlog.Warn().Msgf("player: event channel full, dropping oldest event: type=%s version=%d", dropped.Type, dropped.Snapshot.Version)
	default:
	}
	select {
	case c.eventCh <- e:
	default:
		zlog.Warn().Msgf("player: event channel full, dropping event: type=%s version=%d", e.Type, e.Snapshot.Version)
	}
}
