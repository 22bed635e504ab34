package player

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// fixedRandom returns the queued values in order, then repeats the last one.
type fixedRandom struct {
	values []int
	calls  []int
}

func (r *fixedRandom) IntN(n int) int {
	r.calls = append(r.calls, n)
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	if len(r.values) > 1 {
		r.values = r.values[1:]
	}
	return v % n
}

func threeEpisodes() episode.List {
	return episode.List{
		{ID: "a", Title: "A", Duration: 100, URL: "https://example.com/a.m4a"},
		{ID: "b", Title: "B", Duration: 200, URL: "https://example.com/b.m4a"},
		{ID: "c", Title: "C", Duration: 300, URL: "https://example.com/c.m4a"},
	}
}

func TestNewController_InitialState(t *testing.T) {
	c := NewController()
	s := c.Snapshot()

	assert.Empty(t, s.EpisodeList)
	assert.Equal(t, NoIndex, s.CurrentIndex)
	assert.False(t, s.IsPlaying)
	assert.False(t, s.IsLooping)
	assert.False(t, s.IsShuffling)
	assert.Equal(t, StatusIdle, s.Status())
	assert.False(t, c.HasNext())
	assert.False(t, c.HasPrevious())
}

func TestController_PlayEpisode(t *testing.T) {
	c := NewController()
	_, err := c.PlayList(threeEpisodes(), 2)
	require.NoError(t, err)

	e := episode.Episode{ID: "solo", Duration: 60}
	s := c.PlayEpisode(e)

	assert.Equal(t, episode.List{e}, s.EpisodeList)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.True(t, s.IsPlaying)
	assert.Equal(t, StatusPlaying, s.Status())
}

func TestController_PlayList(t *testing.T) {
	list := threeEpisodes()

	for i := range list {
		c := NewController()
		s, err := c.PlayList(list, i)
		require.NoError(t, err)

		assert.Equal(t, list, s.EpisodeList)
		assert.Equal(t, i, s.CurrentIndex)
		assert.True(t, s.IsPlaying)
		assert.Equal(t, s, c.Snapshot())
	}
}

func TestController_PlayList_InvalidIndex(t *testing.T) {
	tests := []struct {
		name  string
		list  episode.List
		index int
	}{
		{name: "negative", list: threeEpisodes(), index: -1},
		{name: "past end", list: threeEpisodes(), index: 3},
		{name: "empty list", list: episode.List{}, index: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			before := c.PlayEpisode(episode.Episode{ID: "keep"})

			s, err := c.PlayList(tt.list, tt.index)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidIndex))
			assert.Equal(t, before, s)
			assert.Equal(t, before, c.Snapshot())
		})
	}
}

func TestController_PlayList_CopiesInput(t *testing.T) {
	list := threeEpisodes()
	c := NewController()
	_, err := c.PlayList(list, 0)
	require.NoError(t, err)

	list[0].Title = "mutated"
	snap := c.Snapshot()
	assert.Equal(t, "A", snap.EpisodeList[0].Title)

	snap.EpisodeList[1].Title = "mutated"
	assert.Equal(t, "B", c.Snapshot().EpisodeList[1].Title)
}

func TestController_Toggles(t *testing.T) {
	c := NewController()
	original := c.Snapshot()

	c.ToggleLoop()
	assert.True(t, c.Snapshot().IsLooping)
	c.ToggleLoop()
	assert.Equal(t, original.IsLooping, c.Snapshot().IsLooping)

	c.ToggleShuffle()
	assert.True(t, c.Snapshot().IsShuffling)
	c.ToggleShuffle()
	assert.Equal(t, original.IsShuffling, c.Snapshot().IsShuffling)

	c.TogglePlay()
	assert.True(t, c.Snapshot().IsPlaying)
	c.TogglePlay()
	assert.False(t, c.Snapshot().IsPlaying)
}

func TestController_SetIsPlaying(t *testing.T) {
	c := NewController()
	_, err := c.PlayList(threeEpisodes(), 0)
	require.NoError(t, err)

	s := c.SetIsPlaying(false)
	assert.False(t, s.IsPlaying)
	assert.Equal(t, StatusPaused, s.Status())

	version := s.Version
	s = c.SetIsPlaying(false)
	assert.Equal(t, version, s.Version, "setting the same value is not a change")

	s = c.SetIsPlaying(true)
	assert.True(t, s.IsPlaying)
}

func TestController_PlayNext_Sequential(t *testing.T) {
	c := NewController()
	_, err := c.PlayList(threeEpisodes(), 0)
	require.NoError(t, err)

	s, err := c.PlayNext()
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentIndex)

	s, err = c.PlayNext()
	require.NoError(t, err)
	assert.Equal(t, 2, s.CurrentIndex)

	before := c.Snapshot()
	s, err = c.PlayNext()
	assert.ErrorIs(t, err, ErrNoNextEpisode)
	assert.Equal(t, 2, s.CurrentIndex)
	assert.Equal(t, before, c.Snapshot())

	c.ToggleLoop()
	s, err = c.PlayNext()
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentIndex)
}

func TestController_PlayNext_Boundary(t *testing.T) {
	tests := []struct {
		name     string
		looping  bool
		expected int
		wantErr  error
	}{
		{name: "no loop at end is a no-op", looping: false, expected: 2, wantErr: ErrNoNextEpisode},
		{name: "loop at end wraps", looping: true, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			_, err := c.PlayList(threeEpisodes(), 2)
			require.NoError(t, err)
			if tt.looping {
				c.ToggleLoop()
			}

			s, err := c.PlayNext()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, s.CurrentIndex)
		})
	}
}

func TestController_PlayNext_EmptyQueue(t *testing.T) {
	c := NewController()
	before := c.Snapshot()

	s, err := c.PlayNext()
	assert.ErrorIs(t, err, ErrEmptyQueue)
	assert.Equal(t, before, s)

	s, err = c.PlayPrevious()
	assert.ErrorIs(t, err, ErrEmptyQueue)
	assert.Equal(t, before, s)
}

func TestController_PlayNext_Shuffle(t *testing.T) {
	r := &fixedRandom{values: []int{0, 1, 0, 1, 1, 0}}
	c := NewController(WithRandom(r))
	_, err := c.PlayList(threeEpisodes(), 0)
	require.NoError(t, err)
	c.ToggleShuffle()

	prev := c.Snapshot().CurrentIndex
	for i := 0; i < 6; i++ {
		s, err := c.PlayNext()
		require.NoError(t, err)
		assert.NotEqual(t, prev, s.CurrentIndex, "shuffle must not repeat the current episode")
		assert.GreaterOrEqual(t, s.CurrentIndex, 0)
		assert.Less(t, s.CurrentIndex, 3)
		prev = s.CurrentIndex
	}

	for _, n := range r.calls {
		assert.Equal(t, 2, n, "random draws from the other n-1 indexes")
	}
}

func TestController_PlayNext_ShuffleDefaultRandom(t *testing.T) {
	c := NewController()
	_, err := c.PlayList(threeEpisodes(), 1)
	require.NoError(t, err)
	c.ToggleShuffle()

	for i := 0; i < 100; i++ {
		prev := c.Snapshot().CurrentIndex
		s, err := c.PlayNext()
		require.NoError(t, err)
		assert.NotEqual(t, prev, s.CurrentIndex)
	}
}

func TestController_PlayNext_ShuffleSingleEpisode(t *testing.T) {
	c := NewController()
	c.PlayEpisode(episode.Episode{ID: "only", Duration: 10})
	c.ToggleShuffle()

	assert.True(t, c.HasNext())
	s, err := c.PlayNext()
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentIndex)
}

func TestController_PlayPrevious(t *testing.T) {
	c := NewController()
	_, err := c.PlayList(threeEpisodes(), 0)
	require.NoError(t, err)

	before := c.Snapshot()
	s, err := c.PlayPrevious()
	assert.ErrorIs(t, err, ErrNoPreviousEpisode)
	assert.Equal(t, before, s)

	_, err = c.PlayList(threeEpisodes(), 2)
	require.NoError(t, err)
	s, err = c.PlayPrevious()
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentIndex)
}

func TestController_HasNextHasPrevious(t *testing.T) {
	tests := []struct {
		name         string
		index        int
		looping      bool
		shuffling    bool
		wantNext     bool
		wantPrevious bool
	}{
		{name: "start", index: 0, wantNext: true, wantPrevious: false},
		{name: "middle", index: 1, wantNext: true, wantPrevious: true},
		{name: "end", index: 2, wantNext: false, wantPrevious: true},
		{name: "end looping", index: 2, looping: true, wantNext: true, wantPrevious: true},
		{name: "end shuffling", index: 2, shuffling: true, wantNext: true, wantPrevious: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			_, err := c.PlayList(threeEpisodes(), tt.index)
			require.NoError(t, err)
			if tt.looping {
				c.ToggleLoop()
			}
			if tt.shuffling {
				c.ToggleShuffle()
			}

			assert.Equal(t, tt.wantNext, c.HasNext())
			assert.Equal(t, tt.wantPrevious, c.HasPrevious())
			assert.Equal(t, tt.wantNext, c.Snapshot().HasNext())
		})
	}
}

func TestController_ClearPlayerState(t *testing.T) {
	c := NewController()
	_, err := c.PlayList(threeEpisodes(), 1)
	require.NoError(t, err)
	c.ToggleLoop()

	s := c.ClearPlayerState()
	assert.Empty(t, s.EpisodeList)
	assert.Equal(t, NoIndex, s.CurrentIndex)
	assert.False(t, s.IsPlaying)
	assert.True(t, s.IsLooping)
	_, ok := s.CurrentEpisode()
	assert.False(t, ok)
}

func TestController_ClearIfVersion(t *testing.T) {
	c := NewController()
	snap, err := c.PlayList(threeEpisodes(), 0)
	require.NoError(t, err)

	c.TogglePlay()
	stale, cleared := c.ClearIfVersion(snap.Version)
	assert.False(t, cleared)
	assert.Len(t, stale.EpisodeList, 3)

	current := c.Snapshot()
	s, cleared := c.ClearIfVersion(current.Version)
	assert.True(t, cleared)
	assert.Empty(t, s.EpisodeList)
	assert.Equal(t, current.Version+1, s.Version)
}

func TestController_HandleEnded(t *testing.T) {
	c := NewController()
	_, err := c.PlayList(threeEpisodes(), 1)
	require.NoError(t, err)

	s := c.HandleEnded()
	assert.Equal(t, 2, s.CurrentIndex)

	s = c.HandleEnded()
	assert.Empty(t, s.EpisodeList)
	assert.Equal(t, NoIndex, s.CurrentIndex)
	assert.False(t, s.IsPlaying)

	_, err = c.PlayList(threeEpisodes(), 2)
	require.NoError(t, err)
	c.ToggleLoop()
	s = c.HandleEnded()
	assert.Equal(t, 0, s.CurrentIndex)
}

func TestController_Seek(t *testing.T) {
	c := NewController()
	_, err := c.Seek(10)
	assert.ErrorIs(t, err, ErrEmptyQueue)

	_, err = c.PlayList(threeEpisodes(), 0)
	require.NoError(t, err)

	s, err := c.Seek(42)
	require.NoError(t, err)
	assert.Equal(t, 42, s.Progress)

	s, err = c.Seek(1000)
	require.NoError(t, err)
	assert.Equal(t, 100, s.Progress)

	s, err = c.Seek(-3)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Progress)

	_, err = c.Seek(50)
	require.NoError(t, err)
	s, err = c.PlayNext()
	require.NoError(t, err)
	assert.Equal(t, 0, s.Progress, "changing episode resets progress")
}

func TestController_Scenario(t *testing.T) {
	c := NewController()

	s, err := c.PlayList(threeEpisodes(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentIndex)

	s, _ = c.PlayNext()
	assert.Equal(t, 1, s.CurrentIndex)
	s, _ = c.PlayNext()
	assert.Equal(t, 2, s.CurrentIndex)
	s, _ = c.PlayNext()
	assert.Equal(t, 2, s.CurrentIndex)

	c.ToggleLoop()
	s, _ = c.PlayNext()
	assert.Equal(t, 0, s.CurrentIndex)
}

func TestController_Events(t *testing.T) {
	c := NewController()
	_, err := c.PlayList(threeEpisodes(), 0)
	require.NoError(t, err)
	c.ToggleShuffle()
	c.ClearPlayerState()
	_, _ = c.PlayNext() // no-op, no event

	expected := []EventType{EventQueueChanged, EventStateChanged, EventQueueCleared}
	for i, want := range expected {
		ev := <-c.Events()
		assert.Equal(t, want, ev.Type)
		assert.Equal(t, uint64(i+1), ev.Snapshot.Version)
	}

	c.Close()
	_, ok := <-c.Events()
	assert.False(t, ok)

	// Actions after Close still update state without panicking.
	s := c.ToggleLoop()
	assert.True(t, s.IsLooping)
	c.Close()
}

func TestController_EventsKeepNewestWhenFull(t *testing.T) {
	c := NewController(WithEventBuffer(2))
	_, err := c.PlayList(threeEpisodes(), 0)
	require.NoError(t, err)
	_, err = c.PlayNext()
	require.NoError(t, err)
	_, err = c.PlayNext()
	require.NoError(t, err)

	final := c.Snapshot()
	c.Close()

	var got []Event
	for ev := range c.Events() {
		got = append(got, ev)
	}
	require.Len(t, got, 2)
	last := got[len(got)-1]
	assert.Equal(t, final.Version, last.Snapshot.Version)
	assert.Equal(t, 2, last.Snapshot.CurrentIndex)
	assert.Equal(t, uint64(2), got[0].Snapshot.Version, "the oldest event is the one dropped")
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "playing", StatusPlaying.String())
	assert.Equal(t, "paused", StatusPaused.String())
	assert.Equal(t, "unknown", Status(99).String())
	assert.Equal(t, "queue_cleared", EventQueueCleared.String())
	assert.Equal(t, "unknown", EventType(99).String())
}
