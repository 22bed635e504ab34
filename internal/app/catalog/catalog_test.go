package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/podcastr/internal/app/filter"
	"github.com/osa030/podcastr/internal/domain/episode"
)

// fakeSource is an in-memory Source.
type fakeSource struct {
	mu        sync.Mutex
	name      string
	list      episode.List
	listErr   error
	getErr    error
	listCalls int
	getCalls  int
}

func (s *fakeSource) ListEpisodes(_ context.Context, limit int) (episode.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	if limit < len(s.list) {
		return s.list[:limit].Clone(), nil
	}
	return s.list.Clone(), nil
}

func (s *fakeSource) GetEpisode(_ context.Context, id string) (episode.Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getErr != nil {
		return episode.Episode{}, s.getErr
	}
	if i := s.list.IndexOf(id); i >= 0 {
		return s.list[i], nil
	}
	return episode.Episode{}, errors.Wrapf(ErrEpisodeNotFound, "episode %s", id)
}

func (s *fakeSource) Name() string {
	if s.name == "" {
		return "fake"
	}
	return s.name
}

func (s *fakeSource) set(list episode.List, listErr, getErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list, s.listErr, s.getErr = list, listErr, getErr
}

func makeEpisodes(n int) episode.List {
	list := make(episode.List, n)
	for i := range list {
		list[i] = episode.Episode{
			ID:       fmt.Sprintf("ep-%02d", i),
			Title:    fmt.Sprintf("Episode %d", i),
			Duration: 600,
			URL:      fmt.Sprintf("https://cdn.example.com/ep-%02d.mp3", i),
		}
	}
	return list
}

// clock is a manually advanced time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCatalog(src Source, filters *filter.Chain) (*Catalog, *clock) {
	clk := &clock{t: time.Date(2021, 1, 22, 12, 0, 0, 0, time.UTC)}
	c := New(src, filters, Config{
		HomeLimit:         12,
		LatestCount:       2,
		HomeRevalidate:    8 * time.Hour,
		EpisodeRevalidate: 24 * time.Hour,
	})
	c.now = clk.now
	return c, clk
}

func TestHome_SplitsLatestAndAll(t *testing.T) {
	src := &fakeSource{list: makeEpisodes(15)}
	c, _ := newTestCatalog(src, nil)

	page, err := c.Home(context.Background())
	require.NoError(t, err)

	assert.Len(t, page.Latest, 2)
	assert.Len(t, page.All, 10)
	assert.Equal(t, []string{"ep-00", "ep-01"}, page.Latest.IDs())
	assert.Equal(t, "ep-02", page.All[0].ID)

	queue := page.Queue()
	require.Len(t, queue, 12)
	assert.Equal(t, "ep-11", queue[11].ID)
}

func TestHomePage_QueueIndex(t *testing.T) {
	page := HomePage{Latest: makeEpisodes(2), All: makeEpisodes(12)[2:]}

	tests := []struct {
		name    string
		section Section
		row     int
		want    int
		wantErr error
	}{
		{name: "first latest", section: SectionLatest, row: 0, want: 0},
		{name: "second latest", section: SectionLatest, row: 1, want: 1},
		{name: "first of all is offset", section: SectionAll, row: 0, want: 2},
		{name: "last of all", section: SectionAll, row: 9, want: 11},
		{name: "latest out of range", section: SectionLatest, row: 2, wantErr: ErrRowOutOfRange},
		{name: "negative row", section: SectionAll, row: -1, wantErr: ErrRowOutOfRange},
		{name: "unknown section", section: "featured", row: 0, wantErr: ErrInvalidSection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := page.QueueIndex(tt.section, tt.row)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, fmt.Sprintf("ep-%02d", tt.want), page.Queue()[got].ID)
		})
	}
}

func TestHome_FewerEpisodesThanLatest(t *testing.T) {
	src := &fakeSource{list: makeEpisodes(1)}
	c, _ := newTestCatalog(src, nil)

	page, err := c.Home(context.Background())
	require.NoError(t, err)
	assert.Len(t, page.Latest, 1)
	assert.Empty(t, page.All)
}

func TestHome_Revalidate(t *testing.T) {
	src := &fakeSource{list: makeEpisodes(3)}
	c, clk := newTestCatalog(src, nil)
	ctx := context.Background()

	_, err := c.Home(ctx)
	require.NoError(t, err)

	clk.advance(7 * time.Hour)
	_, err = c.Home(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.listCalls, "served from cache within the window")

	clk.advance(2 * time.Hour)
	src.set(makeEpisodes(4), nil, nil)
	page, err := c.Home(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.listCalls, "refetched after the window")
	assert.Len(t, page.All, 2)
}

func TestHome_ServesStaleOnError(t *testing.T) {
	src := &fakeSource{list: makeEpisodes(3)}
	c, clk := newTestCatalog(src, nil)
	ctx := context.Background()

	first, err := c.Home(ctx)
	require.NoError(t, err)

	clk.advance(9 * time.Hour)
	src.set(nil, errors.New("api down"), nil)

	page, err := c.Home(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, page)
}

func TestHome_ErrorWithoutCache(t *testing.T) {
	src := &fakeSource{listErr: errors.New("api down")}
	c, _ := newTestCatalog(src, nil)

	_, err := c.Home(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api down")
}

func TestHome_AppliesFilters(t *testing.T) {
	list := makeEpisodes(4)
	list[1].URL = ""
	list = append(list, list[0])

	chain := filter.NewChain()
	chain.Add(filter.NewDuplicateEpisodeFilter())
	chain.Add(filter.NewPlayableFilter())

	src := &fakeSource{list: list}
	c, _ := newTestCatalog(src, chain)

	page, err := c.Home(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ep-00", "ep-02", "ep-03"}, page.Queue().IDs())
}

func TestRefresh_ReportsChange(t *testing.T) {
	src := &fakeSource{list: makeEpisodes(3)}
	c, _ := newTestCatalog(src, nil)
	ctx := context.Background()

	_, err := c.Home(ctx)
	require.NoError(t, err)

	_, changed, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, src.listCalls, "refresh ignores the revalidate window")

	src.set(makeEpisodes(4), nil, nil)
	page, changed, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, page.Queue(), 4)
}

func TestEpisode_CacheAndRevalidate(t *testing.T) {
	src := &fakeSource{list: makeEpisodes(20)}
	c, clk := newTestCatalog(src, nil)
	ctx := context.Background()

	_, err := c.Home(ctx)
	require.NoError(t, err)

	e, err := c.Episode(ctx, "ep-01")
	require.NoError(t, err)
	assert.Equal(t, "Episode 1", e.Title)
	assert.Equal(t, 0, src.getCalls, "seeded by the homepage fetch")

	_, err = c.Episode(ctx, "ep-15")
	require.NoError(t, err)
	assert.Equal(t, 1, src.getCalls)

	clk.advance(25 * time.Hour)
	src.set(makeEpisodes(20), nil, errors.New("timeout"))
	stale, err := c.Episode(ctx, "ep-15")
	require.NoError(t, err, "stale copy served on failure")
	assert.Equal(t, "ep-15", stale.ID)
	assert.Equal(t, 2, src.getCalls)

	src.set(makeEpisodes(3), nil, nil)
	_, err = c.Episode(ctx, "ep-15")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEpisodeNotFound), "not found evicts instead of serving stale")

	_, err = c.Episode(ctx, "")
	assert.Error(t, err)
}

func TestMissing(t *testing.T) {
	src := &fakeSource{list: makeEpisodes(20)}
	c, _ := newTestCatalog(src, nil)
	ctx := context.Background()

	_, err := c.Home(ctx)
	require.NoError(t, err)

	missing, err := c.Missing(ctx, []string{"ep-00", "ep-15", "gone"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gone"}, missing)
	assert.Equal(t, 2, src.getCalls, "homepage episodes are not re-verified")

	src.set(makeEpisodes(20), nil, errors.New("timeout"))
	_, err = c.Missing(ctx, []string{"ep-15"})
	assert.Error(t, err)
}

func TestWarm(t *testing.T) {
	src := &fakeSource{list: makeEpisodes(5)}
	c, _ := newTestCatalog(src, nil)
	c.cfg.EpisodeRevalidate = 0

	require.NoError(t, c.Warm(context.Background(), 2))
	assert.Equal(t, 1, src.listCalls)
	assert.Equal(t, 2, src.getCalls)

	require.NoError(t, c.Warm(context.Background(), 50))
	assert.Equal(t, 7, src.getCalls)
}

func TestSourceChain(t *testing.T) {
	ctx := context.Background()
	broken := &fakeSource{name: "broken", listErr: errors.New("down"), getErr: errors.New("down")}
	api := &fakeSource{name: "api", list: makeEpisodes(3)}
	show := &fakeSource{name: "spotify", list: episode.List{{ID: "show-ep", URL: "u"}}}

	chain := NewSourceChain([]SourceWithMetadata{
		{Source: broken, DisplayName: "Broken"},
		{Source: api, DisplayName: "API"},
		{Source: show, DisplayName: "Show"},
	})
	assert.Equal(t, "source_chain", chain.Name())
	assert.Len(t, chain.Sources(), 3)

	list, err := chain.ListEpisodes(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, []string{"ep-00", "ep-01", "ep-02"}, list.IDs(), "first working source wins")

	e, err := chain.GetEpisode(ctx, "show-ep")
	require.NoError(t, err, "not found moves on to the next source")
	assert.Equal(t, "show-ep", e.ID)

	_, err = chain.GetEpisode(ctx, "nowhere")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEpisodeNotFound), "a failing source makes the answer inconclusive")

	healthy := NewSourceChain([]SourceWithMetadata{{Source: api, DisplayName: "API"}, {Source: show, DisplayName: "Show"}})
	_, err = healthy.GetEpisode(ctx, "nowhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEpisodeNotFound))

	_, err = NewSourceChain(nil).ListEpisodes(ctx, 12)
	assert.Error(t, err)
}
