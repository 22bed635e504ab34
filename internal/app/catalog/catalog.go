package catalog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/app/filter"
	"github.com/osa030/podcastr/internal/domain/episode"
)

// Section identifies a homepage table.
type Section string

const (
	SectionLatest Section = "latest"
	SectionAll    Section = "all"
)

// ErrInvalidSection is returned for an unknown homepage section.
var ErrInvalidSection = errors.New("invalid homepage section")

// ErrRowOutOfRange is returned when a row does not exist in its section.
var ErrRowOutOfRange = errors.New("row out of range")

// HomePage is the homepage listing: the newest episodes split into a
// "latest" highlight and the "all" table.
type HomePage struct {
	Latest    episode.List
	All       episode.List
	FetchedAt time.Time
}

// Queue returns the play queue offered by the homepage: Latest followed by All.
func (h HomePage) Queue() episode.List {
	queue := make(episode.List, 0, len(h.Latest)+len(h.All))
	queue = append(queue, h.Latest...)
	return append(queue, h.All...)
}

// QueueIndex maps a row of a section to its position in Queue().
func (h HomePage) QueueIndex(section Section, row int) (int, error) {
	var size, offset int
	switch section {
	case SectionLatest:
		size = len(h.Latest)
	case SectionAll:
		size, offset = len(h.All), len(h.Latest)
	default:
		return 0, errors.Wrapf(ErrInvalidSection, "section %q", section)
	}
	if row < 0 || row >= size {
		return 0, errors.Wrapf(ErrRowOutOfRange, "row %d of %s (size %d)", row, section, size)
	}
	return offset + row, nil
}

// Contains reports whether the homepage lists the episode.
func (h HomePage) Contains(id string) bool {
	return h.Latest.IndexOf(id) >= 0 || h.All.IndexOf(id) >= 0
}

// Config represents catalog configuration.
// A zero revalidate period disables caching for that view.
type Config struct {
	HomeLimit         int
	LatestCount       int
	HomeRevalidate    time.Duration
	EpisodeRevalidate time.Duration
}

type episodeEntry struct {
	episode   episode.Episode
	fetchedAt time.Time
}

// Catalog serves the homepage and episode views from a source, revalidating
// cached copies once they are older than the configured periods.
type Catalog struct {
	source  Source
	filters *filter.Chain
	cfg     Config
	now     func() time.Time

	mu       sync.Mutex
	home     *HomePage
	episodes map[string]episodeEntry
}

// New creates a new catalog. filters may be nil.
func New(source Source, filters *filter.Chain, cfg Config) *Catalog {
	if cfg.HomeLimit <= 0 {
		cfg.HomeLimit = 12
	}
	if cfg.LatestCount < 0 {
		cfg.LatestCount = 0
	}
	if filters == nil {
		filters = filter.NewChain()
	}
	return &Catalog{
		source:   source,
		filters:  filters,
		cfg:      cfg,
		now:      time.Now,
		episodes: make(map[string]episodeEntry),
	}
}

// Home returns the homepage, refetching it when the cached copy is stale.
// On refetch failure a stale copy is served.
func (c *Catalog) Home(ctx context.Context) (HomePage, error) {
	c.mu.Lock()
	cached := c.home
	c.mu.Unlock()

	if cached != nil && c.fresh(cached.FetchedAt, c.cfg.HomeRevalidate) {
		return *cached, nil
	}

	page, err := c.fetchHome(ctx)
	if err != nil {
		if cached != nil {
			zlog.Warn().Err(err).Msgf("catalog: serving stale homepage: fetched_at=%s", cached.FetchedAt.Format(time.RFC3339))
			return *cached, nil
		}
		return HomePage{}, err
	}
	return page, nil
}

// Refresh refetches the homepage regardless of its age and reports whether
// the set of listed episode IDs changed.
func (c *Catalog) Refresh(ctx context.Context) (HomePage, bool, error) {
	c.mu.Lock()
	var before []string
	if c.home != nil {
		before = c.home.Queue().IDs()
	}
	c.mu.Unlock()

	page, err := c.fetchHome(ctx)
	if err != nil {
		return HomePage{}, false, err
	}

	after := page.Queue().IDs()
	slices.Sort(before)
	slices.Sort(after)
	changed := !slices.Equal(before, after)
	if changed {
		zlog.Info().Msgf("catalog: homepage changed: before=%d after=%d", len(before), len(after))
	}
	return page, changed, nil
}

// Episode returns one episode, refetching it when the cached copy is stale.
// A not-found answer evicts the cached copy. Other failures serve a stale copy.
func (c *Catalog) Episode(ctx context.Context, id string) (episode.Episode, error) {
	if id == "" {
		return episode.Episode{}, errors.New("episode id is required")
	}

	c.mu.Lock()
	entry, ok := c.episodes[id]
	c.mu.Unlock()

	if ok && c.fresh(entry.fetchedAt, c.cfg.EpisodeRevalidate) {
		return entry.episode, nil
	}

	e, err := c.source.GetEpisode(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEpisodeNotFound) {
			c.mu.Lock()
			delete(c.episodes, id)
			c.mu.Unlock()
			return episode.Episode{}, err
		}
		if ok {
			zlog.Warn().Err(err).Msgf("catalog: serving stale episode: id=%s", id)
			return entry.episode, nil
		}
		return episode.Episode{}, err
	}

	c.mu.Lock()
	c.episodes[id] = episodeEntry{episode: e, fetchedAt: c.now()}
	c.mu.Unlock()

	return e, nil
}

// Missing returns the IDs that no source knows anymore, asking the sources
// directly for IDs that are not on the current homepage.
func (c *Catalog) Missing(ctx context.Context, ids []string) ([]string, error) {
	c.mu.Lock()
	home := c.home
	c.mu.Unlock()

	var missing []string
	for _, id := range ids {
		if home != nil && home.Contains(id) {
			continue
		}
		_, err := c.source.GetEpisode(ctx, id)
		switch {
		case err == nil:
		case errors.Is(err, ErrEpisodeNotFound):
			missing = append(missing, id)
		default:
			return nil, errors.Wrapf(err, "failed to verify episode %s", id)
		}
	}
	return missing, nil
}

// Warm fetches the homepage and pre-caches the detail of its first n episodes.
func (c *Catalog) Warm(ctx context.Context, n int) error {
	page, err := c.Home(ctx)
	if err != nil {
		return err
	}

	queue := page.Queue()
	if n > len(queue) {
		n = len(queue)
	}
	for _, e := range queue[:n] {
		if _, err := c.Episode(ctx, e.ID); err != nil {
			zlog.Warn().Err(err).Msgf("catalog: failed to warm episode: id=%s", e.ID)
		}
	}

	zlog.Info().Msgf("catalog: warmed: episodes=%d", n)
	return nil
}

// fetchHome fetches, filters and splits the newest episodes, then caches them.
// Listed episodes also seed the episode cache.
func (c *Catalog) fetchHome(ctx context.Context) (HomePage, error) {
	list, err := c.source.ListEpisodes(ctx, c.cfg.HomeLimit)
	if err != nil {
		return HomePage{}, errors.Wrap(err, "failed to fetch homepage")
	}

	kept, rejected := c.filters.Execute(ctx, list)
	if len(rejected) > 0 {
		zlog.Info().Msgf("catalog: episodes filtered out: count=%d", len(rejected))
	}
	if len(kept) > c.cfg.HomeLimit {
		kept = kept[:c.cfg.HomeLimit]
	}

	split := min(c.cfg.LatestCount, len(kept))
	now := c.now()
	page := HomePage{
		Latest:    kept[:split].Clone(),
		All:       kept[split:].Clone(),
		FetchedAt: now,
	}

	c.mu.Lock()
	c.home = &page
	for _, e := range kept {
		c.episodes[e.ID] = episodeEntry{episode: e, fetchedAt: now}
	}
	c.mu.Unlock()

	zlog.Debug().Msgf("catalog: homepage fetched: latest=%d all=%d", len(page.Latest), len(page.All))
	return page, nil
}

func (c *Catalog) fresh(fetchedAt time.Time, period time.Duration) bool {
	return period > 0 && c.now().Sub(fetchedAt) < period
}
