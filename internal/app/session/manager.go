// Package session provides the session manager that ties the player,
// the catalog and subscriber notifications together.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	podcastrv1 "github.com/osa030/podcastr/internal/api/podcastr/v1"
	"github.com/osa030/podcastr/internal/app/catalog"
	"github.com/osa030/podcastr/internal/app/filter"
	"github.com/osa030/podcastr/internal/app/notification"
	"github.com/osa030/podcastr/internal/app/player"
	"github.com/osa030/podcastr/internal/domain/episode"
	"github.com/osa030/podcastr/internal/infra/config"
)

var (
	ErrNotPlayable    = errors.New("episode is not playable")
	ErrInvalidQueue   = errors.New("invalid play queue")
	ErrSessionClosed  = errors.New("session is closed")
	ErrAlreadyStarted = errors.New("session already started")
)

// Config represents session behaviour.
type Config struct {
	// RefreshInterval is the period of catalog revalidation. 0 disables it.
	RefreshInterval time.Duration
	// KeepQueueOnCatalogChange keeps the queue when queued episodes vanish.
	KeepQueueOnCatalogChange bool
	// WarmEpisodes is the number of homepage episodes pre-fetched on start.
	WarmEpisodes int
}

// Manager manages the playback session.
type Manager struct {
	id        string
	startedAt time.Time
	config    Config

	// Components
	player       *player.Controller
	catalog      *catalog.Catalog
	notification *notification.Manager

	mu      sync.Mutex
	started bool
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

// NewManager creates a new session manager around existing components.
func NewManager(cfg Config, ctrl *player.Controller, cat *catalog.Catalog) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		id:           uuid.New().String(),
		config:       cfg,
		player:       ctrl,
		catalog:      cat,
		notification: notification.NewManager(),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
}

// NewManagerFromConfig builds the filters, sources, catalog and player
// described by the configuration.
func NewManagerFromConfig(ctx context.Context, cfg *config.Config) (*Manager, error) {
	sources, err := catalog.NewSourceChainFromConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create episode sources")
	}

	chain, err := NewFilterChain(cfg)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(sources, chain, catalog.Config{
		HomeLimit:         cfg.Catalog.HomeLimit,
		LatestCount:       cfg.Catalog.LatestCount,
		HomeRevalidate:    cfg.Catalog.HomeRevalidate,
		EpisodeRevalidate: cfg.Catalog.EpisodeRevalidate,
	})

	ctrl := player.NewController(player.WithEventBuffer(cfg.Player.EventBuffer))

	return NewManager(Config{
		RefreshInterval:          cfg.Player.RefreshInterval,
		KeepQueueOnCatalogChange: cfg.Player.KeepQueueOnCatalogChange,
		WarmEpisodes:             cfg.Catalog.LatestCount,
	}, ctrl, cat), nil
}

// NewFilterChain builds the episode filter chain. The duplicate and
// playable filters are always on; the rest follow the filters config.
func NewFilterChain(cfg *config.Config) (*filter.Chain, error) {
	chain := filter.NewChain()

	// DuplicateEpisodeFilter
	chain.Add(filter.NewDuplicateEpisodeFilter())

	// PlayableFilter
	chain.Add(filter.NewPlayableFilter())

	// DurationLimitFilter
	if cfg.IsFilterEnabled("duration_limit_filter") {
		f := filter.NewDurationLimitFilter()
		if err := f.ValidateConfig(cfg.FilterSettings("duration_limit_filter")); err != nil {
			return nil, errors.Wrap(err, "invalid duration_limit_filter settings")
		}
		chain.Add(f)
	}

	for _, f := range chain.Filters() {
		zlog.Debug().Msgf("session: filter enabled: name=%s", f.Name())
	}
	return chain, nil
}

// Start warms the catalog and starts the event relay and catalog refresh loops.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrSessionClosed
	}
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.startedAt = time.Now()
	m.mu.Unlock()

	if m.config.WarmEpisodes > 0 {
		if err := m.catalog.Warm(ctx, m.config.WarmEpisodes); err != nil {
			zlog.Warn().Err(err).Msg("session: catalog warm-up failed, continuing")
		}
	}

	m.wg.Add(1)
	go m.eventLoop()

	if m.config.RefreshInterval > 0 {
		m.wg.Add(1)
		go m.refreshLoop()
	}

	zlog.Info().Msgf("session: started: session_id=%s refresh_interval=%s", m.id, m.config.RefreshInterval)
	return nil
}

// ID returns the session ID.
func (m *Manager) ID() string {
	return m.id
}

// StartedAt returns when Start was called.
func (m *Manager) StartedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startedAt
}

// Done is closed when the session is closed.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Player returns the playback controller.
func (m *Manager) Player() *player.Controller {
	return m.player
}

// Catalog returns the episode catalog.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// GetNotificationManager returns the notification manager.
func (m *Manager) GetNotificationManager() *notification.Manager {
	return m.notification
}

// PlayEpisodeByID resolves an episode through the catalog and plays it alone.
func (m *Manager) PlayEpisodeByID(ctx context.Context, id string) (player.Snapshot, error) {
	e, err := m.catalog.Episode(ctx, id)
	if err != nil {
		return m.player.Snapshot(), err
	}
	if !e.IsPlayable() {
		return m.player.Snapshot(), errors.Wrapf(ErrNotPlayable, "episode %s", id)
	}
	return m.player.PlayEpisode(e), nil
}

// PlayIDs resolves every ID through the catalog and plays the list from index.
func (m *Manager) PlayIDs(ctx context.Context, ids []string, index int) (player.Snapshot, error) {
	if index < 0 || index >= len(ids) {
		return m.player.Snapshot(), errors.Wrapf(player.ErrInvalidIndex, "index %d, list length %d", index, len(ids))
	}

	list := make(episode.List, 0, len(ids))
	for _, id := range ids {
		e, err := m.catalog.Episode(ctx, id)
		if err != nil {
			return m.player.Snapshot(), err
		}
		if !e.IsPlayable() {
			return m.player.Snapshot(), errors.Wrapf(ErrNotPlayable, "episode %s", id)
		}
		list = append(list, e)
	}
	if err := list.Validate(); err != nil {
		return m.player.Snapshot(), errors.Mark(err, ErrInvalidQueue)
	}

	return m.player.PlayList(list, index)
}

// PlayHome plays the homepage queue (latest followed by all) starting at
// the given row of a section.
func (m *Manager) PlayHome(ctx context.Context, section catalog.Section, row int) (player.Snapshot, error) {
	home, err := m.catalog.Home(ctx)
	if err != nil {
		return m.player.Snapshot(), err
	}

	index, err := home.QueueIndex(section, row)
	if err != nil {
		return m.player.Snapshot(), errors.Mark(err, player.ErrInvalidIndex)
	}
	return m.player.PlayList(home.Queue(), index)
}

// RefreshCatalog revalidates the homepage and clears the queue when one of
// its episodes no longer exists. It reports whether the queue was cleared.
func (m *Manager) RefreshCatalog(ctx context.Context) (bool, error) {
	_, changed, err := m.catalog.Refresh(ctx)
	if err != nil {
		return false, err
	}
	if !changed || m.config.KeepQueueOnCatalogChange {
		return false, nil
	}

	snap := m.player.Snapshot()
	if len(snap.EpisodeList) == 0 {
		return false, nil
	}

	missing, err := m.catalog.Missing(ctx, snap.EpisodeList.IDs())
	if err != nil {
		return false, err
	}
	if len(missing) == 0 {
		return false, nil
	}

	if _, cleared := m.player.ClearIfVersion(snap.Version); !cleared {
		zlog.Debug().Msg("session: queue changed during refresh, not clearing")
		return false, nil
	}
	zlog.Info().Msgf("session: queue cleared, episodes left the catalog: missing=%v", missing)
	return true, nil
}

// Close stops the loops, closes the player and drops all subscribers.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.player.Close()
	m.wg.Wait()
	m.notification.Close()
	close(m.done)

	zlog.Info().Msgf("session: closed: session_id=%s", m.id)
}

// eventLoop relays player events to subscribers until the player closes.
func (m *Manager) eventLoop() {
	defer m.wg.Done()

	for ev := range m.player.Events() {
		m.relay(ev)
	}
}

func (m *Manager) relay(ev player.Event) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("session: relay panicked: type=%s err=%v", ev.Type, r)
		}
	}()

	zlog.Debug().Msgf("session: player event: type=%s version=%d", ev.Type, ev.Snapshot.Version)
	m.notification.Broadcast(&podcastrv1.Notification{
		Type:  podcastrv1.NotificationTypeFromEvent(ev.Type),
		State: podcastrv1.FromSnapshot(ev.Snapshot),
	})
}

// refreshLoop revalidates the catalog periodically.
func (m *Manager) refreshLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.RefreshCatalog(m.ctx); err != nil {
				zlog.Warn().Err(err).Msg("session: catalog refresh failed")
			}
		}
	}
}
