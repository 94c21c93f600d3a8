// Package session wires the playback engine, episode sources, admission
// filters, and snapshot broadcasting into one running unit.
package session

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/app/broadcast"
	"github.com/osa030/podbox/internal/app/filter"
	"github.com/osa030/podbox/internal/app/player"
	"github.com/osa030/podbox/internal/app/source"
	"github.com/osa030/podbox/internal/infra/config"
)

// Manager owns the playback session: it feeds the engine's queue from the
// configured episode providers and republishes every engine snapshot to
// broadcaster subscribers.
type Manager struct {
	mu sync.Mutex

	id     string
	config *config.Config

	player      player.Player
	broadcaster *broadcast.Broadcaster
	sources     *source.Chain
	filterChain *filter.Chain

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a session manager from configuration.
func NewManager(cfg *config.Config, feed source.FeedClient) (*Manager, error) {
	sources, err := source.NewChainFromConfig(cfg, feed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create episode provider chain")
	}

	broadcaster := broadcast.New()
	engine := player.NewEngine(broadcaster)

	// The engine starts at normal speed; shift it once to the configured
	// initial speed.
	if d := cfg.Player.Speed() - player.DefaultSpeed; d != 0 {
		engine.IncreaseSpeed(d)
	}

	m := &Manager{
		id:          uuid.New().String(),
		config:      cfg,
		player:      engine,
		broadcaster: broadcaster,
		sources:     sources,
		filterChain: filter.NewChain(),
		done:        make(chan struct{}),
	}
	m.setupFilters()

	return m, nil
}

// setupFilters initializes the filter chain from configuration.
func (m *Manager) setupFilters() {
	cfg := m.config

	// DuplicateEpisodeFilter
	if cfg.IsFilterEnabled("duplicate_episode_filter") {
		m.filterChain.Add(filter.NewDuplicateEpisodeFilter())
	}

	// DurationLimitFilter
	if cfg.IsFilterEnabled("duration_limit_filter") {
		f := filter.NewDurationLimitFilter()
		settings := cfg.Filters["duration_limit_filter"].Settings
		if err := f.ValidateConfig(settings); err != nil {
			zlog.Error().Msgf("failed to validate duration limit filter config: %v", err)
		} else {
			m.filterChain.Add(f)
		}
	}

	// StaleEpisodeFilter
	if cfg.IsFilterEnabled("stale_episode_filter") {
		f := filter.NewStaleEpisodeFilter()
		settings := cfg.Filters["stale_episode_filter"].Settings
		if err := f.ValidateConfig(settings); err != nil {
			zlog.Error().Msgf("failed to validate stale episode filter config: %v", err)
		} else {
			m.filterChain.Add(f)
		}
	}
}

// Player returns the playback engine.
func (m *Manager) Player() player.Player {
	return m.player
}

// Broadcaster returns the snapshot broadcaster.
func (m *Manager) Broadcaster() *broadcast.Broadcaster {
	return m.broadcaster
}

// Run starts the session loop: an initial queue fill, then refills driven
// by engine snapshots. Blocks until ctx is cancelled or Close is called.
func (m *Manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	subID, snapshots := m.broadcaster.Subscribe()
	defer m.broadcaster.Unsubscribe(subID)

	zlog.Info().Msgf("session started: session_id=%s refill_enabled=%t autoplay=%t",
		m.id, m.config.Refill.Enabled, m.config.Player.Autoplay)

	if m.config.Refill.Enabled {
		m.refill(ctx, m.player.State())
	}
	if m.config.Player.Autoplay {
		// Next promotes the queue head and plays; a no-op when the refill
		// produced nothing.
		m.player.Next()
	}

	for {
		select {
		case <-ctx.Done():
			close(m.done)
			return ctx.Err()
		case st, ok := <-snapshots:
			if !ok {
				close(m.done)
				return nil
			}
			if m.config.Refill.Enabled && len(st.Queue) < m.config.Refill.Threshold {
				m.refill(ctx, st)
			}
		}
	}
}

// refill tops the queue up to the configured batch size with candidates
// that pass the filter chain. Candidates already loaded or queued are
// excluded at the source.
func (m *Manager) refill(ctx context.Context, st player.State) {
	need := m.config.Refill.BatchSize - len(st.Queue)
	if need <= 0 {
		return
	}

	excludeSet := make(map[string]bool, len(st.Queue)+1)
	if st.CurrentEpisode != nil {
		excludeSet[st.CurrentEpisode.URI] = true
	}
	for _, ep := range st.Queue {
		excludeSet[ep.URI] = true
	}

	candidates, err := m.sources.Candidates(ctx, need, excludeSet)
	if err != nil {
		zlog.Error().Msgf("failed to get refill candidates: %v", err)
		return
	}

	added := 0
	for _, c := range candidates {
		if added == need {
			break
		}

		result := m.filterChain.Execute(ctx, c.Episode, st)
		if !result.Admitted {
			zlog.Debug().Msgf("refill candidate rejected by filter: episode=%s source=%s reason=%s",
				c.Episode.Title, c.DisplayName, result.Code)
			continue
		}

		m.player.AddToQueue(c.Episode)
		zlog.Info().Msgf("queued episode: episode=%s source=%s", c.Episode.Title, c.DisplayName)
		added++
	}

	if added == 0 {
		zlog.Warn().Msg("no suitable refill candidates after filtering")
	}
}

// Done returns a channel that is closed when the session loop has exited.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Close stops the session loop and releases the broadcaster.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	m.player.Stop()
	m.broadcaster.Close()
}
