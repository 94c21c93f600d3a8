package filter

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/app/player"
	"github.com/osa030/podbox/internal/domain/episode"
)

// StaleEpisodeConfig represents the configuration for StaleEpisodeFilter.
type StaleEpisodeConfig struct {
	MaxAgeDays int `yaml:"max_age_days" mapstructure:"max_age_days" default:"365" validate:"gte=1"`
}

// StaleEpisodeFilter rejects episodes published too long ago. Episodes
// without a publish timestamp are admitted.
type StaleEpisodeFilter struct {
	config *StaleEpisodeConfig

	// now is swappable for tests.
	now func() time.Time
}

// NewStaleEpisodeFilter creates a new stale episode filter.
func NewStaleEpisodeFilter() *StaleEpisodeFilter {
	return &StaleEpisodeFilter{now: time.Now}
}

func (f *StaleEpisodeFilter) Name() string {
	return "stale_episode_filter"
}

func (f *StaleEpisodeFilter) Description() string {
	return "Rejects episodes older than the configured maximum age"
}

func (f *StaleEpisodeFilter) ReturnCodes() []string {
	return []string{"stale_episode"}
}

func (f *StaleEpisodeFilter) ValidateConfig(settings map[string]any) error {
	var config StaleEpisodeConfig

	if err := mapstructure.Decode(settings, &config); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	f.config = &config
	zlog.Info().Msgf("stale episode filter config: %+v", config)
	return nil
}

func (f *StaleEpisodeFilter) Check(ctx context.Context, candidate episode.Episode, st player.State) Result {
	if f.config == nil {
		return Admit()
	}
	if candidate.Published.IsZero() {
		return Admit()
	}

	cutoff := f.now().AddDate(0, 0, -f.config.MaxAgeDays)
	if candidate.Published.Before(cutoff) {
		return Reject("stale_episode")
	}
	return Admit()
}

func init() {
	Register("stale_episode_filter", func() Filter {
		return NewStaleEpisodeFilter()
	})
}
