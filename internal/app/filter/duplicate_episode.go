package filter

import (
	"context"

	"github.com/osa030/podbox/internal/app/player"
	"github.com/osa030/podbox/internal/domain/episode"
)

// DuplicateEpisodeFilter rejects candidates already loaded or queued.
// Matching is by episode value, the same equality the queue itself uses.
type DuplicateEpisodeFilter struct{}

// NewDuplicateEpisodeFilter creates a new duplicate episode filter.
func NewDuplicateEpisodeFilter() *DuplicateEpisodeFilter {
	return &DuplicateEpisodeFilter{}
}

func (f *DuplicateEpisodeFilter) Name() string {
	return "duplicate_episode_filter"
}

func (f *DuplicateEpisodeFilter) Description() string {
	return "Rejects episodes already playing or waiting in the queue"
}

func (f *DuplicateEpisodeFilter) ReturnCodes() []string {
	return []string{"duplicate_episode"}
}

func (f *DuplicateEpisodeFilter) ValidateConfig(settings map[string]any) error {
	// No settings.
	return nil
}

func (f *DuplicateEpisodeFilter) Check(ctx context.Context, candidate episode.Episode, st player.State) Result {
	if st.CurrentEpisode != nil && st.CurrentEpisode.Equal(candidate) {
		return Reject("duplicate_episode")
	}
	for _, queued := range st.Queue {
		if queued.Equal(candidate) {
			return Reject("duplicate_episode")
		}
	}
	return Admit()
}

func init() {
	Register("duplicate_episode_filter", func() Filter {
		return &DuplicateEpisodeFilter{}
	})
}
