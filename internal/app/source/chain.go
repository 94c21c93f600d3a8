package source

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/domain/episode"
)

// CandidateWithSource represents an episode candidate with its source
// provider info.
type CandidateWithSource struct {
	Episode     episode.Episode
	DisplayName string
}

// ProviderWithMetadata wraps a provider with its metadata.
type ProviderWithMetadata struct {
	Provider    Provider
	DisplayName string
}

// Chain collects candidates from multiple providers in order.
type Chain struct {
	providers []ProviderWithMetadata
}

// NewChain creates a new provider chain.
func NewChain(providers []ProviderWithMetadata) *Chain {
	return &Chain{
		providers: providers,
	}
}

// Candidates retrieves candidates from all providers. A failing provider
// is logged and skipped; the chain only errors when every provider came
// up empty.
func (c *Chain) Candidates(ctx context.Context, count int, excludeURIs map[string]bool) ([]CandidateWithSource, error) {
	var all []CandidateWithSource

	currentExclude := make(map[string]bool, len(excludeURIs))
	for k, v := range excludeURIs {
		currentExclude[k] = v
	}

	for i, pm := range c.providers {
		zlog.Debug().Msgf("trying provider: index=%d total=%d name=%s provider_type=%s",
			i+1, len(c.providers), pm.DisplayName, pm.Provider.Name())

		candidates, err := pm.Provider.Candidates(ctx, count, currentExclude)
		if err != nil {
			zlog.Warn().Msgf("provider failed, trying next: provider=%s error=%v", pm.DisplayName, err)
			continue
		}
		if len(candidates) == 0 {
			zlog.Debug().Msgf("provider returned no candidates: provider=%s", pm.DisplayName)
			continue
		}

		for _, ep := range candidates {
			all = append(all, CandidateWithSource{
				Episode:     ep,
				DisplayName: pm.DisplayName,
			})
			// Avoid duplicates from the next provider.
			currentExclude[ep.URI] = true
		}

		zlog.Info().Msgf("provider returned candidates: provider=%s count=%d total_so_far=%d",
			pm.DisplayName, len(candidates), len(all))
	}

	if len(all) == 0 {
		return nil, errors.New("all providers failed to return candidates")
	}

	return all, nil
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return "provider_chain"
}
