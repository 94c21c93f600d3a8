package source

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/infra/config"
)

// NewChainFromConfig creates a provider chain from configuration.
func NewChainFromConfig(cfg *config.Config, feed FeedClient) (*Chain, error) {
	if len(cfg.Sources.Providers) == 0 {
		return nil, errors.New("no episode providers configured")
	}

	catalog := cfg.Podcasts()

	var providers []ProviderWithMetadata
	for i, pcfg := range cfg.Sources.Providers {
		var provider Provider
		var err error
		zlog.Debug().Msgf("creating episode provider: index=%d type=%s settings=%+v",
			i+1, pcfg.Type, pcfg.Settings)

		switch pcfg.Type {
		case "catalog":
			provider, err = NewCatalogProvider(catalog, pcfg.Settings)

		case "feed":
			provider, err = NewFeedProvider(feed, pcfg.Settings)

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", pcfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, pcfg.Type)
		}

		providers = append(providers, ProviderWithMetadata{
			Provider:    provider,
			DisplayName: pcfg.DisplayName,
		})

		zlog.Info().Msgf("registered episode provider: index=%d type=%s display_name=%s",
			i+1, pcfg.Type, pcfg.DisplayName)
	}

	return NewChain(providers), nil
}
