package source

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/domain/episode"
	"github.com/osa030/podbox/internal/domain/podcast"
)

// CatalogProviderConfig represents the configuration for CatalogProvider.
type CatalogProviderConfig struct {
	// PodcastURI restricts the provider to one catalog podcast.
	// Empty means the whole catalog.
	PodcastURI string `yaml:"podcast_uri" mapstructure:"podcast_uri"`
	// Loop restarts from the top once the catalog is exhausted.
	// Pointer so an explicit false survives the defaults pass.
	Loop *bool `yaml:"loop" mapstructure:"loop" default:"true"`
}

// CatalogProvider walks the locally configured catalog in order,
// remembering its position between calls.
type CatalogProvider struct {
	episodes []episode.Episode
	cursor   int
	config   *CatalogProviderConfig
}

// NewCatalogProvider creates a new CatalogProvider over the given catalog.
func NewCatalogProvider(catalog []podcast.Podcast, settings map[string]any) (*CatalogProvider, error) {
	var config CatalogProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	zlog.Debug().Msgf("catalog provider config: %+v", config)

	var eps []episode.Episode
	for i := range catalog {
		p := &catalog[i]
		if config.PodcastURI != "" && p.URI != config.PodcastURI {
			continue
		}
		eps = append(eps, p.Denormalized()...)
	}
	if len(eps) == 0 {
		return nil, errors.New("catalog provider has no episodes to serve")
	}

	return &CatalogProvider{
		episodes: eps,
		config:   &config,
	}, nil
}

// Candidates returns the next episodes from the catalog, skipping
// excluded URIs. With looping disabled the provider runs dry once the
// cursor reaches the end.
func (p *CatalogProvider) Candidates(ctx context.Context, count int, excludeURIs map[string]bool) ([]episode.Episode, error) {
	if count <= 0 {
		return []episode.Episode{}, nil
	}

	result := make([]episode.Episode, 0, count)
	scanned := 0
	for len(result) < count && scanned < len(p.episodes) {
		if p.cursor >= len(p.episodes) {
			if p.config.Loop == nil || !*p.config.Loop {
				break
			}
			p.cursor = 0
		}

		ep := p.episodes[p.cursor]
		p.cursor++
		scanned++

		if excludeURIs[ep.URI] {
			continue
		}
		result = append(result, ep)
	}

	return result, nil
}

// Name returns the provider name.
func (p *CatalogProvider) Name() string {
	return "catalog"
}
