package source

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/domain/episode"
	"github.com/osa030/podbox/internal/domain/podcast"
)

// FeedProviderConfig represents the configuration for FeedProvider.
type FeedProviderConfig struct {
	FeedURL            string `yaml:"feed_url" mapstructure:"feed_url" validate:"required,url"`
	RefreshIntervalMin int    `yaml:"refresh_interval_min" mapstructure:"refresh_interval_min" default:"60" validate:"gte=1"`
}

// FeedProvider serves episodes from a remote RSS feed, newest first.
// The fetched feed is cached to keep refill cycles from hammering the
// remote server.
type FeedProvider struct {
	client    FeedClient
	config    *FeedProviderConfig
	cached    *podcast.Podcast
	fetchedAt time.Time

	// now is swappable for tests.
	now func() time.Time
}

// NewFeedProvider creates a new FeedProvider.
func NewFeedProvider(client FeedClient, settings map[string]any) (*FeedProvider, error) {
	var config FeedProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	zlog.Debug().Msgf("feed provider config: %+v", config)

	return &FeedProvider{
		client: client,
		config: &config,
		now:    time.Now,
	}, nil
}

// Candidates fetches (or reuses) the feed and returns the newest episodes
// not present in excludeURIs.
func (p *FeedProvider) Candidates(ctx context.Context, count int, excludeURIs map[string]bool) ([]episode.Episode, error) {
	if count <= 0 {
		return []episode.Episode{}, nil
	}

	pod, err := p.fetch(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch feed")
	}

	eps := pod.Denormalized()
	sort.SliceStable(eps, func(i, j int) bool {
		return eps[i].Published.After(eps[j].Published)
	})

	result := make([]episode.Episode, 0, count)
	for _, ep := range eps {
		if len(result) == count {
			break
		}
		if excludeURIs[ep.URI] {
			continue
		}
		result = append(result, ep)
	}

	return result, nil
}

// Name returns the provider name.
func (p *FeedProvider) Name() string {
	return "feed"
}

func (p *FeedProvider) fetch(ctx context.Context) (*podcast.Podcast, error) {
	ttl := time.Duration(p.config.RefreshIntervalMin) * time.Minute
	if p.cached != nil && p.now().Sub(p.fetchedAt) < ttl {
		return p.cached, nil
	}

	pod, err := p.client.Fetch(ctx, p.config.FeedURL)
	if err != nil {
		// Serve the stale copy rather than nothing.
		if p.cached != nil {
			zlog.Warn().Msgf("feed refresh failed, serving cached copy: url=%s error=%v",
				p.config.FeedURL, err)
			return p.cached, nil
		}
		return nil, err
	}

	p.cached = pod
	p.fetchedAt = p.now()
	return pod, nil
}
