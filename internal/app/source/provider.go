// Package source provides episode provision strategies for automatic
// queue refill.
package source

import (
	"context"

	"github.com/osa030/podbox/internal/domain/episode"
	"github.com/osa030/podbox/internal/domain/podcast"
)

// Provider is the interface for episode providers. Different
// implementations supply episodes through various strategies
// (configured catalog, remote RSS feed, etc.).
type Provider interface {
	// Candidates retrieves episode candidates for queueing.
	// count: the number of candidates to retrieve
	// excludeURIs: episode URIs already queued or recently played
	Candidates(ctx context.Context, count int, excludeURIs map[string]bool) ([]episode.Episode, error)

	// Name returns the provider name (used in config).
	Name() string
}

// FeedClient defines the feed operations needed by providers.
type FeedClient interface {
	Fetch(ctx context.Context, feedURL string) (*podcast.Podcast, error)
}
