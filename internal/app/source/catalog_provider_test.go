package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/podbox/internal/domain/episode"
	"github.com/osa030/podbox/internal/domain/podcast"
)

func testCatalog() []podcast.Podcast {
	return []podcast.Podcast{
		{
			URI:      "feed-1",
			Title:    "First Cast",
			ImageURL: "https://example.com/1.png",
			Episodes: []episode.Episode{
				{URI: "ep-1a", Title: "1a", Duration: 20 * time.Minute},
				{URI: "ep-1b", Title: "1b", Duration: 25 * time.Minute},
			},
		},
		{
			URI:   "feed-2",
			Title: "Second Cast",
			Episodes: []episode.Episode{
				{URI: "ep-2a", Title: "2a", Duration: 40 * time.Minute},
			},
		},
	}
}

func uris(eps []episode.Episode) []string {
	out := make([]string, len(eps))
	for i, e := range eps {
		out[i] = e.URI
	}
	return out
}

func TestCatalogProvider_WalksInOrder(t *testing.T) {
	p, err := NewCatalogProvider(testCatalog(), map[string]any{})
	require.NoError(t, err)

	eps, err := p.Candidates(context.Background(), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ep-1a", "ep-1b"}, uris(eps))

	// The cursor persists between calls.
	eps, err = p.Candidates(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ep-2a"}, uris(eps))
}

func TestCatalogProvider_DenormalizesShowFields(t *testing.T) {
	p, err := NewCatalogProvider(testCatalog(), map[string]any{})
	require.NoError(t, err)

	eps, err := p.Candidates(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.Equal(t, "First Cast", eps[0].PodcastName)
	assert.Equal(t, "https://example.com/1.png", eps[0].PodcastImageURL)
}

func TestCatalogProvider_SkipsExcludedURIs(t *testing.T) {
	p, err := NewCatalogProvider(testCatalog(), map[string]any{})
	require.NoError(t, err)

	eps, err := p.Candidates(context.Background(), 3, map[string]bool{"ep-1b": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"ep-1a", "ep-2a"}, uris(eps))
}

func TestCatalogProvider_LoopWrapsAround(t *testing.T) {
	p, err := NewCatalogProvider(testCatalog(), map[string]any{"loop": true})
	require.NoError(t, err)

	eps, err := p.Candidates(context.Background(), 5, nil)
	require.NoError(t, err)
	// Three catalog episodes, then the scan stops after one full pass.
	assert.Equal(t, []string{"ep-1a", "ep-1b", "ep-2a"}, uris(eps))

	// The next call starts over from the top.
	eps, err = p.Candidates(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ep-1a"}, uris(eps))
}

func TestCatalogProvider_NoLoopRunsDry(t *testing.T) {
	p, err := NewCatalogProvider(testCatalog(), map[string]any{"loop": false})
	require.NoError(t, err)

	eps, err := p.Candidates(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Len(t, eps, 3)

	eps, err = p.Candidates(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, eps)
}

func TestCatalogProvider_RestrictToPodcast(t *testing.T) {
	p, err := NewCatalogProvider(testCatalog(), map[string]any{"podcast_uri": "feed-2"})
	require.NoError(t, err)

	eps, err := p.Candidates(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ep-2a"}, uris(eps))
}

func TestCatalogProvider_EmptyCatalogFails(t *testing.T) {
	_, err := NewCatalogProvider(nil, map[string]any{})
	assert.Error(t, err)

	_, err = NewCatalogProvider(testCatalog(), map[string]any{"podcast_uri": "feed-404"})
	assert.Error(t, err)
}

func TestCatalogProvider_ZeroCount(t *testing.T) {
	p, err := NewCatalogProvider(testCatalog(), map[string]any{})
	require.NoError(t, err)

	eps, err := p.Candidates(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.Empty(t, eps)
}
