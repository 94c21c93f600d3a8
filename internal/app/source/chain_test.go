package source

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/podbox/internal/domain/episode"
)

// stubProvider returns fixed episodes or a fixed error.
type stubProvider struct {
	name     string
	episodes []episode.Episode
	err      error
}

func (s *stubProvider) Candidates(ctx context.Context, count int, excludeURIs map[string]bool) ([]episode.Episode, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]episode.Episode, 0, count)
	for _, ep := range s.episodes {
		if len(out) == count {
			break
		}
		if excludeURIs[ep.URI] {
			continue
		}
		out = append(out, ep)
	}
	return out, nil
}

func (s *stubProvider) Name() string { return s.name }

func TestChain_CollectsFromAllProviders(t *testing.T) {
	chain := NewChain([]ProviderWithMetadata{
		{Provider: &stubProvider{name: "a", episodes: []episode.Episode{{URI: "ep-1"}}}, DisplayName: "Primary"},
		{Provider: &stubProvider{name: "b", episodes: []episode.Episode{{URI: "ep-2"}}}, DisplayName: "Backup"},
	})

	candidates, err := chain.Candidates(context.Background(), 2, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "ep-1", candidates[0].Episode.URI)
	assert.Equal(t, "Primary", candidates[0].DisplayName)
	assert.Equal(t, "ep-2", candidates[1].Episode.URI)
	assert.Equal(t, "Backup", candidates[1].DisplayName)
}

func TestChain_EarlierCandidatesExcludeLater(t *testing.T) {
	shared := episode.Episode{URI: "ep-1"}
	chain := NewChain([]ProviderWithMetadata{
		{Provider: &stubProvider{name: "a", episodes: []episode.Episode{shared}}, DisplayName: "Primary"},
		{Provider: &stubProvider{name: "b", episodes: []episode.Episode{shared, {URI: "ep-2"}}}, DisplayName: "Backup"},
	})

	candidates, err := chain.Candidates(context.Background(), 2, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "ep-1", candidates[0].Episode.URI)
	assert.Equal(t, "ep-2", candidates[1].Episode.URI)
}

func TestChain_FailingProviderIsSkipped(t *testing.T) {
	chain := NewChain([]ProviderWithMetadata{
		{Provider: &stubProvider{name: "a", err: errors.New("boom")}, DisplayName: "Broken"},
		{Provider: &stubProvider{name: "b", episodes: []episode.Episode{{URI: "ep-2"}}}, DisplayName: "Backup"},
	})

	candidates, err := chain.Candidates(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "ep-2", candidates[0].Episode.URI)
}

func TestChain_AllProvidersEmptyErrors(t *testing.T) {
	chain := NewChain([]ProviderWithMetadata{
		{Provider: &stubProvider{name: "a", err: errors.New("boom")}, DisplayName: "Broken"},
		{Provider: &stubProvider{name: "b"}, DisplayName: "Empty"},
	})

	_, err := chain.Candidates(context.Background(), 1, nil)
	assert.Error(t, err)
}
