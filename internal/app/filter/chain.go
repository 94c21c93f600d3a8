package filter

import (
	"context"

	"github.com/osa030/podbox/internal/app/player"
	"github.com/osa030/podbox/internal/domain/episode"
)

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain() *Chain {
	return &Chain{
		filters: make([]Filter, 0),
	}
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters in sequence against the candidate. Returns
// immediately on the first rejection.
func (c *Chain) Execute(ctx context.Context, candidate episode.Episode, st player.State) Result {
	for _, f := range c.filters {
		result := f.Check(ctx, candidate, st)
		if !result.Admitted {
			return result
		}
	}
	return Admit()
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
