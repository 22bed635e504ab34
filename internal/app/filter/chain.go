package filter

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podcastr/internal/domain/episode"
)

// Rejection records an episode dropped by a filter.
type Rejection struct {
	EpisodeID string
	Filter    string
	Code      string
}

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

// Check runs all filters against a single episode.
// Returns immediately if any filter rejects it.
func (c *Chain) Check(ctx context.Context, e episode.Episode, accepted episode.List) (Result, string) {
	for _, f := range c.filters {
		result := f.Check(ctx, e, accepted)
		if !result.Accepted {
			return result, f.Name()
		}
	}
	return Accept(), ""
}

// Execute filters the list, preserving the order of kept episodes.
func (c *Chain) Execute(ctx context.Context, list episode.List) (episode.List, []Rejection) {
	kept := make(episode.List, 0, len(list))
	var rejected []Rejection

	for _, e := range list {
		result, name := c.Check(ctx, e, kept)
		if !result.Accepted {
			zlog.Debug().Msgf("filter: episode rejected: id=%s filter=%s code=%s", e.ID, name, result.Code)
			rejected = append(rejected, Rejection{EpisodeID: e.ID, Filter: name, Code: result.Code})
			continue
		}
		kept = append(kept, e)
	}

	return kept, rejected
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
