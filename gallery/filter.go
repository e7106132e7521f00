package gallery

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Filterer narrows an image collection based on one criterion. Filters must
// be pure: they never mutate the input slice.
type Filterer interface {
	fmt.Stringer
	// Apply returns the subset of images matching the criterion.
	Apply(images []Image) []Image
}

// Chain applies filters sequentially.
type Chain struct {
	filters []Filterer
}

// NewChain creates a filter chain with the given filters.
func NewChain(filters ...Filterer) *Chain {
	return &Chain{filters: filters}
}

// ApplyAll runs every filter in order and returns the remaining images.
func (c *Chain) ApplyAll(images []Image) []Image {
	filtered := images
	for _, f := range c.filters {
		before := len(filtered)
		filtered = f.Apply(filtered)
		log.Debug("Applied gallery filter.", "filter", f.String(), "before", before, "after", len(filtered))
	}
	return filtered
}
