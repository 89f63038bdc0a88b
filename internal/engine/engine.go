// Package engine computes slot layouts for storage cases.
//
// A single item size is laid out as a uniform grid (auto-fit, exact count or
// fixed case size). Several item sizes are packed into shelves. All
// computations are pure: the same inputs always yield the same Layout.
package engine

import (
	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/model"
)

// Engine runs layout computations for one configuration.
type Engine struct {
	Config model.Config
}

func New(cfg model.Config) *Engine {
	return &Engine{Config: cfg}
}

// Job describes what to lay out.
type Job struct {
	Items []model.Item
	// Fill lays a single item out as many times as the footprint allows,
	// ignoring its count.
	Fill bool
	// Mixed packs the items as heterogeneous units even when there is
	// only one item.
	Mixed bool
}

// Grid lays out one item size. count == 0 fits as many slots as the
// footprint allows; a positive count asks for exactly that many.
func (e *Engine) Grid(d model.Dimension, count int) (model.Layout, error) {
	return e.grid(d, count, "", "")
}

// GridItem lays out one item as a grid; its slots carry the item's ID and
// label. With fill set the item count is ignored.
func (e *Engine) GridItem(it model.Item, fill bool) (model.Layout, error) {
	count := it.Count
	if fill {
		count = 0
	} else if err := it.Validate(); err != nil {
		return model.Layout{}, err
	}
	return e.grid(it.Size, count, it.ID, it.Label)
}

// Compute dispatches a job: one item goes to the grid, several to the
// shelf packer.
func (e *Engine) Compute(job Job) (model.Layout, error) {
	switch {
	case len(job.Items) == 0:
		return model.Layout{}, errors.New(errors.ErrCodeInvalidInput, "no items to lay out")
	case len(job.Items) == 1 && !job.Mixed:
		return e.GridItem(job.Items[0], job.Fill)
	case job.Fill:
		return model.Layout{}, errors.New(errors.ErrCodeInvalidInput, "fill applies to a single item only")
	default:
		return e.Mixed(job.Items)
	}
}

// caseHeight returns the total case height for a cavity height.
func (e *Engine) caseHeight(cavity float64) float64 {
	return cavity + e.Config.BaseHeight + e.Config.LipHeight()
}
