// Package workpool provides the bounded execution context handed to codec
// calls. A Pool splits a raster into horizontal bands and runs one task per
// band with at most Workers tasks in flight.
package workpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minBandRows keeps bands from degenerating into per-row goroutines on small images.
const minBandRows = 16

type Pool struct {
	workers int
}

// New returns a pool bounded to workers goroutines. Values below 1 select
// runtime.NumCPU().
func New(workers int) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Rows calls fn for disjoint [y0, y1) bands covering [0, height). fn must only
// touch the rows it is given. The first error cancels the remaining bands.
// A nil pool runs fn once over the whole range.
func (p *Pool) Rows(ctx context.Context, height int, fn func(y0, y1 int) error) error {
	if height <= 0 {
		return nil
	}
	workers := p.Workers()
	if workers == 1 || height <= minBandRows {
		return fn(0, height)
	}

	band := (height + workers - 1) / workers
	if band < minBandRows {
		band = minBandRows
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(y0, y1)
		})
	}
	return g.Wait()
}
