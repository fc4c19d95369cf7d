package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// maxBatchPerWorker bounds the pairs collected per worker before a batch is
// flushed, which keeps the conflict scan short.
const maxBatchPerWorker = 32

type pairPos struct{ p1, p2 int }

// batch is a set of pairs whose pixels are pairwise more than 2R apart.
type batch struct {
	pairs []pairPos
	xs    []int
	ys    []int
}

func (b *batch) reset() {
	b.pairs = b.pairs[:0]
	b.xs = b.xs[:0]
	b.ys = b.ys[:0]
}

// conflicts reports whether (x, y) lies within dist (Chebyshev) of any
// pixel already in the batch.
func (b *batch) conflicts(x, y, dist int) bool {
	for i := range b.xs {
		dx, dy := b.xs[i]-x, b.ys[i]-y
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		if dx <= dist && dy <= dist {
			return true
		}
	}
	return false
}

func (e *Engine) passParallel(ctx context.Context) (attempted, accepted uint64, err error) {
	dist := 2 * e.kernel.Radius
	limit := e.cfg.Workers * maxBatchPerWorker

	var b batch
	flush := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := e.runBatch(ctx, b.pairs)
		attempted += uint64(len(b.pairs))
		accepted += n
		b.reset()
		return err
	}

	for i := 0; i+1 < e.index.Len(); i += 2 {
		p1, p2 := e.pair(i)
		x1, y1 := e.canvas.Pos(p1)
		x2, y2 := e.canvas.Pos(p2)

		if len(b.pairs) >= limit || b.conflicts(x1, y1, dist) || b.conflicts(x2, y2, dist) {
			if err := flush(); err != nil {
				return attempted, accepted, err
			}
		}
		b.pairs = append(b.pairs, pairPos{p1, p2})
		b.xs = append(b.xs, x1, x2)
		b.ys = append(b.ys, y1, y2)
	}
	if len(b.pairs) > 0 {
		if err := flush(); err != nil {
			return attempted, accepted, err
		}
	}
	return attempted, accepted, nil
}

// runBatch evaluates independent pairs concurrently.
func (e *Engine) runBatch(ctx context.Context, pairs []pairPos) (uint64, error) {
	if len(pairs) == 1 {
		ok, err := e.trySwap(pairs[0].p1, pairs[0].p2)
		if ok {
			return 1, err
		}
		return 0, err
	}

	workers := min(e.cfg.Workers, len(pairs))
	chunk := (len(pairs) + workers - 1) / workers
	counts := make([]uint64, workers)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(pairs))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for _, pp := range pairs[lo:hi] {
				ok, err := e.trySwap(pp.p1, pp.p2)
				if err != nil {
					return err
				}
				if ok {
					counts[w]++
				}
			}
			return nil
		})
	}
	err := g.Wait()

	var n uint64
	for _, c := range counts {
		n += c
	}
	return n, err
}
