// Package swap decides whether exchanging two pixels improves the canvas.
//
// Each pixel is scored by the squared color distance between its color and
// its neighborhood target (see aggregate.Store.Target). A swap of p1 and p2 is
// accepted only when the combined score of both positions strictly drops:
//
//	delta = (|c2 - t1|² - |c1 - t1|²) + (|c1 - t2|² - |c2 - t2|²) < 0
//
// A zero delta is rejected, so equal colors are never swapped back and forth.
package swap

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/swapsort/pkg/aggregate"
	"github.com/matzehuels/swapsort/pkg/canvas"
)

// Evaluator scores candidate swaps against a live aggregate store.
type Evaluator struct {
	Store *aggregate.Store
}

// New returns an evaluator reading targets from s.
func New(s *aggregate.Store) *Evaluator {
	return &Evaluator{Store: s}
}

// Delta returns the change of the combined score if the colors c1 at p1 and
// c2 at p2 were exchanged. Negative means better.
func (e *Evaluator) Delta(p1, p2 int, c1, c2 canvas.Color) float64 {
	t1 := e.Store.Target(p1)
	t2 := e.Store.Target(p2)

	d1 := c2.DistanceSquared(t1) - c1.DistanceSquared(t1)
	d2 := c1.DistanceSquared(t2) - c2.DistanceSquared(t2)
	return d1 + d2
}

// ShouldSwap reports whether exchanging the pixels strictly lowers the score.
func (e *Evaluator) ShouldSwap(p1, p2 int, c1, c2 canvas.Color) bool {
	return e.Delta(p1, p2, c1, c2) < 0
}

// Score summarizes how far opaque pixels are from their neighborhood targets.
type Score struct {
	Total  float64 // sum of squared distances
	Mean   float64
	StdDev float64
	Pixels int
}

// Measure scores every opaque pixel of c. It reads targets through s, which
// refreshes stale cells as a side effect.
func Measure(c *canvas.Canvas, s *aggregate.Store, idx *canvas.OpacityIndex) Score {
	n := idx.Len()
	if n == 0 {
		return Score{}
	}
	dist := make([]float64, n)
	for i := 0; i < n; i++ {
		p := idx.Position(i)
		dist[i] = c.ColorAt(p).DistanceSquared(s.Target(p))
	}
	mean, std := stat.MeanStdDev(dist, nil)
	return Score{
		Total:  floats.Sum(dist),
		Mean:   mean,
		StdDev: std,
		Pixels: n,
	}
}
