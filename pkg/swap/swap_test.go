package swap

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/swapsort/pkg/aggregate"
	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/kernel"
)

// stripe builds a 4x1 canvas: two dark pixels, then two bright ones, with
// the middle pair crossed over.
func stripe(t *testing.T) *canvas.Canvas {
	t.Helper()
	c, err := canvas.New(4, 1, canvas.Uint16, []float64{
		0, 0, 0, 1,
		100, 100, 100, 1,
		0, 0, 0, 1,
		100, 100, 100, 1,
	})
	require.NoError(t, err)
	return c
}

func store(t *testing.T, c *canvas.Canvas, r int, mode kernel.Mode) *aggregate.Store {
	t.Helper()
	return storeSelf(t, c, r, mode, false)
}

func storeSelf(t *testing.T, c *canvas.Canvas, r int, mode kernel.Mode, self bool) *aggregate.Store {
	t.Helper()
	k, err := kernel.New(r, mode, self)
	require.NoError(t, err)
	s, err := aggregate.Build(c, k, aggregate.Options{})
	require.NoError(t, err)
	return s
}

func TestShouldSwapImproves(t *testing.T) {
	c := stripe(t)
	e := New(store(t, c, 1, kernel.Uniform))

	// Pixel 1 (bright) sits between a dark pair's neighbors; pixel 2 (dark)
	// next to a bright one. Exchanging them sorts the stripe.
	assert.True(t, e.ShouldSwap(1, 2, c.ColorAt(1), c.ColorAt(2)))
	assert.Less(t, e.Delta(1, 2, c.ColorAt(1), c.ColorAt(2)), 0.0)
}

// Counting a pixel in its own neighborhood pulls its target toward its own
// color, which weakens the case for moving it.
func TestIncludeSelfChangesDelta(t *testing.T) {
	tests := []struct {
		name    string
		p1, p2  int
		exclude float64
		include float64
	}{
		// Targets without self: 100, 0, 100, 0. With self: 50, 100/3, 200/3, 50.
		{"middle pair", 1, 2, -60000, -20000},
		{"edge neighbors", 0, 1, -60000, -10000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := stripe(t)
			c1, c2 := c.ColorAt(tt.p1), c.ColorAt(tt.p2)

			without := New(storeSelf(t, c, 1, kernel.Uniform, false))
			with := New(storeSelf(t, c, 1, kernel.Uniform, true))

			assert.InDelta(t, tt.exclude, without.Delta(tt.p1, tt.p2, c1, c2), 1e-6)
			assert.InDelta(t, tt.include, with.Delta(tt.p1, tt.p2, c1, c2), 1e-6)
		})
	}
}

func TestEqualColorsNeverSwap(t *testing.T) {
	c := stripe(t)
	e := New(store(t, c, 1, kernel.Uniform))

	assert.Equal(t, 0.0, e.Delta(0, 2, c.ColorAt(0), c.ColorAt(2)))
	assert.False(t, e.ShouldSwap(0, 2, c.ColorAt(0), c.ColorAt(2)))
}

func TestDeltaIsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	pix := make([]float64, 6*6*canvas.Channels)
	for i := range pix {
		pix[i] = float64(rng.IntN(1000))
	}
	c, err := canvas.New(6, 6, canvas.Uint16, pix)
	require.NoError(t, err)
	e := New(store(t, c, 2, kernel.Uniform))

	for i := 0; i < 50; i++ {
		p1, p2 := rng.IntN(36), rng.IntN(36)
		d12 := e.Delta(p1, p2, c.ColorAt(p1), c.ColorAt(p2))
		d21 := e.Delta(p2, p1, c.ColorAt(p2), c.ColorAt(p1))
		assert.InDelta(t, d12, d21, 1e-6)
	}
}

// Accepting a swap strictly lowers the two pixels' summed distance to the
// targets they were judged against.
func TestAcceptedSwapLowersPairScore(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 2))
	pix := make([]float64, 8*8*canvas.Channels)
	for i := range pix {
		pix[i] = float64(rng.IntN(5000))
	}
	c, err := canvas.New(8, 8, canvas.Float32, pix)
	require.NoError(t, err)
	s := store(t, c, 2, kernel.Weighted)
	e := New(s)

	accepted := 0
	for i := 0; i < 200; i++ {
		p1, p2 := rng.IntN(64), rng.IntN(64)
		c1, c2 := c.ColorAt(p1), c.ColorAt(p2)
		t1, t2 := s.Target(p1), s.Target(p2)
		before := c1.DistanceSquared(t1) + c2.DistanceSquared(t2)
		after := c2.DistanceSquared(t1) + c1.DistanceSquared(t2)

		if e.ShouldSwap(p1, p2, c1, c2) {
			accepted++
			assert.Less(t, after, before)
		} else {
			assert.GreaterOrEqual(t, after, before)
		}
	}
	assert.Positive(t, accepted)
}

func TestMeasure(t *testing.T) {
	c := stripe(t)
	s := store(t, c, 1, kernel.Uniform)
	idx, err := canvas.NewOpacityIndex(c)
	require.NoError(t, err)

	// Targets: p0 -> 100, p1 -> 0, p2 -> 100, p3 -> 0 (per channel).
	score := Measure(c, s, idx)
	assert.Equal(t, 4, score.Pixels)
	assert.Equal(t, 4*3*100.0*100.0, score.Total)
	assert.Equal(t, 3*100.0*100.0, score.Mean)
	assert.Equal(t, 0.0, score.StdDev)

	// Swapping the crossed middle pair lowers the total.
	c1, c2 := c.ColorAt(1), c.ColorAt(2)
	c.SetColor(1, c2)
	c.SetColor(2, c1)
	require.NoError(t, s.Update(1, c1, c2))
	require.NoError(t, s.Update(2, c2, c1))
	assert.Less(t, Measure(c, s, idx).Total, score.Total)
}
