package aggregate

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/errors"
	"github.com/matzehuels/swapsort/pkg/kernel"
)

// randomCanvas fills a canvas with integer channel values so that both
// formats can be compared exactly. Roughly one pixel in five is transparent.
func randomCanvas(t *testing.T, rng *rand.Rand, w, h int, format canvas.Format) *canvas.Canvas {
	t.Helper()
	pix := make([]float64, w*h*canvas.Channels)
	for i := 0; i < w*h; i++ {
		o := i * canvas.Channels
		pix[o] = float64(rng.IntN(20000))
		pix[o+1] = float64(rng.IntN(20000))
		pix[o+2] = float64(rng.IntN(20000))
		if rng.IntN(5) != 0 {
			pix[o+3] = 1
		}
	}
	c, err := canvas.New(w, h, format, pix)
	require.NoError(t, err)
	return c
}

func mustKernel(t *testing.T, r int, mode kernel.Mode, self bool) *kernel.Kernel {
	t.Helper()
	k, err := kernel.New(r, mode, self)
	require.NoError(t, err)
	return k
}

func TestDirectCanonicalFixture(t *testing.T) {
	// 2x2 pixels, every pixel (1, 2); the third channel stays zero.
	pix := []float64{
		1, 2, 0, 1, 1, 2, 0, 1,
		1, 2, 0, 1, 1, 2, 0, 1,
	}
	c, err := canvas.New(2, 2, canvas.Float32, pix)
	require.NoError(t, err)

	k, err := kernel.FromWeights(1, []float64{
		0.5, 1, 0.5,
		1, 0, 1,
		0.5, 1, 0.5,
	})
	require.NoError(t, err)

	sums := Direct(c, k)
	for p := 0; p < 4; p++ {
		assert.Equal(t, []float64{2.5, 5, 0}, sums[p*3:p*3+3], "pixel %d", p)
	}
}

func TestRowSpanMatchesDirect(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sizes := []struct{ w, h int }{{1, 1}, {5, 1}, {1, 7}, {6, 4}, {13, 9}}

	for _, sz := range sizes {
		for _, r := range []int{0, 1, 2, 3, 7, 20} {
			for _, self := range []bool{false, true} {
				c := randomCanvas(t, rng, sz.w, sz.h, canvas.Uint16)
				k := mustKernel(t, r, kernel.Uniform, self)
				require.Equal(t, Direct(c, k), RowSpan(c, k),
					"%dx%d radius %d self %v", sz.w, sz.h, r, self)
			}
		}
	}
}

func TestCountsMatchGather(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	c := randomCanvas(t, rng, 11, 6, canvas.Uint16)
	for _, r := range []int{0, 1, 4, 10} {
		for _, self := range []bool{false, true} {
			k := mustKernel(t, r, kernel.Uniform, self)
			counts := Counts(c, k)
			for p := range counts {
				require.Equal(t, float64(countOne(c, k, p)), counts[p], "radius %d self %v pixel %d", r, self, p)
			}
		}
	}
}

func TestBuildPolicy(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	lab := randomCanvas(t, rng, 4, 4, canvas.Uint16)
	rgb := randomCanvas(t, rng, 4, 4, canvas.Float32)

	tests := []struct {
		name string
		c    *canvas.Canvas
		mode kernel.Mode
		want Policy
	}{
		{"integer canvas uniform kernel", lab, kernel.Uniform, Incremental},
		{"integer canvas weighted kernel", lab, kernel.Weighted, Recompute},
		{"float canvas uniform kernel", rgb, kernel.Uniform, Recompute},
		{"float canvas weighted kernel", rgb, kernel.Weighted, Recompute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Build(tt.c, mustKernel(t, 2, tt.mode, false), Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Policy())
		})
	}

	_, err := Build(lab, mustKernel(t, 2, kernel.Weighted, false), Options{Strategy: RowSpanStrategy})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

// mutate applies random color changes and checks the store against a
// from-scratch rebuild after every one of them.
func mutate(t *testing.T, rng *rand.Rand, c *canvas.Canvas, s *Store, steps int) {
	t.Helper()
	for i := 0; i < steps; i++ {
		p := rng.IntN(c.Len())
		prev := c.ColorAt(p)
		next := canvas.Color{float64(rng.IntN(20000)), float64(rng.IntN(20000)), float64(rng.IntN(20000))}
		c.SetColor(p, next)
		require.NoError(t, s.Update(p, prev, next))
		require.NoError(t, s.Verify(), "after mutation %d of pixel %d", i, p)
	}
}

func TestIncrementalMatchesRebuild(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	for _, self := range []bool{false, true} {
		c := randomCanvas(t, rng, 9, 7, canvas.Uint16)
		s, err := Build(c, mustKernel(t, 3, kernel.Uniform, self), Options{})
		require.NoError(t, err)
		require.Equal(t, Incremental, s.Policy())

		mutate(t, rng, c, s, 60)

		want := Direct(c, s.Kernel())
		for p := 0; p < c.Len(); p++ {
			got := s.Sum(p)
			assert.Equal(t, want[p*3:p*3+3], got[:], "pixel %d", p)
		}
	}
}

func TestRecomputeMatchesRebuild(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	c := randomCanvas(t, rng, 8, 8, canvas.Float32)
	s, err := Build(c, mustKernel(t, 2, kernel.Weighted, true), Options{})
	require.NoError(t, err)
	require.Equal(t, Recompute, s.Policy())

	mutate(t, rng, c, s, 40)
}

func TestUpdateDetectsInvariantViolation(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	c := randomCanvas(t, rng, 5, 5, canvas.Uint16)
	s, err := Build(c, mustKernel(t, 1, kernel.Uniform, false), Options{})
	require.NoError(t, err)

	// Claiming the pixel used to be far brighter than any neighborhood can hold.
	err = s.Update(12, canvas.Color{1e9, 0, 0}, c.ColorAt(12))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvariant))
}

func TestVerifyDetectsStaleTable(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))
	c := randomCanvas(t, rng, 5, 5, canvas.Uint16)
	s, err := Build(c, mustKernel(t, 2, kernel.Uniform, true), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Verify())

	// Change a pixel without telling the store.
	c.SetColor(6, c.ColorAt(6).Add(canvas.Color{1, 0, 0}))
	err = s.Verify()
	assert.True(t, errors.Is(err, errors.ErrCodeInvariant))
}

func TestEdgeClippingCoversWholeCanvas(t *testing.T) {
	rng := rand.New(rand.NewPCG(15, 16))
	c := randomCanvas(t, rng, 6, 4, canvas.Uint16)

	var total canvas.Color
	for p := 0; p < c.Len(); p++ {
		total = total.Add(c.ColorAt(p))
	}

	// A disk this large reaches every pixel from every corner.
	r := c.Width + c.Height
	s, err := Build(c, mustKernel(t, r, kernel.Uniform, true), Options{})
	require.NoError(t, err)
	for p := 0; p < c.Len(); p++ {
		assert.Equal(t, total, s.Sum(p), "pixel %d", p)
		assert.Equal(t, float64(c.Len()), s.Count(p))
		want := total.Scale(1 / float64(c.Len()))
		got := s.Target(p)
		assert.InDeltaSlice(t, want[:], got[:], 1e-9)
	}

	excl, err := Build(c, mustKernel(t, r, kernel.Uniform, false), Options{})
	require.NoError(t, err)
	for p := 0; p < c.Len(); p++ {
		assert.Equal(t, total.Sub(c.ColorAt(p)), excl.Sum(p), "pixel %d", p)
		assert.Equal(t, float64(c.Len()-1), excl.Count(p))
	}
}

func TestTargetWithoutNeighbors(t *testing.T) {
	c, err := canvas.New(1, 1, canvas.Uint16, []float64{5, 6, 7, 1})
	require.NoError(t, err)
	s, err := Build(c, mustKernel(t, 0, kernel.Uniform, false), Options{})
	require.NoError(t, err)
	assert.Equal(t, canvas.Color{}, s.Target(0))
}

func TestSnapshotRestore(t *testing.T) {
	rng := rand.New(rand.NewPCG(17, 18))
	c := randomCanvas(t, rng, 7, 5, canvas.Uint16)
	k := mustKernel(t, 2, kernel.Uniform, false)
	s, err := Build(c, k, Options{})
	require.NoError(t, err)

	sums, err := DecodeSnapshot(s.Snapshot())
	require.NoError(t, err)

	restored, err := Build(c, k, Options{Sums: sums})
	require.NoError(t, err)
	require.NoError(t, restored.Verify())

	_, err = Build(c, k, Options{Sums: sums[:3]})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidShape))

	_, err = DecodeSnapshot([]byte{1, 2, 3})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}
