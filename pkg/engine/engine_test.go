package engine

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/swapsort/pkg/cache"
	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/errors"
	"github.com/matzehuels/swapsort/pkg/kernel"
)

// randomCanvas returns a canvas with integer channels and an even number of
// opaque pixels.
func randomCanvas(t *testing.T, seed uint64, w, h int, format canvas.Format) *canvas.Canvas {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pix := make([]float64, w*h*canvas.Channels)
	opaque := 0
	for i := 0; i < w*h; i++ {
		o := i * canvas.Channels
		pix[o] = float64(rng.IntN(20000))
		pix[o+1] = float64(rng.IntN(20000))
		pix[o+2] = float64(rng.IntN(20000))
		if rng.IntN(6) != 0 {
			pix[o+3] = 1
			opaque++
		}
	}
	if opaque%2 != 0 {
		last := (w*h-1)*canvas.Channels + 3
		pix[last] = 1 - pix[last]
	}
	c, err := canvas.New(w, h, format, pix)
	require.NoError(t, err)
	return c
}

func testConfig(radius, workers int) Config {
	cfg := DefaultConfig()
	cfg.Radius = radius
	cfg.Workers = workers
	return cfg
}

func TestNewRejectsOddOpaqueCount(t *testing.T) {
	pix := []float64{
		1, 1, 1, 1, 2, 2, 2, 1,
		3, 3, 3, 1, 4, 4, 4, 0,
	}
	c, err := canvas.New(2, 2, canvas.Uint16, pix)
	require.NoError(t, err)

	_, err = New(context.Background(), c, testConfig(1, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeOddOpaque))
}

func TestPassPreservesColorsAndAggregates(t *testing.T) {
	for _, format := range []canvas.Format{canvas.Uint16, canvas.Float32} {
		for _, mode := range []kernel.Mode{kernel.Uniform, kernel.Weighted} {
			t.Run(format.String()+"/"+mode.String(), func(t *testing.T) {
				c := randomCanvas(t, 7, 16, 12, format)
				before := c.Clone()

				cfg := testConfig(3, 1)
				cfg.Mode = mode
				e, err := New(context.Background(), c, cfg)
				require.NoError(t, err)

				var accepted uint64
				for i := 0; i < 4; i++ {
					ps, err := e.Pass(context.Background())
					require.NoError(t, err)
					assert.Equal(t, uint64(i+1), ps.Pass)
					assert.Equal(t, uint64(e.Index().PairCount()), ps.Attempted)
					accepted += ps.Accepted
				}

				assert.Positive(t, accepted)
				assert.True(t, canvas.SameColors(before, c), "swaps must not change the color multiset")
				require.NoError(t, e.Store().Verify())

				for i := 0; i < c.Len(); i++ {
					assert.Equal(t, before.Alpha(i), c.Alpha(i), "alpha of pixel %d moved", i)
				}
			})
		}
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	for _, format := range []canvas.Format{canvas.Uint16, canvas.Float32} {
		t.Run(format.String(), func(t *testing.T) {
			seq := randomCanvas(t, 11, 40, 30, format)
			par := seq.Clone()

			es, err := New(context.Background(), seq, testConfig(2, 1))
			require.NoError(t, err)
			ep, err := New(context.Background(), par, testConfig(2, 4))
			require.NoError(t, err)

			for i := 0; i < 5; i++ {
				a, err := es.Pass(context.Background())
				require.NoError(t, err)
				b, err := ep.Pass(context.Background())
				require.NoError(t, err)
				assert.Equal(t, a.Accepted, b.Accepted, "pass %d", i+1)
			}
			assert.Equal(t, seq.Pix, par.Pix)
			require.NoError(t, ep.Store().Verify())
		})
	}
}

func TestUniformCanvasNeverSwaps(t *testing.T) {
	pix := make([]float64, 6*4*canvas.Channels)
	for i := 0; i < 6*4; i++ {
		copy(pix[i*4:], []float64{500, 600, 700, 1})
	}
	c, err := canvas.New(6, 4, canvas.Uint16, pix)
	require.NoError(t, err)

	e, err := New(context.Background(), c, testConfig(2, 1))
	require.NoError(t, err)
	ps, err := e.Pass(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ps.Accepted)
}

func TestPassWithoutOpaquePixels(t *testing.T) {
	c, err := canvas.New(3, 3, canvas.Float32, make([]float64, 9*canvas.Channels))
	require.NoError(t, err)

	e, err := New(context.Background(), c, testConfig(1, 1))
	require.NoError(t, err)
	ps, err := e.Pass(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ps.Attempted)
	assert.Equal(t, uint64(1), e.Stats().Passes)
}

func TestSeedAdvancesEveryPass(t *testing.T) {
	c := randomCanvas(t, 3, 8, 8, canvas.Uint16)
	cfg := testConfig(2, 1)
	cfg.SeedA = ^uint32(0) - 1
	e, err := New(context.Background(), c, cfg)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := e.Pass(context.Background())
		require.NoError(t, err)
	}
	// wraps around
	assert.Equal(t, uint32(1), e.Stats().SeedA)
}

func TestPassInterrupted(t *testing.T) {
	c := randomCanvas(t, 21, 8, 8, canvas.Float32)
	before := c.Clone()
	cfg := testConfig(1, 1)
	e, err := New(context.Background(), c, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ps, err := e.Pass(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, ps.Attempted)
	assert.Zero(t, e.Stats().Passes, "an interrupted pass is not counted")
	assert.Equal(t, cfg.SeedA+1, e.Stats().SeedA, "the seed advances before the pass")
	assert.Equal(t, before.Pix, c.Pix)
}

func TestRadiusIsClamped(t *testing.T) {
	c := randomCanvas(t, 5, 4, 3, canvas.Uint16)
	e, err := New(context.Background(), c, testConfig(100, 1))
	require.NoError(t, err)
	assert.Equal(t, 3, e.Kernel().Radius)
}

func TestVerifyEvery(t *testing.T) {
	c := randomCanvas(t, 9, 10, 10, canvas.Uint16)
	cfg := testConfig(2, 1)
	cfg.VerifyEvery = 1
	e, err := New(context.Background(), c, cfg)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := e.Pass(context.Background())
		require.NoError(t, err)
	}
}

type recordingCheckpointer struct {
	due   bool
	calls []bool // final flag per call
	seen  []uint64
}

func (r *recordingCheckpointer) Due(time.Time) bool { return r.due }

func (r *recordingCheckpointer) Checkpoint(ctx context.Context, _ *canvas.Canvas, st Stats, final bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.calls = append(r.calls, final)
	r.seen = append(r.seen, st.Passes)
	return nil
}

func TestRunStopsAtMaxPasses(t *testing.T) {
	c := randomCanvas(t, 13, 12, 12, canvas.Uint16)
	cfg := testConfig(2, 1)
	cfg.MaxPasses = 3

	e, err := New(context.Background(), c, cfg)
	require.NoError(t, err)

	cp := &recordingCheckpointer{due: true}
	st, err := e.Run(context.Background(), cp)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), st.Passes)
	assert.Equal(t, []bool{false, false, false, true}, cp.calls)
	assert.Equal(t, []uint64{0, 1, 2, 3}, cp.seen)
	assert.Equal(t, Idle, e.State())
}

func TestRunCancelledStillCheckpoints(t *testing.T) {
	c := randomCanvas(t, 17, 12, 12, canvas.Uint16)
	e, err := New(context.Background(), c, testConfig(2, 1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cp := &recordingCheckpointer{}
	st, err := e.Run(ctx, cp)
	require.NoError(t, err)
	assert.Zero(t, st.Passes)
	assert.Equal(t, []bool{true}, cp.calls, "final checkpoint must run on a detached context")
}

func TestRunWithoutCheckpointer(t *testing.T) {
	c := randomCanvas(t, 19, 6, 6, canvas.Float32)
	cfg := testConfig(1, 2)
	cfg.MaxPasses = 2
	e, err := New(context.Background(), c, cfg)
	require.NoError(t, err)

	st, err := e.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), st.Passes)
}

func TestTableCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	orig := randomCanvas(t, 23, 20, 16, canvas.Uint16)
	cfg := testConfig(4, 1)
	cfg.Cache = fc

	first, err := New(context.Background(), orig.Clone(), cfg)
	require.NoError(t, err)
	assert.False(t, first.Cached())

	second, err := New(context.Background(), orig.Clone(), cfg)
	require.NoError(t, err)
	assert.True(t, second.Cached())
	require.NoError(t, second.Store().Verify())

	// a different radius is a different table
	cfg.Radius = 3
	third, err := New(context.Background(), orig.Clone(), cfg)
	require.NoError(t, err)
	assert.False(t, third.Cached())

	// a cached table keeps working through passes
	_, err = second.Pass(context.Background())
	require.NoError(t, err)
	require.NoError(t, second.Store().Verify())
}

func TestResumeContinuesCounters(t *testing.T) {
	c := randomCanvas(t, 29, 10, 10, canvas.Uint16)
	cfg := testConfig(2, 1)
	cfg.MaxPasses = 2
	cfg.Resume = &Stats{Passes: 10, Attempted: 500, Accepted: 40}

	e, err := New(context.Background(), c, cfg)
	require.NoError(t, err)
	st, err := e.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(12), st.Passes, "MaxPasses counts only this run")
	assert.Equal(t, uint64(500)+2*uint64(e.Index().PairCount()), st.Attempted)
	assert.GreaterOrEqual(t, st.Accepted, uint64(40))
}
