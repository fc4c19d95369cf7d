package engine

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/swapsort/pkg/aggregate"
	"github.com/matzehuels/swapsort/pkg/cache"
	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/errors"
	"github.com/matzehuels/swapsort/pkg/kernel"
	"github.com/matzehuels/swapsort/pkg/observability"
	"github.com/matzehuels/swapsort/pkg/pairing"
	"github.com/matzehuels/swapsort/pkg/swap"
)

// State is the lifecycle state of a running engine.
type State int

const (
	Idle State = iota
	Running
	Stopping
)

// String returns the state name used in logs and hooks.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "idle"
	}
}

// Config configures an Engine.
type Config struct {
	// Kernel parameters. Radius is clamped to the canvas size.
	Radius      int
	Mode        kernel.Mode
	IncludeSelf bool

	// Kernel, if set, is used as-is and the fields above are ignored.
	Kernel *kernel.Kernel

	SeedA uint32
	SeedB uint32

	// Workers > 1 enables batch-parallel passes.
	Workers int

	// VerifyEvery > 0 checks the aggregate table against a full rebuild
	// after every VerifyEvery passes.
	VerifyEvery uint64

	// MaxPasses > 0 makes Run stop after that many passes of its own.
	MaxPasses uint64

	// Resume seeds the counters of a continued run. Its seeds are ignored
	// in favor of SeedA and SeedB.
	Resume *Stats

	Strategy aggregate.Strategy

	// Sums restores a previously built aggregate table (see aggregate.Options).
	Sums []float64

	// Cache, if set, stores bulk-built tables keyed by canvas and kernel.
	Cache cache.Cache
	Keyer cache.Keyer

	Logger *log.Logger
}

// DefaultConfig returns the configuration used by the command line defaults.
func DefaultConfig() Config {
	return Config{
		Radius:  100,
		Mode:    kernel.Uniform,
		SeedA:   pairing.DefaultSeedA,
		SeedB:   pairing.DefaultSeedB,
		Workers: 1,
	}
}

// PassStats describes one completed pass.
type PassStats struct {
	Pass      uint64 // 1-based pass number
	Attempted uint64 // pairs evaluated
	Accepted  uint64 // pairs swapped
	Duration  time.Duration
}

// Stats accumulates over the lifetime of an engine.
type Stats struct {
	Passes    uint64
	Attempted uint64
	Accepted  uint64
	SeedA     uint32 // seed A of the last completed pass, or the initial seed before any
	SeedB     uint32
	Elapsed   time.Duration
}

// Checkpointer persists the canvas at pass boundaries.
type Checkpointer interface {
	// Due reports whether a checkpoint should be taken before the next pass.
	Due(now time.Time) bool
	// Checkpoint saves c. final is true for the save that ends a run.
	Checkpoint(ctx context.Context, c *canvas.Canvas, st Stats, final bool) error
}

// Engine optimizes one canvas in place.
type Engine struct {
	cfg    Config
	logger *log.Logger

	canvas *canvas.Canvas
	kernel *kernel.Kernel
	index  *canvas.OpacityIndex
	store  *aggregate.Store
	eval   *swap.Evaluator
	gen    *pairing.Generator

	cached bool
	state  State
	stats  Stats
}

// New validates the canvas, builds the aggregate table and returns an engine
// ready to run. An odd number of opaque pixels fails here, before any pass.
func New(ctx context.Context, c *canvas.Canvas, cfg Config) (*Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	index, err := canvas.NewOpacityIndex(c)
	if err != nil {
		return nil, err
	}

	k := cfg.Kernel
	if k == nil {
		radius := kernel.ClampRadius(cfg.Radius, c.Width, c.Height)
		if radius != cfg.Radius {
			cfg.Logger.Debug("kernel radius clamped", "requested", cfg.Radius, "radius", radius)
		}
		if k, err = kernel.New(radius, cfg.Mode, cfg.IncludeSelf); err != nil {
			return nil, err
		}
	}

	hooks := observability.Engine()
	hooks.OnBuildStart(ctx, c.Width, c.Height, k.Radius)
	start := time.Now()
	store, cached, err := buildStore(ctx, c, k, cfg)
	hooks.OnBuildComplete(ctx, aggregate.PolicyFor(c, k).String(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debug("aggregate table ready",
		"policy", store.Policy(), "radius", k.Radius, "mode", k.Mode,
		"opaque", index.Len(), "cached", cached, "elapsed", time.Since(start))

	e := &Engine{
		cfg:    cfg,
		logger: cfg.Logger,
		canvas: c,
		kernel: k,
		index:  index,
		store:  store,
		eval:   swap.New(store),
		cached: cached,
		stats:  Stats{SeedA: cfg.SeedA, SeedB: cfg.SeedB},
	}
	if r := cfg.Resume; r != nil {
		e.stats.Passes = r.Passes
		e.stats.Attempted = r.Attempted
		e.stats.Accepted = r.Accepted
		e.stats.Elapsed = r.Elapsed
	}
	if index.Len() > 0 {
		e.gen = pairing.New(index.Len(), cfg.SeedA, cfg.SeedB)
	}
	return e, nil
}

// Canvas returns the canvas being optimized.
func (e *Engine) Canvas() *canvas.Canvas { return e.canvas }

// Kernel returns the kernel in use after radius clamping.
func (e *Engine) Kernel() *kernel.Kernel { return e.kernel }

// Store returns the live aggregate store.
func (e *Engine) Store() *aggregate.Store { return e.store }

// Index returns the opacity index.
func (e *Engine) Index() *canvas.OpacityIndex { return e.index }

// Cached reports whether the aggregate table was restored rather than built.
func (e *Engine) Cached() bool { return e.cached }

// Stats returns the counters accumulated so far.
func (e *Engine) Stats() Stats { return e.stats }

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Score measures the current canvas.
func (e *Engine) Score() swap.Score {
	return swap.Measure(e.canvas, e.store, e.index)
}

// interruptEvery is how many pairs a pass visits between checks of ctx.
const interruptEvery = 4096

// Pass advances the pairing seed and runs one pass over all pairs. When ctx
// is cancelled mid-pass the pairs visited so far are kept and counted, the
// pass itself is not, and ctx.Err() is returned.
func (e *Engine) Pass(ctx context.Context) (PassStats, error) {
	start := time.Now()
	ps := PassStats{Pass: e.stats.Passes + 1}

	var err error
	if e.gen != nil {
		e.gen.Advance()
		e.stats.SeedA = e.gen.SeedA
		if e.cfg.Workers > 1 {
			ps.Attempted, ps.Accepted, err = e.passParallel(ctx)
		} else {
			ps.Attempted, ps.Accepted, err = e.passSequential(ctx)
		}
	}

	ps.Duration = time.Since(start)
	e.stats.Attempted += ps.Attempted
	e.stats.Accepted += ps.Accepted
	e.stats.Elapsed += ps.Duration
	if err != nil {
		return ps, err
	}
	e.stats.Passes++

	if v := e.cfg.VerifyEvery; v > 0 && e.stats.Passes%v == 0 {
		if err := e.store.Verify(); err != nil {
			return ps, errors.Wrap(errors.ErrCodeInvariant, err, "verify after pass %d", e.stats.Passes)
		}
	}

	observability.Engine().OnPassComplete(ctx, ps.Pass, ps.Attempted, ps.Accepted, ps.Duration)
	e.logger.Debug("pass complete", "pass", ps.Pass, "accepted", ps.Accepted, "elapsed", ps.Duration)
	return ps, nil
}

func (e *Engine) passSequential(ctx context.Context) (attempted, accepted uint64, err error) {
	for i := 0; i+1 < e.index.Len(); i += 2 {
		if i%interruptEvery == 0 && ctx.Err() != nil {
			return attempted, accepted, ctx.Err()
		}
		p1, p2 := e.pair(i)
		ok, err := e.trySwap(p1, p2)
		if err != nil {
			return attempted, accepted, err
		}
		attempted++
		if ok {
			accepted++
		}
	}
	return attempted, accepted, nil
}

// pair returns the canvas positions of the pair starting at ordinal i.
func (e *Engine) pair(i int) (int, int) {
	return e.index.Position(e.gen.Index(i)), e.index.Position(e.gen.Index(i + 1))
}

// trySwap exchanges the colors at p1 and p2 when that lowers the score.
func (e *Engine) trySwap(p1, p2 int) (bool, error) {
	c1, c2 := e.canvas.ColorAt(p1), e.canvas.ColorAt(p2)
	if c1 == c2 || !e.eval.ShouldSwap(p1, p2, c1, c2) {
		return false, nil
	}
	e.canvas.SetColor(p1, c2)
	e.canvas.SetColor(p2, c1)
	if err := e.store.Update(p1, c1, c2); err != nil {
		return false, err
	}
	if err := e.store.Update(p2, c2, c1); err != nil {
		return false, err
	}
	return true, nil
}

// Run executes passes until ctx is done or MaxPasses is reached, then takes
// a final checkpoint. cp may be nil.
func (e *Engine) Run(ctx context.Context, cp Checkpointer) (Stats, error) {
	e.setState(ctx, Running)

	var runErr error
	first := e.stats.Passes
	for ctx.Err() == nil {
		if e.cfg.MaxPasses > 0 && e.stats.Passes-first >= e.cfg.MaxPasses {
			break
		}
		if cp != nil && cp.Due(time.Now()) {
			if err := cp.Checkpoint(ctx, e.canvas, e.stats, false); err != nil {
				runErr = err
				break
			}
		}
		if _, err := e.Pass(ctx); err != nil {
			// An interrupt mid-pass is a normal stop.
			if err != ctx.Err() {
				runErr = err
			}
			break
		}
	}

	e.setState(ctx, Stopping)

	// An invariant failure leaves the canvas consistent but the table is
	// untrusted; the canvas is still worth saving.
	if cp != nil {
		if err := cp.Checkpoint(context.WithoutCancel(ctx), e.canvas, e.stats, true); err != nil && runErr == nil {
			runErr = err
		}
	}

	e.setState(ctx, Idle)
	return e.stats, runErr
}

func (e *Engine) setState(ctx context.Context, s State) {
	if e.state == s {
		return
	}
	e.state = s
	e.logger.Debug("engine state", "state", s)
	observability.Engine().OnStateChange(ctx, s.String())
}
