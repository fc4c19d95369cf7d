package engine

import (
	"context"
	"time"

	"github.com/matzehuels/swapsort/pkg/aggregate"
	"github.com/matzehuels/swapsort/pkg/cache"
	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/kernel"
	"github.com/matzehuels/swapsort/pkg/observability"
)

const tableKeyType = "aggregate"

// TableKey returns the cache key of the aggregate table of c under k.
func TableKey(keyer cache.Keyer, c *canvas.Canvas, k *kernel.Kernel) string {
	opts := cache.AggregateKeyOpts{
		Format:      c.Format.String(),
		Width:       c.Width,
		Height:      c.Height,
		Radius:      k.Radius,
		Mode:        k.Mode.String(),
		IncludeSelf: k.IncludeSelf,
	}
	if k.Mode == kernel.Custom {
		for _, o := range k.Offsets() {
			opts.Weights = append(opts.Weights, float64(o.DX), float64(o.DY), o.Weight)
		}
	}
	return keyer.AggregateKey(cache.HashFloats(c.Pix), opts)
}

// buildStore builds the aggregate store, going through the table cache when
// one is configured. It reports whether the table came from the cache.
func buildStore(ctx context.Context, c *canvas.Canvas, k *kernel.Kernel, cfg Config) (*aggregate.Store, bool, error) {
	opts := aggregate.Options{Strategy: cfg.Strategy, Sums: cfg.Sums}
	if cfg.Cache == nil || cfg.Sums != nil {
		s, err := aggregate.Build(c, k, opts)
		return s, cfg.Sums != nil, err
	}

	keyer := cfg.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	key := TableKey(keyer, c, k)
	hooks := observability.Cache()

	if data, hit, err := cfg.Cache.Get(ctx, key); err != nil {
		cfg.Logger.Warn("aggregate cache read failed", "error", err)
	} else if hit {
		sums, err := aggregate.DecodeSnapshot(data)
		if err == nil {
			var s *aggregate.Store
			if s, err = aggregate.Build(c, k, aggregate.Options{Sums: sums}); err == nil {
				hooks.OnCacheHit(ctx, tableKeyType)
				return s, true, nil
			}
		}
		cfg.Logger.Debug("discarding unusable cached table", "error", err)
	}
	hooks.OnCacheMiss(ctx, tableKeyType)

	s, err := aggregate.Build(c, k, opts)
	if err != nil {
		return nil, false, err
	}

	start := time.Now()
	data := s.Snapshot()
	if err := cfg.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		cfg.Logger.Warn("aggregate cache write failed", "error", err)
	} else {
		hooks.OnCacheSet(ctx, tableKeyType, len(data))
		cfg.Logger.Debug("aggregate table cached", "bytes", len(data), "elapsed", time.Since(start))
	}
	return s, false, nil
}
