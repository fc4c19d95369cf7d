// Package pkg provides the core libraries for Swapsort pixel sorting.
//
// # Overview
//
// Swapsort rearranges the pixels of an image into smooth color gradients. It
// repeatedly picks pairs of opaque pixels and swaps them whenever that brings
// both closer to the mean color of their neighborhood. Colors are only moved,
// never created, so the output always holds exactly the colors of the input.
// The pkg directory is organized into three areas:
//
//  1. Domain logic ([canvas], [kernel], [aggregate], [pairing], [swap], [engine])
//  2. Formats ([npy], [colorspace])
//  3. Infrastructure ([checkpoint], [session], [cache], [observability], [errors])
//
// # Architecture
//
// The typical data flow through Swapsort:
//
//	image or .npy file
//	         ↓
//	    [colorspace] / [npy] (decode into a canvas)
//	         ↓
//	    [kernel] + [aggregate] (neighborhood weights + per-pixel sums)
//	         ↓
//	    [engine] (passes over [pairing] permutations, [swap] decisions)
//	         ↓
//	    [checkpoint] (periodic saves, [session] progress)
//
// # Quick Start
//
// Sort a canvas for ten passes and save it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/swapsort/pkg/engine"
//	    "github.com/matzehuels/swapsort/pkg/npy"
//	)
//
//	c, _ := npy.LoadCanvas("in.npy")
//
//	cfg := engine.DefaultConfig()
//	cfg.Radius = 20
//	cfg.MaxPasses = 10
//	e, _ := engine.New(context.Background(), c, cfg)
//	e.Run(context.Background(), nil)
//
//	npy.SaveCanvas("out.npy", e.Canvas())
//
// # Main Packages
//
// ## Domain Logic
//
// [canvas] - Four-channel pixel buffers in Float32 (RGB) or Uint16 (packed
// Lab) encoding, plus the opacity index that maps opaque ordinals to
// positions.
//
// [kernel] - Square neighborhoods with uniform, inverse-square or custom
// weights.
//
// [aggregate] - Weighted neighbor sums with either incremental updates or
// lazy recomputation, chosen by [aggregate.PolicyFor].
//
// [pairing] - Collision-free pseudo-random permutations over the opaque
// pixels, reseeded every pass.
//
// [swap] - The swap decision and an incoherence score for whole canvases.
//
// [engine] - Passes, parallel batching, the run loop and its states.
//
// ## Formats
//
// [npy] - NumPy .npy arrays (little-endian, C order) read and written with gonpy.
//
// [colorspace] - Conversion between images and canvases, Lab packing and
// image file I/O.
//
// ## Infrastructure
//
// [checkpoint] - Numbered or overwriting periodic saves.
//
// [session] - Resumable run manifests stored next to the output.
//
// [cache] - Content-addressed cache for built aggregate tables.
//
// [observability] - Hooks for build, pass, checkpoint and cache events.
//
// [errors] - Error codes shared by all packages.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/engine/...             # Specific package
//	go test -run Example                 # Examples only
//
// [canvas]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/canvas
// [kernel]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/kernel
// [aggregate]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/aggregate
// [aggregate.PolicyFor]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/aggregate#PolicyFor
// [pairing]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/pairing
// [swap]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/swap
// [engine]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/engine
// [npy]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/npy
// [colorspace]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/colorspace
// [checkpoint]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/checkpoint
// [session]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/swapsort/pkg/errors
package pkg
