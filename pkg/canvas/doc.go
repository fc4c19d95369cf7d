// Package canvas holds the pixel buffer that swapsort reorders.
//
// A [Canvas] is a fixed-size rectangle of pixels, each made of three color
// channels followed by an alpha channel, stored interleaved in a flat slice.
// Only the color channels ever change during a run: alpha is fixed at load
// time and decides which pixels take part in swapping.
//
// # Formats
//
// Two interchangeable color representations are supported:
//
//   - [Float32]: floating point RGB, persisted as little-endian float32.
//   - [Uint16]: CIE Lab packed into unsigned integers as round((v+128)*82),
//     persisted as little-endian uint16. Every in-memory value is an exact
//     integer, which lets neighbor aggregates be maintained incrementally
//     without drift.
//
// Values are held as float64 in memory regardless of format.
//
// # Opacity Index
//
// [OpacityIndex] maps the ordinal of each opaque pixel (alpha != 0) to its
// linear canvas position, in canvas scan order. It is built once and requires
// an even opaque count, since every pass pairs opaque pixels up:
//
//	idx, err := canvas.NewOpacityIndex(c)
//	if errors.Is(err, errors.ErrCodeOddOpaque) {
//	    // refuse to start
//	}
//	p := idx.Position(0) // linear index of the first opaque pixel
package canvas
