// Package aggregate maintains every pixel's neighborhood color aggregate.
//
// For a pixel p and kernel k the aggregate is
//
//	aggregate[p] = Σ over offsets o of k.Weight(o) * color[p+o]
//
// with offsets falling outside the canvas simply skipped (clipped borders,
// no padding, no wraparound). Uniform kernels additionally keep a per-pixel
// neighbor count so the aggregate can be turned into an average.
//
// # Bulk Construction
//
// Two strategies build the table from scratch:
//
//   - [Direct]: O(R²) per pixel gather over every kernel offset. Always
//     correct and used as the oracle.
//   - [RowSpan]: O(R) per pixel for uniform disks. Each row gets a running
//     horizontal sum; a pixel's disk sum is then accumulated vertically from
//     the clipped horizontal span of every row it covers.
//
// # Keeping It Live
//
// After a swap only cells within the kernel radius of the two pixels are
// affected. The [Store] picks one of two policies when it is built:
//
//   - [Incremental]: aggregate[n] += w * (new - old) for every affected n.
//     Chosen only when both the canvas values and the kernel weights are exact
//     integers, so repeated add/subtract never drifts. Every subtraction is
//     checked; a would-be negative channel is an invariant violation.
//   - [Recompute]: affected cells are marked dirty and recomputed with the
//     direct gather the next time they are read. Used for floating point
//     canvases and distance-weighted kernels.
//
// Both policies cost O(kernel area) per changed pixel, independent of the
// canvas size.
//
// A Store is not safe for concurrent use, except that callers may operate on
// pixels whose kernel neighborhoods do not overlap from different goroutines.
package aggregate
