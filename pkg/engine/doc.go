// Package engine runs the swap optimization loop over a canvas.
//
// An [Engine] owns the canvas, its opacity index, the neighbor aggregate
// store and the pairing generator. A pass first advances the permutation
// seed, then pairs every opaque pixel with exactly one partner (ordinals 2i
// and 2i+1 of the permutation) and swaps each pair whose exchange strictly
// lowers the combined distance to the neighborhood targets.
//
// [Engine.Run] repeats passes until the context is cancelled or the pass
// limit is reached, consulting a [Checkpointer] between passes and once more
// after the loop ends. Cancellation is also observed inside a pass; the
// swaps made so far are kept and the final checkpoint saves them.
//
// With Workers > 1 a pass is split into batches of pairs that cannot
// observe each other: every pixel of a batch is more than 2R away
// (Chebyshev distance) from every other pixel of the same batch, so no
// aggregate cell is read by one pair and written by another. Batches run in
// pass order, which makes the parallel result identical to the sequential
// one.
package engine
