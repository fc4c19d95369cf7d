// Package kernel defines the spatial neighborhood each pixel is compared against.
//
// A kernel is a disk of integer offsets (dx, dy) with dx²+dy² <= R², each
// carrying a weight. Two generated modes exist:
//
//   - [Uniform]: every offset weighs 1; the neighborhood color is the plain
//     average sum/count.
//   - [Weighted]: an offset weighs 1/(dx²+dy²+1); the weighted sum is used
//     directly, nearer neighbors pulling harder.
//
// Whether the center offset (0, 0) belongs to the neighborhood is an explicit
// choice (includeSelf). Excluding it keeps a pixel's own color from biasing
// its score.
//
// [FromWeights] builds an arbitrary square table instead; it is used for
// fixtures whose weights do not follow either formula.
package kernel

import (
	"fmt"
	"math"

	"github.com/matzehuels/swapsort/pkg/errors"
)

// Mode selects how offsets are weighted.
type Mode int

const (
	// Uniform weighs every disk offset 1 and averages.
	Uniform Mode = iota
	// Weighted weighs offsets by 1/(distance²+1) and sums.
	Weighted
	// Custom uses a caller-supplied weight table and sums.
	Custom
)

// String returns the flag spelling of m.
func (m Mode) String() string {
	switch m {
	case Uniform:
		return "uniform"
	case Weighted:
		return "weighted"
	case Custom:
		return "custom"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a flag value into a Mode. Custom cannot be parsed.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "uniform":
		return Uniform, nil
	case "weighted":
		return Weighted, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "invalid kernel mode: %s (must be 'uniform' or 'weighted')", s)
}

// Offset is one neighbor position relative to the center, with its weight.
type Offset struct {
	DX, DY int
	Weight float64
}

// Kernel is an immutable weighted neighborhood.
type Kernel struct {
	Radius      int
	Mode        Mode
	IncludeSelf bool

	weights []float64 // (2R+1)², row-major, zero outside the neighborhood
	offsets []Offset  // nonzero weights, dy-major then dx
	spans   []int     // disk half-width per row dy+R
}

// New builds a disk kernel of the given radius.
func New(radius int, mode Mode, includeSelf bool) (*Kernel, error) {
	if radius < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "kernel radius must be >= 0, got %d", radius)
	}
	if mode != Uniform && mode != Weighted {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "kernel mode %s cannot be generated", mode)
	}

	d := 2*radius + 1
	weights := make([]float64, d*d)
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			dist2 := dx*dx + dy*dy
			if dist2 > r2 {
				continue
			}
			if dist2 == 0 && !includeSelf {
				continue
			}
			w := 1.0
			if mode == Weighted {
				w = 1 / float64(dist2+1)
			}
			weights[(dx+radius)+(dy+radius)*d] = w
		}
	}

	k := &Kernel{Radius: radius, Mode: mode, IncludeSelf: includeSelf, weights: weights}
	k.index()
	return k, nil
}

// FromWeights builds a Custom kernel from a (2R+1)² row-major weight table.
// Weights are taken as given; offsets outside the disk are allowed.
func FromWeights(radius int, weights []float64) (*Kernel, error) {
	if radius < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "kernel radius must be >= 0, got %d", radius)
	}
	d := 2*radius + 1
	if len(weights) != d*d {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "weight table has %d entries, want %d", len(weights), d*d)
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	k := &Kernel{Radius: radius, Mode: Custom, IncludeSelf: w[radius+radius*d] != 0, weights: w}
	k.index()
	return k, nil
}

func (k *Kernel) index() {
	d := k.Diameter()
	for dy := -k.Radius; dy <= k.Radius; dy++ {
		for dx := -k.Radius; dx <= k.Radius; dx++ {
			if w := k.weights[(dx+k.Radius)+(dy+k.Radius)*d]; w != 0 {
				k.offsets = append(k.offsets, Offset{DX: dx, DY: dy, Weight: w})
			}
		}
	}
	k.spans = make([]int, d)
	r2 := k.Radius * k.Radius
	for dy := -k.Radius; dy <= k.Radius; dy++ {
		rem := r2 - dy*dy
		w := int(math.Sqrt(float64(rem)))
		for w*w > rem {
			w--
		}
		for (w+1)*(w+1) <= rem {
			w++
		}
		k.spans[dy+k.Radius] = w
	}
}

// Diameter returns 2R+1.
func (k *Kernel) Diameter() int {
	return 2*k.Radius + 1
}

// Weight returns the weight of offset (dx, dy), or 0 outside the table.
func (k *Kernel) Weight(dx, dy int) float64 {
	if dx < -k.Radius || dx > k.Radius || dy < -k.Radius || dy > k.Radius {
		return 0
	}
	return k.weights[(dx+k.Radius)+(dy+k.Radius)*k.Diameter()]
}

// Offsets returns every offset with a nonzero weight. The slice is shared.
func (k *Kernel) Offsets() []Offset {
	return k.offsets
}

// Span returns the half-width of the disk on row dy: the largest w with w²+dy² <= R².
func (k *Kernel) Span(dy int) int {
	return k.spans[dy+k.Radius]
}

// Integral reports whether every weight is an exact integer.
// Only integral kernels over integral canvases can be updated incrementally.
func (k *Kernel) Integral() bool {
	for _, o := range k.offsets {
		if o.Weight != math.Trunc(o.Weight) {
			return false
		}
	}
	return true
}

// Separable reports whether the row-span bulk strategy applies:
// a generated uniform disk.
func (k *Kernel) Separable() bool {
	return k.Mode == Uniform
}

// Averaged reports whether the neighborhood target is sum/count (Uniform)
// rather than the weighted sum itself.
func (k *Kernel) Averaged() bool {
	return k.Mode == Uniform
}

// ClampRadius limits r to max(width, height)-1, the largest radius that can
// still reach a new pixel, and never returns less than 0.
func ClampRadius(r, width, height int) int {
	limit := max(width, height) - 1
	return max(0, min(r, limit))
}
