package aggregate

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/errors"
	"github.com/matzehuels/swapsort/pkg/kernel"
)

// Policy is how a Store keeps its table correct after a pixel changes.
type Policy int

const (
	// Incremental adds the weighted color delta to every affected cell.
	Incremental Policy = iota
	// Recompute marks affected cells dirty and re-gathers them on read.
	Recompute
)

// String returns a short name for logs.
func (p Policy) String() string {
	if p == Incremental {
		return "incremental"
	}
	return "recompute"
}

// Strategy selects the bulk construction algorithm.
type Strategy int

const (
	// Auto uses RowSpan when the kernel allows it, Direct otherwise.
	Auto Strategy = iota
	// DirectStrategy always uses Direct.
	DirectStrategy
	// RowSpanStrategy always uses RowSpan; the kernel must be separable.
	RowSpanStrategy
)

// Options configures Build.
type Options struct {
	Strategy Strategy
	// Sums, if non-nil, is used as the initial table instead of building one.
	// It must come from an earlier Snapshot of the same canvas and kernel.
	Sums []float64
}

// Store is the live neighbor aggregate table of one canvas.
type Store struct {
	canvas *canvas.Canvas
	kernel *kernel.Kernel
	policy Policy

	sums   []float64 // 3 per pixel
	counts []float64 // per pixel; nil unless the kernel averages
	dirty  []bool    // per pixel; nil unless policy is Recompute
}

// PolicyFor returns the policy Build would choose for c and k.
func PolicyFor(c *canvas.Canvas, k *kernel.Kernel) Policy {
	if c.Format.Integral() && k.Integral() {
		return Incremental
	}
	return Recompute
}

// Build computes the aggregate table of c under k.
func Build(c *canvas.Canvas, k *kernel.Kernel, opts Options) (*Store, error) {
	s := &Store{canvas: c, kernel: k, policy: PolicyFor(c, k)}

	switch {
	case opts.Sums != nil:
		if len(opts.Sums) != c.Len()*3 {
			return nil, errors.New(errors.ErrCodeInvalidShape,
				"aggregate table has %d values, want %d", len(opts.Sums), c.Len()*3)
		}
		s.sums = opts.Sums
	case opts.Strategy == RowSpanStrategy && !k.Separable():
		return nil, errors.New(errors.ErrCodeInvalidConfig, "row-span construction needs a uniform kernel, got %s", k.Mode)
	case opts.Strategy == RowSpanStrategy, opts.Strategy == Auto && k.Separable():
		s.sums = RowSpan(c, k)
	default:
		s.sums = Direct(c, k)
	}

	if k.Averaged() {
		s.counts = Counts(c, k)
	}
	if s.policy == Recompute {
		s.dirty = make([]bool, c.Len())
	}
	return s, nil
}

// Policy returns the update policy in use.
func (s *Store) Policy() Policy {
	return s.policy
}

// Kernel returns the kernel the table was built with.
func (s *Store) Kernel() *kernel.Kernel {
	return s.kernel
}

// Sum returns the raw aggregate of pixel p, refreshing it first if stale.
func (s *Store) Sum(p int) canvas.Color {
	if s.dirty != nil && s.dirty[p] {
		g := gather(s.canvas, s.kernel, p)
		s.sums[p*3], s.sums[p*3+1], s.sums[p*3+2] = g[0], g[1], g[2]
		s.dirty[p] = false
	}
	return canvas.Color{s.sums[p*3], s.sums[p*3+1], s.sums[p*3+2]}
}

// Count returns the number of in-bounds neighbors of p, or 0 when the kernel
// does not average.
func (s *Store) Count(p int) float64 {
	if s.counts == nil {
		return 0
	}
	return s.counts[p]
}

// Target returns the color pixel p is compared against: the neighborhood
// average for averaging kernels, the weighted sum otherwise. A pixel with no
// neighbors targets the zero color.
func (s *Store) Target(p int) canvas.Color {
	sum := s.Sum(p)
	if s.counts == nil {
		return sum
	}
	n := s.counts[p]
	if n == 0 {
		return canvas.Color{}
	}
	return sum.Scale(1 / n)
}

// Update records that pixel p changed color from prev to next. The canvas
// must already hold next. It touches only cells whose neighborhood contains p.
func (s *Store) Update(p int, prev, next canvas.Color) error {
	c := s.canvas
	px, py := c.Pos(p)

	if s.policy == Recompute {
		for _, o := range s.kernel.Offsets() {
			nx, ny := px-o.DX, py-o.DY
			if nx < 0 || ny < 0 || nx >= c.Width || ny >= c.Height {
				continue
			}
			s.dirty[c.Index(nx, ny)] = true
		}
		return nil
	}

	for _, o := range s.kernel.Offsets() {
		nx, ny := px-o.DX, py-o.DY
		if nx < 0 || ny < 0 || nx >= c.Width || ny >= c.Height {
			continue
		}
		n := c.Index(nx, ny) * 3
		for ch := 0; ch < 3; ch++ {
			sub := prev[ch] * o.Weight
			if s.sums[n+ch] < sub {
				return errors.New(errors.ErrCodeInvariant,
					"aggregate of (%d,%d) channel %d is %v, cannot remove %v contributed by (%d,%d)",
					nx, ny, ch, s.sums[n+ch], sub, px, py)
			}
			s.sums[n+ch] = s.sums[n+ch] - sub + next[ch]*o.Weight
		}
	}
	return nil
}

// Verify recomputes the whole table with Direct and compares it against the
// live one. Integral tables must match exactly; floating point tables within
// a relative 1e-9.
func (s *Store) Verify() error {
	want := Direct(s.canvas, s.kernel)
	exact := s.policy == Incremental
	for p := 0; p < s.canvas.Len(); p++ {
		got := s.Sum(p)
		for ch := 0; ch < 3; ch++ {
			w := want[p*3+ch]
			if exact && got[ch] == w {
				continue
			}
			if !exact && math.Abs(got[ch]-w) <= 1e-9*max(1, math.Abs(w)) {
				continue
			}
			x, y := s.canvas.Pos(p)
			return errors.New(errors.ErrCodeInvariant,
				"aggregate of (%d,%d) channel %d is %v, recomputed %v", x, y, ch, got[ch], w)
		}
	}
	return nil
}

// Snapshot serializes the (fully refreshed) table as little-endian float64s.
func (s *Store) Snapshot() []byte {
	for p := 0; p < s.canvas.Len(); p++ {
		s.Sum(p)
	}
	var buf bytes.Buffer
	buf.Grow(len(s.sums) * 8)
	_ = binary.Write(&buf, binary.LittleEndian, s.sums)
	return buf.Bytes()
}

// DecodeSnapshot is the inverse of Snapshot; the result is suitable for Options.Sums.
func DecodeSnapshot(data []byte) ([]float64, error) {
	if len(data)%8 != 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "aggregate snapshot length %d is not a multiple of 8", len(data))
	}
	sums := make([]float64, len(data)/8)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, sums); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode aggregate snapshot")
	}
	return sums, nil
}
