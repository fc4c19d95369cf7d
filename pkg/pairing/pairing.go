// Package pairing produces a fresh pseudo-random permutation of the opaque
// pixels for every pass without ever materializing it.
//
// The permutation is a linear congruential step x -> (a*x + c) mod m over the
// smallest power of two m >= n. With a odd the step is a bijection on [0, m),
// so walking it from i until the value falls back inside [0, n) ("cycle
// walking") is a bijection on [0, n) as well: distinct inputs never collide
// and every output is reachable. The multiplier comes from seed A, forced odd
// as 2*A+1, and the increment from seed B; bumping seed A between passes
// yields a different permutation of the same domain.
package pairing

// Default seeds used when a run does not resume from a saved session.
const (
	DefaultSeedA uint32 = 42424242
	DefaultSeedB uint32 = 69696969
)

// Generator maps ordinals in [0, n) to a permutation of [0, n).
// The zero value is not usable; call New.
type Generator struct {
	SeedA uint32
	SeedB uint32

	n    uint64
	mask uint64 // modulus - 1
	mul  uint64
	add  uint64
}

// New returns a generator over [0, n) for the given seeds. n must be >= 1.
func New(n int, seedA, seedB uint32) *Generator {
	if n < 1 {
		panic("pairing: domain must hold at least one element")
	}
	g := &Generator{SeedA: seedA, SeedB: seedB, n: uint64(n), mask: roundUpPow2(uint64(n)) - 1}
	g.reseed()
	return g
}

func (g *Generator) reseed() {
	// A power-of-two modulus makes "mod" a mask; odd multipliers are
	// coprime to it.
	g.mul = (uint64(g.SeedA)*2 + 1) & g.mask
	g.add = uint64(g.SeedB) & g.mask
}

// Len returns the domain size n.
func (g *Generator) Len() int {
	return int(g.n)
}

// Advance moves to the next pass: seed A is incremented with uint32 wraparound.
func (g *Generator) Advance() {
	g.SeedA++
	g.reseed()
}

// Index returns the image of i under the current permutation.
// i must lie in [0, n).
func (g *Generator) Index(i int) int {
	v := uint64(i)
	if v >= g.n {
		panic("pairing: ordinal out of range")
	}
	for {
		v = (v*g.mul + g.add) & g.mask
		if v < g.n {
			return int(v)
		}
	}
}

// ShuffledIndex is the stateless form of Generator.Index.
func ShuffledIndex(i int, seedA, seedB uint32, n int) int {
	return New(n, seedA, seedB).Index(i)
}

// roundUpPow2 returns the smallest power of two >= n, and 1 for n <= 1.
func roundUpPow2(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}
