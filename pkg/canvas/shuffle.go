package canvas

import "math/rand/v2"

// Shuffle randomly permutes the opaque pixels among the opaque positions.
// Transparent pixels stay where they are, so the silhouette and the color
// multiset are unchanged.
func (c *Canvas) Shuffle(rng *rand.Rand) {
	var opaque []int
	for i := 0; i < c.Len(); i++ {
		if c.Opaque(i) {
			opaque = append(opaque, i)
		}
	}
	rng.Shuffle(len(opaque), func(a, b int) {
		pa, pb := c.Pix[opaque[a]*Channels:(opaque[a]+1)*Channels], c.Pix[opaque[b]*Channels:(opaque[b]+1)*Channels]
		for k := range Channels {
			pa[k], pb[k] = pb[k], pa[k]
		}
	})
}
