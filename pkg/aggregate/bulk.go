package aggregate

import (
	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/kernel"
)

// Direct computes the aggregate table by gathering every kernel offset of
// every pixel. The result holds 3 values per pixel.
func Direct(c *canvas.Canvas, k *kernel.Kernel) []float64 {
	sums := make([]float64, c.Len()*3)
	for p := 0; p < c.Len(); p++ {
		s := gather(c, k, p)
		sums[p*3], sums[p*3+1], sums[p*3+2] = s[0], s[1], s[2]
	}
	return sums
}

// gather is the single-cell form of Direct.
func gather(c *canvas.Canvas, k *kernel.Kernel, p int) canvas.Color {
	x, y := c.Pos(p)
	var s canvas.Color
	for _, o := range k.Offsets() {
		nx, ny := x+o.DX, y+o.DY
		if nx < 0 || ny < 0 || nx >= c.Width || ny >= c.Height {
			continue
		}
		s = s.Add(c.ColorAt(c.Index(nx, ny)).Scale(o.Weight))
	}
	return s
}

// RowSpan computes the same table as Direct for uniform disk kernels in
// O(R) per pixel. It panics when k is not separable.
func RowSpan(c *canvas.Canvas, k *kernel.Kernel) []float64 {
	if !k.Separable() {
		panic("aggregate: RowSpan needs a uniform disk kernel")
	}
	w, h := c.Width, c.Height

	// Horizontal pass: running sums per row, one leading zero per row.
	stride := w + 1
	prefix := make([]float64, h*stride*3)
	for y := 0; y < h; y++ {
		var run canvas.Color
		for x := 0; x < w; x++ {
			run = run.Add(c.ColorAt(c.Index(x, y)))
			o := (y*stride + x + 1) * 3
			prefix[o], prefix[o+1], prefix[o+2] = run[0], run[1], run[2]
		}
	}

	// Vertical pass: add the clipped span of each covered row.
	r := k.Radius
	sums := make([]float64, c.Len()*3)
	for y := 0; y < h; y++ {
		dyMin := -min(y, r)
		dyMax := min(h-1-y, r)
		for x := 0; x < w; x++ {
			var s canvas.Color
			for dy := dyMin; dy <= dyMax; dy++ {
				span := k.Span(dy)
				lo := max(0, x-span)
				hi := min(w-1, x+span)
				row := (y + dy) * stride
				a := (row + hi + 1) * 3
				b := (row + lo) * 3
				s[0] += prefix[a] - prefix[b]
				s[1] += prefix[a+1] - prefix[b+1]
				s[2] += prefix[a+2] - prefix[b+2]
			}
			p := c.Index(x, y)
			if !k.IncludeSelf {
				s = s.Sub(c.ColorAt(p))
			}
			sums[p*3], sums[p*3+1], sums[p*3+2] = s[0], s[1], s[2]
		}
	}
	return sums
}

// Counts returns the number of in-bounds neighbors of every pixel.
func Counts(c *canvas.Canvas, k *kernel.Kernel) []float64 {
	counts := make([]float64, c.Len())
	if k.Separable() {
		r := k.Radius
		for y := 0; y < c.Height; y++ {
			dyMin := -min(y, r)
			dyMax := min(c.Height-1-y, r)
			for x := 0; x < c.Width; x++ {
				n := 0
				for dy := dyMin; dy <= dyMax; dy++ {
					span := k.Span(dy)
					n += min(c.Width-1, x+span) - max(0, x-span) + 1
				}
				if !k.IncludeSelf {
					n--
				}
				counts[c.Index(x, y)] = float64(n)
			}
		}
		return counts
	}
	for p := range counts {
		counts[p] = float64(countOne(c, k, p))
	}
	return counts
}

func countOne(c *canvas.Canvas, k *kernel.Kernel, p int) int {
	x, y := c.Pos(p)
	n := 0
	for _, o := range k.Offsets() {
		nx, ny := x+o.DX, y+o.DY
		if nx >= 0 && ny >= 0 && nx < c.Width && ny < c.Height {
			n++
		}
	}
	return n
}
