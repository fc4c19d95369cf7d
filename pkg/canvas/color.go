package canvas

// Color is one pixel's three color channels.
// It is a plain value type; accumulation uses the explicit methods below.
type Color [3]float64

// Add returns c + o.
func (c Color) Add(o Color) Color {
	return Color{c[0] + o[0], c[1] + o[1], c[2] + o[2]}
}

// Sub returns c - o.
func (c Color) Sub(o Color) Color {
	return Color{c[0] - o[0], c[1] - o[1], c[2] - o[2]}
}

// Scale returns c * f.
func (c Color) Scale(f float64) Color {
	return Color{c[0] * f, c[1] * f, c[2] * f}
}

// DistanceSquared returns the squared Euclidean distance between c and o.
func (c Color) DistanceSquared(o Color) float64 {
	d0 := c[0] - o[0]
	d1 := c[1] - o[1]
	d2 := c[2] - o[2]
	return d0*d0 + d1*d1 + d2*d2
}
