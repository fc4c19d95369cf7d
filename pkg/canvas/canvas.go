package canvas

import (
	"fmt"

	"github.com/matzehuels/swapsort/pkg/errors"
)

// Channels is the number of values stored per pixel: 3 color + 1 alpha.
const Channels = 4

// Format identifies the color representation of a canvas.
type Format int

const (
	// Float32 is floating point RGB.
	Float32 Format = iota
	// Uint16 is CIE Lab packed into exact unsigned integers.
	Uint16
)

// String returns the short name used in logs and flags.
func (f Format) String() string {
	switch f {
	case Float32:
		return "float32"
	case Uint16:
		return "uint16"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Integral reports whether every channel value in this format is an exact integer.
func (f Format) Integral() bool {
	return f == Uint16
}

// Canvas is a W x H pixel buffer with interleaved color and alpha channels.
// Its dimensions and alpha values never change after construction.
type Canvas struct {
	Width  int
	Height int
	Format Format
	Pix    []float64 // len = Width*Height*Channels
}

// New creates a canvas over pix, which is used directly (not copied).
func New(width, height int, format Format, pix []float64) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidShape, "canvas must be non-empty, got %dx%d", width, height)
	}
	if len(pix) != width*height*Channels {
		return nil, errors.New(errors.ErrCodeInvalidShape,
			"pixel buffer has %d values, want %d (%dx%dx%d)", len(pix), width*height*Channels, height, width, Channels)
	}
	if format != Float32 && format != Uint16 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown canvas format %d", int(format))
	}
	return &Canvas{Width: width, Height: height, Format: format, Pix: pix}, nil
}

// Len returns the number of pixels.
func (c *Canvas) Len() int {
	return c.Width * c.Height
}

// Index converts (x, y) to a linear pixel index.
func (c *Canvas) Index(x, y int) int {
	return x + y*c.Width
}

// Pos converts a linear pixel index to (x, y).
func (c *Canvas) Pos(i int) (x, y int) {
	return i % c.Width, i / c.Width
}

// ColorAt returns the color channels of pixel i.
func (c *Canvas) ColorAt(i int) Color {
	o := i * Channels
	return Color{c.Pix[o], c.Pix[o+1], c.Pix[o+2]}
}

// SetColor overwrites the color channels of pixel i. Alpha is untouched.
func (c *Canvas) SetColor(i int, col Color) {
	o := i * Channels
	c.Pix[o] = col[0]
	c.Pix[o+1] = col[1]
	c.Pix[o+2] = col[2]
}

// Alpha returns the alpha channel of pixel i.
func (c *Canvas) Alpha(i int) float64 {
	return c.Pix[i*Channels+3]
}

// Opaque reports whether pixel i takes part in swapping.
func (c *Canvas) Opaque(i int) bool {
	return c.Alpha(i) != 0
}

// OpaqueCount returns the number of opaque pixels.
func (c *Canvas) OpaqueCount() int {
	n := 0
	for i := range c.Len() {
		if c.Opaque(i) {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (c *Canvas) Clone() *Canvas {
	pix := make([]float64, len(c.Pix))
	copy(pix, c.Pix)
	return &Canvas{Width: c.Width, Height: c.Height, Format: c.Format, Pix: pix}
}

// Histogram counts each distinct color among opaque pixels.
func (c *Canvas) Histogram() map[Color]int {
	h := make(map[Color]int)
	for i := 0; i < c.Len(); i++ {
		if c.Opaque(i) {
			h[c.ColorAt(i)]++
		}
	}
	return h
}

// SameColors reports whether a and b hold the same multiset of opaque colors.
// Swapping pixels never changes it, so a sorted output must match its input.
func SameColors(a, b *Canvas) bool {
	ha, hb := a.Histogram(), b.Histogram()
	if len(ha) != len(hb) {
		return false
	}
	for col, n := range ha {
		if hb[col] != n {
			return false
		}
	}
	return true
}
