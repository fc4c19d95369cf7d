// Package colorspace converts between decoded images and canvases.
//
// Two encodings are supported:
//
//   - Lab: CIE L*a*b* (D65) packed into unsigned integers as
//     round((v + 128) * 82), stored as a Uint16 canvas. 82 is the smallest
//     multiplier for which every 8-bit sRGB color survives the round trip.
//   - RGB: sRGB channels scaled to [0, 1], stored as a Float32 canvas.
//
// Alpha is carried through unchanged as its 8-bit value; only a zero alpha
// marks a pixel as transparent.
package colorspace

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"

	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/errors"
)

// Space selects the color encoding of a canvas.
type Space int

const (
	Lab Space = iota
	RGB
)

// Lab packing constants.
const (
	LabOffset = 128
	LabScale  = 82
)

// String returns the flag spelling of s.
func (s Space) String() string {
	if s == RGB {
		return "rgb"
	}
	return "lab"
}

// Format returns the canvas format used for s.
func (s Space) Format() canvas.Format {
	if s == RGB {
		return canvas.Float32
	}
	return canvas.Uint16
}

// ParseSpace parses "lab" or "rgb".
func ParseSpace(s string) (Space, error) {
	switch strings.ToLower(s) {
	case "lab":
		return Lab, nil
	case "rgb":
		return RGB, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "invalid color space: %s (must be 'lab' or 'rgb')", s)
}

// SpaceOf returns the space a canvas format is decoded with.
func SpaceOf(f canvas.Format) Space {
	if f == canvas.Float32 {
		return RGB
	}
	return Lab
}

// PackLab maps a Lab color (L in [0, 100]) to its packed integer channels.
func PackLab(l, a, b float64) canvas.Color {
	return canvas.Color{
		math.Round((l + LabOffset) * LabScale),
		math.Round((a + LabOffset) * LabScale),
		math.Round((b + LabOffset) * LabScale),
	}
}

// UnpackLab is the inverse of PackLab, up to rounding.
func UnpackLab(c canvas.Color) (l, a, b float64) {
	return c[0]/LabScale - LabOffset, c[1]/LabScale - LabOffset, c[2]/LabScale - LabOffset
}

// NRGBA converts any image to non-premultiplied RGBA with a zero origin.
func NRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
	return dst
}

// FromImage encodes img as a canvas in the given space.
func FromImage(img image.Image, space Space) (*canvas.Canvas, error) {
	src := NRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	pix := make([]float64, w*h*canvas.Channels)

	for i := 0; i < w*h; i++ {
		s := src.Pix[(i/w)*src.Stride+(i%w)*4:]
		rgb := colorful.Color{R: float64(s[0]) / 255, G: float64(s[1]) / 255, B: float64(s[2]) / 255}

		var col canvas.Color
		if space == Lab {
			// go-colorful scales L*a*b* by 1/100.
			l, a, b := rgb.Lab()
			col = PackLab(l*100, a*100, b*100)
		} else {
			col = canvas.Color{rgb.R, rgb.G, rgb.B}
		}

		o := i * canvas.Channels
		pix[o], pix[o+1], pix[o+2] = col[0], col[1], col[2]
		pix[o+3] = float64(s[3])
	}
	return canvas.New(w, h, space.Format(), pix)
}

// ToImage decodes c back to an 8-bit image. Transparent pixels come out as
// fully transparent black.
func ToImage(c *canvas.Canvas) *image.NRGBA {
	space := SpaceOf(c.Format)
	dst := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))

	for i := 0; i < c.Len(); i++ {
		x, y := c.Pos(i)
		if !c.Opaque(i) {
			dst.SetNRGBA(x, y, color.NRGBA{})
			continue
		}

		col := c.ColorAt(i)
		var rgb colorful.Color
		if space == Lab {
			l, a, b := UnpackLab(col)
			rgb = colorful.Lab(l/100, a/100, b/100).Clamped()
		} else {
			rgb = colorful.Color{R: col[0], G: col[1], B: col[2]}.Clamped()
		}
		r, g, b := rgb.RGB255()
		dst.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: uint8(min(255, max(0, math.Round(c.Alpha(i)))))})
	}
	return dst
}
