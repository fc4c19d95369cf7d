package colorspace

import (
	"image"

	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/errors"
)

// FillMask lays the opaque pixels of src, in scan order, onto the white
// pixels of a black-and-white mask. The result has the mask's size and
// src's format; black mask pixels become transparent.
//
// Every mask pixel must be opaque white or black (fully transparent counts
// as black), and the number of white pixels must equal the number of opaque
// pixels in src.
func FillMask(src *canvas.Canvas, mask image.Image) (*canvas.Canvas, error) {
	m := NRGBA(mask)
	w, h := m.Rect.Dx(), m.Rect.Dy()

	var white []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := m.Pix[y*m.Stride+x*4:]
			r, g, b, a := p[0], p[1], p[2], p[3]
			switch {
			case r == 255 && g == 255 && b == 255 && a == 255:
				white = append(white, y*w+x)
			case a == 0, r == 0 && g == 0 && b == 0:
			default:
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"mask pixel (%d, %d) is neither black nor white: %v", x, y, p[:4])
			}
		}
	}

	var opaque []int
	for i := 0; i < src.Len(); i++ {
		if src.Opaque(i) {
			opaque = append(opaque, i)
		}
	}
	if len(opaque) != len(white) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"image has %d opaque pixels but the mask has %d white pixels", len(opaque), len(white))
	}

	out, err := canvas.New(w, h, src.Format, make([]float64, w*h*canvas.Channels))
	if err != nil {
		return nil, err
	}
	for k, dst := range white {
		s := opaque[k] * canvas.Channels
		copy(out.Pix[dst*canvas.Channels:(dst+1)*canvas.Channels], src.Pix[s:s+canvas.Channels])
	}
	return out, nil
}
