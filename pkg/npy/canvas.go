package npy

import (
	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/errors"
)

// ToCanvas interprets a (height, width, 4) array as a canvas. uint16 arrays
// become Uint16 canvases; every other dtype becomes Float32.
func ToCanvas(a *Array) (*canvas.Canvas, error) {
	if len(a.Shape) != 3 || a.Shape[2] != canvas.Channels {
		return nil, errors.New(errors.ErrCodeInvalidShape, "expected shape (height, width, %d), got %v", canvas.Channels, a.Shape)
	}
	format := canvas.Float32
	if a.DType == Uint16 {
		format = canvas.Uint16
	}
	return canvas.New(a.Shape[1], a.Shape[0], format, a.Data)
}

// FromCanvas returns an array view of c in its native dtype. The pixel
// buffer is shared, not copied.
func FromCanvas(c *canvas.Canvas) *Array {
	dt := Float32
	if c.Format == canvas.Uint16 {
		dt = Uint16
	}
	return &Array{DType: dt, Shape: []int{c.Height, c.Width, canvas.Channels}, Data: c.Pix}
}

// LoadCanvas reads a canvas from an .npy file.
func LoadCanvas(path string) (*canvas.Canvas, error) {
	a, err := Load(path)
	if err != nil {
		return nil, err
	}
	c, err := ToCanvas(a)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "load %s", path)
	}
	return c, nil
}

// SaveCanvas writes c to path in its native dtype.
func SaveCanvas(path string, c *canvas.Canvas) error {
	return Save(path, FromCanvas(c))
}
