package checkpoint

import (
	"context"

	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/colorspace"
	"github.com/matzehuels/swapsort/pkg/npy"
)

// Saver writes a canvas to a path.
type Saver interface {
	Save(ctx context.Context, c *canvas.Canvas, path string) error
}

// NPYSaver writes the canvas as an .npy array in its native dtype.
type NPYSaver struct{}

// Save implements Saver.
func (NPYSaver) Save(_ context.Context, c *canvas.Canvas, path string) error {
	return npy.SaveCanvas(path, c)
}

// ImageSaver decodes the canvas to 8-bit color and writes an image.
type ImageSaver struct{}

// Save implements Saver.
func (ImageSaver) Save(_ context.Context, c *canvas.Canvas, path string) error {
	return colorspace.SaveImage(path, colorspace.ToImage(c))
}

// SaverFor picks ImageSaver for image extensions and NPYSaver otherwise.
func SaverFor(path string) Saver {
	if colorspace.IsImagePath(path) {
		return ImageSaver{}
	}
	return NPYSaver{}
}
