package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/colorspace"
	"github.com/matzehuels/swapsort/pkg/errors"
	"github.com/matzehuels/swapsort/pkg/npy"
)

// outputExts lists every extension a canvas can be written as.
var outputExts = []string{".npy", ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff"}

func isNPY(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".npy")
}

// readCanvas loads an .npy array as-is, or decodes an image and encodes it
// in the given color space.
func readCanvas(path string, space colorspace.Space) (*canvas.Canvas, error) {
	if isNPY(path) {
		return npy.LoadCanvas(path)
	}
	img, err := colorspace.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return colorspace.FromImage(img, space)
}

// writeCanvas saves c as an .npy array or, for image extensions, decodes it
// to 8-bit color first.
func writeCanvas(path string, c *canvas.Canvas) error {
	if err := errors.ValidateOutputPath(path, outputExts...); err != nil {
		return err
	}
	if isNPY(path) {
		return npy.SaveCanvas(path, c)
	}
	return colorspace.SaveImage(path, colorspace.ToImage(c))
}

// encodeCommand converts an image to an .npy canvas.
func (c *CLI) encodeCommand() *cobra.Command {
	var space string

	cmd := &cobra.Command{
		Use:   "encode IMAGE OUTPUT.npy",
		Short: "Convert an image to an .npy canvas",
		Long: `Convert an image (PNG, JPEG, GIF, BMP, TIFF or WebP) to an .npy canvas.

The lab color space stores CIE L*a*b* packed into uint16 (exact arithmetic
during sorting); rgb stores float32 sRGB channels in [0, 1].`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := colorspace.ParseSpace(space)
			if err != nil {
				return err
			}
			if err := errors.ValidateOutputPath(args[1], ".npy"); err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)

			img, err := colorspace.LoadImage(args[0])
			if err != nil {
				return err
			}
			cv, err := colorspace.FromImage(img, s)
			if err != nil {
				return err
			}
			if err := npy.SaveCanvas(args[1], cv); err != nil {
				return err
			}

			prog.done("Encoded " + filepath.Base(args[0]))
			printSuccess("Encoded %dx%d image as %s", cv.Width, cv.Height, s)
			printFile(args[1])
			printNextStep("Sort it", appName+" sort "+args[1]+" sorted.npy")
			return nil
		},
	}

	cmd.Flags().StringVar(&space, "color-space", colorspace.Lab.String(), "color space: lab, rgb")
	return cmd
}

// decodeCommand converts an .npy canvas back to an image.
func (c *CLI) decodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode INPUT.npy IMAGE",
		Short: "Convert an .npy canvas to an image",
		Long: `Convert an .npy canvas to an 8-bit image. uint16 canvases are decoded as
packed Lab, float canvases as sRGB. Transparent pixels stay transparent.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cv, err := npy.LoadCanvas(args[0])
			if err != nil {
				return err
			}
			if err := colorspace.SaveImage(args[1], colorspace.ToImage(cv)); err != nil {
				return err
			}
			printSuccess("Decoded %dx%d canvas (%s)", cv.Width, cv.Height, colorspace.SpaceOf(cv.Format))
			printFile(args[1])
			return nil
		},
	}
}
