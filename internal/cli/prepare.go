package cli

import (
	"math/rand/v2"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/swapsort/pkg/colorspace"
	"github.com/matzehuels/swapsort/pkg/errors"
)

// shuffleCommand randomizes pixel positions, the usual way to prepare a
// sort input from a photo.
func (c *CLI) shuffleCommand() *cobra.Command {
	var (
		space string
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "shuffle INPUT OUTPUT",
		Short: "Randomly rearrange the pixels of an image",
		Long: `Randomly rearrange the opaque pixels of an image or .npy canvas.
Transparent pixels keep their place. Without --seed every run differs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := colorspace.ParseSpace(space)
			if err != nil {
				return err
			}
			if err := errors.ValidateOutputPath(args[1], outputExts...); err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = rand.Uint64()
			}

			cv, err := readCanvas(args[0], s)
			if err != nil {
				return err
			}
			cv.Shuffle(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
			if err := writeCanvas(args[1], cv); err != nil {
				return err
			}

			loggerFromContext(cmd.Context()).Debug("shuffled", "seed", seed)
			printSuccess("Shuffled %s", filepath.Base(args[0]))
			printFile(args[1])
			printNextStep("Sort it", appName+" sort "+args[1]+" sorted.npy")
			return nil
		},
	}

	cmd.Flags().StringVar(&space, "color-space", colorspace.Lab.String(), "color space for image inputs: lab, rgb")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for a reproducible shuffle")
	return cmd
}

// fillMaskCommand pours the colors of an image into the white area of a
// black-and-white mask.
func (c *CLI) fillMaskCommand() *cobra.Command {
	var space string

	cmd := &cobra.Command{
		Use:   "fill-mask INPUT MASK OUTPUT",
		Short: "Place the colors of an image into the white pixels of a mask",
		Long: `Place the opaque pixels of INPUT, in reading order, onto the white pixels of
MASK, a black-and-white image. Black pixels become transparent and are left
alone by sort. MASK must have exactly as many white pixels as INPUT has
opaque ones.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := colorspace.ParseSpace(space)
			if err != nil {
				return err
			}
			if err := errors.ValidateOutputPath(args[2], outputExts...); err != nil {
				return err
			}

			src, err := readCanvas(args[0], s)
			if err != nil {
				return err
			}
			mask, err := colorspace.LoadImage(args[1])
			if err != nil {
				return err
			}
			out, err := colorspace.FillMask(src, mask)
			if err != nil {
				return errors.Wrap(errors.GetCode(err), err, "fill %s", args[1])
			}
			if err := writeCanvas(args[2], out); err != nil {
				return err
			}

			printSuccess("Filled %dx%d mask", out.Width, out.Height)
			printDetail("%s pixels placed", humanize.Comma(int64(out.OpaqueCount())))
			printFile(args[2])
			return nil
		},
	}

	cmd.Flags().StringVar(&space, "color-space", colorspace.Lab.String(), "color space for image inputs: lab, rgb")
	return cmd
}
