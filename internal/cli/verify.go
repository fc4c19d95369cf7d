package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/colorspace"
	"github.com/matzehuels/swapsort/pkg/errors"
)

// verifyCommand checks that two canvases hold the same color multiset.
func (c *CLI) verifyCommand() *cobra.Command {
	var space string

	cmd := &cobra.Command{
		Use:   "verify A B",
		Short: "Check that two images contain exactly the same colors",
		Long: `Check that two canvases contain the same opaque colors the same number of
times. A sorted output always passes against its input.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := colorspace.ParseSpace(space)
			if err != nil {
				return err
			}
			a, err := readCanvas(args[0], s)
			if err != nil {
				return err
			}
			b, err := readCanvas(args[1], s)
			if err != nil {
				return err
			}

			if err := compareColors(a, b); err != nil {
				printError("Color mismatch")
				return err
			}
			printSuccess("Same colors")
			printDetail("%s distinct colors", humanize.Comma(int64(len(a.Histogram()))))
			return nil
		},
	}

	cmd.Flags().StringVar(&space, "color-space", colorspace.Lab.String(), "color space for image inputs: lab, rgb")
	return cmd
}

// compareColors returns nil when a and b hold the same color multiset and
// an ErrCodeInvalidInput error describing the first difference otherwise.
func compareColors(a, b *canvas.Canvas) error {
	if canvas.SameColors(a, b) {
		return nil
	}
	ha, hb := a.Histogram(), b.Histogram()
	for col, n := range ha {
		if hb[col] != n {
			return errors.New(errors.ErrCodeInvalidInput,
				"color %v occurs %d times in the first canvas and %d times in the second", col, n, hb[col])
		}
	}
	for col, n := range hb {
		if ha[col] != n {
			return errors.New(errors.ErrCodeInvalidInput,
				"color %v occurs %d times in the second canvas and %d times in the first", col, n, ha[col])
		}
	}
	return errors.New(errors.ErrCodeInternal, "histograms differ but no differing color was found")
}
