package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/swapsort/pkg/colorspace"
	"github.com/matzehuels/swapsort/pkg/engine"
	"github.com/matzehuels/swapsort/pkg/errors"
	"github.com/matzehuels/swapsort/pkg/kernel"
)

// scoreCommand reports the incoherence of a canvas without sorting it.
func (c *CLI) scoreCommand() *cobra.Command {
	var (
		radius      int
		mode        string
		includeSelf bool
		space       string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "score INPUT",
		Short: "Report how far pixels are from their neighborhood colors",
		Long: `Report the squared distance between every opaque pixel and the color of
its neighborhood. Sorting drives these numbers down; comparing the score of
an input with that of a checkpoint shows how far a run has come.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateNonNegative("kernel-radius", radius); err != nil {
				return err
			}
			m, err := kernel.ParseMode(mode)
			if err != nil {
				return err
			}
			s, err := colorspace.ParseSpace(space)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cv, err := readCanvas(args[0], s)
			if err != nil {
				return err
			}
			tableCache, err := newCache(noCache)
			if err != nil {
				return err
			}
			defer tableCache.Close()

			e, err := buildEngine(ctx, cv, engine.Config{
				Radius:      radius,
				Mode:        m,
				IncludeSelf: includeSelf,
				Cache:       tableCache,
				Keyer:       newKeyer(),
				Logger:      loggerFromContext(ctx),
			}, true)
			if err != nil {
				return err
			}

			printTableStats(cv.Width, cv.Height, e.Index().Len(), e.Kernel().Radius, e.Store().Policy().String(), e.Cached())
			printScore(e.Score())
			return nil
		},
	}

	cmd.Flags().IntVarP(&radius, "kernel-radius", "k", defaultRadius, "neighborhood radius")
	cmd.Flags().StringVar(&mode, "mode", kernel.Uniform.String(), "kernel mode: uniform, weighted")
	cmd.Flags().BoolVar(&includeSelf, "include-self", false, "count each pixel in its own neighborhood")
	cmd.Flags().StringVar(&space, "color-space", colorspace.Lab.String(), "encoding for image inputs: lab, rgb")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "always build the aggregate table from scratch")
	return cmd
}
