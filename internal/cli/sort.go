package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/swapsort/pkg/buildinfo"
	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/checkpoint"
	"github.com/matzehuels/swapsort/pkg/colorspace"
	"github.com/matzehuels/swapsort/pkg/engine"
	"github.com/matzehuels/swapsort/pkg/errors"
	"github.com/matzehuels/swapsort/pkg/kernel"
	"github.com/matzehuels/swapsort/pkg/observability"
	"github.com/matzehuels/swapsort/pkg/pairing"
	"github.com/matzehuels/swapsort/pkg/session"
	"github.com/matzehuels/swapsort/pkg/swap"
)

const (
	defaultSeconds = 1   // seconds between checkpoint saves
	defaultRadius  = 100 // kernel radius before clamping to the canvas
	defaultZeros   = 4   // digits in numbered checkpoint names
)

// sortOpts holds the command-line flags for the sort command.
type sortOpts struct {
	seconds     int    // wall-clock seconds between checkpoint saves
	radius      int    // kernel radius
	noOverwrite bool   // number checkpoints instead of overwriting the output
	zeros       int    // zero padding of checkpoint numbers
	mode        string // kernel mode: uniform or weighted
	includeSelf bool   // count a pixel in its own neighborhood
	workers     int    // goroutines per pass
	seedA       uint32 // pairing multiplier seed
	seedB       uint32 // pairing increment seed
	resume      bool   // continue from the output's session
	noCache     bool   // skip the aggregate table cache
	tui         bool   // live dashboard instead of log lines
	verifyEvery uint64 // check aggregates every N passes
	maxPasses   uint64 // stop after N passes (0 = until interrupted)
	config      string // TOML file with defaults for the above
	colorSpace  string // encoding for image inputs
}

func defaultSortOpts() sortOpts {
	return sortOpts{
		seconds:    defaultSeconds,
		radius:     defaultRadius,
		zeros:      defaultZeros,
		mode:       kernel.Uniform.String(),
		workers:    1,
		seedA:      pairing.DefaultSeedA,
		seedB:      pairing.DefaultSeedB,
		colorSpace: colorspace.Lab.String(),
	}
}

// validate checks option ranges before anything is loaded.
func (o *sortOpts) validate(output string) error {
	if err := errors.ValidateNonNegative("seconds-between-saves", o.seconds); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("kernel-radius", o.radius); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("saved-image-leading-zero-count", o.zeros); err != nil {
		return err
	}
	if err := errors.ValidatePositive("workers", o.workers); err != nil {
		return err
	}
	if _, err := kernel.ParseMode(o.mode); err != nil {
		return err
	}
	if _, err := colorspace.ParseSpace(o.colorSpace); err != nil {
		return err
	}
	return errors.ValidateOutputPath(output, outputExts...)
}

// sortCommand creates the sort command.
func (c *CLI) sortCommand() *cobra.Command {
	opts := defaultSortOpts()

	cmd := &cobra.Command{
		Use:   "sort INPUT OUTPUT",
		Short: "Sort pixels until interrupted, saving the result periodically",
		Long: `Sort pixels until interrupted (Ctrl+C), saving the result periodically.

INPUT is an .npy canvas (for example from "swapsort encode") or an image,
which is encoded with --color-space first. OUTPUT is an .npy canvas or an
image. Every --seconds-between-saves seconds the current state is written
to OUTPUT, or to numbered files OUTPUT_0000, OUTPUT_0001, ... with -n.

Runs can be continued with --resume: the pairing seeds and counters are
kept in a small session file next to OUTPUT.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.config != "" {
				fc, err := loadConfig(opts.config)
				if err != nil {
					return err
				}
				fc.apply(&opts, cmd.Flags().Changed)
			}
			if err := opts.validate(args[1]); err != nil {
				return err
			}
			return c.runSort(cmd.Context(), args[0], args[1], opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.seconds, "seconds-between-saves", "s", opts.seconds, "how often the current output gets saved")
	f.IntVarP(&opts.radius, "kernel-radius", "k", opts.radius, "radius of the neighborhood each pixel is compared against")
	f.BoolVarP(&opts.noOverwrite, "no-overwriting-output", "n", false, "save every checkpoint to its own numbered file")
	f.IntVarP(&opts.zeros, "saved-image-leading-zero-count", "z", opts.zeros, "digits in numbered file names (only with -n)")
	f.StringVar(&opts.mode, "mode", opts.mode, "kernel mode: uniform (average), weighted (1/(d²+1) sum)")
	f.BoolVar(&opts.includeSelf, "include-self", false, "count each pixel in its own neighborhood")
	f.IntVar(&opts.workers, "workers", opts.workers, "goroutines evaluating independent pairs")
	f.Uint32Var(&opts.seedA, "seed-a", opts.seedA, "pairing seed A (advanced every pass)")
	f.Uint32Var(&opts.seedB, "seed-b", opts.seedB, "pairing seed B")
	f.BoolVar(&opts.resume, "resume", false, "continue the run recorded next to OUTPUT")
	f.BoolVar(&opts.noCache, "no-cache", false, "always build the aggregate table from scratch")
	f.BoolVar(&opts.tui, "tui", false, "show a live dashboard")
	f.Uint64Var(&opts.verifyEvery, "verify-every", 0, "check the aggregate table every N passes (0 = never)")
	f.Uint64Var(&opts.maxPasses, "max-passes", 0, "stop after N passes (0 = until interrupted)")
	f.StringVar(&opts.config, "config", "", "TOML file with flag defaults")
	f.StringVar(&opts.colorSpace, "color-space", opts.colorSpace, "encoding for image inputs: lab, rgb")

	return cmd
}

// runSort loads the input (or the last checkpoint of a resumed run), builds
// the engine and runs it until ctx is cancelled or the pass limit is hit.
func (c *CLI) runSort(ctx context.Context, input, output string, opts sortOpts) error {
	logger := loggerFromContext(ctx)
	mode, _ := kernel.ParseMode(opts.mode)
	space, _ := colorspace.ParseSpace(opts.colorSpace)

	store := session.NewFileStore()
	sess, source, err := openSession(ctx, store, input, output, mode, opts)
	if err != nil {
		return err
	}
	opts.seedA, opts.seedB = sess.SeedA, sess.SeedB

	cv, err := readCanvas(source, space)
	if err != nil {
		return err
	}
	logger.Debug("loaded canvas", "path", source, "width", cv.Width, "height", cv.Height, "format", cv.Format)

	tableCache, err := newCache(opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer tableCache.Close()

	cfg := engine.Config{
		Radius:      opts.radius,
		Mode:        mode,
		IncludeSelf: opts.includeSelf,
		SeedA:       opts.seedA,
		SeedB:       opts.seedB,
		Workers:     opts.workers,
		VerifyEvery: opts.verifyEvery,
		MaxPasses:   opts.maxPasses,
		Cache:       tableCache,
		Keyer:       newKeyer(),
		Logger:      logger,
	}
	if sess.Passes > 0 {
		cfg.Resume = &engine.Stats{Passes: sess.Passes, Attempted: sess.Attempted, Accepted: sess.Accepted}
	}

	e, err := buildEngine(ctx, cv, cfg, !opts.tui)
	if err != nil {
		return err
	}
	k := e.Kernel()
	printTableStats(cv.Width, cv.Height, e.Index().Len(), k.Radius, e.Store().Policy().String(), e.Cached())

	cpOpts := checkpoint.Options{
		Output:      output,
		NoOverwrite: opts.noOverwrite,
		Zeros:       opts.zeros,
		Every:       time.Duration(opts.seconds) * time.Second,
		Session:     sess,
		Store:       store,
		Logger:      logger,
	}
	if logger.GetLevel() <= log.DebugLevel {
		cpOpts.Score = e.Score
	}
	cp := checkpoint.New(cpOpts)

	var st engine.Stats
	if opts.tui {
		st, err = runDashboard(ctx, e, cp, dashboardInfo{input: filepath.Base(input), output: output, radius: k.Radius, mode: k.Mode.String()})
	} else {
		status := newStatusHooks(sess.Attempted, sess.Checkpoints)
		observability.SetEngineHooks(status)
		observability.SetCheckpointHooks(status)
		st, err = e.Run(ctx, cp)
		observability.Reset()
	}
	if err != nil {
		return err
	}

	printSuccess("Sorted %s", filepath.Base(input))
	printKeyValue("Passes", humanize.Comma(int64(st.Passes)))
	printKeyValue("Swaps", humanize.Comma(int64(st.Accepted))+" of "+humanizeCount(st.Attempted))
	printKeyValue("Saves", fmt.Sprint(cp.Saved()))
	if last := cp.Last(); last != "" {
		printFile(last)
		if isNPY(last) {
			printNextStep("View it", appName+" decode "+last+" sorted.png")
		}
	}

	// An interrupt still exits non-zero, after the final save.
	return ctx.Err()
}

// openSession returns the session to record progress in and the path the
// canvas should be read from. With --resume and an existing session that is
// the last checkpoint; otherwise a fresh session over input.
func openSession(ctx context.Context, store session.Store, input, output string, mode kernel.Mode, opts sortOpts) (*session.Session, string, error) {
	if opts.resume {
		sess, err := store.Get(ctx, output)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeIO, err, "read session for %s", output)
		}
		if sess != nil {
			if err := sess.Matches(opts.radius, mode.String(), opts.includeSelf); err != nil {
				return nil, "", errors.Wrap(errors.ErrCodeInvalidConfig, err,
					"session for %s was started with radius %d, mode %s, include-self %t",
					output, sess.Radius, sess.Mode, sess.IncludeSelf)
			}
			source := input
			if sess.LastCheckpoint != "" {
				if _, err := os.Stat(sess.LastCheckpoint); err == nil {
					source = sess.LastCheckpoint
				} else {
					printWarning("Last checkpoint %s is missing; restarting from %s", sess.LastCheckpoint, input)
				}
			}
			printInfo("Resuming run %s at pass %s", StyleHighlight.Render(sess.ID[:8]), humanize.Comma(int64(sess.Passes)))
			if sess.Version != "" && sess.Version != buildinfo.Short() {
				printDetail("Run was started by swapsort %s", sess.Version)
			}
			return sess, source, nil
		}
		printWarning("No session found for %s; starting a new run", output)
	}

	sess := session.New(input, output)
	sess.Radius = opts.radius
	sess.Mode = mode.String()
	sess.IncludeSelf = opts.includeSelf
	sess.SeedA = opts.seedA
	sess.SeedB = opts.seedB
	return sess, input, nil
}

// buildEngine constructs the engine, showing a spinner while the aggregate
// table is built when spin is set.
func buildEngine(ctx context.Context, cv *canvas.Canvas, cfg engine.Config, spin bool) (*engine.Engine, error) {
	prog := newProgress(cfg.Logger)
	if !spin {
		return engine.New(ctx, cv, cfg)
	}

	s := newBuildSpinner(ctx, os.Stderr, cv, cfg)
	s.Start()
	e, err := engine.New(ctx, cv, cfg)
	if err != nil {
		if s.Cancelled() {
			s.Stop()
			return nil, err
		}
		s.StopWithError("Could not build neighbor aggregates")
		return nil, err
	}
	s.Stop()
	k := e.Kernel()
	prog.done(fmt.Sprintf("Built neighbor aggregates for %dx%d at radius %d", cv.Width, cv.Height, k.Radius))
	return e, nil
}

// printScore prints an incoherence summary.
func printScore(sc swap.Score) {
	printKeyValue("Pixels", humanize.Comma(int64(sc.Pixels)))
	printKeyValue("Mean", humanize.FtoaWithDigits(sc.Mean, 2))
	printKeyValue("Std dev", humanize.FtoaWithDigits(sc.StdDev, 2))
	printKeyValue("Total", humanize.FtoaWithDigits(sc.Total, 0))
}
