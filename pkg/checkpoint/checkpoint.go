// Package checkpoint saves a running canvas at a wall-clock cadence.
//
// A [Checkpointer] plugs into engine.Run. Before each pass the engine asks
// whether a save is due; after the loop ends it always asks for one final
// save. Saves go through a [Saver] chosen by the output extension, and each
// successful save refreshes the run's session manifest.
//
// With overwriting disabled every save gets its own numbered file:
//
//	out.npy -> out_0000.npy, out_0001.npy, ...
package checkpoint

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/engine"
	"github.com/matzehuels/swapsort/pkg/errors"
	"github.com/matzehuels/swapsort/pkg/observability"
	"github.com/matzehuels/swapsort/pkg/session"
	"github.com/matzehuels/swapsort/pkg/swap"
)

// Path returns the file the n-th save (0-based) writes to. Unless
// noOverwrite is set every save goes to output itself.
func Path(output string, noOverwrite bool, zeros, n int) string {
	if !noOverwrite {
		return output
	}
	dir, base := filepath.Split(output)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s_%0*d%s", stem, max(zeros, 0), n, ext))
}

// Schedule decides when the next save is due.
type Schedule struct {
	Every time.Duration
	last  time.Time
}

// NewSchedule returns a schedule whose first save is due Every after start.
func NewSchedule(every time.Duration, start time.Time) *Schedule {
	return &Schedule{Every: every, last: start}
}

// Due reports whether strictly more than Every has passed since the last save.
func (s *Schedule) Due(now time.Time) bool {
	return now.Sub(s.last) > s.Every
}

// Mark records a save at now.
func (s *Schedule) Mark(now time.Time) {
	s.last = now
}

// Options configures a Checkpointer.
type Options struct {
	Output      string
	NoOverwrite bool
	Zeros       int
	Every       time.Duration

	// Saver defaults to SaverFor(Output).
	Saver Saver

	// Session and Store, when both set, are updated after every save.
	Session *session.Session
	Store   session.Store

	// Score, if set, is evaluated and logged at every save.
	Score func() swap.Score

	Logger *log.Logger
	Now    func() time.Time
}

// Checkpointer implements engine.Checkpointer.
type Checkpointer struct {
	opts     Options
	schedule *Schedule
	next     int
	last     string
}

// New returns a checkpointer whose first scheduled save is due opts.Every
// from now. Numbering continues from the session's checkpoint count.
func New(opts Options) *Checkpointer {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Saver == nil {
		opts.Saver = SaverFor(opts.Output)
	}
	cp := &Checkpointer{opts: opts, schedule: NewSchedule(opts.Every, opts.Now())}
	if opts.Session != nil {
		cp.next = opts.Session.Checkpoints
	}
	return cp
}

// Due implements engine.Checkpointer.
func (cp *Checkpointer) Due(now time.Time) bool {
	return cp.schedule.Due(now)
}

// Checkpoint implements engine.Checkpointer.
func (cp *Checkpointer) Checkpoint(ctx context.Context, c *canvas.Canvas, st engine.Stats, final bool) error {
	path := Path(cp.opts.Output, cp.opts.NoOverwrite, cp.opts.Zeros, cp.next)

	start := time.Now()
	err := cp.opts.Saver.Save(ctx, c, path)
	observability.Checkpoint().OnCheckpoint(ctx, path, cp.next, time.Since(start), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "save checkpoint %d to %s", cp.next, path)
	}
	cp.next++
	cp.last = path
	cp.schedule.Mark(cp.opts.Now())

	fields := []any{"path", path, "passes", st.Passes, "accepted", st.Accepted, "final", final}
	if cp.opts.Score != nil {
		sc := cp.opts.Score()
		fields = append(fields, "score", sc.Mean)
	}
	cp.opts.Logger.Debug("checkpoint saved", fields...)

	if cp.opts.Session != nil && cp.opts.Store != nil {
		cp.opts.Session.Record(st.Passes, st.Attempted, st.Accepted, st.SeedA, path)
		if err := cp.opts.Store.Set(ctx, cp.opts.Session); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "update session for %s", cp.opts.Output)
		}
	}
	return nil
}

// Saved returns the number of saves written, including earlier runs of a
// resumed session.
func (cp *Checkpointer) Saved() int {
	return cp.next
}

// Last returns the path of the most recent save, or "".
func (cp *Checkpointer) Last() string {
	return cp.last
}

var _ engine.Checkpointer = (*Checkpointer)(nil)
