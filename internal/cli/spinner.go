package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/engine"
	"github.com/matzehuels/swapsort/pkg/kernel"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a one-line status on w until stopped or until its context
// is cancelled. It is shown while the aggregate table is built, which is the
// only step of a sort that runs long without pass progress to report.
type Spinner struct {
	w       io.Writer
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	mu      sync.Mutex
}

// buildMessage describes the aggregate build for cv under cfg, using the
// radius the engine will actually apply after clamping.
func buildMessage(cv *canvas.Canvas, cfg engine.Config) string {
	radius, mode := cfg.Radius, cfg.Mode
	if cfg.Kernel != nil {
		radius, mode = cfg.Kernel.Radius, cfg.Kernel.Mode
	} else {
		radius = kernel.ClampRadius(radius, cv.Width, cv.Height)
	}
	return fmt.Sprintf("Building neighbor aggregates (%dx%d, %s opaque, radius %d %s)...",
		cv.Width, cv.Height, humanize.Comma(int64(cv.OpaqueCount())), radius, mode)
}

// newBuildSpinner returns a spinner for the aggregate build of cv.
func newBuildSpinner(ctx context.Context, w io.Writer, cv *canvas.Canvas, cfg engine.Config) *Spinner {
	return newSpinner(ctx, w, buildMessage(cv, cfg))
}

func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation. The first frame is drawn immediately.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			s.draw(spinnerFrames[i%len(spinnerFrames)])
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

// Stop stops the spinner and clears the line. It is safe to call twice.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
		<-s.stopped
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the caller's context ended before Stop.
func (s *Spinner) Cancelled() bool {
	select {
	case <-s.done:
		return false
	default:
		return s.ctx.Err() != nil
	}
}
