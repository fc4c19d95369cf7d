package cli

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/swapsort/pkg/observability"
)

// statusHooks prints one status line per checkpoint, counting attempted
// swaps from pass events in between.
type statusHooks struct {
	observability.NoopEngineHooks

	mu            sync.Mutex
	start         time.Time
	attempted     uint64
	lastAttempted uint64
	frame         int
}

func newStatusHooks(attempted uint64, frames int) *statusHooks {
	return &statusHooks{
		start:         time.Now(),
		attempted:     attempted,
		lastAttempted: attempted,
		frame:         frames,
	}
}

func (h *statusHooks) OnPassComplete(_ context.Context, _, attempted, _ uint64, _ time.Duration) {
	h.mu.Lock()
	h.attempted += attempted
	h.mu.Unlock()
}

func (h *statusHooks) OnCheckpoint(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame++
	printFrame(h.frame, time.Since(h.start), h.attempted, h.attempted-h.lastAttempted)
	h.lastAttempted = h.attempted
}

var (
	_ observability.EngineHooks     = (*statusHooks)(nil)
	_ observability.CheckpointHooks = (*statusHooks)(nil)
)
