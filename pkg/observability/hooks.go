// Package observability provides hooks for progress reporting and metrics.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific backends. Consumers register hooks at startup to receive events
// about aggregate construction, optimization passes, checkpoints and cache use.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the engine free of terminal and logging concerns
//   - Lets the CLI drive a live dashboard from the same events it logs
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&dashboardHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Engine().OnPassComplete(ctx, pass, attempted, accepted, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the optimization engine.
type EngineHooks interface {
	// Aggregate construction events
	OnBuildStart(ctx context.Context, width, height, radius int)
	OnBuildComplete(ctx context.Context, policy string, duration time.Duration, err error)

	// OnPassComplete fires after every full pass over the opaque pixels.
	OnPassComplete(ctx context.Context, pass, attempted, accepted uint64, duration time.Duration)

	// OnStateChange fires when the engine moves between running and stopping.
	OnStateChange(ctx context.Context, state string)
}

// =============================================================================
// Checkpoint Hooks
// =============================================================================

// CheckpointHooks receives events from checkpoint saves.
type CheckpointHooks interface {
	// OnCheckpoint records a save attempt; err is nil on success.
	OnCheckpoint(ctx context.Context, path string, number int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnBuildStart(context.Context, int, int, int)                           {}
func (NoopEngineHooks) OnBuildComplete(context.Context, string, time.Duration, error)         {}
func (NoopEngineHooks) OnPassComplete(context.Context, uint64, uint64, uint64, time.Duration) {}
func (NoopEngineHooks) OnStateChange(context.Context, string)                                 {}

// NoopCheckpointHooks is a no-op implementation of CheckpointHooks.
type NoopCheckpointHooks struct{}

func (NoopCheckpointHooks) OnCheckpoint(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks     EngineHooks     = NoopEngineHooks{}
	checkpointHooks CheckpointHooks = NoopCheckpointHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	hooksMu         sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any engine is built.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetCheckpointHooks registers custom checkpoint hooks.
func SetCheckpointHooks(h CheckpointHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		checkpointHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Checkpoint returns the registered checkpoint hooks.
func Checkpoint() CheckpointHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return checkpointHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	checkpointHooks = NoopCheckpointHooks{}
	cacheHooks = NoopCacheHooks{}
}
