// Package session records the progress of a sorting run so it can resume.
//
// A session is a small manifest written next to the run's output. It names
// the run, the kernel it was started with, the pairing seeds of the next
// pass and the counters accumulated so far. Every checkpoint refreshes it,
// so after an interrupt the run can continue from the last saved canvas
// with the same seed sequence it would have used had it kept running.
//
// # Usage
//
//	store := session.NewFileStore()
//	sess, err := store.Get(ctx, outputPath)
//	if sess == nil {
//	    sess = session.New(inputPath, outputPath)
//	}
//	sess.Record(passes, attempted, accepted, seedA, checkpointPath)
//	store.Set(ctx, sess)
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/swapsort/pkg/buildinfo"
)

// ErrMismatch is returned when a session exists for an output but was
// started with different kernel settings.
var ErrMismatch = errors.New("session settings do not match")

// Session is the manifest of one run.
type Session struct {
	ID     string `json:"id"`
	Input  string `json:"input"`
	Output string `json:"output"`

	// Version is the build that started the run.
	Version string `json:"version,omitempty"`

	Radius      int    `json:"radius"`
	Mode        string `json:"mode"`
	IncludeSelf bool   `json:"include_self"`

	SeedA uint32 `json:"seed_a"`
	SeedB uint32 `json:"seed_b"`

	Passes    uint64 `json:"passes"`
	Attempted uint64 `json:"attempted"`
	Accepted  uint64 `json:"accepted"`

	Checkpoints    int    `json:"checkpoints"`
	LastCheckpoint string `json:"last_checkpoint,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists sessions keyed by output path.
type Store interface {
	// Get returns the session of output, or nil, nil if there is none.
	Get(ctx context.Context, output string) (*Session, error)

	// Set stores a session under its Output.
	Set(ctx context.Context, sess *Session) error

	// Delete removes the session of output.
	Delete(ctx context.Context, output string) error
}

// New starts a session with a fresh run id.
func New(input, output string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Version:   buildinfo.Short(),
		Input:     input,
		Output:    output,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Record stores the progress reached at a checkpoint.
func (s *Session) Record(passes, attempted, accepted uint64, seedA uint32, checkpoint string) {
	s.Passes = passes
	s.Attempted = attempted
	s.Accepted = accepted
	s.SeedA = seedA
	s.Checkpoints++
	s.LastCheckpoint = checkpoint
	s.UpdatedAt = time.Now()
}

// Matches reports whether the session was started with the given kernel.
func (s *Session) Matches(radius int, mode string, includeSelf bool) error {
	if s.Radius != radius || s.Mode != mode || s.IncludeSelf != includeSelf {
		return ErrMismatch
	}
	return nil
}
