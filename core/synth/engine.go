// Package synth invokes the external synthesis engine that renders a note
// sequence into audio.
package synth

import (
	"context"
	"errors"

	"Hummify/model"
)

// Result is what a successful synthesis returns. Tempo and Duration are
// zero when the engine does not report them; callers apply their own
// defaults.
type Result struct {
	Audio    []byte
	Tempo    int
	Duration float64
}

// ErrTimeout marks a synthesis that exceeded its deadline. The spawned
// process has already been killed when this is returned.
var ErrTimeout = errors.New("synthesis timed out")

// Engine renders a note sequence with an instrument into audio bytes.
// Implementations must be safe for concurrent use and free of state
// between invocations.
type Engine interface {
	Synthesize(ctx context.Context, instrument string, notes []model.Note) (*Result, error)
}
