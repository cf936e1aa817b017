// internal/source/source.go
// Package source produces the per-tick eye observations the core
// consumes. The landmark subsystem that measures eye openness is
// external; sources only turn its output (or a physical key) into a
// stream of observations.
package source

import (
	"context"

	"github.com/ColonelBlimp/blinkmorse/internal/blink"
)

// Source delivers observations to the session loop.
type Source interface {
	// Run sends observations on out until input is exhausted or ctx is
	// done. Run does not close out; the caller owns the channel.
	Run(ctx context.Context, out chan<- blink.Observation) error
}
