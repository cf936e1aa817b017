// internal/source/key.go
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/ColonelBlimp/blinkmorse/internal/blink"
	"github.com/ColonelBlimp/blinkmorse/internal/key"
)

// Key samples a physical Morse key at a fixed interval and emits one
// observation per poll (pressed = closed).
type Key struct {
	reader   key.Reader
	interval time.Duration
}

// NewKey creates a key source polling the given reader every interval.
func NewKey(reader key.Reader, interval time.Duration) *Key {
	return &Key{
		reader:   reader,
		interval: interval,
	}
}

// Run polls the key until ctx is done. Read failures abort the source;
// a key that cannot be read cannot be resampled into anything useful.
func (k *Key) Run(ctx context.Context, out chan<- blink.Observation) error {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			pressed, err := k.reader.Pressed()
			if err != nil {
				return fmt.Errorf("read key: %w", err)
			}

			select {
			case out <- blink.Observation{Closed: pressed, At: now}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
