// internal/source/replay.go
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ColonelBlimp/blinkmorse/internal/blink"
)

// Replay reads `timestamp_seconds,ear` records from a stream and turns
// them into observations. The EAR threshold decision happens here, at
// the boundary: the core never sees the scalar.
type Replay struct {
	reader       io.Reader
	earThreshold float64
	base         time.Time
}

// NewReplay creates a replay source reading from r.
// earThreshold is the EAR value below which the eyes count as closed.
func NewReplay(r io.Reader, earThreshold float64) *Replay {
	return &Replay{
		reader:       r,
		earThreshold: earThreshold,
		base:         time.Now(),
	}
}

// Run parses the stream line by line. Blank lines and lines starting
// with '#' are skipped. A malformed line aborts the replay with an
// error naming the line number.
func (r *Replay) Run(ctx context.Context, out chan<- blink.Observation) error {
	scanner := bufio.NewScanner(r.reader)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		obs, err := r.parseLine(line)
		if err != nil {
			return fmt.Errorf("replay line %d: %w", lineNo, err)
		}

		select {
		case out <- obs:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read replay input: %w", err)
	}
	return nil
}

// parseLine parses one `seconds,ear` record.
func (r *Replay) parseLine(line string) (blink.Observation, error) {
	fields := strings.SplitN(line, ",", 3)
	if len(fields) != 2 {
		return blink.Observation{}, fmt.Errorf("want 2 fields (seconds,ear), got %d", len(fields))
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return blink.Observation{}, fmt.Errorf("parse timestamp %q: %w", fields[0], err)
	}
	ear, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return blink.Observation{}, fmt.Errorf("parse ear %q: %w", fields[1], err)
	}

	return blink.Observation{
		Closed: ear < r.earThreshold,
		At:     r.base.Add(time.Duration(seconds * float64(time.Second))),
	}, nil
}
