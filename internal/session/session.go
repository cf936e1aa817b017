// internal/session/session.go
// Package session runs the single-consumer tick loop that drives the
// classifier and decoder.
package session

import (
	"context"
	"fmt"
	"os"

	"github.com/ColonelBlimp/blinkmorse/internal/blink"
	"github.com/ColonelBlimp/blinkmorse/internal/morse"
)

// EventCallback is invoked for every non-NONE classifier event, after
// the decoder has consumed it. Must be fast and non-blocking: it runs
// on the tick path.
type EventCallback func(event blink.Event, snap morse.Snapshot)

// Session owns one classifier/decoder pair and consumes observations
// from a single channel. The core state is never touched by more than
// one goroutine: the source hands off through the channel and Run is
// the only mutator.
type Session struct {
	classifier *blink.Classifier
	decoder    *morse.Decoder
	callback   EventCallback
	debug      bool
}

// New creates a session around an existing classifier and decoder.
func New(classifier *blink.Classifier, decoder *morse.Decoder) *Session {
	return &Session{
		classifier: classifier,
		decoder:    decoder,
	}
}

// SetCallback registers the event fan-out callback. Set before Run.
func (s *Session) SetCallback(cb EventCallback) {
	s.callback = cb
}

// SetDebug enables per-tick diagnostics on stderr.
func (s *Session) SetDebug(debug bool) {
	s.debug = debug
}

// Decoder returns the session decoder, for snapshot consumers.
func (s *Session) Decoder() *morse.Decoder {
	return s.decoder
}

// Run consumes observations until the channel closes or ctx is done,
// then flushes the decoder exactly once so a message ending mid-letter
// still resolves. Malformed ticks are skipped, never fatal.
func (s *Session) Run(ctx context.Context, observations <-chan blink.Observation) error {
	defer s.decoder.Flush()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case obs, ok := <-observations:
			if !ok {
				return nil
			}
			s.tick(obs)
		}
	}
}

// tick feeds one observation through classifier and decoder.
func (s *Session) tick(obs blink.Observation) {
	event, err := s.classifier.Tick(obs)
	if err != nil {
		// Rejected tick: classifier state is unchanged, keep going.
		if s.debug {
			fmt.Fprintf(os.Stderr, "tick rejected: %v\n", err)
		}
		return
	}
	if event == blink.EventNone {
		return
	}

	s.decoder.OnEvent(event)

	if s.debug {
		snap := s.decoder.Snapshot()
		fmt.Fprintf(os.Stderr, "%s  code=%q text=%q\n", event, snap.Code, snap.Text)
	}
	if s.callback != nil {
		s.callback(event, s.decoder.Snapshot())
	}
}
