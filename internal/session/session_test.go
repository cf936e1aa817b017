package session

import (
	"context"
	"testing"
	"time"

	"github.com/ColonelBlimp/blinkmorse/internal/blink"
	"github.com/ColonelBlimp/blinkmorse/internal/morse"
)

func testClassifierConfig() blink.Config {
	return blink.Config{
		ShortThreshold: 100 * time.Millisecond,
		LongThreshold:  400 * time.Millisecond,
		LetterGapMin:   800 * time.Millisecond,
		WordGapMin:     1600 * time.Millisecond,
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	classifier, err := blink.NewClassifier(testClassifierConfig())
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	decoder, err := morse.NewDecoder(morse.DecoderConfig{})
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	return New(classifier, decoder)
}

// script builds an observation stream from (closed, offset) pairs.
type step struct {
	closed bool
	at     time.Duration // offset from stream start
}

// blinkOf appends the ticks for one closure of the given length,
// sampled at 50ms, starting at offset start. Returns the end offset.
func blinkOf(steps []step, start, length time.Duration) ([]step, time.Duration) {
	for o := time.Duration(0); o < length; o += 50 * time.Millisecond {
		steps = append(steps, step{closed: true, at: start + o})
	}
	steps = append(steps, step{closed: false, at: start + length})
	return steps, start + length
}

// gapOf appends open ticks spanning the given gap, sampled at 50ms.
func gapOf(steps []step, start, length time.Duration) ([]step, time.Duration) {
	for o := 50 * time.Millisecond; o <= length; o += 50 * time.Millisecond {
		steps = append(steps, step{closed: false, at: start + o})
	}
	return steps, start + length
}

// runScript feeds the steps through a session and returns the decoder.
func runScript(t *testing.T, sess *Session, steps []step) *morse.Decoder {
	t.Helper()

	base := time.Unix(0, 0)
	observations := make(chan blink.Observation, len(steps))
	for _, s := range steps {
		observations <- blink.Observation{Closed: s.closed, At: base.Add(s.at)}
	}
	close(observations)

	if err := sess.Run(context.Background(), observations); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return sess.Decoder()
}

func TestSession_DecodesHI(t *testing.T) {
	sess := newTestSession(t)

	// H = four dots, letter gap, I = two dots
	var steps []step
	at := time.Duration(0)
	for i := 0; i < 4; i++ {
		steps, at = blinkOf(steps, at, 200*time.Millisecond)
		steps, at = gapOf(steps, at, 300*time.Millisecond)
	}
	steps, at = gapOf(steps, at, 700*time.Millisecond) // crosses letter_gap_min
	for i := 0; i < 2; i++ {
		steps, at = blinkOf(steps, at, 200*time.Millisecond)
		steps, at = gapOf(steps, at, 300*time.Millisecond)
	}

	decoder := runScript(t, sess, steps)

	// Run flushes on exit, so the trailing I resolves without a gap.
	if got := decoder.Snapshot().Text; got != "HI" {
		t.Errorf("decoded text = %q, want %q", got, "HI")
	}
}

func TestSession_UnknownSequenceDoesNotCrash(t *testing.T) {
	sess := newTestSession(t)

	// Nine dots: no such table entry
	var steps []step
	at := time.Duration(0)
	for i := 0; i < 9; i++ {
		steps, at = blinkOf(steps, at, 200*time.Millisecond)
		steps, at = gapOf(steps, at, 300*time.Millisecond)
	}

	decoder := runScript(t, sess, steps)

	if got := decoder.Snapshot().Text; got != string(morse.Unknown) {
		t.Errorf("decoded text = %q, want single placeholder %q", got, string(morse.Unknown))
	}
}

func TestSession_TwoWordsSingleSpace(t *testing.T) {
	sess := newTestSession(t)

	// E, long gap well past word_gap_min, E
	var steps []step
	at := time.Duration(0)
	steps, at = blinkOf(steps, at, 200*time.Millisecond)
	steps, at = gapOf(steps, at, 10*time.Second) // many ticks past the word gap
	steps, at = blinkOf(steps, at, 200*time.Millisecond)

	decoder := runScript(t, sess, steps)

	if got := decoder.Snapshot().Text; got != "E E" {
		t.Errorf("decoded text = %q, want %q", got, "E E")
	}
}

func TestSession_MixedSymbols(t *testing.T) {
	sess := newTestSession(t)

	// A = .-
	var steps []step
	at := time.Duration(0)
	steps, at = blinkOf(steps, at, 200*time.Millisecond) // dot
	steps, at = gapOf(steps, at, 300*time.Millisecond)
	steps, at = blinkOf(steps, at, 600*time.Millisecond) // dash

	decoder := runScript(t, sess, steps)

	if got := decoder.Snapshot().Text; got != "A" {
		t.Errorf("decoded text = %q, want %q", got, "A")
	}
}

func TestSession_NoiseClosuresIgnored(t *testing.T) {
	sess := newTestSession(t)

	// Jittery sub-threshold closures only
	var steps []step
	at := time.Duration(0)
	for i := 0; i < 5; i++ {
		steps = append(steps, step{closed: true, at: at})
		at += 40 * time.Millisecond
		steps = append(steps, step{closed: false, at: at})
		at += 200 * time.Millisecond
	}

	decoder := runScript(t, sess, steps)

	if got := decoder.Snapshot().Text; got != "" {
		t.Errorf("decoded text = %q, want empty (noise only)", got)
	}
}

func TestSession_CallbackReceivesEvents(t *testing.T) {
	sess := newTestSession(t)

	var events []blink.Event
	sess.SetCallback(func(event blink.Event, snap morse.Snapshot) {
		events = append(events, event)
	})

	var steps []step
	at := time.Duration(0)
	steps, at = blinkOf(steps, at, 200*time.Millisecond) // dot
	steps, at = gapOf(steps, at, time.Second)            // letter space

	runScript(t, sess, steps)

	want := []blink.Event{blink.EventDot, blink.EventLetterSpace}
	if len(events) != len(want) {
		t.Fatalf("callback received %d events (%v), want %d", len(events), events, len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, events[i], want[i])
		}
	}
}

func TestSession_MalformedTickSkipped(t *testing.T) {
	sess := newTestSession(t)

	base := time.Unix(100, 0)
	observations := make(chan blink.Observation, 4)
	observations <- blink.Observation{Closed: true, At: base}
	// Goes backwards: rejected, state untouched
	observations <- blink.Observation{Closed: false, At: base.Add(-time.Minute)}
	observations <- blink.Observation{Closed: false, At: base.Add(200 * time.Millisecond)}
	close(observations)

	if err := sess.Run(context.Background(), observations); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := sess.Decoder().Snapshot().Text; got != "E" {
		t.Errorf("decoded text = %q, want %q (dot survives the bad tick)", got, "E")
	}
}

func TestSession_ContextCancellationFlushes(t *testing.T) {
	sess := newTestSession(t)

	base := time.Unix(0, 0)
	observations := make(chan blink.Observation, 2)
	observations <- blink.Observation{Closed: true, At: base}
	observations <- blink.Observation{Closed: false, At: base.Add(200 * time.Millisecond)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx, observations) }()

	// Give the loop a moment to drain the two buffered ticks, then stop.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancellation")
	}

	// The pending dot was flushed into a character
	if got := sess.Decoder().Snapshot().Text; got != "E" {
		t.Errorf("decoded text = %q, want %q after flush", got, "E")
	}
}
