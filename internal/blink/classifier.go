// internal/blink/classifier.go
// Package blink classifies a timed eye open/closed signal into Morse
// timing events.
package blink

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidShortThreshold indicates the noise floor must be positive
	ErrInvalidShortThreshold = errors.New("short threshold must be positive")
	// ErrInvalidLongThreshold indicates the dot/dash boundary must exceed the noise floor
	ErrInvalidLongThreshold = errors.New("long threshold must be greater than short threshold")
	// ErrInvalidLetterGap indicates the letter gap must be positive
	ErrInvalidLetterGap = errors.New("letter gap must be positive")
	// ErrInvalidWordGap indicates the word gap must exceed the letter gap
	ErrInvalidWordGap = errors.New("word gap must be greater than letter gap")
)

// EyeState is the instantaneous eye state derived from the signal source.
type EyeState int

const (
	// Open means the eyes are open (no blink in progress)
	Open EyeState = iota
	// Closed means the eyes are closed (blink in progress)
	Closed
)

// Event is the timing event produced by a single tick.
// At most one event is produced per tick.
type Event int

const (
	// EventNone means the tick produced no symbol or separator
	EventNone Event = iota
	// EventDot is a short closure
	EventDot
	// EventDash is a long closure
	EventDash
	// EventLetterSpace marks the end of the current code group
	EventLetterSpace
	// EventWordSpace marks the end of the current word
	EventWordSpace
)

// String returns a human-readable event name for logging.
func (e Event) String() string {
	switch e {
	case EventNone:
		return "NONE"
	case EventDot:
		return "DOT"
	case EventDash:
		return "DASH"
	case EventLetterSpace:
		return "LETTER_SPACE"
	case EventWordSpace:
		return "WORD_SPACE"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Observation is a single tick from the signal source.
type Observation struct {
	// Closed is true while the eyes are closed
	Closed bool
	// At is when the observation was taken; must not move backwards
	At time.Time
}

// Config holds the classifier timing thresholds.
// All values come from the application config file.
type Config struct {
	// ShortThreshold is the minimum closure counted as a blink (from config: short_threshold)
	// Closures shorter than this are discarded as sensor jitter.
	ShortThreshold time.Duration
	// LongThreshold is the boundary between dot and dash (from config: long_threshold)
	LongThreshold time.Duration
	// LetterGapMin is the minimum open interval ending a code group (from config: letter_gap_min)
	LetterGapMin time.Duration
	// WordGapMin is the minimum open interval ending a word (from config: word_gap_min)
	WordGapMin time.Duration
}

// Validate checks the threshold ordering contract:
// 0 < ShortThreshold < LongThreshold and 0 < LetterGapMin < WordGapMin.
func (c Config) Validate() error {
	if c.ShortThreshold <= 0 {
		return ErrInvalidShortThreshold
	}
	if c.LongThreshold <= c.ShortThreshold {
		return ErrInvalidLongThreshold
	}
	if c.LetterGapMin <= 0 {
		return ErrInvalidLetterGap
	}
	if c.WordGapMin <= c.LetterGapMin {
		return ErrInvalidWordGap
	}
	return nil
}

// Classifier converts a stream of eye observations into timing events.
// It is a two-state machine: closures are classified by duration on the
// CLOSED->OPEN transition, separators are classified by the length of
// the current open interval while remaining OPEN.
//
// Classifier is not safe for concurrent use; the session loop is its
// single caller.
type Classifier struct {
	config Config

	state    EyeState
	closedAt time.Time
	openedAt time.Time
	lastAt   time.Time
	ticked   bool

	// Separator edge-triggering: each fires at most once per open
	// interval. Both reset on the next CLOSED->OPEN transition.
	letterEmitted bool
	wordEmitted   bool
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{
		config: cfg,
		state:  Open,
	}, nil
}

// Tick processes one observation and returns at most one event.
//
// A tick with a timestamp earlier than the previous tick's is rejected
// with an error and leaves the classifier state untouched.
func (c *Classifier) Tick(obs Observation) (Event, error) {
	if c.ticked && obs.At.Before(c.lastAt) {
		return EventNone, fmt.Errorf("non-monotonic tick: %v is before %v", obs.At, c.lastAt)
	}
	c.lastAt = obs.At
	c.ticked = true

	switch {
	case obs.Closed && c.state == Open:
		c.state = Closed
		c.closedAt = obs.At
		return EventNone, nil

	case !obs.Closed && c.state == Closed:
		return c.handleClosureEnd(obs.At), nil

	case !obs.Closed && c.state == Open:
		return c.handleOpenInterval(obs.At), nil

	default: // still closed
		return EventNone, nil
	}
}

// handleClosureEnd classifies the finished closure as noise, dot or dash.
func (c *Classifier) handleClosureEnd(at time.Time) Event {
	duration := at.Sub(c.closedAt)

	c.state = Open
	c.openedAt = at
	c.letterEmitted = false
	c.wordEmitted = false

	switch {
	case duration < c.config.ShortThreshold:
		return EventNone
	case duration < c.config.LongThreshold:
		return EventDot
	default:
		return EventDash
	}
}

// handleOpenInterval emits a separator once the open interval crosses a
// gap threshold. Each separator fires at most once per interval.
func (c *Classifier) handleOpenInterval(at time.Time) Event {
	if c.openedAt.IsZero() {
		// No closure has ended yet; an idle session emits nothing.
		return EventNone
	}

	gap := at.Sub(c.openedAt)

	if gap >= c.config.WordGapMin && !c.wordEmitted {
		// A tick may land past both thresholds at once; the word
		// separator subsumes the letter separator in that case.
		c.wordEmitted = true
		c.letterEmitted = true
		return EventWordSpace
	}
	if gap >= c.config.LetterGapMin && gap < c.config.WordGapMin && !c.letterEmitted {
		c.letterEmitted = true
		return EventLetterSpace
	}
	return EventNone
}

// State returns the current confirmed eye state.
func (c *Classifier) State() EyeState {
	return c.state
}

// Reset clears all timing state, as if no tick had been processed.
func (c *Classifier) Reset() {
	c.state = Open
	c.closedAt = time.Time{}
	c.openedAt = time.Time{}
	c.lastAt = time.Time{}
	c.ticked = false
	c.letterEmitted = false
	c.wordEmitted = false
}

// Config returns the classifier configuration.
func (c *Classifier) Config() Config {
	return c.config
}
