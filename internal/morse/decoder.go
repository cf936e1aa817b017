// internal/morse/decoder.go
package morse

import (
	"errors"
	"strings"
	"sync"

	"github.com/ColonelBlimp/blinkmorse/internal/blink"
)

// ErrEmptyTable indicates the decoder was constructed without a code table
var ErrEmptyTable = errors.New("code table must not be empty")

// DecoderConfig holds configuration for the Morse decoder.
type DecoderConfig struct {
	// Table maps code groups to characters; nil means DefaultTable()
	Table map[string]rune
	// Placeholder replaces unmapped code groups; zero means Unknown
	Placeholder rune
}

// Decoder accumulates dot/dash symbols into a code buffer and resolves
// the buffer into characters on separator events. Lookup is exact: no
// prefix matching, no correction of mistimed blinks.
//
// Decoder methods are safe for concurrent use so a display goroutine
// may snapshot while the session loop feeds events.
type Decoder struct {
	table       map[string]rune
	placeholder rune

	mu         sync.Mutex
	code       strings.Builder // in-progress code group
	text       strings.Builder // decoded output
	transcript strings.Builder // full raw session Morse, display format
}

// NewDecoder creates a decoder with the given table and placeholder.
func NewDecoder(cfg DecoderConfig) (*Decoder, error) {
	table := cfg.Table
	if table == nil {
		table = DefaultTable()
	}
	if len(table) == 0 {
		return nil, ErrEmptyTable
	}
	placeholder := cfg.Placeholder
	if placeholder == 0 {
		placeholder = Unknown
	}
	return &Decoder{
		table:       table,
		placeholder: placeholder,
	}, nil
}

// OnEvent consumes one classifier event.
func (d *Decoder) OnEvent(event blink.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch event {
	case blink.EventDot:
		d.code.WriteByte('.')
		d.transcript.WriteByte('.')
	case blink.EventDash:
		d.code.WriteByte('-')
		d.transcript.WriteByte('-')
	case blink.EventLetterSpace:
		d.resolve()
		d.transcript.WriteString(" ")
	case blink.EventWordSpace:
		d.resolve()
		d.appendWordBreak()
		d.transcript.WriteString("   ")
	}
}

// resolve looks up the current code buffer and appends the result.
// An empty buffer is a no-op, guarding against spurious separators.
func (d *Decoder) resolve() {
	if d.code.Len() == 0 {
		return
	}
	char, ok := d.table[d.code.String()]
	if !ok {
		char = d.placeholder
	}
	d.text.WriteRune(char)
	d.code.Reset()
}

// appendWordBreak adds a single space to the decoded text. Leading and
// doubled spaces are suppressed so any number of qualifying gaps yields
// exactly one word separator.
func (d *Decoder) appendWordBreak() {
	text := d.text.String()
	if text == "" || strings.HasSuffix(text, " ") {
		return
	}
	d.text.WriteByte(' ')
}

// Flush resolves any in-flight code group, as if a letter space had
// occurred. Call once at session end.
func (d *Decoder) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resolve()
}

// Snapshot is a read-only view of the decoder for live display.
type Snapshot struct {
	// Code is the in-progress code group
	Code string
	// Text is the decoded message so far
	Text string
}

// Snapshot returns the current code buffer and decoded text.
// It is non-destructive: repeated calls without new events return
// identical values.
func (d *Decoder) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		Code: d.code.String(),
		Text: d.text.String(),
	}
}

// Transcript returns the raw Morse string of the whole session, with
// single-space letter separators and triple-space word separators.
func (d *Decoder) Transcript() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transcript.String()
}

// Reset clears all decoder state for a new session.
func (d *Decoder) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.code.Reset()
	d.text.Reset()
	d.transcript.Reset()
}
