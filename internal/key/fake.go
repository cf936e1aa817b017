package key

import "errors"

// FakeReader is a test double that returns scripted key states.
type FakeReader struct {
	// States contains scripted pressed values. Each call to Pressed()
	// consumes the next state; the last state repeats once exhausted.
	States []bool

	// index tracks the current position in States
	index int

	// Closed tracks whether Close was called
	Closed bool

	// ReadError, if set, is returned by Pressed()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given states.
func NewFakeReader(states []bool) *FakeReader {
	return &FakeReader{States: states}
}

// Pressed returns the next scripted state.
func (f *FakeReader) Pressed() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.States) == 0 {
		return false, errors.New("no states configured")
	}

	state := f.States[f.index]
	if f.index < len(f.States)-1 {
		f.index++
	}
	return state, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the reader to the first state.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
