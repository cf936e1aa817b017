package key

import (
	"errors"
	"testing"
)

func TestFakeReader_ConsumesStates(t *testing.T) {
	fake := NewFakeReader([]bool{true, false, true})

	want := []bool{true, false, true}
	for i, w := range want {
		got, err := fake.Pressed()
		if err != nil {
			t.Fatalf("Pressed() call %d error = %v", i+1, err)
		}
		if got != w {
			t.Errorf("Pressed() call %d = %v, want %v", i+1, got, w)
		}
	}
}

func TestFakeReader_RepeatsLastState(t *testing.T) {
	fake := NewFakeReader([]bool{false, true})

	fake.Pressed()
	fake.Pressed()

	// Exhausted: the last state repeats
	for i := 0; i < 3; i++ {
		got, err := fake.Pressed()
		if err != nil {
			t.Fatalf("Pressed() error = %v", err)
		}
		if got != true {
			t.Errorf("exhausted Pressed() = %v, want true", got)
		}
	}
}

func TestFakeReader_NoStates(t *testing.T) {
	fake := NewFakeReader(nil)
	if _, err := fake.Pressed(); err == nil {
		t.Error("Pressed() with no states should return error")
	}
}

func TestFakeReader_ReadError(t *testing.T) {
	fake := NewFakeReader([]bool{true})
	fake.ReadError = errors.New("boom")

	if _, err := fake.Pressed(); err == nil {
		t.Error("Pressed() should return the configured error")
	}
}

func TestFakeReader_CloseAndReset(t *testing.T) {
	fake := NewFakeReader([]bool{true, false})

	fake.Pressed()
	if err := fake.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !fake.Closed {
		t.Error("Closed should be true after Close()")
	}

	fake.Reset()
	if fake.Closed {
		t.Error("Closed should be false after Reset()")
	}
	got, _ := fake.Pressed()
	if got != true {
		t.Errorf("Pressed() after Reset() = %v, want first state true", got)
	}
}
