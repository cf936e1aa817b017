package cmd

import (
	"testing"

	"github.com/ColonelBlimp/blinkmorse/internal/blink"
	"github.com/ColonelBlimp/blinkmorse/internal/morse"
	"github.com/ColonelBlimp/blinkmorse/internal/mqtt"
)

func TestMakeSinkCallback_PublishesDecodedCharacters(t *testing.T) {
	fake := mqtt.NewFakePublisher()
	callback := makeSinkCallback(nil, fake)

	callback(blink.EventLetterSpace, morse.Snapshot{Code: ".", Text: "E"})
	callback(blink.EventWordSpace, morse.Snapshot{Code: ". .", Text: "E E"})

	if len(fake.Messages) != 3 {
		t.Fatalf("published %d messages, want 3", len(fake.Messages))
	}

	// The word-break space is published with an empty Character, never " "
	want := []string{"E", "", "E"}
	for i, msg := range fake.Messages {
		if msg.Character != want[i] {
			t.Errorf("message %d Character = %q, want %q", i, msg.Character, want[i])
		}
	}
	if got := fake.Messages[2].Text; got != "E E" {
		t.Errorf("message 2 Text = %q, want %q", got, "E E")
	}
}

func TestMakeSinkCallback_SymbolsDoNotPublish(t *testing.T) {
	fake := mqtt.NewFakePublisher()
	callback := makeSinkCallback(nil, fake)

	// nil player: tones are simply skipped
	callback(blink.EventDot, morse.Snapshot{Code: "."})
	callback(blink.EventDash, morse.Snapshot{Code: ".-"})

	if len(fake.Messages) != 0 {
		t.Errorf("published %d messages for symbol events, want 0", len(fake.Messages))
	}
}

func TestTableWithOverrides(t *testing.T) {
	table := tableWithOverrides(map[string]string{
		"...---...": "S",
		".-":        "Ä",
	})

	if got := table["...---..."]; got != 'S' {
		t.Errorf("override lookup = %q, want %q", got, 'S')
	}
	if got := table[".-"]; got != 'Ä' {
		t.Errorf("replaced lookup = %q, want %q", got, 'Ä')
	}
	// Built-ins not touched by overrides survive
	if got := table["-..."]; got != 'B' {
		t.Errorf("built-in lookup = %q, want %q", got, 'B')
	}
	// And the package default table is not mutated
	if got := morse.DefaultTable()[".-"]; got != 'A' {
		t.Errorf("DefaultTable()[.-] = %q, want %q", got, 'A')
	}
}
