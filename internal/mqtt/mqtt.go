// Package mqtt publishes decoded output to an MQTT broker, with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// DefaultTopic is the topic decoded characters are published to.
const DefaultTopic = "blinkmorse/decoded"

// Publisher publishes decoded output.
type Publisher interface {
	// Publish sends one decoded message to the broker.
	// Returns an error if publishing fails (must not crash the session).
	Publish(msg Message) error

	// Close disconnects from the broker.
	Close() error
}

// Message is one unit of decoded output.
type Message struct {
	// Timestamp is when the character was decoded
	Timestamp time.Time
	// Character is the decoded character ("" for a pure word break)
	Character string
	// Text is the full decoded message so far
	Text string
	// Final is true for the single end-of-session message
	Final bool
}

// payload is the wire form of a Message.
type payload struct {
	Timestamp string `json:"timestamp"`
	Character string `json:"character,omitempty"`
	Text      string `json:"text"`
	Final     bool   `json:"final,omitempty"`
}

// FormatPayload creates the JSON payload for a decoded message.
func FormatPayload(msg Message) ([]byte, error) {
	return json.Marshal(payload{
		Timestamp: msg.Timestamp.UTC().Format(time.RFC3339),
		Character: msg.Character,
		Text:      msg.Text,
		Final:     msg.Final,
	})
}
