package mqtt

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// Messages contains every message that was published.
	Messages []Message

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// PublishError, if set, is returned by Publish.
	PublishError error

	// Closed tracks whether Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the message.
func (f *FakePublisher) Publish(msg Message) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Messages = append(f.Messages, msg)

	data, err := FormatPayload(msg)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, data)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded messages.
func (f *FakePublisher) Reset() {
	f.Messages = nil
	f.Payloads = nil
	f.PublishError = nil
	f.Closed = false
}
