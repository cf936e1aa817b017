package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const offlineBufferSize = 256

// Options configures a RealPublisher.
type Options struct {
	Broker   string // e.g. "tcp://localhost:1883"
	Topic    string // empty means DefaultTopic
	ClientID string // empty means "blinkmorse"
}

// RealPublisher publishes to an actual MQTT broker. Messages published
// while the broker is unreachable are buffered in memory and replayed
// in order on reconnect.
type RealPublisher struct {
	client paho.Client
	topic  string

	mu     sync.Mutex
	buffer *ringBuffer
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(opts Options) (*RealPublisher, error) {
	if opts.Topic == "" {
		opts.Topic = DefaultTopic
	}
	if opts.ClientID == "" {
		opts.ClientID = "blinkmorse"
	}

	p := &RealPublisher{
		topic:  opts.Topic,
		buffer: newRingBuffer(offlineBufferSize),
	}

	clientOpts := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) { p.replayBuffered() })

	p.client = paho.NewClient(clientOpts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends one decoded message to the broker. While disconnected
// the message is buffered instead of failing.
func (p *RealPublisher) Publish(msg Message) error {
	data, err := FormatPayload(msg)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	if !p.client.IsConnected() {
		p.mu.Lock()
		p.buffer.push(bufferedMsg{topic: p.topic, payload: data})
		p.mu.Unlock()
		return nil
	}

	return p.send(p.topic, data)
}

// send publishes one payload at QoS 0.
func (p *RealPublisher) send(topic string, data []byte) error {
	token := p.client.Publish(topic, 0, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// replayBuffered drains the offline buffer, oldest first.
func (p *RealPublisher) replayBuffered() {
	p.mu.Lock()
	msgs := p.buffer.drainAll()
	p.mu.Unlock()

	for _, msg := range msgs {
		// Best effort; a failure here puts us back in disconnect land
		// and the auto-reconnect handler will run again.
		_ = p.send(msg.topic, msg.payload)
	}
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // milliseconds
	return nil
}
