// internal/sidetone/sidetone.go
// Package sidetone plays keyed audio feedback so the operator hears
// which symbol the classifier registered.
package sidetone

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
)

var (
	ErrNotInitialized = errors.New("sidetone not initialized")
	ErrAlreadyRunning = errors.New("sidetone already running")
	ErrInvalidRate    = errors.New("sample rate must be positive")
	ErrInvalidFreq    = errors.New("tone frequency must be positive")
)

// Config holds sidetone playback configuration
type Config struct {
	DeviceIndex int     // -1 for default device
	SampleRate  uint32  // e.g., 48000
	Frequency   float64 // tone frequency in Hz, e.g., 600
}

// DefaultConfig returns sensible defaults for feedback tones
func DefaultConfig() Config {
	return Config{
		DeviceIndex: -1,
		SampleRate:  48000,
		Frequency:   600,
	}
}

// Player renders a fixed-frequency sine through the default playback
// device whenever a key pulse is pending. Silence otherwise.
type Player struct {
	config  Config
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	running bool
	mu      sync.Mutex

	// remaining is the number of samples left to sound; written by
	// Key(), consumed on the audio thread.
	remaining atomic.Int64
	phase     float64
}

// New creates a sidetone player.
func New(cfg Config) (*Player, error) {
	if cfg.SampleRate == 0 {
		return nil, ErrInvalidRate
	}
	if cfg.Frequency <= 0 {
		return nil, ErrInvalidFreq
	}
	return &Player{config: cfg}, nil
}

// Init initializes the audio backend.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	p.ctx = ctx
	return nil
}

// ListDevices returns available playback devices.
func (p *Player) ListDevices() ([]malgo.DeviceInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return nil, ErrNotInitialized
	}

	infos, err := p.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	return infos, nil
}

// deviceIDAt bounds-checks a configured device index against the
// enumerated playback devices.
func deviceIDAt(infos []malgo.DeviceInfo, index int) (*malgo.DeviceID, error) {
	if index >= len(infos) {
		return nil, fmt.Errorf("device index %d out of range (have %d devices)",
			index, len(infos))
	}
	return &infos[index].ID, nil
}

// Start opens the playback device and begins rendering.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}
	if p.ctx == nil {
		return ErrNotInitialized
	}

	deviceConfig := malgo.DeviceConfig{
		DeviceType: malgo.Playback,
		SampleRate: p.config.SampleRate,
		Playback: malgo.SubConfig{
			Format:   malgo.FormatF32,
			Channels: 1,
		},
	}

	// Select specific device if requested
	if p.config.DeviceIndex >= 0 {
		infos, err := p.ctx.Devices(malgo.Playback)
		if err != nil {
			return fmt.Errorf("enumerate devices: %w", err)
		}
		id, err := deviceIDAt(infos, p.config.DeviceIndex)
		if err != nil {
			return err
		}
		deviceConfig.Playback.DeviceID = id.Pointer()
	}

	// Runs on the audio thread: fill the output buffer, no blocking.
	onSendFrames := func(outputSamples, inputSamples []byte, frameCount uint32) {
		p.render(outputSamples, frameCount)
	}

	device, err := malgo.InitDevice(p.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSendFrames,
	})
	if err != nil {
		return fmt.Errorf("init playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start playback device: %w", err)
	}

	p.device = device
	p.running = true
	return nil
}

// Key sounds the tone for the given duration. A new key replaces any
// pulse still sounding; feedback is advisory, not a data path.
func (p *Player) Key(duration time.Duration) {
	samples := int64(duration.Seconds() * float64(p.config.SampleRate))
	p.remaining.Store(samples)
}

// render writes frameCount mono float32 samples of sine or silence.
func (p *Player) render(out []byte, frameCount uint32) {
	step := 2 * math.Pi * p.config.Frequency / float64(p.config.SampleRate)

	for i := uint32(0); i < frameCount; i++ {
		var sample float32
		if p.remaining.Load() > 0 {
			sample = float32(0.3 * math.Sin(p.phase))
			p.phase += step
			if p.phase > 2*math.Pi {
				p.phase -= 2 * math.Pi
			}
			p.remaining.Add(-1)
		} else {
			p.phase = 0
		}

		bits := math.Float32bits(sample)
		offset := int(i) * 4
		out[offset] = byte(bits)
		out[offset+1] = byte(bits >> 8)
		out[offset+2] = byte(bits >> 16)
		out[offset+3] = byte(bits >> 24)
	}
}

// IsRunning returns true while the playback device is active.
func (p *Player) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Close stops playback and releases all audio resources.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device != nil {
		_ = p.device.Stop()
		p.device.Uninit()
		p.device = nil
	}
	p.running = false

	if p.ctx != nil {
		if err := p.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninit context: %w", err)
		}
		p.ctx.Free()
		p.ctx = nil
	}
	return nil
}
