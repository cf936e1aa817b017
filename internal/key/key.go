// Package key reads a physical Morse key (pushbutton) with hardware
// abstraction. The real implementation uses the Linux GPIO character
// device; the fake implementation allows testing without hardware.
package key

// Reader reads the Morse key state.
type Reader interface {
	// Pressed returns true while the key is held down.
	Pressed() (bool, error)

	// Close releases the underlying resources.
	Close() error
}

// Defaults (BCM numbering on a Raspberry Pi)
const (
	// DefaultChip is the GPIO character device name
	DefaultChip = "gpiochip0"
	// DefaultPin is the key input line
	DefaultPin = 17
)
