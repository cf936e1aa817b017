// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName       = "blinkmorse"
	ConfigType    = "yaml"
	DefaultConfig = `# blinkmorse configuration

# Blink timing (classifier thresholds)
short_threshold: 100ms  # Minimum closure counted as a blink; shorter closures are sensor jitter
long_threshold: 400ms   # Closures below this are dots, closures at or above are dashes
letter_gap_min: 800ms   # Minimum open interval that ends the current letter
word_gap_min: 1600ms    # Minimum open interval that ends the current word

# Signal source
source: "replay"        # replay (file/stdin of "seconds,ear" lines) or key (GPIO morse key)
input: "-"              # Replay input path; '-' reads stdin
ear_threshold: 0.03     # EAR value below which the eyes count as closed (replay source)
sample_interval: 20ms   # Key poll period (key source)
gpio_chip: "gpiochip0"  # GPIO character device (key source)
gpio_pin: 17            # Key input line, BCM numbering (key source)

# Audio feedback
sidetone:
  enabled: false        # Sound a tone when a dot or dash is registered
  frequency: 600        # Tone frequency in Hz
  device_index: -1      # Playback device (-1 for default)

# Decoded output over MQTT
mqtt:
  enabled: false
  broker: "tcp://localhost:1883"
  topic: "blinkmorse/decoded"
  client_id: "blinkmorse"

# Extra code table entries, merged over the built-in table
# morse_overrides:
#   ".-.-": "+"

# Output
debug: false            # Per-event diagnostics on stderr
`
)

// SidetoneSettings holds audio feedback configuration
type SidetoneSettings struct {
	Enabled     bool    `mapstructure:"enabled"`
	Frequency   float64 `mapstructure:"frequency"`
	DeviceIndex int     `mapstructure:"device_index"`
}

// MQTTSettings holds decoded-output publishing configuration
type MQTTSettings struct {
	Enabled  bool   `mapstructure:"enabled"`
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
}

// Settings holds all application configuration
type Settings struct {
	// Blink timing
	ShortThreshold time.Duration `mapstructure:"short_threshold"`
	LongThreshold  time.Duration `mapstructure:"long_threshold"`
	LetterGapMin   time.Duration `mapstructure:"letter_gap_min"`
	WordGapMin     time.Duration `mapstructure:"word_gap_min"`

	// Signal source
	Source         string        `mapstructure:"source"`
	Input          string        `mapstructure:"input"`
	EARThreshold   float64       `mapstructure:"ear_threshold"`
	SampleInterval time.Duration `mapstructure:"sample_interval"`
	GPIOChip       string        `mapstructure:"gpio_chip"`
	GPIOPin        int           `mapstructure:"gpio_pin"`

	// Sinks
	Sidetone SidetoneSettings `mapstructure:"sidetone"`
	MQTT     MQTTSettings     `mapstructure:"mqtt"`

	// Code table extensions
	MorseOverrides map[string]string `mapstructure:"morse_overrides"`

	// Output
	Debug bool `mapstructure:"debug"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/blinkmorse/
func Init() error {
	// Set defaults
	viper.SetDefault("short_threshold", 100*time.Millisecond)
	viper.SetDefault("long_threshold", 400*time.Millisecond)
	viper.SetDefault("letter_gap_min", 800*time.Millisecond)
	viper.SetDefault("word_gap_min", 1600*time.Millisecond)
	viper.SetDefault("source", "replay")
	viper.SetDefault("input", "-")
	viper.SetDefault("ear_threshold", 0.03)
	viper.SetDefault("sample_interval", 20*time.Millisecond)
	viper.SetDefault("gpio_chip", "gpiochip0")
	viper.SetDefault("gpio_pin", 17)
	viper.SetDefault("sidetone.enabled", false)
	viper.SetDefault("sidetone.frequency", 600)
	viper.SetDefault("sidetone.device_index", -1)
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic", "blinkmorse/decoded")
	viper.SetDefault("mqtt.client_id", "blinkmorse")
	viper.SetDefault("debug", false)

	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	// If no config was found anywhere, create the default in the XDG dir
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			xdgConfigPath := filepath.Join(configDir, AppName)
			if err = ensureConfigExists(xdgConfigPath); err != nil {
				return err
			}
			if err = viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges.
// Threshold ordering violations are configuration errors caught here,
// before any tick is processed.
func (s *Settings) Validate() error {
	var errs []error

	// Blink timing: 0 < short < long, 0 < letter < word
	if s.ShortThreshold <= 0 {
		errs = append(errs, fmt.Errorf("short_threshold must be positive, got %v", s.ShortThreshold))
	}
	if s.LongThreshold <= s.ShortThreshold {
		errs = append(errs, fmt.Errorf("long_threshold (%v) must be greater than short_threshold (%v)", s.LongThreshold, s.ShortThreshold))
	}
	if s.LetterGapMin <= 0 {
		errs = append(errs, fmt.Errorf("letter_gap_min must be positive, got %v", s.LetterGapMin))
	}
	if s.WordGapMin <= s.LetterGapMin {
		errs = append(errs, fmt.Errorf("word_gap_min (%v) must be greater than letter_gap_min (%v)", s.WordGapMin, s.LetterGapMin))
	}

	// Signal source
	switch s.Source {
	case "replay", "key":
	default:
		errs = append(errs, fmt.Errorf("source must be replay or key, got %q", s.Source))
	}
	if s.EARThreshold <= 0 || s.EARThreshold >= 1 {
		errs = append(errs, fmt.Errorf("ear_threshold must be between 0 and 1 exclusive, got %v", s.EARThreshold))
	}
	if s.SampleInterval < time.Millisecond || s.SampleInterval > time.Second {
		errs = append(errs, fmt.Errorf("sample_interval must be between 1ms and 1s, got %v", s.SampleInterval))
	}
	if s.GPIOPin < 0 {
		errs = append(errs, fmt.Errorf("gpio_pin must be non-negative, got %d", s.GPIOPin))
	}

	// Sidetone
	if s.Sidetone.Frequency < 100 || s.Sidetone.Frequency > 3000 {
		errs = append(errs, fmt.Errorf("sidetone.frequency must be between 100 and 3000 Hz, got %v", s.Sidetone.Frequency))
	}

	// MQTT
	if s.MQTT.Enabled && s.MQTT.Broker == "" {
		errs = append(errs, fmt.Errorf("mqtt.broker must be set when mqtt.enabled is true"))
	}

	// Code table overrides map one code group to one character
	for code, char := range s.MorseOverrides {
		for _, c := range code {
			if c != '.' && c != '-' {
				errs = append(errs, fmt.Errorf("morse_overrides key %q must contain only '.' and '-'", code))
				break
			}
		}
		if n := len([]rune(char)); n != 1 {
			errs = append(errs, fmt.Errorf("morse_overrides[%q] must be a single character, got %q", code, char))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
