// cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ColonelBlimp/blinkmorse/internal/blink"
	"github.com/ColonelBlimp/blinkmorse/internal/config"
	"github.com/ColonelBlimp/blinkmorse/internal/key"
	"github.com/ColonelBlimp/blinkmorse/internal/morse"
	"github.com/ColonelBlimp/blinkmorse/internal/mqtt"
	"github.com/ColonelBlimp/blinkmorse/internal/recovery"
	"github.com/ColonelBlimp/blinkmorse/internal/session"
	"github.com/ColonelBlimp/blinkmorse/internal/sidetone"
	"github.com/ColonelBlimp/blinkmorse/internal/source"
	"github.com/spf13/cobra"
)

// Feedback tone lengths; advisory only, not tied to the classifier bands.
const (
	dotToneDuration  = 100 * time.Millisecond
	dashToneDuration = 300 * time.Millisecond
)

func run(cmd *cobra.Command, args []string) error {
	settings, err := config.Get()
	if err != nil {
		return err
	}

	classifier, err := blink.NewClassifier(blink.Config{
		ShortThreshold: settings.ShortThreshold,
		LongThreshold:  settings.LongThreshold,
		LetterGapMin:   settings.LetterGapMin,
		WordGapMin:     settings.WordGapMin,
	})
	if err != nil {
		return fmt.Errorf("classifier config: %w", err)
	}
	if settings.Debug {
		bands := classifier.Config()
		fmt.Fprintf(os.Stderr, "timing: dot [%v, %v), letter gap %v, word gap %v\n",
			bands.ShortThreshold, bands.LongThreshold, bands.LetterGapMin, bands.WordGapMin)
	}

	decoder, err := morse.NewDecoder(morse.DecoderConfig{
		Table: tableWithOverrides(settings.MorseOverrides),
	})
	if err != nil {
		return fmt.Errorf("decoder config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sinks
	var player *sidetone.Player
	if settings.Sidetone.Enabled {
		player, err = sidetone.New(sidetone.Config{
			DeviceIndex: settings.Sidetone.DeviceIndex,
			SampleRate:  48000,
			Frequency:   settings.Sidetone.Frequency,
		})
		if err != nil {
			return fmt.Errorf("sidetone config: %w", err)
		}
		if err = player.Init(); err != nil {
			return err
		}
		defer player.Close()
		if err = player.Start(); err != nil {
			return err
		}
	}

	var publisher mqtt.Publisher
	if settings.MQTT.Enabled {
		publisher, err = mqtt.NewRealPublisher(mqtt.Options{
			Broker:   settings.MQTT.Broker,
			Topic:    settings.MQTT.Topic,
			ClientID: settings.MQTT.ClientID,
		})
		if err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		defer publisher.Close()
	}

	sess := session.New(classifier, decoder)
	sess.SetDebug(settings.Debug)
	sess.SetCallback(makeSinkCallback(player, publisher))

	src, closeSrc, err := buildSource(settings)
	if err != nil {
		return err
	}
	if closeSrc != nil {
		defer closeSrc()
	}

	observations := make(chan blink.Observation, 64)
	go func() {
		defer recovery.HandlePanic()
		defer close(observations)
		if err := src.Run(ctx, observations); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "source error: %v\n", err)
		}
	}()

	if err = sess.Run(ctx, observations); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	// Session end: final transcript and decoded message to the terminal.
	snap := decoder.Snapshot()
	fmt.Printf("Final Morse Code: %s\n", decoder.Transcript())
	fmt.Printf("Decoded Message: %s\n", snap.Text)

	if publisher != nil {
		if err := publisher.Publish(mqtt.Message{
			Timestamp: time.Now(),
			Text:      snap.Text,
			Final:     true,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "mqtt publish: %v\n", err)
		}
	}
	return nil
}

// buildSource constructs the configured signal source. The returned
// cleanup function releases the source's resources, if it has any.
func buildSource(settings *config.Settings) (source.Source, func(), error) {
	switch settings.Source {
	case "key":
		reader, err := key.NewRealReader(settings.GPIOChip, settings.GPIOPin)
		if err != nil {
			return nil, nil, err
		}
		return source.NewKey(reader, settings.SampleInterval), func() { _ = reader.Close() }, nil

	default: // "replay", validated by config
		if settings.Input == "-" {
			return source.NewReplay(os.Stdin, settings.EARThreshold), nil, nil
		}
		f, err := os.Open(settings.Input)
		if err != nil {
			return nil, nil, fmt.Errorf("open replay input: %w", err)
		}
		return source.NewReplay(f, settings.EARThreshold), func() { _ = f.Close() }, nil
	}
}

// makeSinkCallback fans classifier events out to the optional sinks:
// keyed tones for symbols, decoded characters over MQTT.
func makeSinkCallback(player *sidetone.Player, publisher mqtt.Publisher) session.EventCallback {
	var published int // runes of decoded text already sent

	return func(event blink.Event, snap morse.Snapshot) {
		switch event {
		case blink.EventDot:
			if player != nil {
				player.Key(dotToneDuration)
			}
		case blink.EventDash:
			if player != nil {
				player.Key(dashToneDuration)
			}
		case blink.EventLetterSpace, blink.EventWordSpace:
			if publisher == nil {
				return
			}
			text := []rune(snap.Text)
			for ; published < len(text); published++ {
				char := string(text[published])
				if char == " " {
					char = "" // word break carries no character
				}
				err := publisher.Publish(mqtt.Message{
					Timestamp: time.Now(),
					Character: char,
					Text:      snap.Text,
				})
				if err != nil {
					fmt.Fprintf(os.Stderr, "mqtt publish: %v\n", err)
				}
			}
		}
	}
}

// tableWithOverrides merges config overrides onto the built-in table.
// Overrides are pre-validated by config.Validate.
func tableWithOverrides(overrides map[string]string) map[string]rune {
	table := morse.DefaultTable()
	for code, char := range overrides {
		for _, r := range char {
			table[code] = r
			break
		}
	}
	return table
}
