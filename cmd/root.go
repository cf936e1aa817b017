// cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/ColonelBlimp/blinkmorse/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "blinkmorse",
	Short: "Morse code keyer driven by eye blinks",
	Long: `Converts a timed eye open/closed signal into Morse code symbols and
decoded text. Short closures key dots, long closures key dashes, and
open intervals separate letters and words.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().StringP("source", "s", "replay", "signal source (replay or key)")
	rootCmd.PersistentFlags().StringP("input", "i", "-", "replay input path ('-' for stdin)")
	rootCmd.PersistentFlags().BoolP("sidetone", "t", false, "sound a tone for each keyed symbol")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug output")

	// Bind flags to viper
	viper.BindPFlag("source", rootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("input", rootCmd.PersistentFlags().Lookup("input"))
	viper.BindPFlag("sidetone.enabled", rootCmd.PersistentFlags().Lookup("sidetone"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
}
