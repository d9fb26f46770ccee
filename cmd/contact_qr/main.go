// Package main provides the contact_qr CLI: vCard files, QR codes and the
// hosted card server.
package main

import (
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/contact-qr/internal/config"
)

var log = logging.Logger("cli")

var rootCmd = &cobra.Command{
	Use:   "contact_qr",
	Short: "Contact card and QR code builder",
	Long: `contact_qr turns contact details into vCard 3.0 files and QR codes that fit
the capacity of their error-correction level, shrinking embedded photos or
weakening the level when needed.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

var (
	configPath string
	verbose    bool

	// settings is the merged configuration every command reads.
	settings = config.Default()
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (JSON, or YAML with .yaml/.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging and summaries")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings merges the config file over the defaults and sets log levels.
func loadSettings(_ *cobra.Command, _ []string) error {
	cfg, err := resolveSettings(configPath)
	if err != nil {
		return err
	}
	settings = cfg

	if verbose || settings.Verbose {
		verbose = true
		logging.SetAllLoggers(logging.LevelDebug)
	} else {
		logging.SetAllLoggers(logging.LevelWarn)
	}
	return nil
}

func resolveSettings(path string) (*config.Config, error) {
	defaults := config.Default()
	if path == "" {
		return defaults, nil
	}

	loaded, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	merged := loaded.MergeWithDefaults(*defaults)
	return &merged, nil
}
