package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/contact-qr/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or show configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write a config file with every default filled in",
	Long: `Writes the default configuration to PATH (default contact_qr.yaml).
A .yaml or .yml extension writes YAML, anything else JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configForce bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := "contact_qr.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if err := writeDefaultConfig(path, configForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

func writeDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	cfg := config.Default()
	enabled := true
	embed := false
	cfg.AutoDowngrade = &enabled
	cfg.AutoCompress = &enabled
	cfg.HostedURL = &enabled
	cfg.EmbedPhoto = &embed
	return config.Save(path, cfg)
}
