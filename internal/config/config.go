// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/contact-qr/internal/capacity"
	"github.com/jonathan/contact-qr/internal/fitsearch"
	"github.com/jonathan/contact-qr/internal/payload"
	"github.com/jonathan/contact-qr/internal/photo"
	"github.com/jonathan/contact-qr/internal/qr"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// QR output
	Level string `json:"level,omitempty" yaml:"level,omitempty"` // Requested error-correction level: L, M, Q or H
	Size  int    `json:"size,omitempty" yaml:"size,omitempty"`   // PNG size in pixels
	Dark  string `json:"dark,omitempty" yaml:"dark,omitempty"`   // Module color, #rgb or #rrggbb
	Light string `json:"light,omitempty" yaml:"light,omitempty"` // Background color

	// Photo
	EmbedPhoto   *bool   `json:"embed_photo,omitempty" yaml:"embed_photo,omitempty"`     // Embed the photo in the QR payload
	MaxDimension int     `json:"max_dimension,omitempty" yaml:"max_dimension,omitempty"` // Starting photo max dimension
	Quality      float64 `json:"quality,omitempty" yaml:"quality,omitempty"`             // Starting JPEG quality

	// Features; nil means enabled
	AutoDowngrade *bool `json:"auto_downgrade,omitempty" yaml:"auto_downgrade,omitempty"`
	AutoCompress  *bool `json:"auto_compress,omitempty" yaml:"auto_compress,omitempty"`
	HostedURL     *bool `json:"hosted_url,omitempty" yaml:"hosted_url,omitempty"`

	// Server
	Addr          string `json:"addr,omitempty" yaml:"addr,omitempty"`                       // Listen address
	PublicBaseURL string `json:"public_base_url,omitempty" yaml:"public_base_url,omitempty"` // Base of hosted card links
	DatabaseURL   string `json:"database_url,omitempty" yaml:"database_url,omitempty"`       // PostgreSQL connection URL

	// Behavior
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"` // Where batch output goes
	Workers   int    `json:"workers,omitempty" yaml:"workers,omitempty"`       // Batch concurrency
	Verbose   bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`       // Debug logging
}

// Default values.
const (
	DefaultAddr      = ":8080"
	DefaultOutputDir = "out"
	DefaultWorkers   = 4
)

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		Level:        capacity.M.String(),
		Size:         qr.DefaultSize,
		Dark:         qr.DefaultDark,
		Light:        qr.DefaultLight,
		MaxDimension: photo.DefaultMaxDim,
		Quality:      photo.DefaultQuality,
		Addr:         DefaultAddr,
		OutputDir:    DefaultOutputDir,
		Workers:      DefaultWorkers,
	}
}

// LoadConfig loads configuration from a file. Files ending in .yaml or .yml
// are parsed as YAML, anything else as JSON.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
		return &cfg, nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to path in the format its extension selects.
func Save(path string, cfg *Config) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Validate checks that the configuration has valid values.
// Zero values are allowed everywhere; they are filled by MergeWithDefaults.
func (c *Config) Validate() error {
	if c.Level != "" {
		if _, err := capacity.ParseLevel(c.Level); err != nil {
			return fmt.Errorf("config error: 'level': %w", err)
		}
	}

	if c.Size < 0 {
		return fmt.Errorf("config error: 'size' must be non-negative")
	}
	if c.Dark != "" {
		if _, err := qr.ParseColor(c.Dark); err != nil {
			return fmt.Errorf("config error: 'dark': %w", err)
		}
	}
	if c.Light != "" {
		if _, err := qr.ParseColor(c.Light); err != nil {
			return fmt.Errorf("config error: 'light': %w", err)
		}
	}

	if c.MaxDimension != 0 && (c.MaxDimension < photo.MinDimension || c.MaxDimension > photo.MaxDimension) {
		return fmt.Errorf("config error: 'max_dimension' must be between %d and %d", photo.MinDimension, photo.MaxDimension)
	}
	if c.Quality != 0 && (c.Quality < photo.MinQuality || c.Quality > photo.MaxQuality) {
		return fmt.Errorf("config error: 'quality' must be between %.2f and %.2f", photo.MinQuality, photo.MaxQuality)
	}

	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}

	if c.PublicBaseURL != "" {
		if err := payload.CheckHostedURL(c.PublicBaseURL); err != nil {
			return fmt.Errorf("config error: 'public_base_url': %w", err)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Level == "" {
		result.Level = defaults.Level
	}
	if result.Dark == "" {
		result.Dark = defaults.Dark
	}
	if result.Light == "" {
		result.Light = defaults.Light
	}
	if result.Addr == "" {
		result.Addr = defaults.Addr
	}
	if result.PublicBaseURL == "" {
		result.PublicBaseURL = defaults.PublicBaseURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}

	// Numeric fields: use default if zero
	if result.Size == 0 {
		result.Size = defaults.Size
	}
	if result.MaxDimension == 0 {
		result.MaxDimension = defaults.MaxDimension
	}
	if result.Quality == 0 {
		result.Quality = defaults.Quality
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}

	// Pointer bools: nil means unset
	if result.EmbedPhoto == nil {
		result.EmbedPhoto = defaults.EmbedPhoto
	}
	if result.AutoDowngrade == nil {
		result.AutoDowngrade = defaults.AutoDowngrade
	}
	if result.AutoCompress == nil {
		result.AutoCompress = defaults.AutoCompress
	}
	if result.HostedURL == nil {
		result.HostedURL = defaults.HostedURL
	}

	// Verbose cannot distinguish unset from false, so it is not merged
	// (CLI flags always win for plain bools)

	return result
}

// RequestedLevel returns the parsed Level, M when unset or invalid.
func (c *Config) RequestedLevel() capacity.Level {
	level, _ := capacity.ParseLevel(c.Level)
	return level
}

// Features returns the payload features, each enabled unless set to false.
func (c *Config) Features() payload.Features {
	return payload.Features{
		AutoDowngrade: enabled(c.AutoDowngrade),
		AutoCompress:  enabled(c.AutoCompress),
		HostedURL:     enabled(c.HostedURL),
	}
}

// EmbedsPhoto reports whether the photo goes into the QR payload. Off unless set.
func (c *Config) EmbedsPhoto() bool {
	return c.EmbedPhoto != nil && *c.EmbedPhoto
}

// QROptions returns the render options.
func (c *Config) QROptions() qr.Options {
	return qr.Options{Size: c.Size, Dark: c.Dark, Light: c.Light, Level: c.RequestedLevel()}.Normalized()
}

// PhotoSettings returns the starting candidate for photo re-encoding.
func (c *Config) PhotoSettings() fitsearch.Candidate {
	return fitsearch.Candidate{MaxDimension: c.MaxDimension, Quality: c.Quality}.Clamped()
}

func enabled(b *bool) bool {
	return b == nil || *b
}
