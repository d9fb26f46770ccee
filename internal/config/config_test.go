package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contact-qr/internal/capacity"
	"github.com/jonathan/contact-qr/internal/fitsearch"
	"github.com/jonathan/contact-qr/internal/payload"
)

func boolPtr(b bool) *bool { return &b }

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"level": "h",
		"size": 512,
		"embed_photo": true,
		"auto_downgrade": false,
		"max_dimension": 384,
		"database_url": "postgres://localhost/cards",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "h", cfg.Level)
	assert.Equal(t, capacity.H, cfg.RequestedLevel())
	assert.Equal(t, 512, cfg.Size)
	assert.True(t, cfg.EmbedsPhoto())
	assert.Equal(t, 384, cfg.MaxDimension)
	assert.Equal(t, "postgres://localhost/cards", cfg.DatabaseURL)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, payload.Features{AutoDowngrade: false, AutoCompress: true, HostedURL: true}, cfg.Features())
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	content := `
level: Q
dark: "#123456"
auto_compress: false
workers: 8
public_base_url: https://cards.example.com
`
	for _, name := range []string{"config.yaml", "config.YML"} {
		t.Run(name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

			cfg, err := LoadConfig(tmpFile)
			require.NoError(t, err)

			assert.Equal(t, capacity.Q, cfg.RequestedLevel())
			assert.Equal(t, "#123456", cfg.Dark)
			assert.Equal(t, 8, cfg.Workers)
			assert.Equal(t, "https://cards.example.com", cfg.PublicBaseURL)
			assert.False(t, cfg.Features().AutoCompress)
			assert.True(t, cfg.Features().AutoDowngrade)
		})
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("level: [unterminated"), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestSave_RoundTrip(t *testing.T) {
	for _, name := range []string{"nested/config.yaml", "nested/config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := Default()
			want.AutoCompress = boolPtr(false)

			require.NoError(t, Save(path, want))

			got, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty", cfg: Config{}},
		{name: "defaults", cfg: *Default()},
		{name: "bad level", cfg: Config{Level: "X"}, wantErr: "'level'"},
		{name: "negative size", cfg: Config{Size: -1}, wantErr: "'size'"},
		{name: "bad dark", cfg: Config{Dark: "red"}, wantErr: "'dark'"},
		{name: "bad light", cfg: Config{Light: "#12"}, wantErr: "'light'"},
		{name: "dimension too small", cfg: Config{MaxDimension: 32}, wantErr: "'max_dimension'"},
		{name: "quality too high", cfg: Config{Quality: 1}, wantErr: "'quality'"},
		{name: "negative workers", cfg: Config{Workers: -2}, wantErr: "'workers'"},
		{name: "base URL not http", cfg: Config{PublicBaseURL: "ftp://x"}, wantErr: "'public_base_url'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Level: "H", Workers: 2, AutoDowngrade: boolPtr(false)}
	defaults := *Default()
	defaults.EmbedPhoto = boolPtr(true)
	defaults.AutoDowngrade = boolPtr(true)

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, "H", merged.Level)
	assert.Equal(t, 2, merged.Workers)
	assert.False(t, *merged.AutoDowngrade, "explicit false must survive the merge")
	assert.True(t, merged.EmbedsPhoto())
	assert.Equal(t, DefaultAddr, merged.Addr)
	assert.Equal(t, DefaultOutputDir, merged.OutputDir)
	assert.Equal(t, defaults.Size, merged.Size)
	assert.Equal(t, defaults.Quality, merged.Quality)

	// The receiver is untouched.
	assert.Empty(t, cfg.Addr)
}

func TestDerivedSettings(t *testing.T) {
	cfg := Config{Level: "nonsense", Size: 5000, MaxDimension: 2000, Quality: 0.1}

	assert.Equal(t, capacity.M, cfg.RequestedLevel())
	assert.False(t, cfg.EmbedsPhoto())
	assert.Equal(t, payload.DefaultFeatures(), cfg.Features())

	opts := cfg.QROptions()
	assert.Equal(t, 1024, opts.Size)
	assert.Equal(t, "#000000", opts.Dark)
	assert.Equal(t, capacity.M, opts.Level)

	assert.Equal(t, fitsearch.Candidate{MaxDimension: 1024, Quality: 0.4}, cfg.PhotoSettings())
}
