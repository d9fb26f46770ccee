package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/contact-qr/internal/capacity"
	"github.com/jonathan/contact-qr/internal/config"
)

func TestWriteDefaultConfig(t *testing.T) {
	for _, name := range []string{"contact_qr.yaml", "contact_qr.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, writeDefaultConfig(path, false))

			cfg, err := config.LoadConfig(path)
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			assert.Equal(t, capacity.M, cfg.RequestedLevel())
			assert.Equal(t, config.DefaultWorkers, cfg.Workers)
			assert.False(t, cfg.EmbedsPhoto())
			assert.Equal(t, config.Default().Features(), cfg.Features())
			require.NotNil(t, cfg.AutoDowngrade)
			assert.True(t, *cfg.AutoDowngrade)
		})
	}
}

func TestWriteDefaultConfig_Exists(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "contact_qr.yaml", "level: H\n")

	err := writeDefaultConfig(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, writeDefaultConfig(path, true))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, capacity.M, cfg.RequestedLevel())
}

func TestDatabaseURL(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "postgres://from-config"}

	t.Setenv("DATABASE_URL", "")
	assert.Equal(t, "postgres://from-config", databaseURL(cfg))

	t.Setenv("DATABASE_URL", "postgres://from-env")
	assert.Equal(t, "postgres://from-env", databaseURL(cfg))
}
