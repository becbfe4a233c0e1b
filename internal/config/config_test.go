package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingOptional(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"), true)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, DefaultZoom, cfg.Map.Zoom)
	assert.Equal(t, "blue", cfg.Map.ReceiverMarker.Name)
	assert.Equal(t, "red", cfg.Map.DonationMarker.Name)
	assert.Equal(t, DefaultMapFile, cfg.Output.MapFile)
	assert.NotEmpty(t, cfg.Categories)
}

func TestLoadMissingRequired(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: http://localhost:8000
  timeout: 30s
map:
  zoom: 14
  donation_marker:
    name: green
categories: [veg, bakery]
`), 0644))

	cfg, err := Load(path, false)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 14, cfg.Map.Zoom)
	assert.Equal(t, "green", cfg.Map.DonationMarker.Name)
	assert.Equal(t, "blue", cfg.Map.ReceiverMarker.Name)
	assert.Equal(t, []string{"veg", "bakery"}, cfg.Categories)
	assert.Equal(t, DefaultTileURL, cfg.Map.TileURL)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0644))

	_, err := Load(path, true)
	assert.Error(t, err)
}
