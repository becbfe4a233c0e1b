// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used when the configuration file omits a value.
const (
	DefaultBaseURL     = "https://sharebite-2kfi.onrender.com"
	DefaultZoom        = 12
	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
	DefaultMapFile     = "donations.geojson"
	DefaultListFile    = "donations.html"
	DefaultGeohash     = 7
)

// Config represents the root configuration file structure.
type Config struct {
	API        API      `yaml:"api"`
	Map        Map      `yaml:"map"`
	Output     Output   `yaml:"output"`
	Categories []string `yaml:"categories,omitempty"`
}

// API describes the remote marketplace service.
type API struct {
	BaseURL string `yaml:"base_url"`

	// Zero means no timeout: calls run until they complete or fail.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Map holds the map view settings.
type Map struct {
	TileURL          string      `yaml:"tile_url"              json:"tile_url"`
	Attribution      string      `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	ReceiverMarker   MarkerStyle `yaml:"receiver_marker"       json:"receiver_marker"`
	DonationMarker   MarkerStyle `yaml:"donation_marker"       json:"donation_marker"`
	Zoom             int         `yaml:"zoom,omitempty"        json:"zoom"`
	GeohashPrecision uint        `yaml:"geohash_precision,omitempty" json:"-"`
}

// MarkerStyle describes how a marker kind is drawn by the map frontend.
type MarkerStyle struct {
	Name      string `yaml:"name"                 json:"name"`
	IconURL   string `yaml:"icon_url,omitempty"   json:"icon_url,omitempty"`
	ShadowURL string `yaml:"shadow_url,omitempty" json:"shadow_url,omitempty"`
}

// Output lists where rendered views are written.
type Output struct {
	MapFile  string `yaml:"map_file,omitempty"`
	ListFile string `yaml:"list_file,omitempty"`
}

const (
	markerBase = "https://raw.githubusercontent.com/pointhi/leaflet-color-markers/master/img/"
	shadowURL  = "https://cdnjs.cloudflare.com/ajax/libs/leaflet/0.7.7/images/marker-shadow.png"
)

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the YAML configuration file from the specified path.
// When optional is set, a missing file yields the defaults.
func Load(path string, optional bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.Map.TileURL == "" {
		c.Map.TileURL = DefaultTileURL
	}
	if c.Map.Attribution == "" {
		c.Map.Attribution = DefaultAttribution
	}
	if c.Map.Zoom <= 0 {
		c.Map.Zoom = DefaultZoom
	}
	if c.Map.GeohashPrecision == 0 {
		c.Map.GeohashPrecision = DefaultGeohash
	}
	if c.Map.ReceiverMarker.Name == "" {
		c.Map.ReceiverMarker = MarkerStyle{
			Name:      "blue",
			IconURL:   markerBase + "marker-icon-2x-blue.png",
			ShadowURL: shadowURL,
		}
	}
	if c.Map.DonationMarker.Name == "" {
		c.Map.DonationMarker = MarkerStyle{
			Name:      "red",
			IconURL:   markerBase + "marker-icon-2x-red.png",
			ShadowURL: shadowURL,
		}
	}
	if c.Output.MapFile == "" {
		c.Output.MapFile = DefaultMapFile
	}
	if c.Output.ListFile == "" {
		c.Output.ListFile = DefaultListFile
	}
	if len(c.Categories) == 0 {
		c.Categories = []string{"veg", "non-veg", "bakery", "fruits", "beverages", "other"}
	}
}
