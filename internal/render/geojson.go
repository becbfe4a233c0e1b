// Package render provides concrete list and map views for receiver sessions.
package render

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/woozymasta/sharebite/internal/config"
	"github.com/woozymasta/sharebite/internal/geo"
	"github.com/woozymasta/sharebite/internal/view"

	"github.com/rs/zerolog/log"
)

// MapDocument is the serialized map: the viewport plus the marker collection.
type MapDocument struct {
	Center      *geo.Coordinate              `json:"center,omitempty"      yaml:"center,omitempty"`
	TileURL     string                       `json:"tile_url"              yaml:"tile_url"`
	Attribution string                       `json:"attribution,omitempty" yaml:"attribution,omitempty"`
	Markers     geo.GeoJSONFeatureCollection `json:"markers"               yaml:"markers"`
	Zoom        int                          `json:"zoom"                  yaml:"zoom"`
}

// GeoJSONMap implements view.MapView as a GeoJSON feature collection that a
// Leaflet frontend can load directly.
type GeoJSONMap struct {
	cfg    config.Map
	center *geo.Coordinate
	fc     geo.GeoJSONFeatureCollection
	zoom   int
	next   int

	mu sync.RWMutex
}

// NewGeoJSONMap returns an empty map using cfg for marker styles and tiles.
func NewGeoJSONMap(cfg config.Map) *GeoJSONMap {
	return &GeoJSONMap{cfg: cfg, fc: geo.NewFeatureCollection(), zoom: cfg.Zoom}
}

// Reset implements view.MapView.
func (m *GeoJSONMap) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fc = geo.NewFeatureCollection()
	m.center = nil
	m.zoom = m.cfg.Zoom
}

// SetView implements view.MapView.
func (m *GeoJSONMap) SetView(center geo.Coordinate, zoom int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.center = &center
	m.zoom = zoom
}

// AddMarker implements view.MapView.
func (m *GeoJSONMap) AddMarker(at geo.Coordinate, style view.MarkerStyle, popup string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	handle := "marker-" + strconv.Itoa(m.next)

	ms := m.cfg.DonationMarker
	if style == view.StyleReceiver {
		ms = m.cfg.ReceiverMarker
	}

	m.fc.Features = append(m.fc.Features, geo.PointFeature(handle, at, map[string]interface{}{
		"marker":  string(style),
		"style":   ms.Name,
		"icon":    ms.IconURL,
		"shadow":  ms.ShadowURL,
		"popup":   popup,
		"geohash": at.Geohash(m.cfg.GeohashPrecision),
	}))

	return handle
}

// RemoveMarker implements view.MapView.
func (m *GeoJSONMap) RemoveMarker(handle string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, f := range m.fc.Features {
		if f.ID == handle {
			m.fc.Features = append(m.fc.Features[:i], m.fc.Features[i+1:]...)
			return
		}
	}
}

// Document returns a copy of the current map.
func (m *GeoJSONMap) Document() MapDocument {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc := MapDocument{
		TileURL:     m.cfg.TileURL,
		Attribution: m.cfg.Attribution,
		Zoom:        m.zoom,
		Markers: geo.GeoJSONFeatureCollection{
			Type:     m.fc.Type,
			Features: append([]geo.GeoJSONFeature(nil), m.fc.Features...),
		},
	}
	if doc.Markers.Features == nil {
		doc.Markers.Features = []geo.GeoJSONFeature{}
	}
	if m.center != nil {
		c := *m.center
		doc.Center = &c
	}
	return doc
}

// WriteTo encodes the map document as JSON.
func (m *GeoJSONMap) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := json.NewEncoder(cw).Encode(m.Document())
	return cw.n, err
}

// Save writes the map document to path, creating parent directories.
func (m *GeoJSONMap) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	_, err = m.WriteTo(f)
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
