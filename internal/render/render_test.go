package render

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/sharebite/internal/config"
	"github.com/woozymasta/sharebite/internal/donation"
	"github.com/woozymasta/sharebite/internal/geo"
	"github.com/woozymasta/sharebite/internal/view"
)

var sample = []donation.Record{
	{ID: "1", FoodName: "Fried Rice", Category: "veg", DisplayAddress: "1st Main", GeocodeLocation: "Koramangala", Count: 4, Phone: "555", DistanceKm: 1.234},
	{ID: "2", FoodName: "Bread", Category: "bakery", Count: 2, Note: "fresh", DistanceKm: math.Inf(1)},
}

var (
	_ view.ListView = (*TextList)(nil)
	_ view.ListView = (*HTMLList)(nil)
	_ view.MapView  = (*GeoJSONMap)(nil)
)

func TestTextList(t *testing.T) {
	l := NewTextList()
	l.Render(sample)

	var buf bytes.Buffer
	_, err := l.WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, " 1. Fried Rice (veg)  [id 1]")
	assert.Contains(t, out, "Distance: 1.23 km away")
	assert.Contains(t, out, "Distance: Not available")
	assert.Contains(t, out, "Notes:    No notes provided")
	assert.Contains(t, out, "Notes:    fresh")
	assert.Contains(t, out, "Serves:   4 people")

	l.SetVisible("1", false)
	buf.Reset()
	_, _ = l.WriteTo(&buf)
	assert.NotContains(t, buf.String(), "Fried Rice")
	assert.Contains(t, buf.String(), " 2. Bread (bakery)", "numbering follows the ranked order")

	l.SetVisible("2", false)
	buf.Reset()
	_, _ = l.WriteTo(&buf)
	assert.Equal(t, "No donations match the current filter.\n", buf.String())

	l.ShowMessage(view.MsgEmpty)
	buf.Reset()
	_, _ = l.WriteTo(&buf)
	assert.Equal(t, view.MsgEmpty+"\n", buf.String())
}

func TestListRemoveDoesNotAliasInput(t *testing.T) {
	records := append([]donation.Record(nil), sample...)
	l := NewTextList()
	l.Render(records)

	l.Remove("1")

	entries, _ := l.entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "2", entries[0].ID)
	assert.Equal(t, "1", records[0].ID)
}

func TestHTMLList(t *testing.T) {
	l := NewHTMLList("Nearby donations")
	l.Render(append(sample, donation.Record{ID: "3", FoodName: "<b>Cake</b>", Category: "bakery"}))
	l.SetVisible("2", false)

	page, err := l.Bytes()
	require.NoError(t, err)

	out := string(page)
	assert.Contains(t, out, "Fried Rice (veg)")
	assert.Contains(t, out, "1.23 km away")
	assert.Contains(t, out, "Not available")
	assert.Contains(t, out, "No notes provided")
	assert.Contains(t, out, "donor-card")
	assert.Contains(t, out, "claim-btn")
	assert.NotContains(t, out, "<b>Cake")
	assert.Contains(t, out, "Cake")
	assert.Equal(t, 1, strings.Count(out, "display:none"))

	l.ShowMessage(view.MsgFetchFailed)
	page, err = l.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(page), view.MsgFetchFailed)
	assert.NotContains(t, string(page), "donor-card")
}

func TestGeoJSONMap(t *testing.T) {
	cfg := config.Default().Map
	m := NewGeoJSONMap(cfg)

	m.SetView(geo.Coordinate{Latitude: 12.97, Longitude: 77.59}, 12)
	me := m.AddMarker(geo.Coordinate{Latitude: 12.97, Longitude: 77.59}, view.StyleReceiver, view.ReceiverPopup)
	d1 := m.AddMarker(geo.Coordinate{Latitude: 12.98, Longitude: 77.60}, view.StyleDonation, "<b>Soup</b>")
	assert.NotEqual(t, me, d1)

	doc := m.Document()
	require.NotNil(t, doc.Center)
	assert.Equal(t, 12, doc.Zoom)
	require.Len(t, doc.Markers.Features, 2)
	assert.Equal(t, "blue", doc.Markers.Features[0].Properties["style"])
	assert.Equal(t, "red", doc.Markers.Features[1].Properties["style"])
	assert.Equal(t, "<b>Soup</b>", doc.Markers.Features[1].Properties["popup"])
	assert.Len(t, doc.Markers.Features[1].Properties["geohash"], int(cfg.GeohashPrecision))

	m.RemoveMarker(d1)
	assert.Len(t, m.Document().Markers.Features, 1)
	assert.Len(t, doc.Markers.Features, 2, "documents are copies")

	m.Reset()
	doc = m.Document()
	assert.Nil(t, doc.Center)
	assert.Empty(t, doc.Markers.Features)
	assert.Equal(t, "FeatureCollection", doc.Markers.Type)
}

func TestGeoJSONMapSave(t *testing.T) {
	m := NewGeoJSONMap(config.Default().Map)
	m.SetView(geo.Coordinate{Latitude: 1, Longitude: 2}, 12)
	m.AddMarker(geo.Coordinate{Latitude: 1, Longitude: 2}, view.StyleReceiver, view.ReceiverPopup)

	path := filepath.Join(t.TempDir(), "out", "donations.geojson")
	require.NoError(t, m.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc MapDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Markers.Features, 1)
	assert.Equal(t, []float64{2, 1}, doc.Markers.Features[0].Geometry.Coordinates)
	assert.Equal(t, config.DefaultTileURL, doc.TileURL)
}
