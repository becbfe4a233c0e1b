// Package donation defines donation records and the wire shapes exchanged with the marketplace.
package donation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/woozymasta/sharebite/internal/geo"
)

// Record is one listed food donation.
type Record struct {
	Coordinate      *geo.Coordinate `json:"-"`
	ID              string          `json:"id"`
	Category        string          `json:"category"`
	FoodName        string          `json:"foodname"`
	DisplayAddress  string          `json:"display_address"`
	GeocodeLocation string          `json:"geocode_location"`
	Note            string          `json:"note,omitempty"`
	Phone           string          `json:"phone"`
	Count           int             `json:"count"`
	Claimed         bool            `json:"claimed"`

	// DistanceKm is filled in by ranking. +Inf means the distance is unknown.
	DistanceKm float64 `json:"-"`
}

// HasDistance reports whether the record carries a known distance.
func (r Record) HasDistance() bool {
	return !math.IsInf(r.DistanceKm, 1) && !math.IsNaN(r.DistanceKm)
}

type wireRecord struct {
	Latitude        *float64        `json:"latitude"`
	Longitude       *float64        `json:"longitude"`
	ID              json.RawMessage `json:"id"`
	Category        string          `json:"category"`
	FoodName        string          `json:"foodname"`
	DisplayAddress  string          `json:"display_address"`
	GeocodeLocation string          `json:"geocode_location"`
	Note            *string         `json:"note"`
	Phone           string          `json:"phone"`
	Count           int             `json:"count"`
	Claimed         bool            `json:"claimed"`
}

// UnmarshalJSON decodes the marketplace wire shape. The id may arrive as a
// string or a number; a record lacking either latitude or longitude has no coordinate.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id, err := decodeID(w.ID)
	if err != nil {
		return err
	}

	*r = Record{
		ID:              id,
		Category:        w.Category,
		FoodName:        w.FoodName,
		DisplayAddress:  w.DisplayAddress,
		GeocodeLocation: w.GeocodeLocation,
		Phone:           w.Phone,
		Count:           w.Count,
		Claimed:         w.Claimed,
		DistanceKm:      math.Inf(1),
	}
	if w.Note != nil {
		r.Note = *w.Note
	}
	if w.Latitude != nil && w.Longitude != nil {
		r.Coordinate = &geo.Coordinate{Latitude: *w.Latitude, Longitude: *w.Longitude}
	}

	return nil
}

// MarshalJSON writes the wire shape back, coordinates flattened.
func (r Record) MarshalJSON() ([]byte, error) {
	w := struct {
		Latitude        *float64 `json:"latitude"`
		Longitude       *float64 `json:"longitude"`
		ID              string   `json:"id"`
		Category        string   `json:"category"`
		FoodName        string   `json:"foodname"`
		DisplayAddress  string   `json:"display_address"`
		GeocodeLocation string   `json:"geocode_location"`
		Note            string   `json:"note,omitempty"`
		Phone           string   `json:"phone"`
		Count           int      `json:"count"`
		Claimed         bool     `json:"claimed"`
	}{
		ID:              r.ID,
		Category:        r.Category,
		FoodName:        r.FoodName,
		DisplayAddress:  r.DisplayAddress,
		GeocodeLocation: r.GeocodeLocation,
		Note:            r.Note,
		Phone:           r.Phone,
		Count:           r.Count,
		Claimed:         r.Claimed,
	}
	if r.Coordinate != nil {
		lat, lon := r.Coordinate.Latitude, r.Coordinate.Longitude
		w.Latitude, w.Longitude = &lat, &lon
	}

	return json.Marshal(w)
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("donation id: %w", err)
	}
	return strings.TrimSpace(n.String()), nil
}

// DistanceText formats the distance with two decimals, or "Not available" for the sentinel.
func (r Record) DistanceText() string {
	if !r.HasDistance() {
		return "Not available"
	}
	return strconv.FormatFloat(r.DistanceKm, 'f', 2, 64) + " km"
}
