package locate

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/sharebite/internal/geo"
)

func TestStatic(t *testing.T) {
	pos := &geo.Coordinate{Latitude: 1, Longitude: 2}

	got, err := Static{Position: pos}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, *pos, got)

	_, err = Static{}.Locate(context.Background())
	var unavailable *UnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestStaticCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Static{Position: &geo.Coordinate{}}.Locate(ctx)
	var unavailable *UnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

type fakeCityReader struct {
	city *geoip2.City
	err  error
}

func (f fakeCityReader) City(net.IP) (*geoip2.City, error) { return f.city, f.err }
func (f fakeCityReader) Close() error                      { return nil }

func TestGeoIP(t *testing.T) {
	city := &geoip2.City{}
	city.Location.Latitude = 12.97
	city.Location.Longitude = 77.59

	tests := []struct {
		name    string
		reader  cityReader
		ip      string
		want    geo.Coordinate
		wantErr bool
	}{
		{"resolved", fakeCityReader{city: city}, "203.0.113.7", geo.Coordinate{Latitude: 12.97, Longitude: 77.59}, false},
		{"bad ip", fakeCityReader{city: city}, "nope", geo.Coordinate{}, true},
		{"lookup error", fakeCityReader{err: errors.New("corrupt")}, "203.0.113.7", geo.Coordinate{}, true},
		{"no location", fakeCityReader{city: &geoip2.City{}}, "203.0.113.7", geo.Coordinate{}, true},
		{"no reader", nil, "203.0.113.7", geo.Coordinate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &GeoIP{reader: tt.reader, ip: tt.ip}

			got, err := g.Locate(context.Background())
			if tt.wantErr {
				var unavailable *UnavailableError
				assert.True(t, errors.As(err, &unavailable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewGeoIPRequiresPath(t *testing.T) {
	_, err := NewGeoIP(" ", "1.2.3.4")
	var unavailable *UnavailableError
	assert.True(t, errors.As(err, &unavailable))
}
