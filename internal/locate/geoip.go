package locate

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/woozymasta/sharebite/internal/geo"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"
)

// cityReader is the part of *geoip2.Reader used here.
type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// GeoIP resolves the receiver position from an IP address using a MaxMind City database.
type GeoIP struct {
	reader cityReader
	ip     string
}

// NewGeoIP opens the database at path. The returned locator looks up ip.
func NewGeoIP(path, ip string) (*GeoIP, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &UnavailableError{Reason: "no GeoIP database configured"}
	}

	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}

	return &GeoIP{reader: reader, ip: ip}, nil
}

// Locate implements Locator.
func (g *GeoIP) Locate(ctx context.Context) (geo.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return geo.Coordinate{}, &UnavailableError{Reason: err.Error()}
	}
	if g == nil || g.reader == nil {
		return geo.Coordinate{}, &UnavailableError{Reason: "GeoIP database unavailable"}
	}

	parsed := net.ParseIP(strings.TrimSpace(g.ip))
	if parsed == nil {
		return geo.Coordinate{}, &UnavailableError{Reason: fmt.Sprintf("invalid IP address %q", g.ip)}
	}

	record, err := g.reader.City(parsed)
	if err != nil {
		return geo.Coordinate{}, &UnavailableError{Reason: fmt.Sprintf("GeoIP lookup failed: %v", err)}
	}

	if record == nil || (record.Location.Latitude == 0 && record.Location.Longitude == 0) {
		return geo.Coordinate{}, &UnavailableError{Reason: fmt.Sprintf("no location known for %s", parsed)}
	}

	log.Debug().
		Str("ip", parsed.String()).
		Str("city", record.City.Names["en"]).
		Uint16("accuracy_km", record.Location.AccuracyRadius).
		Msg("Position resolved from GeoIP")

	return geo.Coordinate{
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}, nil
}

// Close closes the underlying database reader.
func (g *GeoIP) Close() error {
	if g == nil || g.reader == nil {
		return nil
	}
	return g.reader.Close()
}
