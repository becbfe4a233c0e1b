// Package locate acquires the receiver position.
package locate

import (
	"context"

	"github.com/woozymasta/sharebite/internal/geo"
)

// Locator yields the receiver position once per session.
type Locator interface {
	Locate(ctx context.Context) (geo.Coordinate, error)
}

// UnavailableError means no position could be obtained. Reason is shown to the user.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return e.Reason
}

// Static returns a fixed position, typically from command-line flags.
type Static struct {
	Position *geo.Coordinate
}

// Locate implements Locator.
func (s Static) Locate(ctx context.Context) (geo.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return geo.Coordinate{}, &UnavailableError{Reason: err.Error()}
	}
	if s.Position == nil {
		return geo.Coordinate{}, &UnavailableError{Reason: "Geolocation is not supported by this client: no position given"}
	}
	return *s.Position, nil
}

// Func adapts a function to Locator.
type Func func(ctx context.Context) (geo.Coordinate, error)

// Locate implements Locator.
func (f Func) Locate(ctx context.Context) (geo.Coordinate, error) {
	return f(ctx)
}
