// Package ranking orders donations nearest-first from a receiver position.
package ranking

import (
	"math"
	"sort"

	"github.com/woozymasta/sharebite/internal/donation"
	"github.com/woozymasta/sharebite/internal/geo"
)

// Rank returns a copy of records annotated with the distance from receiver and
// sorted ascending by it. Records without a coordinate get +Inf and sort last.
// Equal distances keep their input order. The input slice is left untouched.
func Rank(receiver geo.Coordinate, records []donation.Record) []donation.Record {
	ranked := make([]donation.Record, len(records))
	copy(ranked, records)

	for i := range ranked {
		r := &ranked[i]
		if r.Coordinate == nil {
			r.DistanceKm = math.Inf(1)
			continue
		}
		c := *r.Coordinate
		r.Coordinate = &c
		r.DistanceKm = geo.Distance(receiver, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	return ranked
}
