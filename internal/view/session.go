package view

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/woozymasta/sharebite/internal/donation"
	"github.com/woozymasta/sharebite/internal/filter"
	"github.com/woozymasta/sharebite/internal/geo"
	"github.com/woozymasta/sharebite/internal/locate"
	"github.com/woozymasta/sharebite/internal/ranking"

	"github.com/rs/zerolog/log"
)

// User-facing list messages.
const (
	MsgNoLocation  = "Cannot show donations without your location. Please allow location access."
	MsgFetchFailed = "Could not load donations. Please try again later."
	MsgEmpty       = "No donations available right now. Check back later!"
)

// Fetcher loads the donation set from the marketplace.
type Fetcher interface {
	ListDonations(ctx context.Context) ([]donation.Record, error)
}

// Session owns the ranked donation set of one receiver session and keeps
// the list and map renderings consistent with it. Filtering narrows the list
// only; the map keeps every geocoded donation of the set.
type Session struct {
	fetcher  Fetcher
	list     ListView
	mapView  MapView
	notifier Notifier

	receiver *geo.Coordinate
	markers  map[string]string
	visible  map[string]bool
	ranked   []donation.Record
	filter   filter.State
	zoom     int

	mu sync.Mutex
}

// NewSession wires a session to its collaborators. zoom is the initial map zoom.
func NewSession(fetcher Fetcher, list ListView, mapView MapView, notifier Notifier, zoom int) *Session {
	return &Session{
		fetcher:  fetcher,
		list:     list,
		mapView:  mapView,
		notifier: notifier,
		zoom:     zoom,
		filter:   filter.All,
		markers:  make(map[string]string),
		visible:  make(map[string]bool),
	}
}

// Start acquires the receiver position, fetches the donation set once, ranks
// it and renders both views. Location and fetch failures end the session's
// list with an explanatory message and are returned to the caller.
func (s *Session) Start(ctx context.Context, locator locate.Locator) error {
	pos, err := locator.Locate(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Receiver position unavailable")
		s.notifier.Notify("Could not get your location: " + reason(err))
		s.fail(MsgNoLocation)
		return err
	}

	records, err := s.fetcher.ListDonations(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch or process donations")
		s.notifier.Notify("Could not load donations: " + err.Error())
		s.fail(MsgFetchFailed)
		return fmt.Errorf("fetch donations: %w", err)
	}

	ranked := ranking.Rank(pos, usable(records))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.receiver = &pos
	s.ranked = ranked
	s.renderList()
	s.renderMap()

	log.Info().
		Float64("lat", pos.Latitude).
		Float64("lon", pos.Longitude).
		Int("donations", len(ranked)).
		Msg("Donations ranked")

	return nil
}

func reason(err error) string {
	var unavailable *locate.UnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Reason
	}
	return err.Error()
}

// usable drops records without an id and repeats of an id already seen,
// since list rows, markers and claims are keyed by id.
func usable(records []donation.Record) []donation.Record {
	seen := make(map[string]bool, len(records))
	out := make([]donation.Record, 0, len(records))
	for _, r := range records {
		if r.ID == "" || seen[r.ID] {
			log.Warn().
				Str("donation", r.ID).
				Str("food", r.FoodName).
				Msg("Skipping donation without a unique id")
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

// fail drops any previous set so that no stale data is shown.
func (s *Session) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receiver = nil
	s.ranked = nil
	s.visible = make(map[string]bool)
	s.markers = make(map[string]string)
	s.mapView.Reset()
	s.list.ShowMessage(msg)
}

func (s *Session) renderList() {
	if len(s.ranked) == 0 {
		s.visible = make(map[string]bool)
		s.list.ShowMessage(MsgEmpty)
		return
	}

	s.list.Render(s.ranked)
	s.applyFilter()
}

// renderMap rebuilds the map from scratch so repeated starts never stack markers.
func (s *Session) renderMap() {
	s.mapView.Reset()
	s.markers = make(map[string]string, len(s.ranked))

	s.mapView.SetView(*s.receiver, s.zoom)
	s.mapView.AddMarker(*s.receiver, StyleReceiver, ReceiverPopup)

	for _, r := range s.ranked {
		if r.Coordinate == nil {
			continue
		}
		s.markers[r.ID] = s.mapView.AddMarker(*r.Coordinate, StyleDonation, Popup(r))
	}
}

// ApplyFilter recomputes which list entries are visible. The map is not affected.
func (s *Session) ApplyFilter(state filter.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = state
	s.applyFilter()
}

func (s *Session) applyFilter() {
	s.visible = filter.Visible(s.filter, s.ranked)
	for _, r := range s.ranked {
		s.list.SetVisible(r.ID, s.visible[r.ID])
	}
}

// Remove drops a donation from the set, the list and the map.
// It reports whether the donation was present.
func (s *Session) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.ranked {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	s.ranked = append(s.ranked[:idx:idx], s.ranked[idx+1:]...)
	delete(s.visible, id)
	s.list.Remove(id)

	if handle, ok := s.markers[id]; ok {
		s.mapView.RemoveMarker(handle)
		delete(s.markers, id)
	}

	if len(s.ranked) == 0 {
		s.list.ShowMessage(MsgEmpty)
	}

	log.Debug().Str("donation", id).Int("remaining", len(s.ranked)).Msg("Donation removed from session")

	return true
}

// Lookup returns the ranked record with the given id.
func (s *Session) Lookup(id string) (donation.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.ranked {
		if r.ID == id {
			return r, true
		}
	}
	return donation.Record{}, false
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Receiver *geo.Coordinate
	Visible  map[string]bool
	Records  []donation.Record
	Filter   filter.State
}

// Snapshot returns a copy of the ranked set and the current visibility.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Records: make([]donation.Record, len(s.ranked)),
		Visible: make(map[string]bool, len(s.visible)),
		Filter:  s.filter,
	}
	copy(snap.Records, s.ranked)
	for id, v := range s.visible {
		snap.Visible[id] = v
	}
	if s.receiver != nil {
		pos := *s.receiver
		snap.Receiver = &pos
	}

	return snap
}
