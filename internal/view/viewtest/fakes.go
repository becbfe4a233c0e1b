// Package viewtest provides in-memory view capabilities for tests.
package viewtest

import (
	"context"
	"strconv"
	"sync"

	"github.com/woozymasta/sharebite/internal/donation"
	"github.com/woozymasta/sharebite/internal/geo"
	"github.com/woozymasta/sharebite/internal/view"
)

// List records what the session rendered.
type List struct {
	Hidden  map[string]bool
	Message string
	Order   []string
	Renders int
}

// Render implements view.ListView.
func (l *List) Render(records []donation.Record) {
	l.Renders++
	l.Message = ""
	l.Hidden = make(map[string]bool)
	l.Order = l.Order[:0]
	for _, r := range records {
		l.Order = append(l.Order, r.ID)
	}
}

// ShowMessage implements view.ListView.
func (l *List) ShowMessage(msg string) {
	l.Message = msg
	l.Order = nil
	l.Hidden = nil
}

// SetVisible implements view.ListView.
func (l *List) SetVisible(id string, visible bool) {
	if l.Hidden == nil {
		l.Hidden = make(map[string]bool)
	}
	if visible {
		delete(l.Hidden, id)
	} else {
		l.Hidden[id] = true
	}
}

// Remove implements view.ListView.
func (l *List) Remove(id string) {
	for i, got := range l.Order {
		if got == id {
			l.Order = append(l.Order[:i], l.Order[i+1:]...)
			break
		}
	}
	delete(l.Hidden, id)
}

// Shown returns the ids in list order that are not hidden.
func (l *List) Shown() []string {
	var out []string
	for _, id := range l.Order {
		if !l.Hidden[id] {
			out = append(out, id)
		}
	}
	return out
}

// Marker is one placed marker.
type Marker struct {
	Style  view.MarkerStyle
	Popup  string
	At     geo.Coordinate
	Handle string
}

// Map records markers by handle.
type Map struct {
	Center  geo.Coordinate
	Markers []Marker
	Resets  int
	Zoom    int
	next    int
}

// Reset implements view.MapView.
func (m *Map) Reset() {
	m.Resets++
	m.Markers = nil
}

// SetView implements view.MapView.
func (m *Map) SetView(center geo.Coordinate, zoom int) {
	m.Center, m.Zoom = center, zoom
}

// AddMarker implements view.MapView.
func (m *Map) AddMarker(at geo.Coordinate, style view.MarkerStyle, popup string) string {
	m.next++
	h := "m" + strconv.Itoa(m.next)
	m.Markers = append(m.Markers, Marker{At: at, Style: style, Popup: popup, Handle: h})
	return h
}

// RemoveMarker implements view.MapView.
func (m *Map) RemoveMarker(handle string) {
	for i, mk := range m.Markers {
		if mk.Handle == handle {
			m.Markers = append(m.Markers[:i], m.Markers[i+1:]...)
			return
		}
	}
}

// Styled returns the markers with the given style.
func (m *Map) Styled(style view.MarkerStyle) []Marker {
	var out []Marker
	for _, mk := range m.Markers {
		if mk.Style == style {
			out = append(out, mk)
		}
	}
	return out
}

// Modal tracks dialog visibility.
type Modal struct {
	DonationID string
	Open       bool
}

// Show implements view.ModalView.
func (m *Modal) Show(id string) { m.DonationID, m.Open = id, true }

// Hide implements view.ModalView.
func (m *Modal) Hide() { m.DonationID, m.Open = "", false }

// Notifier collects messages.
type Notifier struct {
	Messages []string
	mu       sync.Mutex
}

// Notify implements view.Notifier.
func (n *Notifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, msg)
}

// Last returns the latest message.
func (n *Notifier) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Messages) == 0 {
		return ""
	}
	return n.Messages[len(n.Messages)-1]
}

// Fetcher returns a fixed result and counts calls.
type Fetcher struct {
	Err     error
	Records []donation.Record
	Calls   int
}

// ListDonations implements view.Fetcher.
func (f *Fetcher) ListDonations(context.Context) ([]donation.Record, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]donation.Record, len(f.Records))
	copy(out, f.Records)
	return out, nil
}
