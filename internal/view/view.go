// Package view keeps the donation list and the donation map in step with the
// single ranked donation set of a receiver session.
package view

import (
	"fmt"
	"html"

	"github.com/woozymasta/sharebite/internal/donation"
	"github.com/woozymasta/sharebite/internal/geo"
)

// MarkerStyle distinguishes the receiver marker from donation markers.
type MarkerStyle string

// Marker styles.
const (
	StyleReceiver MarkerStyle = "receiver"
	StyleDonation MarkerStyle = "donation"
)

// ListView renders the donation list.
type ListView interface {
	// Render replaces the list content with records in the given order.
	Render(records []donation.Record)
	// ShowMessage replaces the list content with an explanatory message.
	ShowMessage(msg string)
	SetVisible(id string, visible bool)
	Remove(id string)
}

// MapView is the minimal mapping capability.
type MapView interface {
	Reset()
	SetView(center geo.Coordinate, zoom int)
	// AddMarker places a marker and returns a handle for RemoveMarker.
	AddMarker(at geo.Coordinate, style MarkerStyle, popup string) string
	RemoveMarker(handle string)
}

// ModalView is the claim dialog.
type ModalView interface {
	Show(donationID string)
	Hide()
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(msg string) { f(msg) }

// Popup builds the donation marker popup content.
func Popup(r donation.Record) string {
	return fmt.Sprintf("<b>%s</b><br>Address: %s<br>Serves: %d<br>Distance: %s",
		html.EscapeString(r.FoodName),
		html.EscapeString(r.DisplayAddress),
		r.Count,
		r.DistanceText())
}

// ReceiverPopup is the popup of the receiver's own marker.
const ReceiverPopup = "<strong>Your Location</strong>"

type lists []ListView

// Lists fans one list rendering out to several views.
func Lists(views ...ListView) ListView {
	return lists(views)
}

func (l lists) Render(records []donation.Record) {
	for _, v := range l {
		v.Render(records)
	}
}

func (l lists) ShowMessage(msg string) {
	for _, v := range l {
		v.ShowMessage(msg)
	}
}

func (l lists) SetVisible(id string, visible bool) {
	for _, v := range l {
		v.SetVisible(id, visible)
	}
}

func (l lists) Remove(id string) {
	for _, v := range l {
		v.Remove(id)
	}
}
