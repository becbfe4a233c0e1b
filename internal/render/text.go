package render

import (
	"fmt"
	"io"
	"strings"
)

// TextList implements view.ListView for a terminal.
type TextList struct {
	listState
}

// NewTextList returns an empty terminal list.
func NewTextList() *TextList {
	return &TextList{}
}

// WriteTo prints the visible entries, numbered in ranked order.
func (t *TextList) WriteTo(w io.Writer) (int64, error) {
	entries, msg := t.entries()

	var b strings.Builder
	if msg != "" {
		b.WriteString(msg)
		b.WriteByte('\n')
	}

	shown := 0
	for i, e := range entries {
		if e.Hidden {
			continue
		}
		shown++
		fmt.Fprintf(&b, "%2d. %s (%s)  [id %s]\n", i+1, e.FoodName, e.Category, e.ID)
		fmt.Fprintf(&b, "    Address:  %s\n", e.DisplayAddress)
		fmt.Fprintf(&b, "    Area:     %s\n", e.GeocodeLocation)
		fmt.Fprintf(&b, "    Distance: %s\n", distanceText(e.Record))
		fmt.Fprintf(&b, "    Serves:   %d people\n", e.Count)
		fmt.Fprintf(&b, "    Notes:    %s\n", noteText(e.Record))
		fmt.Fprintf(&b, "    Contact:  %s\n", e.Phone)
	}

	if msg == "" && shown == 0 && len(entries) > 0 {
		b.WriteString("No donations match the current filter.\n")
	}

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
