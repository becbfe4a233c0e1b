package render

import (
	"sync"

	"github.com/woozymasta/sharebite/internal/donation"
)

// Entry is one list row as rendered.
type Entry struct {
	donation.Record
	Hidden bool
}

// listState is the shared bookkeeping of the list views.
type listState struct {
	hidden  map[string]bool
	message string
	records []donation.Record

	mu sync.RWMutex
}

// Render implements view.ListView.
func (l *listState) Render(records []donation.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records[:0:0], records...)
	l.hidden = make(map[string]bool)
	l.message = ""
}

// ShowMessage implements view.ListView.
func (l *listState) ShowMessage(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = nil
	l.hidden = nil
	l.message = msg
}

// SetVisible implements view.ListView.
func (l *listState) SetVisible(id string, visible bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.hidden == nil {
		l.hidden = make(map[string]bool)
	}
	if visible {
		delete(l.hidden, id)
		return
	}
	l.hidden[id] = true
}

// Remove implements view.ListView.
func (l *listState) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, r := range l.records {
		if r.ID == id {
			l.records = append(l.records[:i:i], l.records[i+1:]...)
			break
		}
	}
	delete(l.hidden, id)
}

// entries returns the rows in order along with the message, if any.
func (l *listState) entries() ([]Entry, string) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.records))
	for i, r := range l.records {
		out[i] = Entry{Record: r, Hidden: l.hidden[r.ID]}
	}
	return out, l.message
}

func noteText(r donation.Record) string {
	if r.Note == "" {
		return "No notes provided"
	}
	return r.Note
}

func distanceText(r donation.Record) string {
	if !r.HasDistance() {
		return r.DistanceText()
	}
	return r.DistanceText() + " away"
}
