// Package filter decides which donations the list shows for the current search input.
package filter

import (
	"strings"

	"github.com/woozymasta/sharebite/internal/donation"
)

// AllCategories disables the category clause.
const AllCategories = "all"

// State is the transient filter input: free text matched against the food
// name and a category selector.
type State struct {
	SearchText string `json:"q"`
	Category   string `json:"category"`
}

// All is the state that hides nothing.
var All = State{Category: AllCategories}

// Match reports whether r passes s. An empty category behaves like "all".
func (s State) Match(r donation.Record) bool {
	if !strings.Contains(strings.ToLower(r.FoodName), strings.ToLower(s.SearchText)) {
		return false
	}

	if s.Category == "" || strings.EqualFold(s.Category, AllCategories) {
		return true
	}

	return strings.EqualFold(r.Category, s.Category)
}

// Visible returns the ids of the records that pass s.
func Visible(s State, records []donation.Record) map[string]bool {
	visible := make(map[string]bool, len(records))
	for _, r := range records {
		if s.Match(r) {
			visible[r.ID] = true
		}
	}
	return visible
}
