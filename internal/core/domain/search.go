package domain

import "strings"

// SearchCriteria is what a visitor types into the search bar. A criteria
// value always replaces the previous one; it is never merged.
type SearchCriteria struct {
	Location string `json:"location"`
	// Guests is adults plus children; zero disables the capacity filter.
	Guests int `json:"guests"`
}

// NewSearchCriteria builds criteria from the guest picker. Infants and pets
// are shown in the picker but do not count towards capacity.
func NewSearchCriteria(location string, adults, children int) SearchCriteria {
	return SearchCriteria{
		Location: strings.TrimSpace(location),
		Guests:   adults + children,
	}
}

// SearchState is the observable state of a search engine.
type SearchState string

const (
	SearchIdle    SearchState = "idle"
	SearchLoading SearchState = "loading"
	SearchError   SearchState = "error"
)

// SearchPage is a snapshot of a search engine: what has been loaded so far
// for the active criteria and category.
type SearchPage struct {
	Criteria       *SearchCriteria `json:"criteria,omitempty"`
	ActiveCategory *string         `json:"active_category,omitempty"`
	Results        []Listing       `json:"results"`
	PageCursor     int             `json:"page_cursor"`
	IsLoading      bool            `json:"is_loading"`
	HasMore        bool            `json:"has_more"`
	State          SearchState     `json:"state"`
}
