// internal/models/listing.go
package models

import (
	"sort"
	"strings"
)

// ListingID identifies one job posting on the board.
type ListingID int64

// ListingSet is a deduplicated collection of listing identifiers.
type ListingSet map[ListingID]struct{}

// NewListingSet builds a set from ids, dropping duplicates.
func NewListingSet(ids ...ListingID) ListingSet {
	s := make(ListingSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ListingSet) Add(id ListingID) { s[id] = struct{}{} }

func (s ListingSet) Has(id ListingID) bool {
	_, ok := s[id]
	return ok
}

func (s ListingSet) Len() int { return len(s) }

// Union adds every id of other into s.
func (s ListingSet) Union(other ListingSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Sorted returns the ids in ascending order so stage work is dispatched deterministically.
func (s ListingSet) Sorted() []ListingID {
	out := make([]ListingID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Criterion is one (category, years-of-experience) search pair.
type Criterion struct {
	Category string `json:"category"` // board tag code, e.g. "899"
	Name     string `json:"name,omitempty"`
	Years    int    `json:"years"`
}

// ListingSummary is one row of a listings page.
type ListingSummary struct {
	ID         ListingID `json:"id"`
	IsBookmark bool      `json:"is_bookmark"`
}

// ListingPage is one page of the listings endpoint.
type ListingPage struct {
	Data  []ListingSummary `json:"data"`
	Links struct {
		Next *string `json:"next"`
	} `json:"links"`
}

// ListingDetail is the transient per-listing payload used by the filter stage.
type ListingDetail struct {
	ID             ListingID
	HasApplication bool
	IsBookmark     bool
	Requirements   string
	MainTasks      string
	Intro          string
	PreferredPoint string
}

// Text joins the free-text fields searched by keyword rules.
func (d *ListingDetail) Text() string {
	return strings.Join([]string{d.Requirements, d.MainTasks, d.Intro, d.PreferredPoint}, "\n")
}
