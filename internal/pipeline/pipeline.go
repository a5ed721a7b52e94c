// Package pipeline turns the raw local and external event collections into
// the exact ordered, paginated subset to render. Apply is a pure function:
// the same inputs always produce the same output, and it never fails —
// malformed events simply drop out of the facets they cannot satisfy.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"eventhound/internal/models"
	"eventhound/internal/timeutil"
)

// Result is one rendered page of events plus the supporting facet data.
type Result struct {
	Events     []models.Event
	TotalItems int
	TotalPages int
	Page       int
	// Cities is the distinct-city facet: computed from the source-composed,
	// past-excluded set so it respects the source selection but ignores the
	// search and attribute filters.
	Cities []string
}

// titleCollator orders titles the way a locale-aware comparison would,
// ignoring case. Collators are not safe for concurrent use, so sorting takes
// a fresh one per call.
func titleCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}

// Apply runs the full pipeline: source composition, past-event exclusion,
// text search, city/category/price/date filters, sort, and pagination. The
// stage order is significant; see the package tests.
func Apply(local, external []models.Event, state models.FilterState, now time.Time) Result {
	events := compose(local, external, state.Source)
	events = excludeDateless(events)
	events = excludePast(events, now)

	cities := distinctCities(events)

	events = filterSearch(events, state.SearchQuery)
	events = filterCity(events, state.City)
	events = filterCategory(events, state.Category)
	events = filterPrice(events, state.Price)
	events = filterDate(events, state.Date)

	sortEvents(events, state.SortBy, state.SortOrder)

	size := state.ItemsPerPage
	if size <= 0 {
		size = models.DefaultPageSize
	}
	page, totalPages := paginate(len(events), state.CurrentPage, size)
	start := (page - 1) * size
	end := start + size
	if start > len(events) {
		start = len(events)
	}
	if end > len(events) {
		end = len(events)
	}

	return Result{
		Events:     events[start:end],
		TotalItems: len(events),
		TotalPages: totalPages,
		Page:       page,
		Cities:     cities,
	}
}

// compose selects the event sources. The slice is always a fresh copy so
// later stages never mutate a caller's slice.
func compose(local, external []models.Event, source models.SourceFilter) []models.Event {
	var out []models.Event
	switch source {
	case models.SourceLocal:
		out = append(out, local...)
	case models.SourceExternal:
		out = append(out, external...)
	default:
		out = append(out, local...)
		out = append(out, external...)
	}
	if out == nil {
		out = []models.Event{}
	}
	return out
}

// excludeDateless drops events with no start date; they cannot be placed on
// the timeline at all.
func excludeDateless(events []models.Event) []models.Event {
	kept := events[:0]
	for _, ev := range events {
		if !ev.StartDate.IsZero() {
			kept = append(kept, ev)
		}
	}
	return kept
}

func excludePast(events []models.Event, now time.Time) []models.Event {
	kept := events[:0]
	for _, ev := range events {
		if !timeutil.IsPast(ev.StartDate, ev.EndDate, now) {
			kept = append(kept, ev)
		}
	}
	return kept
}

// filterSearch keeps events whose title, address, or city contains the query
// case-insensitively. An empty query keeps everything.
func filterSearch(events []models.Event, query string) []models.Event {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return events
	}
	kept := events[:0]
	for _, ev := range events {
		if strings.Contains(strings.ToLower(ev.Title), query) ||
			strings.Contains(strings.ToLower(ev.Location.Address), query) ||
			strings.Contains(strings.ToLower(ev.Location.City), query) {
			kept = append(kept, ev)
		}
	}
	return kept
}

func filterCity(events []models.Event, city string) []models.Event {
	if city == "" {
		return events
	}
	kept := events[:0]
	for _, ev := range events {
		if ev.Location.City == city {
			kept = append(kept, ev)
		}
	}
	return kept
}

func filterCategory(events []models.Event, category string) []models.Event {
	if category == "" {
		return events
	}
	kept := events[:0]
	for _, ev := range events {
		if ev.Category == category {
			kept = append(kept, ev)
		}
	}
	return kept
}

// filterPrice is only active for the "free" facet value.
func filterPrice(events []models.Event, price string) []models.Event {
	if price != "free" {
		return events
	}
	kept := events[:0]
	for _, ev := range events {
		if ev.Price.IsFree() {
			kept = append(kept, ev)
		}
	}
	return kept
}

// filterDate keeps events starting on the given calendar day, in local
// calendar semantics.
func filterDate(events []models.Event, day time.Time) []models.Event {
	if day.IsZero() {
		return events
	}
	kept := events[:0]
	for _, ev := range events {
		if timeutil.SameLocalDay(ev.StartDate, day) {
			kept = append(kept, ev)
		}
	}
	return kept
}

// sortEvents orders events in place. The sort is stable: equal keys keep
// their original relative order.
func sortEvents(events []models.Event, by models.SortField, order models.SortOrder) {
	var less func(a, b models.Event) bool
	switch by {
	case models.SortTitle:
		c := titleCollator()
		less = func(a, b models.Event) bool {
			return c.CompareString(a.Title, b.Title) < 0
		}
	case models.SortLocation:
		less = func(a, b models.Event) bool {
			if a.Location.City != b.Location.City {
				return a.Location.City < b.Location.City
			}
			return a.Location.Address < b.Location.Address
		}
	default: // SortDate
		less = func(a, b models.Event) bool {
			return a.StartDate.Before(b.StartDate)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if order == models.Descending {
			return less(events[j], events[i])
		}
		return less(events[i], events[j])
	})
}

// paginate returns the clamped page number and total page count. Zero items
// yields zero pages and page 1 pointing at an empty slice.
func paginate(totalItems, page, size int) (int, int) {
	totalPages := (totalItems + size - 1) / size
	if page < 1 {
		page = 1
	}
	return page, totalPages
}

// distinctCities returns the de-duplicated, lexicographically sorted city
// facet. Events with no city contribute nothing.
func distinctCities(events []models.Event) []string {
	seen := make(map[string]struct{})
	cities := make([]string, 0)
	for _, ev := range events {
		city := ev.Location.City
		if city == "" {
			continue
		}
		if _, ok := seen[city]; ok {
			continue
		}
		seen[city] = struct{}{}
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}
