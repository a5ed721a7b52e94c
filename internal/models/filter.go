package models

import "time"

// SourceFilter selects which event sources feed the pipeline.
type SourceFilter string

const (
	SourceAll      SourceFilter = "all"
	SourceLocal    SourceFilter = "local"
	SourceExternal SourceFilter = "external"
)

// SortField names a sortable event attribute.
type SortField string

const (
	SortTitle    SortField = "title"
	SortDate     SortField = "date"
	SortLocation SortField = "location"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// DefaultPageSize is the number of events shown per page.
const DefaultPageSize = 6

// FilterState is the full browsing state of the event list: filters, sort,
// and pagination. Mutate it through the setters; every filter or sort change
// resets the current page to 1 so pagination never points past the end of a
// newly filtered set.
type FilterState struct {
	Source       SourceFilter
	SearchQuery  string
	City         string
	Category     string
	Price        string // "" or "free"
	Date         time.Time
	SortBy       SortField
	SortOrder    SortOrder
	CurrentPage  int
	ItemsPerPage int
}

// NewFilterState returns the default browsing state: all sources, no
// filters, date ascending, first page.
func NewFilterState() FilterState {
	return FilterState{
		Source:       SourceAll,
		SortBy:       SortDate,
		SortOrder:    Ascending,
		CurrentPage:  1,
		ItemsPerPage: DefaultPageSize,
	}
}

func (f *FilterState) SetSource(s SourceFilter) {
	f.Source = s
	f.CurrentPage = 1
}

func (f *FilterState) SetSearchQuery(q string) {
	f.SearchQuery = q
	f.CurrentPage = 1
}

func (f *FilterState) SetCity(city string) {
	f.City = city
	f.CurrentPage = 1
}

func (f *FilterState) SetCategory(category string) {
	f.Category = category
	f.CurrentPage = 1
}

func (f *FilterState) SetPrice(price string) {
	f.Price = price
	f.CurrentPage = 1
}

func (f *FilterState) SetDate(day time.Time) {
	f.Date = day
	f.CurrentPage = 1
}

func (f *FilterState) SetSort(by SortField, order SortOrder) {
	f.SortBy = by
	f.SortOrder = order
	f.CurrentPage = 1
}

func (f *FilterState) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	f.CurrentPage = page
}
