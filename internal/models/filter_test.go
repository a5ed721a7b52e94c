package models

import (
	"testing"
	"time"
)

// Every filter or sort change must reset pagination to the first page.
func TestFilterStateResetsPage(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(f *FilterState)
	}{
		{"source", func(f *FilterState) { f.SetSource(SourceExternal) }},
		{"search", func(f *FilterState) { f.SetSearchQuery("jazz") }},
		{"city", func(f *FilterState) { f.SetCity("Sofia") }},
		{"category", func(f *FilterState) { f.SetCategory("music") }},
		{"price", func(f *FilterState) { f.SetPrice("free") }},
		{"date", func(f *FilterState) { f.SetDate(time.Now()) }},
		{"sort", func(f *FilterState) { f.SetSort(SortTitle, Descending) }},
	}

	for _, tc := range mutations {
		t.Run(tc.name, func(t *testing.T) {
			state := NewFilterState()
			state.SetPage(4)
			tc.mutate(&state)
			if state.CurrentPage != 1 {
				t.Errorf("CurrentPage = %d after %s change, want 1", state.CurrentPage, tc.name)
			}
		})
	}
}

func TestSetPageClamps(t *testing.T) {
	state := NewFilterState()
	state.SetPage(0)
	if state.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d, want 1", state.CurrentPage)
	}
	state.SetPage(-3)
	if state.CurrentPage != 1 {
		t.Errorf("CurrentPage = %d, want 1", state.CurrentPage)
	}
}

func TestNewFilterStateDefaults(t *testing.T) {
	state := NewFilterState()
	if state.Source != SourceAll || state.SortBy != SortDate || state.SortOrder != Ascending {
		t.Errorf("unexpected defaults: %+v", state)
	}
	if state.CurrentPage != 1 || state.ItemsPerPage != DefaultPageSize {
		t.Errorf("unexpected pagination defaults: %+v", state)
	}
}
