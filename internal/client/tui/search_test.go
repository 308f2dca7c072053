package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktrack/stockkeeper/internal/search"
)

// deliver runs the matcher for the query and feeds the result set straight
// into the model, skipping the debounce window.
func deliver(t *testing.T, s *Search, query string, fields []search.SearchableField) *Search {
	t.Helper()
	results := search.Search(query, fields, search.DefaultMaxResults)
	m, _ := s.Update(resultsMsg{query: query, results: results, groups: search.GroupBySection(results)})
	return m.(*Search)
}

func press(s *Search, key tea.KeyType) (*Search, tea.Cmd) {
	m, cmd := s.Update(tea.KeyMsg{Type: key})
	return m.(*Search), cmd
}

// Grouping interleaves sections relative to the ranked order when a
// description match lands in a section already opened by a title match.
// The cursor walks rows as rendered, so selection must follow the same
// grouped order.
func TestSearch_SelectionFollowsDisplayedOrder(t *testing.T) {
	fields := []search.SearchableField{
		{ID: "a1", Title: "Inventory Export", Description: "write records to disk", Section: "data", Path: "/settings/data#export"},
		{ID: "b1", Title: "Inventory Alerts", Description: "thresholds and digests", Section: "notifications", Path: "/settings/notifications#alerts"},
		{ID: "a2", Title: "Purge Old Records", Description: "remove stale inventory rows", Section: "data", Path: "/settings/data#purge"},
	}

	s := deliver(t, NewSearch(fields), "inventory", fields)

	// Ranked order is a1, b1, a2; on screen the data section shows a1 then
	// a2 before notifications shows b1.
	require.Equal(t, []search.Result{s.results[0], s.results[2], s.results[1]}, s.display)

	s, _ = press(s, tea.KeyDown)
	s, cmd := press(s, tea.KeyEnter)

	require.NotNil(t, s.Selected())
	assert.Equal(t, "a2", s.Selected().ID)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSearch_CursorStopsAtLastRow(t *testing.T) {
	fields := []search.SearchableField{
		{ID: "a1", Title: "Inventory Export", Description: "write records to disk", Section: "data", Path: "/settings/data#export"},
		{ID: "b1", Title: "Inventory Alerts", Description: "thresholds and digests", Section: "notifications", Path: "/settings/notifications#alerts"},
		{ID: "a2", Title: "Purge Old Records", Description: "remove stale inventory rows", Section: "data", Path: "/settings/data#purge"},
	}

	s := deliver(t, NewSearch(fields), "inventory", fields)
	for i := 0; i < 5; i++ {
		s, _ = press(s, tea.KeyDown)
	}
	s, _ = press(s, tea.KeyEnter)

	require.NotNil(t, s.Selected())
	assert.Equal(t, "b1", s.Selected().ID)
}

func TestSearch_EnterWithoutResults(t *testing.T) {
	s := NewSearch(nil)
	s, cmd := press(s, tea.KeyEnter)

	assert.Nil(t, s.Selected())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
