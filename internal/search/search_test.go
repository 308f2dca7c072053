package search

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRegistry = []SearchableField{
	{ID: "theme", Title: "Appearance", Description: "Choose light or dark theme", Section: "appearance", Path: "/settings/appearance#theme"},
	{ID: "2fa", Title: "Two-Factor Authentication", Description: "Secure your account", Section: "security", Path: "/settings/security#two-factor"},
	{ID: "sessions", Title: "Active Sessions", Description: "Devices signed in to your account", Section: "security", Path: "/settings/security#sessions"},
	{ID: "digest", Title: "Weekly Digest", Description: "Summary of account activity", Section: "notifications", Path: "/settings/notifications#digest"},
}

// "theme" occurs only in the description of the theme field, so the single
// match is a description match.
func TestSearch_ExampleThemeQuery(t *testing.T) {
	results := Search("theme", testRegistry, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "theme", results[0].ID)
	require.Len(t, results[0].Matches, 1)
	assert.Equal(t, "description", results[0].Matches[0].Field)
}

func TestSearch_DescriptionMatch(t *testing.T) {
	results := Search("secure", testRegistry, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "2fa", results[0].ID)
}

func TestSearch_EmptyAndWhitespaceQuery(t *testing.T) {
	assert.Empty(t, Search("", testRegistry, 0))
	assert.Empty(t, Search("   ", testRegistry, 0))
	assert.Empty(t, Search("\t\n", testRegistry, 0))
}

func TestSearch_EmptyRegistry(t *testing.T) {
	assert.Empty(t, Search("theme", nil, 0))
}

func TestSearch_CaseInsensitive(t *testing.T) {
	results := Search("APPEARANCE", testRegistry, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "theme", results[0].ID)
}

// Every returned result must contain the query case-insensitively in its
// title or description.
func TestSearch_AllResultsContainQuery(t *testing.T) {
	for _, q := range []string{"account", "the", "a", "se"} {
		for _, r := range Search(q, testRegistry, 0) {
			found := false
			for _, m := range r.Matches {
				if strings.Contains(strings.ToLower(m.Text), q) {
					found = true
				}
			}
			assert.True(t, found, "result %s does not contain %q", r.ID, q)
		}
	}
}

func TestSearch_TitleMatchesRankFirst(t *testing.T) {
	fields := []SearchableField{
		{ID: "desc-hit", Title: "Notifications", Description: "backup completion alerts", Section: "notifications", Path: "/n"},
		{ID: "title-hit", Title: "Backup Schedule", Description: "daily trigger time", Section: "backup", Path: "/b"},
	}
	results := Search("backup", fields, 0)
	require.Len(t, results, 2)
	// The title match outranks the earlier description-only match.
	assert.Equal(t, "title-hit", results[0].ID)
	assert.Equal(t, "desc-hit", results[1].ID)
}

// Two description-only matches keep their registry relative order.
func TestSearch_RankingStable(t *testing.T) {
	results := Search("account", testRegistry, 0)
	var ids []string
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"2fa", "sessions", "digest"}, ids)
}

func TestSearch_Truncation(t *testing.T) {
	full := Search("account", testRegistry, 0)
	require.Greater(t, len(full), 2)

	truncated := Search("account", testRegistry, 2)
	require.Len(t, truncated, 2)
	// Truncated results are a prefix of the untruncated ranked list.
	assert.Equal(t, full[:2], truncated)
}

func TestSearch_HighlightIndices(t *testing.T) {
	fields := []SearchableField{
		{ID: "x", Title: "Theme theme THEME", Description: "no hit here", Section: "s", Path: "/s"},
	}
	results := Search("theme", fields, 0)
	require.Len(t, results, 1)
	require.Len(t, results[0].Matches, 1)

	m := results[0].Matches[0]
	assert.Equal(t, "title", m.Field)
	assert.Equal(t, [][2]int{{0, 5}, {6, 11}, {12, 17}}, m.Indices)
	for _, span := range m.Indices {
		assert.Equal(t, "theme", strings.ToLower(m.Text[span[0]:span[1]]))
	}
}

func TestGroupBySection(t *testing.T) {
	results := Search("account", testRegistry, 0)
	groups := GroupBySection(results)

	require.Len(t, groups, 2)
	assert.Equal(t, "security", groups[0].Section)
	assert.Len(t, groups[0].Results, 2)
	assert.Equal(t, "notifications", groups[1].Section)
	assert.Len(t, groups[1].Results, 1)
}

func TestGroupBySection_Empty(t *testing.T) {
	assert.Empty(t, GroupBySection(nil))
}

func TestRegistry_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range Fields() {
		assert.False(t, seen[f.ID], "duplicate registry id %s", f.ID)
		seen[f.ID] = true
		assert.NotEmpty(t, f.Title)
		assert.NotEmpty(t, f.Section)
		assert.NotEmpty(t, f.Path)
	}
}

func TestDebouncer_OnlyLastCallbackFires(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	fired := make(chan string, 3)
	d.Trigger(func() { fired <- "first" })
	d.Trigger(func() { fired <- "second" })
	d.Trigger(func() { fired <- "third" })

	select {
	case got := <-fired:
		assert.Equal(t, "third", got)
	case <-time.After(time.Second):
		t.Fatal("debounced callback never fired")
	}

	select {
	case got := <-fired:
		t.Fatalf("unexpected extra callback %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	fired := make(chan struct{}, 1)
	d.Trigger(func() { fired <- struct{}{} })
	d.Stop()

	select {
	case <-fired:
		t.Fatal("callback fired after Stop")
	case <-time.After(100 * time.Millisecond):
	}
}
