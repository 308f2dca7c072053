// Package search implements the settings search index: a pure matcher over a
// static registry of settings fields, with highlight ranges and section
// grouping.
package search

import "strings"

// DefaultMaxResults caps a search when the caller passes no explicit limit.
const DefaultMaxResults = 20

// SearchableField is one entry of the static settings registry.
type SearchableField struct {
	// ID is the unique key of the field across the registry.
	ID string `json:"id"`
	// Title is the human-readable field name scanned for matches.
	Title string `json:"title"`
	// Description is the longer help text scanned for matches.
	Description string `json:"description"`
	// Section is the enclosing settings section identifier.
	Section string `json:"section"`
	// Path is the navigation target (section page plus optional anchor).
	Path string `json:"path"`
}

// Match records where the query occurred inside one field text.
type Match struct {
	// Field is "title" or "description".
	Field string `json:"field"`
	// Text is the original text the indices refer to.
	Text string `json:"text"`
	// Indices holds [start,end) byte ranges of every occurrence.
	Indices [][2]int `json:"indices"`
}

// Result is one ranked search hit.
type Result struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Section string  `json:"section"`
	Path    string  `json:"path"`
	Matches []Match `json:"matches"`
}

// SectionGroup is the grouped view of a ranked result list.
type SectionGroup struct {
	Section string   `json:"section"`
	Results []Result `json:"results"`
}

// Search scans the registry for case-insensitive substring matches of query
// against field titles and descriptions. Title matches rank before
// description-only matches; ties keep registry order. An empty or
// whitespace-only query yields nil, which callers treat as "do not search"
// rather than "no matches". The result list is truncated to maxResults
// (DefaultMaxResults when maxResults <= 0). Search is pure and never fails.
func Search(query string, fields []SearchableField, maxResults int) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	var titleHits, descHits []Result
	for _, f := range fields {
		titleIdx := occurrences(f.Title, q)
		descIdx := occurrences(f.Description, q)
		if len(titleIdx) == 0 && len(descIdx) == 0 {
			continue
		}

		res := Result{ID: f.ID, Title: f.Title, Section: f.Section, Path: f.Path}
		if len(titleIdx) > 0 {
			res.Matches = append(res.Matches, Match{Field: "title", Text: f.Title, Indices: titleIdx})
		}
		if len(descIdx) > 0 {
			res.Matches = append(res.Matches, Match{Field: "description", Text: f.Description, Indices: descIdx})
		}

		if len(titleIdx) > 0 {
			titleHits = append(titleHits, res)
		} else {
			descHits = append(descHits, res)
		}
	}

	ranked := append(titleHits, descHits...)
	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	return ranked
}

// occurrences returns the [start,end) byte ranges of every occurrence of the
// lowered query q inside text, matched case-insensitively.
func occurrences(text, q string) [][2]int {
	lowered := strings.ToLower(text)
	var spans [][2]int
	for off := 0; ; {
		i := strings.Index(lowered[off:], q)
		if i < 0 {
			break
		}
		start := off + i
		spans = append(spans, [2]int{start, start + len(q)})
		off = start + len(q)
	}
	return spans
}

// GroupBySection groups a ranked result list by section, preserving rank
// order within each group. Groups are ordered by the first appearance of
// their highest-ranked member.
func GroupBySection(results []Result) []SectionGroup {
	var groups []SectionGroup
	index := make(map[string]int)
	for _, r := range results {
		i, ok := index[r.Section]
		if !ok {
			i = len(groups)
			index[r.Section] = i
			groups = append(groups, SectionGroup{Section: r.Section})
		}
		groups[i].Results = append(groups[i].Results, r)
	}
	return groups
}
