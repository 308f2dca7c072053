package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stocktrack/stockkeeper/internal/search"
)

var (
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// resultsMsg delivers a debounced search run to the model.
type resultsMsg struct {
	query   string
	results []search.Result
	groups  []search.SectionGroup
}

// Search is the interactive settings search: keystrokes are debounced, the
// registry is scanned, and hits are shown grouped by section with the
// matched text highlighted.
type Search struct {
	input     textinput.Model
	fields    []search.SearchableField
	debouncer *search.Debouncer
	pending   chan resultsMsg

	query    string
	results  []search.Result
	groups   []search.SectionGroup
	display  []search.Result
	cursor   int
	selected *search.Result
}

// NewSearch builds the interactive search over the given registry.
func NewSearch(fields []search.SearchableField) *Search {
	input := textinput.New()
	input.Placeholder = "search settings"
	input.Focus()
	return &Search{
		input:     input,
		fields:    fields,
		debouncer: search.NewDebouncer(search.DefaultDebounce),
		pending:   make(chan resultsMsg, 1),
	}
}

// Selected returns the result the user picked, or nil if they quit.
func (s *Search) Selected() *search.Result { return s.selected }

func (s *Search) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, s.waitForResults())
}

func (s *Search) waitForResults() tea.Cmd {
	return func() tea.Msg {
		return <-s.pending
	}
}

// scheduleSearch runs the matcher after the debounce window. A newer
// keystroke cancels an older pending run.
func (s *Search) scheduleSearch(query string) {
	s.debouncer.Trigger(func() {
		results := search.Search(query, s.fields, search.DefaultMaxResults)
		msg := resultsMsg{
			query:   query,
			results: results,
			groups:  search.GroupBySection(results),
		}
		select {
		case s.pending <- msg:
		default:
			// A result set is already queued; drop the stale one.
			<-s.pending
			s.pending <- msg
		}
	})
}

func (s *Search) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			s.debouncer.Stop()
			return s, tea.Quit
		case "up":
			if s.cursor > 0 {
				s.cursor--
			}
			return s, nil
		case "down":
			if s.cursor < len(s.display)-1 {
				s.cursor++
			}
			return s, nil
		case "enter":
			if s.cursor < len(s.display) {
				r := s.display[s.cursor]
				s.selected = &r
			}
			s.debouncer.Stop()
			return s, tea.Quit
		}

		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		s.scheduleSearch(s.input.Value())
		return s, cmd

	case resultsMsg:
		s.query = msg.query
		s.results = msg.results
		s.groups = msg.groups
		// The cursor moves through rows as they appear on screen, which is
		// the grouped order, not the ranked order. Flatten it once so the
		// highlighted row and the selected result always agree.
		s.display = s.display[:0]
		for _, g := range s.groups {
			s.display = append(s.display, g.Results...)
		}
		s.cursor = 0
		return s, s.waitForResults()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Search) View() string {
	var b strings.Builder
	b.WriteString(s.input.View())
	b.WriteString("\n\n")

	if len(s.results) == 0 {
		if strings.TrimSpace(s.query) != "" {
			b.WriteString(labelStyle.Render("No settings match your search."))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("type to search · enter open · esc quit"))
		b.WriteString("\n")
		return b.String()
	}

	rank := 0
	for _, g := range s.groups {
		b.WriteString(sectionStyle.Render(g.Section))
		b.WriteString("\n")
		for _, r := range g.Results {
			line := renderResult(r)
			if rank == s.cursor {
				line = selectedStyle.Render("> ") + line
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
			rank++
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("up/down select · enter open · esc quit"))
	b.WriteString("\n")
	return b.String()
}

// renderResult renders one hit with its title matches emphasized.
func renderResult(r search.Result) string {
	title := r.Title
	for _, m := range r.Matches {
		if m.Field == "title" {
			title = renderHighlights(m.Text, m.Indices)
			break
		}
	}
	return fmt.Sprintf("%s %s", title, labelStyle.Render(r.Path))
}

// renderHighlights emphasizes the matched byte ranges of text. Indices are
// non-overlapping and sorted, so the text can be walked left to right.
func renderHighlights(text string, indices [][2]int) string {
	var b strings.Builder
	last := 0
	for _, span := range indices {
		b.WriteString(text[last:span[0]])
		b.WriteString(highlightStyle.Render(text[span[0]:span[1]]))
		last = span[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
