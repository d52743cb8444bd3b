package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/bahaterm/internal/bahamut"
	"github.com/jask/bahaterm/internal/database/repository"
	"github.com/jask/bahaterm/internal/fetch"
	"github.com/jask/bahaterm/internal/paging"
)

type searchState struct {
	want    uuid.UUID
	query   string
	results []bahamut.SearchResult
	// searched is set once results for query have arrived. Until then the
	// list shows history suggestions.
	searched    bool
	suggestions []repository.BoardVisit
	queries     []repository.SearchQuery
	cursor      int
}

// entry is one selectable row of the search list. Visited boards reopen on
// the page last read.
type entry struct {
	id, name, detail string
	page             paging.Page
}

func (s *searchState) entries() []entry {
	if s.searched {
		out := make([]entry, 0, len(s.results))
		for _, r := range s.results {
			out = append(out, entry{id: r.ID, name: r.Name, detail: r.Platform, page: paging.FirstPage})
		}
		return out
	}
	out := make([]entry, 0, len(s.suggestions))
	for _, v := range s.suggestions {
		page := paging.FirstPage
		detail := fmt.Sprintf("%d visits", v.Visits)
		if v.LastPage > 1 && v.LastPage <= math.MaxUint16 {
			page = paging.Page(v.LastPage)
			detail += fmt.Sprintf(", page %d", page)
		}
		out = append(out, entry{id: v.BoardID, name: v.Name, detail: detail, page: page})
	}
	return out
}

func (s *searchState) clamp() {
	n := len(s.entries())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (a *App) handleInputKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Submit):
		return a, a.submitSearch()
	case key.Matches(m, a.keys.StopEditing):
		a.editing = false
		a.input.Blur()
		return a, nil
	}
	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	if a.input.Value() == before {
		return a, cmd
	}
	a.search.searched = false
	a.search.cursor = 0
	return a, tea.Batch(cmd, a.loadSuggestions(a.input.Value()))
}

// submitSearch opens a pasted thread URL directly and sends anything else as
// a board search.
func (a *App) submitSearch() tea.Cmd {
	value := a.input.Value()
	if ref, err := bahamut.ParsePostURL(value); err == nil {
		a.editing = false
		a.input.Blur()
		return a.openPost(ref, screenSearch)
	}
	q := bahamut.NormalizeQuery(value)
	if q == "" {
		a.setWarning("type a board name to search")
		return nil
	}
	a.editing = false
	a.input.Blur()
	id, cmd := a.send(fetch.Search(q))
	if id != uuid.Nil {
		a.search.want = id
		a.search.query = q
	}
	return cmd
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &a.search
	switch {
	case key.Matches(m, a.keys.Search):
		a.editing = true
		a.input.Focus()
		return a, textinput.Blink
	case key.Matches(m, a.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(m, a.keys.Down):
		if s.cursor < len(s.entries())-1 {
			s.cursor++
		}
	case key.Matches(m, a.keys.Open):
		list := s.entries()
		if s.cursor < len(list) {
			e := list[s.cursor]
			return a, a.openBoard(e.id, e.name, e.page)
		}
	case key.Matches(m, a.keys.ClearHistory):
		return a, a.clearHistoryCmd()
	case key.Matches(m, a.keys.Back):
		if s.searched {
			s.searched = false
			s.results = nil
			s.cursor = 0
		}
	}
	return a, nil
}

func (a *App) applySearch(r fetch.SearchResponse) tea.Cmd {
	s := &a.search
	s.results = r.Results
	s.searched = true
	s.cursor = 0
	if len(r.Results) == 0 {
		a.setWarning(fmt.Sprintf("no boards match %q", r.Query))
	} else {
		a.setStatus(fmt.Sprintf("%d boards match %q", len(r.Results), r.Query))
	}
	return a.recordSearchCmd(r.Query, len(r.Results))
}

func (a *App) openBoard(boardID, name string, page paging.Page) tea.Cmd {
	if page < paging.FirstPage {
		page = paging.FirstPage
	}
	a.board = boardState{id: boardID, name: name, page: page}
	a.screen = screenBoard
	a.setStatus("")
	return a.requestBoard(page, false)
}

func (a *App) renderSearch() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("bahaterm"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render("巴哈姆特哈啦區"))
	b.WriteString("\n\n")
	b.WriteString(a.input.View())
	b.WriteString("\n\n")

	s := &a.search
	list := s.entries()
	switch {
	case s.searched:
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("Results for %q", s.query)))
	case len(list) > 0:
		b.WriteString(subtitleStyle.Render("Recent boards"))
	default:
		b.WriteString(mutedStyle.Render("No history yet. Press / and search for a board."))
	}
	b.WriteString("\n")

	start, end := window(s.cursor, len(list), a.bodyHeight(10))
	for i := start; i < end; i++ {
		e := list[i]
		line := fmt.Sprintf("%-8s %s  %s", e.id, e.name, mutedStyle.Render(e.detail))
		line = truncate(line, a.width-2)
		if i == s.cursor && !a.editing {
			line = selectedStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}
	if !s.searched && len(s.queries) > 0 {
		qs := make([]string, 0, len(s.queries))
		for _, q := range s.queries {
			qs = append(qs, q.Query)
		}
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(truncate("Recent searches: "+strings.Join(qs, " · "), a.width-2)))
	}
	return strings.TrimRight(b.String(), "\n")
}
