package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/bahaterm/internal/bahamut"
	"github.com/jask/bahaterm/internal/fetch"
	"github.com/jask/bahaterm/internal/paging"
)

type boardState struct {
	want uuid.UUID
	id   string
	name string
	// page is the page currently shown; requests in flight do not move it.
	page   paging.Page
	max    paging.MaxPage
	posts  []bahamut.BoardPost
	cursor int
	loaded bool
}

func (a *App) requestBoard(page paging.Page, force bool) tea.Cmd {
	id, cmd := a.send(fetch.BoardPage(a.board.id, page, force))
	if id != uuid.Nil {
		a.board.want = id
	}
	return cmd
}

func (a *App) handleBoardKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := &a.board
	switch {
	case key.Matches(m, a.keys.Back):
		a.screen = screenSearch
		a.board.want = uuid.Nil
		return a, a.loadSuggestions(a.input.Value())
	case key.Matches(m, a.keys.Up):
		if b.cursor > 0 {
			b.cursor--
		}
	case key.Matches(m, a.keys.Down):
		if b.cursor < len(b.posts)-1 {
			b.cursor++
		}
	case key.Matches(m, a.keys.NextPage):
		next := b.page + 1
		if !b.max.Admits(next) {
			a.setWarning("already on the last page")
			return a, nil
		}
		return a, a.requestBoard(next, false)
	case key.Matches(m, a.keys.PrevPage):
		if b.page <= paging.FirstPage {
			return a, nil
		}
		return a, a.requestBoard(b.page-1, false)
	case key.Matches(m, a.keys.First):
		return a, a.requestBoard(paging.FirstPage, false)
	case key.Matches(m, a.keys.Last):
		if !b.max.Known() {
			a.setWarning("last page unknown")
			return a, nil
		}
		return a, a.requestBoard(b.max.Last(), false)
	case key.Matches(m, a.keys.Refresh):
		return a, a.requestBoard(b.page, true)
	case key.Matches(m, a.keys.Open):
		if b.cursor < len(b.posts) {
			return a, a.openPost(b.posts[b.cursor].Ref(), screenBoard)
		}
	}
	return a, nil
}

func (a *App) applyBoard(r fetch.BoardPageResponse) tea.Cmd {
	b := &a.board
	if r.Name != "" {
		b.name = r.Name
	}
	if r.Data.Max.Known() {
		b.max = r.Data.Max
	}
	if !r.Data.Found {
		if !b.loaded && r.Data.Page != paging.FirstPage {
			a.setWarning(fmt.Sprintf("page %d unavailable, showing page 1", r.Data.Page))
			b.page = paging.FirstPage
			return a.requestBoard(paging.FirstPage, false)
		}
		a.setWarning(fmt.Sprintf("page %d unavailable", r.Data.Page))
		return nil
	}
	b.page = r.Data.Page
	b.posts = r.Data.Items
	b.cursor = 0
	b.loaded = true
	a.setStatus("")
	return a.recordVisitCmd(b.id, b.name, int(b.page))
}

func (a *App) renderBoard() string {
	b := &a.board
	var out strings.Builder
	name := b.name
	if name == "" {
		name = b.id
	}
	out.WriteString(titleStyle.Render(name))
	out.WriteString("  ")
	out.WriteString(subtitleStyle.Render(pageLabel(b.page, b.max)))
	out.WriteString("\n\n")

	if !b.loaded {
		out.WriteString(mutedStyle.Render("Nothing loaded yet."))
		return out.String()
	}
	if len(b.posts) == 0 {
		out.WriteString(mutedStyle.Render("This page has no threads."))
		return out.String()
	}

	start, end := window(b.cursor, len(b.posts), a.bodyHeight(6))
	for i := start; i < end; i++ {
		out.WriteString(a.boardRow(b.posts[i], i == b.cursor))
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n")
}

func (a *App) boardRow(p bahamut.BoardPost, selected bool) string {
	gp := gpStyle.Render(fmt.Sprintf("%4d", p.GP))
	replies := mutedStyle.Render(fmt.Sprintf("%5d", p.Replies))
	var cat string
	if p.Category.Name != "" {
		cat = categoryStyle.Render("["+p.Category.Name+"]") + " "
	}
	title := p.Title
	if selected {
		title = selectedStyle.Render(title)
	}
	row := fmt.Sprintf("%s %s %s%s  %s", gp, replies, cat, title, mutedStyle.Render(p.EditTime))
	return truncate(row, a.width)
}
