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

// postFloor is a floor together with the thread page it came from.
type postFloor struct {
	page    paging.Page
	content bahamut.PostContent
}

type postState struct {
	want uuid.UUID
	// requested is the page of the request in flight.
	requested paging.Page
	// toEnd puts the cursor on the last floor once the request lands.
	toEnd  bool
	ref    bahamut.PostRef
	title  string
	floors []postFloor
	// loaded is the highest page whose floors are in floors.
	loaded paging.Page
	max    paging.MaxPage
	cursor int
	scroll int
	back   screen
}

func (p *postState) current() (postFloor, bool) {
	if p.cursor < 0 || p.cursor >= len(p.floors) {
		return postFloor{}, false
	}
	return p.floors[p.cursor], true
}

// firstOf returns the index of the first loaded floor of page.
func (p *postState) firstOf(page paging.Page) (int, bool) {
	for i, f := range p.floors {
		if f.page == page {
			return i, true
		}
	}
	return 0, false
}

func (a *App) openPost(ref bahamut.PostRef, back screen) tea.Cmd {
	a.post = postState{ref: ref, back: back}
	a.screen = screenPost
	a.setStatus("")
	return a.requestPost(paging.FirstPage, false)
}

func (a *App) requestPost(page paging.Page, force bool) tea.Cmd {
	id, cmd := a.send(fetch.PostPage(a.post.ref, page, force))
	if id != uuid.Nil {
		a.post.want = id
		a.post.requested = page
	}
	return cmd
}

// inFlight reports whether a post request for page has not been answered.
func (a *App) inFlight(page paging.Page) bool {
	_, ok := a.pending[a.post.want]
	return ok && a.post.requested == page
}

func (a *App) handlePostKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := &a.post
	switch {
	case key.Matches(m, a.keys.Back):
		a.screen = p.back
		p.want = uuid.Nil
		if p.back == screenSearch {
			return a, a.loadSuggestions(a.input.Value())
		}
	case key.Matches(m, a.keys.Up):
		if p.cursor > 0 {
			p.cursor--
			p.scroll = 0
		}
	case key.Matches(m, a.keys.Down):
		if p.cursor < len(p.floors)-1 {
			p.cursor++
			p.scroll = 0
			return a, nil
		}
		return a, a.chainNext()
	case key.Matches(m, a.keys.NextPage):
		cur, ok := p.current()
		if !ok {
			return a, nil
		}
		return a, a.jumpPage(cur.page + 1)
	case key.Matches(m, a.keys.PrevPage):
		cur, ok := p.current()
		if !ok || cur.page <= paging.FirstPage {
			return a, nil
		}
		return a, a.jumpPage(cur.page - 1)
	case key.Matches(m, a.keys.ScrollDown):
		cur, ok := p.current()
		if !ok {
			return a, nil
		}
		last := len(a.bodyLines(cur.content)) - 1
		p.scroll = min(last, p.scroll+max(1, a.bodyHeight(8)/2))
	case key.Matches(m, a.keys.ScrollUp):
		p.scroll = max(0, p.scroll-max(1, a.bodyHeight(8)/2))
	case key.Matches(m, a.keys.First):
		return a, a.jumpPage(paging.FirstPage)
	case key.Matches(m, a.keys.Last):
		if p.max.Known() && p.loaded < p.max.Last() {
			p.toEnd = true
			return a, a.requestPost(p.max.Last(), false)
		}
		if len(p.floors) > 0 {
			p.cursor = len(p.floors) - 1
			p.scroll = 0
		}
	case key.Matches(m, a.keys.Refresh):
		page := paging.FirstPage
		if cur, ok := p.current(); ok {
			page = cur.page
		}
		return a, a.requestPost(page, true)
	case key.Matches(m, a.keys.Comments):
		cur, ok := p.current()
		if !ok || cur.content.ID == "" {
			return a, nil
		}
		return a, a.openComments(p.ref.BoardID, cur.content)
	}
	return a, nil
}

// chainNext loads the page after the last loaded one so its floors are
// appended below the current ones.
func (a *App) chainNext() tea.Cmd {
	p := &a.post
	next := p.loaded + 1
	if p.loaded == 0 || !p.max.Admits(next) {
		a.setWarning("no more floors")
		return nil
	}
	if a.inFlight(next) {
		return nil
	}
	return a.requestPost(next, false)
}

// jumpPage moves the cursor to the first floor of page, loading it if needed.
func (a *App) jumpPage(page paging.Page) tea.Cmd {
	p := &a.post
	if i, ok := p.firstOf(page); ok {
		p.cursor = i
		p.scroll = 0
		return nil
	}
	if !p.max.Admits(page) {
		a.setWarning("already on the last page")
		return nil
	}
	return a.requestPost(page, false)
}

func (a *App) applyPost(r fetch.PostPageResponse) {
	p := &a.post
	if r.Data.Max.Known() {
		p.max = r.Data.Max
	}
	toEnd := p.toEnd
	p.toEnd = false
	if !r.Data.Found {
		a.setWarning(fmt.Sprintf("page %d unavailable", r.Data.Page))
		return
	}
	if r.Data.Items.Title != "" {
		p.title = r.Data.Items.Title
	}
	floors := make([]postFloor, 0, len(r.Data.Items.Contents))
	for _, c := range r.Data.Items.Contents {
		floors = append(floors, postFloor{page: r.Data.Page, content: c})
	}

	if p.loaded != 0 && r.Data.Page == p.loaded+1 {
		p.cursor = len(p.floors)
		p.floors = append(p.floors, floors...)
	} else {
		p.floors = floors
		p.cursor = 0
	}
	p.loaded = r.Data.Page
	if toEnd && len(p.floors) > 0 {
		p.cursor = len(p.floors) - 1
	}
	if p.cursor >= len(p.floors) {
		p.cursor = max(0, len(p.floors)-1)
	}
	p.scroll = 0
	a.setStatus("")
}

func (a *App) renderPost() string {
	p := &a.post
	var out strings.Builder
	title := p.title
	if title == "" {
		title = "thread " + p.ref.PostID
	}
	out.WriteString(titleStyle.Render(truncate(title, a.width)))
	out.WriteString("\n")

	cur, ok := p.current()
	if !ok {
		out.WriteString(subtitleStyle.Render(pageLabel(paging.FirstPage, p.max)))
		out.WriteString("\n\n")
		out.WriteString(mutedStyle.Render("Nothing loaded yet."))
		return out.String()
	}
	out.WriteString(subtitleStyle.Render(fmt.Sprintf("%s · floor %d · %d/%d loaded",
		pageLabel(cur.page, p.max), cur.content.Floor, p.cursor+1, len(p.floors))))
	out.WriteString("\n")
	out.WriteString(authorLine(cur.content))
	out.WriteString("\n\n")

	lines := a.bodyLines(cur.content)
	start := min(p.scroll, len(lines)-1)
	end := min(len(lines), start+a.bodyHeight(8))
	out.WriteString(strings.Join(lines[start:end], "\n"))
	return out.String()
}

func authorLine(c bahamut.PostContent) string {
	u := c.Author
	parts := []string{authorStyle.Render(u.Name), mutedStyle.Render(u.ID)}
	var meta []string
	if u.Career != "" {
		meta = append(meta, u.Career)
	}
	if u.Race != "" {
		meta = append(meta, u.Race)
	}
	if u.Level > 0 {
		meta = append(meta, fmt.Sprintf("LV%d", u.Level))
	}
	if len(meta) > 0 {
		parts = append(parts, subtitleStyle.Render(strings.Join(meta, " ")))
	}
	if c.EditTime != "" {
		parts = append(parts, mutedStyle.Render(c.EditTime))
	}
	return strings.Join(parts, "  ")
}

// bodyLines wraps the floor body to the screen width. Media links are kept on
// their own lines.
func (a *App) bodyLines(c bahamut.PostContent) []string {
	wrap := floorStyle.Width(max(20, a.width-2))
	var out []string
	for _, line := range c.Lines {
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			out = append(out, mediaStyle.Render(truncate(line, a.width-2)))
			continue
		}
		out = append(out, splitLines(wrap.Render(line))...)
	}
	if len(out) == 0 {
		out = append(out, mutedStyle.Render("(empty floor)"))
	}
	return out
}
