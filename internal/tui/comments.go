package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/bahaterm/internal/bahamut"
	"github.com/jask/bahaterm/internal/fetch"
)

type commentState struct {
	want      uuid.UUID
	boardID   string
	contentID string
	floor     int
	items     []bahamut.Comment
	scroll    int
	loaded    bool
}

func (a *App) openComments(boardID string, c bahamut.PostContent) tea.Cmd {
	a.comments = commentState{boardID: boardID, contentID: c.ID, floor: c.Floor}
	a.screen = screenComments
	a.setStatus("")
	return a.requestComments(false)
}

func (a *App) requestComments(force bool) tea.Cmd {
	c := &a.comments
	id, cmd := a.send(fetch.Comments(c.boardID, c.contentID, force))
	if id != uuid.Nil {
		c.want = id
	}
	return cmd
}

func (a *App) handleCommentsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := &a.comments
	switch {
	case key.Matches(m, a.keys.Back):
		a.screen = screenPost
		c.want = uuid.Nil
	case key.Matches(m, a.keys.Up):
		if c.scroll > 0 {
			c.scroll--
		}
	case key.Matches(m, a.keys.Down):
		if c.scroll < len(c.items)-1 {
			c.scroll++
		}
	case key.Matches(m, a.keys.Refresh):
		return a, a.requestComments(true)
	}
	return a, nil
}

func (a *App) applyComments(r fetch.CommentsResponse) {
	c := &a.comments
	if !r.Data.Found {
		a.setWarning("comments unavailable")
		return
	}
	c.items = r.Data.Items
	c.loaded = true
	c.scroll = 0
	a.setStatus(fmt.Sprintf("%d comments", len(c.items)))
}

func (a *App) renderComments() string {
	c := &a.comments
	var out strings.Builder
	out.WriteString(titleStyle.Render(fmt.Sprintf("Comments on floor %d", c.floor)))
	out.WriteString("\n\n")
	if !c.loaded {
		out.WriteString(mutedStyle.Render("Nothing loaded yet."))
		return out.String()
	}
	if len(c.items) == 0 {
		out.WriteString(mutedStyle.Render("No comments."))
		return out.String()
	}
	end := min(len(c.items), c.scroll+a.bodyHeight(6))
	for _, cm := range c.items[c.scroll:end] {
		out.WriteString(a.commentRow(cm))
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n")
}

func (a *App) commentRow(c bahamut.Comment) string {
	head := fmt.Sprintf("B%-3d %s", c.Floor, nickStyle.Render(c.Nick))
	tail := mutedStyle.Render(fmt.Sprintf("GP %d BP %d  %s", c.GP, c.BP, c.Time))
	return truncate(head+" "+c.Content+"  "+tail, a.width)
}
