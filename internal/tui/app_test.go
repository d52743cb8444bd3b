package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jask/bahaterm/internal/bahamut"
	"github.com/jask/bahaterm/internal/config"
	"github.com/jask/bahaterm/internal/fetch"
	"github.com/jask/bahaterm/internal/mailbox"
	"github.com/jask/bahaterm/internal/paging"
)

type fakeFetcher struct {
	sent  []fetch.Request
	queue []fetch.Response
	err   error
}

func (f *fakeFetcher) Send(req fetch.Request) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.sent = append(f.sent, req)
	return req.RequestID(), nil
}

func (f *fakeFetcher) Poll() (fetch.Response, bool) {
	if len(f.queue) == 0 {
		return nil, false
	}
	r := f.queue[0]
	f.queue = f.queue[1:]
	return r, true
}

func (f *fakeFetcher) respond(r fetch.Response) { f.queue = append(f.queue, r) }

func (f *fakeFetcher) last(t *testing.T) fetch.Request {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func newTestApp(t *testing.T) (*App, *fakeFetcher) {
	t.Helper()
	f := &fakeFetcher{}
	a := New(context.Background(), f, Services{}, config.UIConfig{})
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return a, f
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(a *App, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = a.Update(keyMsg(k))
	}
	return cmd
}

func typeText(a *App, s string) {
	for _, r := range s {
		a.Update(keyMsg(string(r)))
	}
}

func poll(a *App) {
	a.Update(pollMsg{})
}

func boardData(page paging.Page, bound paging.MaxPage, titles ...string) paging.PageData[[]bahamut.BoardPost] {
	posts := make([]bahamut.BoardPost, 0, len(titles))
	for i, title := range titles {
		posts = append(posts, bahamut.BoardPost{BoardID: "60076", ID: title, Floor: i + 1, Title: title})
	}
	return paging.PageData[[]bahamut.BoardPost]{Page: page, Max: bound, Items: posts, Found: true}
}

func postData(page paging.Page, bound paging.MaxPage, floors ...int) paging.PageData[bahamut.Post] {
	post := bahamut.Post{ID: "123", Title: "拉麵推薦"}
	for _, n := range floors {
		post.Contents = append(post.Contents, bahamut.PostContent{
			ID:    "snB" + string(rune('0'+n)),
			Floor: n,
			Lines: []string{"第一行"},
		})
	}
	return paging.PageData[bahamut.Post]{Page: page, Max: bound, Items: post, Found: true}
}

func TestSearchSubmitPollsUntilAnswered(t *testing.T) {
	a, f := newTestApp(t)

	typeText(a, "場外")
	cmd := press(a, "enter")
	require.NotNil(t, cmd)
	require.False(t, a.editing)
	require.True(t, a.Loading())
	require.Contains(t, a.View(), "Loading…")

	req, ok := f.last(t).(fetch.SearchRequest)
	require.True(t, ok)
	require.Equal(t, "場外", req.Query)

	poll(a)
	require.True(t, a.Loading(), "nothing answered yet")
	require.True(t, a.polling)

	f.respond(fetch.SearchResponse{ID: req.ID, Query: req.Query, Results: []bahamut.SearchResult{
		{ID: "60076", Name: "場外休憩區", Platform: "綜合"},
		{ID: "36730", Name: "英雄聯盟", Platform: "PC"},
	}})
	poll(a)
	require.False(t, a.Loading())
	require.False(t, a.polling)
	require.True(t, a.search.searched)
	require.Len(t, a.search.entries(), 2)
	require.NotContains(t, a.View(), "Loading…")

	press(a, "j", "enter")
	require.Equal(t, screenBoard, a.screen)
	board, ok := f.last(t).(fetch.BoardPageRequest)
	require.True(t, ok)
	require.Equal(t, "36730", board.BoardID)
	require.Equal(t, paging.FirstPage, board.Page)
	require.False(t, board.Force)
}

func TestBlankSearchSendsNothing(t *testing.T) {
	a, f := newTestApp(t)
	typeText(a, "   ")
	require.Nil(t, press(a, "enter"))
	require.Empty(t, f.sent)
	require.True(t, a.editing)
	require.Equal(t, statusWarn, a.statusKind)
}

func TestThreadURLOpensPost(t *testing.T) {
	a, f := newTestApp(t)
	typeText(a, "https://forum.gamer.com.tw/C.php?bsn=60076&snA=123&tnum=4")
	press(a, "enter")

	require.Equal(t, screenPost, a.screen)
	req, ok := f.last(t).(fetch.PostPageRequest)
	require.True(t, ok)
	require.Equal(t, bahamut.PostRef{BoardID: "60076", PostID: "123", Floor: 4}, req.Ref)
	require.Equal(t, paging.FirstPage, req.Page)

	press(a, "esc")
	require.Equal(t, screenSearch, a.screen)
}

func TestBoardPagingRespectsBounds(t *testing.T) {
	a, f := newTestApp(t)
	a.openBoard("60076", "", paging.FirstPage)
	first := f.last(t).(fetch.BoardPageRequest)
	f.respond(fetch.BoardPageResponse{ID: first.ID, BoardID: "60076", Name: "場外休憩區", Data: boardData(1, 2, "a", "b")})
	poll(a)
	require.Equal(t, "場外休憩區", a.board.name)
	require.Equal(t, paging.MaxPage(2), a.board.max)
	require.Contains(t, a.View(), "page 1/2")

	press(a, "h")
	require.Len(t, f.sent, 1, "no page before the first")

	press(a, "l")
	next := f.last(t).(fetch.BoardPageRequest)
	require.Equal(t, paging.Page(2), next.Page)
	f.respond(fetch.BoardPageResponse{ID: next.ID, BoardID: "60076", Name: "場外休憩區", Data: boardData(2, 2, "c")})
	poll(a)
	require.Equal(t, paging.Page(2), a.board.page)

	press(a, "l")
	require.Len(t, f.sent, 2, "no page after the last")
	require.Equal(t, statusWarn, a.statusKind)

	press(a, "r")
	refresh := f.last(t).(fetch.BoardPageRequest)
	require.True(t, refresh.Force)
	require.Equal(t, paging.Page(2), refresh.Page)

	press(a, "g")
	require.Equal(t, paging.FirstPage, f.last(t).(fetch.BoardPageRequest).Page)
}

func TestBoardMissingPageKeepsListing(t *testing.T) {
	a, f := newTestApp(t)
	a.openBoard("60076", "場外休憩區", paging.FirstPage)
	first := f.last(t).(fetch.BoardPageRequest)
	f.respond(fetch.BoardPageResponse{ID: first.ID, Data: boardData(1, 0, "a")})
	poll(a)

	press(a, "l")
	next := f.last(t).(fetch.BoardPageRequest)
	f.respond(fetch.BoardPageResponse{ID: next.ID, Data: paging.PageData[[]bahamut.BoardPost]{Page: 2}})
	poll(a)

	require.Equal(t, paging.FirstPage, a.board.page)
	require.Len(t, a.board.posts, 1)
	require.Equal(t, "page 2 unavailable", a.status)
}

func TestStaleResponsesAreIgnored(t *testing.T) {
	a, f := newTestApp(t)
	a.openBoard("60076", "場外休憩區", paging.FirstPage)
	first := f.last(t).(fetch.BoardPageRequest)
	f.respond(fetch.BoardPageResponse{ID: first.ID, Data: boardData(1, 3, "a")})
	poll(a)

	press(a, "l")
	stale := f.last(t).(fetch.BoardPageRequest)
	press(a, "G")
	latest := f.last(t).(fetch.BoardPageRequest)
	require.Equal(t, paging.Page(3), latest.Page)

	f.respond(fetch.BoardPageResponse{ID: latest.ID, Data: boardData(3, 3, "z")})
	f.respond(fetch.BoardPageResponse{ID: stale.ID, Data: boardData(2, 3, "m")})
	poll(a)

	require.False(t, a.Loading())
	require.Equal(t, paging.Page(3), a.board.page)
	require.Equal(t, "z", a.board.posts[0].Title)
}

func TestPostChainsNextPage(t *testing.T) {
	a, f := newTestApp(t)
	ref := bahamut.PostRef{BoardID: "60076", PostID: "123"}
	a.openPost(ref, screenBoard)
	first := f.last(t).(fetch.PostPageRequest)
	f.respond(fetch.PostPageResponse{ID: first.ID, Ref: ref, Data: postData(1, 2, 1, 2)})
	poll(a)
	require.Equal(t, "拉麵推薦", a.post.title)
	require.Len(t, a.post.floors, 2)

	press(a, "j")
	require.Equal(t, 1, a.post.cursor)
	require.Len(t, f.sent, 1)

	press(a, "j")
	chain := f.last(t).(fetch.PostPageRequest)
	require.Equal(t, paging.Page(2), chain.Page)
	press(a, "j")
	require.Len(t, f.sent, 2, "chained page already requested")

	f.respond(fetch.PostPageResponse{ID: chain.ID, Ref: ref, Data: postData(2, 2, 3)})
	poll(a)
	require.Len(t, a.post.floors, 3)
	require.Equal(t, 2, a.post.cursor)
	require.Equal(t, 3, a.post.floors[a.post.cursor].content.Floor)

	press(a, "j")
	require.Len(t, f.sent, 2, "past the last page")
	require.Equal(t, "no more floors", a.status)

	press(a, "h")
	require.Equal(t, 0, a.post.cursor)
	press(a, "l")
	require.Equal(t, 2, a.post.cursor)
	require.Len(t, f.sent, 2, "both pages are loaded")

	press(a, "esc")
	require.Equal(t, screenBoard, a.screen)
}

func TestCommentsForCurrentFloor(t *testing.T) {
	a, f := newTestApp(t)
	ref := bahamut.PostRef{BoardID: "60076", PostID: "123"}
	a.openPost(ref, screenBoard)
	first := f.last(t).(fetch.PostPageRequest)
	f.respond(fetch.PostPageResponse{ID: first.ID, Ref: ref, Data: postData(1, 1, 1, 2)})
	poll(a)

	press(a, "j", "c")
	require.Equal(t, screenComments, a.screen)
	req, ok := f.last(t).(fetch.CommentsRequest)
	require.True(t, ok)
	require.Equal(t, "60076", req.BoardID)
	require.Equal(t, "snB2", req.ContentID)

	f.respond(fetch.CommentsResponse{ID: req.ID, BoardID: "60076", ContentID: "snB2", Data: paging.PageData[[]bahamut.Comment]{
		Page:  1,
		Max:   1,
		Found: true,
		Items: []bahamut.Comment{{Floor: 1, Nick: "小明", Content: "推"}},
	}})
	poll(a)
	require.Len(t, a.comments.items, 1)
	require.Contains(t, a.View(), "推")

	press(a, "r")
	require.True(t, f.last(t).(fetch.CommentsRequest).Force)

	press(a, "esc")
	require.Equal(t, screenPost, a.screen)
}

func TestQuitOnlyOutsideInput(t *testing.T) {
	a, _ := newTestApp(t)
	press(a, "q")
	require.Equal(t, "q", a.input.Value())
	require.Equal(t, screenSearch, a.screen)

	press(a, "esc")
	cmd := press(a, "q")
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSendFailureShowsError(t *testing.T) {
	a, f := newTestApp(t)
	f.err = mailbox.ErrClosed
	typeText(a, "場外")
	require.Nil(t, press(a, "enter"))
	require.False(t, a.Loading())
	require.False(t, a.polling)
	require.Equal(t, statusError, a.statusKind)
	require.Contains(t, a.View(), "mailbox: closed")
}
