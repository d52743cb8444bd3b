package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/bahaterm/internal/config"
	"github.com/jask/bahaterm/internal/database/repository"
	"github.com/jask/bahaterm/internal/fetch"
	"github.com/jask/bahaterm/internal/paging"
	"github.com/jask/bahaterm/internal/service"
)

// Fetcher is the UI's handle on the fetch worker. Neither method blocks.
type Fetcher interface {
	Send(req fetch.Request) (uuid.UUID, error)
	Poll() (fetch.Response, bool)
}

type Services struct {
	History     *service.HistoryService
	Maintenance *service.MaintenanceService
}

type screen string

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

const (
	screenSearch   screen = "search"
	screenBoard    screen = "board"
	screenPost     screen = "post"
	screenComments screen = "comments"
)

// App is the root bubbletea model.
type App struct {
	ctx      context.Context
	fetcher  Fetcher
	services Services
	cfg      config.UIConfig
	keys     keyMap
	help     help.Model
	input    textinput.Model

	screen  screen
	editing bool
	// pending holds the ids of requests without a response yet.
	pending    map[uuid.UUID]struct{}
	polling    bool
	status     string
	statusKind statusKind
	width      int
	height     int

	search   searchState
	board    boardState
	post     postState
	comments commentState
}

// messages
type (
	pollMsg           struct{}
	suggestionsMsg    []repository.BoardVisit
	recentQueriesMsg  []repository.SearchQuery
	historyClearedMsg struct{}
	statusMsg         string
	errMsg            struct{ error }
)

func New(ctx context.Context, fetcher Fetcher, services Services, cfg config.UIConfig) *App {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = "board name or thread URL"
	in.CharLimit = 200
	in.Focus()

	return &App{
		ctx:      ctx,
		fetcher:  fetcher,
		services: services,
		cfg:      cfg,
		keys:     defaultKeyMap(),
		help:     help.New(),
		input:    in,
		screen:   screenSearch,
		editing:  true,
		pending:  make(map[uuid.UUID]struct{}),
		width:    80,
		height:   24,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.loadSuggestions(""), a.loadRecentQueries())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
		a.input.Width = max(10, m.Width-4)
	case tea.KeyMsg:
		return a.handleKey(m)
	case pollMsg:
		return a, a.drain()
	case suggestionsMsg:
		a.search.suggestions = []repository.BoardVisit(m)
		a.search.clamp()
	case recentQueriesMsg:
		a.search.queries = []repository.SearchQuery(m)
	case historyClearedMsg:
		a.setStatus("history cleared")
		return a, tea.Batch(a.loadSuggestions(a.input.Value()), a.loadRecentQueries())
	case statusMsg:
		a.setStatus(string(m))
	case errMsg:
		a.setError(m.error)
	default:
		if a.editing {
			var cmd tea.Cmd
			a.input, cmd = a.input.Update(msg)
			return a, cmd
		}
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}
	if a.screen == screenSearch && a.editing {
		return a.handleInputKey(m)
	}
	if key.Matches(m, a.keys.Quit) {
		return a, tea.Quit
	}
	switch a.screen {
	case screenBoard:
		return a.handleBoardKey(m)
	case screenPost:
		return a.handlePostKey(m)
	case screenComments:
		return a.handleCommentsKey(m)
	default:
		return a.handleSearchKey(m)
	}
}

// send queues req and starts polling if it is not running yet. The returned
// id is uuid.Nil when the worker refused the request.
func (a *App) send(req fetch.Request) (uuid.UUID, tea.Cmd) {
	id, err := a.fetcher.Send(req)
	if err != nil {
		a.setError(err)
		return uuid.Nil, nil
	}
	a.pending[id] = struct{}{}
	if a.polling {
		return id, nil
	}
	a.polling = true
	return id, a.tick()
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(a.cfg.PollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

// Loading reports whether any request is outstanding.
func (a *App) Loading() bool { return len(a.pending) > 0 }

// drain applies every response that has arrived and keeps the poll timer
// running while requests are outstanding.
func (a *App) drain() tea.Cmd {
	var cmds []tea.Cmd
	for {
		resp, ok := a.fetcher.Poll()
		if !ok {
			break
		}
		delete(a.pending, resp.RequestID())
		cmds = append(cmds, a.apply(resp))
	}
	if a.Loading() {
		cmds = append(cmds, a.tick())
	} else {
		a.polling = false
	}
	return tea.Batch(cmds...)
}

// apply folds a response into the screen that asked for it. Responses to
// requests that were superseded are dropped.
func (a *App) apply(resp fetch.Response) tea.Cmd {
	switch r := resp.(type) {
	case fetch.SearchResponse:
		if r.ID != a.search.want {
			return nil
		}
		return a.applySearch(r)
	case fetch.BoardPageResponse:
		if r.ID != a.board.want {
			return nil
		}
		return a.applyBoard(r)
	case fetch.PostPageResponse:
		if r.ID != a.post.want {
			return nil
		}
		a.applyPost(r)
	case fetch.CommentsResponse:
		if r.ID != a.comments.want {
			return nil
		}
		a.applyComments(r)
	}
	return nil
}

// commands
func (a *App) loadSuggestions(input string) tea.Cmd {
	if a.services.History == nil {
		return nil
	}
	return func() tea.Msg {
		list, err := a.services.History.Suggest(a.ctx, input)
		if err != nil {
			return errMsg{err}
		}
		return suggestionsMsg(list)
	}
}

func (a *App) loadRecentQueries() tea.Cmd {
	if a.services.History == nil {
		return nil
	}
	return func() tea.Msg {
		list, err := a.services.History.RecentQueries(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return recentQueriesMsg(list)
	}
}

func (a *App) recordVisitCmd(boardID, name string, page int) tea.Cmd {
	if a.services.History == nil {
		return nil
	}
	return func() tea.Msg {
		if err := a.services.History.VisitBoard(a.ctx, boardID, name, page); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (a *App) recordSearchCmd(query string, results int) tea.Cmd {
	if a.services.History == nil {
		return nil
	}
	return func() tea.Msg {
		if err := a.services.History.RecordSearch(a.ctx, query, results); err != nil {
			return errMsg{err}
		}
		return a.loadRecentQueries()()
	}
}

func (a *App) clearHistoryCmd() tea.Cmd {
	if a.services.Maintenance == nil {
		return nil
	}
	return func() tea.Msg {
		if err := a.services.Maintenance.ClearHistory(a.ctx); err != nil {
			return errMsg{err}
		}
		return historyClearedMsg{}
	}
}

func (a *App) View() string {
	var body string
	switch a.screen {
	case screenBoard:
		body = a.renderBoard()
	case screenPost:
		body = a.renderPost()
	case screenComments:
		body = a.renderComments()
	default:
		body = a.renderSearch()
	}
	view := body + "\n\n" + a.renderFooter()
	if a.Loading() {
		view = centerOverlay(view, loadingStyle.Render("Loading…"), a.width, a.height)
	}
	return view
}

func (a *App) renderFooter() string {
	var b strings.Builder
	if a.status != "" {
		style := statusStyle
		switch a.statusKind {
		case statusWarn:
			style = warningStyle
		case statusError:
			style = errorStyle
		}
		b.WriteString(style.Render(truncate(a.status, a.width)))
		b.WriteString("\n")
	}
	b.WriteString(a.help.ShortHelpView(a.keys.help(a.screen, a.editing)))
	return b.String()
}

// bodyHeight is the number of list or text rows available to a screen.
func (a *App) bodyHeight(chrome int) int {
	return max(3, a.height-chrome)
}

func (a *App) setStatus(s string)  { a.status, a.statusKind = s, statusInfo }
func (a *App) setWarning(s string) { a.status, a.statusKind = s, statusWarn }
func (a *App) setError(err error) {
	a.status, a.statusKind = "error: "+err.Error(), statusError
}

func pageLabel(page paging.Page, bound paging.MaxPage) string {
	if !bound.Known() {
		return fmt.Sprintf("page %d/?", page)
	}
	return fmt.Sprintf("page %d/%d", page, bound)
}

// window returns the [start, end) range of n rows that keeps cursor visible
// in size rows.
func window(cursor, n, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	start := max(0, cursor-size/2)
	if start+size > n {
		start = n - size
	}
	return start, start + size
}
