// Package fetch runs all forum I/O on a single worker goroutine. The UI talks
// to it only through two mailboxes: requests in, responses out.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jask/bahaterm/internal/bahamut"
	"github.com/jask/bahaterm/internal/mailbox"
	"github.com/jask/bahaterm/internal/paging"
)

// Searcher runs board searches.
type Searcher interface {
	Search(ctx context.Context, query string) ([]bahamut.SearchResult, error)
}

// Sources are the page sources the dispatcher pages through.
type Sources struct {
	Boards   paging.Source[bahamut.Board]
	Posts    paging.Source[bahamut.Post]
	Comments paging.Source[[]bahamut.Comment]
	Search   Searcher
}

// Dispatcher owns every page cache. Only Run touches them.
type Dispatcher struct {
	requests  *mailbox.Mailbox[Request]
	responses *mailbox.Mailbox[Response]

	boards   *paging.Registry[bahamut.Board]
	posts    *paging.Registry[bahamut.Post]
	comments *paging.Registry[[]bahamut.Comment]
	searcher Searcher

	// boardNames remembers the last name seen per board so a failed page
	// still carries one.
	boardNames map[string]string
	logger     *slog.Logger
}

// New returns a dispatcher and the client used to talk to it.
func New(src Sources, logger *slog.Logger) (*Dispatcher, *Client) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	requests := mailbox.New[Request]()
	responses := mailbox.New[Response]()
	d := &Dispatcher{
		requests:   requests,
		responses:  responses,
		boards:     paging.NewRegistry(src.Boards, logger.With("kind", "board")),
		posts:      paging.NewRegistry(src.Posts, logger.With("kind", "post")),
		comments:   paging.NewRegistry(src.Comments, logger.With("kind", "comments")),
		searcher:   src.Search,
		boardNames: make(map[string]string),
		logger:     logger,
	}
	return d, &Client{requests: requests, responses: responses}
}

// Run processes requests in arrival order until a Shutdown request is taken
// or ctx is cancelled. Each request is handled completely before the next
// one is dequeued.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher started")
	for {
		req, err := d.requests.Get(ctx)
		if errors.Is(err, mailbox.ErrClosed) {
			d.logger.Info("dispatcher stopped", "reason", "request mailbox closed")
			return nil
		}
		if err != nil {
			return fmt.Errorf("dispatcher: %w", err)
		}

		d.logger.Debug("request", "id", req.RequestID(), "type", fmt.Sprintf("%T", req), "queued", d.requests.Len())
		var resp Response
		switch r := req.(type) {
		case Shutdown:
			d.requests.Close()
			if dropped := d.requests.Drain(); len(dropped) > 0 {
				d.logger.Warn("requests dropped at shutdown", "count", len(dropped))
			}
			d.logger.Info("dispatcher stopped", "reason", "shutdown", "request", r.ID,
				"boards", d.boards.Len(), "posts", d.posts.Len(), "comments", d.comments.Len())
			return nil
		case SearchRequest:
			resp = d.search(ctx, r)
		case BoardPageRequest:
			resp = d.boardPage(ctx, r)
		case PostPageRequest:
			resp = d.postPage(ctx, r)
		case CommentsRequest:
			resp = d.commentSet(ctx, r)
		}

		if err := d.responses.Put(resp); err != nil {
			d.logger.Warn("response dropped", "request", req.RequestID(), "err", err)
		}
	}
}

func (d *Dispatcher) search(ctx context.Context, r SearchRequest) SearchResponse {
	results, err := d.searcher.Search(ctx, r.Query)
	if err != nil {
		d.logger.Warn("search failed", "query", r.Query, "err", err)
		results = nil
	}
	d.logger.Debug("search", "query", r.Query, "results", len(results))
	return SearchResponse{ID: r.ID, Query: r.Query, Results: results}
}

func (d *Dispatcher) boardPage(ctx context.Context, r BoardPageRequest) BoardPageResponse {
	cache, _ := d.boards.GetOrCreate(ctx, r.BoardID, r.Page)
	cache.SetPage(r.Page)
	board, ok := cache.GetAndCache(ctx, r.Page, r.Force)
	if ok && board.Name != "" {
		d.boardNames[r.BoardID] = board.Name
	}
	d.logger.Debug("board page", "board", r.BoardID, "page", r.Page, "force", r.Force, "found", ok)
	return BoardPageResponse{
		ID:      r.ID,
		BoardID: r.BoardID,
		Name:    d.boardNames[r.BoardID],
		Data: paging.PageData[[]bahamut.BoardPost]{
			Page:  r.Page,
			Max:   cache.Max(),
			Items: board.Posts,
			Found: ok,
		},
	}
}

func (d *Dispatcher) postPage(ctx context.Context, r PostPageRequest) PostPageResponse {
	cache, _ := d.posts.GetOrCreate(ctx, r.Ref.Key(), r.Page)
	cache.SetPage(r.Page)
	post, ok := cache.GetAndCache(ctx, r.Page, r.Force)
	d.logger.Debug("post page", "board", r.Ref.BoardID, "post", r.Ref.PostID, "page", r.Page, "force", r.Force, "found", ok)
	return PostPageResponse{
		ID:  r.ID,
		Ref: r.Ref,
		Data: paging.PageData[bahamut.Post]{
			Page:  r.Page,
			Max:   cache.Max(),
			Items: post,
			Found: ok,
		},
	}
}

func (d *Dispatcher) commentSet(ctx context.Context, r CommentsRequest) CommentsResponse {
	cache, _ := d.comments.GetOrCreate(ctx, bahamut.CommentKey(r.BoardID, r.ContentID), paging.FirstPage)
	comments, ok := cache.GetAndCache(ctx, paging.FirstPage, r.Force)
	d.logger.Debug("comments", "board", r.BoardID, "content", r.ContentID, "force", r.Force, "found", ok)
	return CommentsResponse{
		ID:        r.ID,
		BoardID:   r.BoardID,
		ContentID: r.ContentID,
		Data: paging.PageData[[]bahamut.Comment]{
			Page:  paging.FirstPage,
			Max:   cache.Max(),
			Items: comments,
			Found: ok,
		},
	}
}
