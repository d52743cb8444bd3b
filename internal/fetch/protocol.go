package fetch

import (
	"github.com/google/uuid"

	"github.com/jask/bahaterm/internal/bahamut"
	"github.com/jask/bahaterm/internal/paging"
)

// Request is a unit of work for the dispatcher.
//
//sumtype:decl
type Request interface {
	RequestID() uuid.UUID
	isRequest()
}

// Response answers exactly one Request and carries its id.
//
//sumtype:decl
type Response interface {
	RequestID() uuid.UUID
	isResponse()
}

type SearchRequest struct {
	ID    uuid.UUID
	Query string
}

type BoardPageRequest struct {
	ID      uuid.UUID
	BoardID string
	Page    paging.Page
	// Force bypasses the cache.
	Force bool
}

type PostPageRequest struct {
	ID    uuid.UUID
	Ref   bahamut.PostRef
	Page  paging.Page
	Force bool
}

// CommentsRequest asks for the comment set of one floor.
type CommentsRequest struct {
	ID        uuid.UUID
	BoardID   string
	ContentID string
	Force     bool
}

// Shutdown stops the dispatcher. It has no response.
type Shutdown struct {
	ID uuid.UUID
}

func (r SearchRequest) RequestID() uuid.UUID    { return r.ID }
func (r BoardPageRequest) RequestID() uuid.UUID { return r.ID }
func (r PostPageRequest) RequestID() uuid.UUID  { return r.ID }
func (r CommentsRequest) RequestID() uuid.UUID  { return r.ID }
func (r Shutdown) RequestID() uuid.UUID         { return r.ID }

func (SearchRequest) isRequest()    {}
func (BoardPageRequest) isRequest() {}
func (PostPageRequest) isRequest()  {}
func (CommentsRequest) isRequest()  {}
func (Shutdown) isRequest()         {}

// Search builds a SearchRequest with a fresh id.
func Search(query string) SearchRequest {
	return SearchRequest{ID: uuid.New(), Query: query}
}

func BoardPage(boardID string, page paging.Page, force bool) BoardPageRequest {
	return BoardPageRequest{ID: uuid.New(), BoardID: boardID, Page: page, Force: force}
}

func PostPage(ref bahamut.PostRef, page paging.Page, force bool) PostPageRequest {
	return PostPageRequest{ID: uuid.New(), Ref: ref, Page: page, Force: force}
}

func Comments(boardID, contentID string, force bool) CommentsRequest {
	return CommentsRequest{ID: uuid.New(), BoardID: boardID, ContentID: contentID, Force: force}
}

func Stop() Shutdown {
	return Shutdown{ID: uuid.New()}
}

type SearchResponse struct {
	ID      uuid.UUID
	Query   string
	Results []bahamut.SearchResult
}

type BoardPageResponse struct {
	ID      uuid.UUID
	BoardID string
	// Name is the board's display name, empty until a page has loaded.
	Name string
	Data paging.PageData[[]bahamut.BoardPost]
}

type PostPageResponse struct {
	ID   uuid.UUID
	Ref  bahamut.PostRef
	Data paging.PageData[bahamut.Post]
}

type CommentsResponse struct {
	ID        uuid.UUID
	BoardID   string
	ContentID string
	Data      paging.PageData[[]bahamut.Comment]
}

func (r SearchResponse) RequestID() uuid.UUID    { return r.ID }
func (r BoardPageResponse) RequestID() uuid.UUID { return r.ID }
func (r PostPageResponse) RequestID() uuid.UUID  { return r.ID }
func (r CommentsResponse) RequestID() uuid.UUID  { return r.ID }

func (SearchResponse) isResponse()    {}
func (BoardPageResponse) isResponse() {}
func (PostPageResponse) isResponse()  {}
func (CommentsResponse) isResponse()  {}
