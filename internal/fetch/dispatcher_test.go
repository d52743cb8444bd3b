package fetch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/bahaterm/internal/bahamut"
	"github.com/jask/bahaterm/internal/mailbox"
	"github.com/jask/bahaterm/internal/paging"
)

// countingSource serves "id|page" payloads, decodes them with build and
// counts fetches per resource.
type countingSource[T any] struct {
	mu      sync.Mutex
	max     paging.MaxPage
	fail    bool
	fetches map[string]int
	build   func(id string, page paging.Page) T
}

func newCountingSource[T any](bound paging.MaxPage, build func(string, paging.Page) T) *countingSource[T] {
	return &countingSource[T]{max: bound, fetches: map[string]int{}, build: build}
}

func (s *countingSource[T]) FetchPage(_ context.Context, id string, page paging.Page) (paging.Raw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[id]++
	if s.fail {
		return paging.Raw{}, errors.New("timeout")
	}
	return paging.Raw{URL: "fake://" + id, Body: []byte(fmt.Sprintf("%s|%d", id, page))}, nil
}

func (s *countingSource[T]) ExtractMax(paging.Raw) (paging.MaxPage, bool) {
	return s.max, s.max.Known()
}

func (s *countingSource[T]) Parse(raw paging.Raw) (T, error) {
	id, page, ok := strings.Cut(string(raw.Body), "|")
	if !ok {
		var zero T
		return zero, errors.New("bad payload")
	}
	n, _ := strconv.Atoi(page)
	return s.build(id, paging.Page(n)), nil
}

func (s *countingSource[T]) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

func (s *countingSource[T]) count(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[id]
}

type fakeSearcher struct {
	err error
}

func (f fakeSearcher) Search(_ context.Context, query string) ([]bahamut.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []bahamut.SearchResult{{ID: "60076", Name: query, Platform: "PC"}}, nil
}

type harness struct {
	boards   *countingSource[bahamut.Board]
	posts    *countingSource[bahamut.Post]
	comments *countingSource[[]bahamut.Comment]
	d        *Dispatcher
	c        *Client
}

func newHarness(search Searcher) *harness {
	h := &harness{
		boards: newCountingSource(5, func(id string, page paging.Page) bahamut.Board {
			return bahamut.Board{ID: id, Name: "Board " + id, Posts: []bahamut.BoardPost{{BoardID: id, ID: strconv.Itoa(int(page))}}}
		}),
		posts: newCountingSource(2, func(id string, page paging.Page) bahamut.Post {
			return bahamut.Post{ID: id, Contents: []bahamut.PostContent{{Floor: int(page)}}}
		}),
		comments: newCountingSource(1, func(id string, _ paging.Page) []bahamut.Comment {
			return []bahamut.Comment{{SN: id, Floor: 1}}
		}),
	}
	h.d, h.c = New(Sources{Boards: h.boards, Posts: h.posts, Comments: h.comments, Search: search}, nil)
	return h
}

func (h *harness) send(t *testing.T, reqs ...Request) {
	t.Helper()
	for _, r := range reqs {
		_, err := h.c.Send(r)
		require.NoError(t, err)
	}
}

func (h *harness) drain() []Response {
	var out []Response
	for {
		r, ok := h.c.Poll()
		if !ok {
			return out
		}
		out = append(out, r)
	}
}

func TestTwoCachedBoardReadsCostOneFetch(t *testing.T) {
	t.Parallel()
	h := newHarness(fakeSearcher{})
	h.send(t, BoardPage("B1", 1, false), BoardPage("B1", 1, false), Stop())

	require.NoError(t, h.d.Run(context.Background()))
	require.Equal(t, 1, h.boards.count("B1"))

	responses := h.drain()
	require.Len(t, responses, 2)
	for _, r := range responses {
		board, ok := r.(BoardPageResponse)
		require.True(t, ok)
		require.True(t, board.Data.Found)
		require.Equal(t, paging.Page(1), board.Data.Page)
		require.Equal(t, paging.MaxPage(5), board.Data.Max)
		require.Equal(t, "Board B1", board.Name)
	}
	require.Equal(t, responses[0].(BoardPageResponse).Data.Items, responses[1].(BoardPageResponse).Data.Items)

	_, err := h.c.Send(BoardPage("B1", 2, false))
	require.ErrorIs(t, err, mailbox.ErrClosed, "requests after shutdown are refused")
}

func TestForcedBoardReadsAlwaysFetch(t *testing.T) {
	t.Parallel()
	h := newHarness(fakeSearcher{})
	h.send(t, BoardPage("B1", 1, true), BoardPage("B1", 1, true), Stop())

	require.NoError(t, h.d.Run(context.Background()))
	require.Equal(t, 2, h.boards.count("B1"))
	require.Len(t, h.drain(), 2)
}

func TestBoardPageBeyondMaxIsNotFound(t *testing.T) {
	t.Parallel()
	h := newHarness(fakeSearcher{})
	h.send(t, BoardPage("B1", 6, false), BoardPage("B1", 5, false), Stop())

	require.NoError(t, h.d.Run(context.Background()))
	responses := h.drain()
	require.Len(t, responses, 2)

	beyond := responses[0].(BoardPageResponse)
	require.False(t, beyond.Data.Found)
	require.Empty(t, beyond.Data.Items)
	require.Equal(t, paging.MaxPage(5), beyond.Data.Max)

	last := responses[1].(BoardPageResponse)
	require.True(t, last.Data.Found)
	require.Equal(t, "5", last.Data.Items[0].ID)
	require.Equal(t, 2, h.boards.count("B1"), "init plus page 5")
}

func TestResponsesFollowRequestOrder(t *testing.T) {
	t.Parallel()
	h := newHarness(fakeSearcher{})
	ref := bahamut.PostRef{BoardID: "B1", PostID: "77", Floor: 30}
	reqs := []Request{
		Search("場外"),
		BoardPage("B1", 2, false),
		PostPage(ref, 2, false),
		Comments("B1", "900001", false),
	}
	h.send(t, reqs...)
	h.send(t, Stop())

	require.NoError(t, h.d.Run(context.Background()))
	responses := h.drain()
	require.Len(t, responses, len(reqs))
	for i, r := range responses {
		require.Equal(t, reqs[i].RequestID(), r.RequestID())
	}

	search := responses[0].(SearchResponse)
	require.Equal(t, "場外", search.Query)
	require.Len(t, search.Results, 1)

	post := responses[2].(PostPageResponse)
	require.Equal(t, ref, post.Ref)
	require.True(t, post.Data.Found)
	require.Equal(t, paging.MaxPage(2), post.Data.Max)
	require.Equal(t, 2, post.Data.Items.Contents[0].Floor)
	require.Equal(t, 2, h.posts.count(ref.Key()))

	comments := responses[3].(CommentsResponse)
	require.True(t, comments.Data.Found)
	require.Equal(t, paging.MaxPage(1), comments.Data.Max)
	require.Equal(t, bahamut.CommentKey("B1", "900001"), comments.Data.Items[0].SN)
	require.Equal(t, 1, h.comments.count(bahamut.CommentKey("B1", "900001")))
}

func TestFailuresBecomeEmptyResponses(t *testing.T) {
	t.Parallel()
	h := newHarness(fakeSearcher{err: errors.New("offline")})
	h.boards.fail = true
	h.send(t, Search("x"), BoardPage("B1", 1, false), Stop())

	require.NoError(t, h.d.Run(context.Background()))
	responses := h.drain()
	require.Len(t, responses, 2)
	require.Empty(t, responses[0].(SearchResponse).Results)

	board := responses[1].(BoardPageResponse)
	require.False(t, board.Data.Found)
	require.Equal(t, paging.MaxUnknown, board.Data.Max)
}

func TestDeliveryFailureKeepsWorkerRunning(t *testing.T) {
	t.Parallel()
	h := newHarness(fakeSearcher{})
	h.c.Close()
	h.send(t, BoardPage("B1", 1, false), BoardPage("B2", 1, false), Stop())

	require.NoError(t, h.d.Run(context.Background()))
	require.Equal(t, 1, h.boards.count("B1"))
	require.Equal(t, 1, h.boards.count("B2"), "requests after a dropped response are still served")
	require.Empty(t, h.drain())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	h := newHarness(fakeSearcher{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.d.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run ignored cancellation")
	}
}

func TestConcurrentClientAndWorker(t *testing.T) {
	t.Parallel()
	h := newHarness(fakeSearcher{})
	done := make(chan error, 1)
	go func() { done <- h.d.Run(context.Background()) }()

	var got []Response
	for page := paging.Page(1); page <= 5; page++ {
		h.send(t, BoardPage("B1", page, false))
	}
	require.Eventually(t, func() bool {
		got = append(got, h.drain()...)
		return len(got) == 5
	}, time.Second, 5*time.Millisecond)

	for i, r := range got {
		require.Equal(t, paging.Page(i+1), r.(BoardPageResponse).Data.Page)
	}

	require.NoError(t, h.c.Shutdown())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestBoardRecoversMaxAfterFailedFirstFetch(t *testing.T) {
	t.Parallel()
	h := newHarness(fakeSearcher{})
	h.boards.setFail(true)
	done := make(chan error, 1)
	go func() { done <- h.d.Run(context.Background()) }()

	var got []Response
	h.send(t, BoardPage("B1", 1, false))
	require.Eventually(t, func() bool {
		got = append(got, h.drain()...)
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)
	first := got[0].(BoardPageResponse)
	require.False(t, first.Data.Found)
	require.Equal(t, paging.MaxUnknown, first.Data.Max)

	h.boards.setFail(false)
	h.send(t, BoardPage("B1", 1, true), BoardPage("B1", 1, true))
	require.Eventually(t, func() bool {
		got = append(got, h.drain()...)
		return len(got) == 3
	}, time.Second, 5*time.Millisecond)
	for _, r := range got[1:] {
		board := r.(BoardPageResponse)
		require.True(t, board.Data.Found)
		require.Equal(t, paging.MaxPage(5), board.Data.Max)
	}
	require.Equal(t, 4, h.boards.count("B1"), "two failures, one retried init, one forced fetch")

	require.NoError(t, h.c.Shutdown())
	require.NoError(t, <-done)
}

func TestRequestsAfterShutdownAreDropped(t *testing.T) {
	t.Parallel()
	h := newHarness(fakeSearcher{})
	h.send(t, Stop(), BoardPage("B1", 1, false))

	require.NoError(t, h.d.Run(context.Background()))
	require.Zero(t, h.boards.count("B1"))
	require.Empty(t, h.drain())
	_, err := h.c.Send(BoardPage("B1", 1, false))
	require.ErrorIs(t, err, mailbox.ErrClosed)
}
