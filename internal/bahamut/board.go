package bahamut

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jask/bahaterm/internal/paging"
)

// Category is a sub-board tag.
type Category struct {
	BoardID string
	ID      string
	Name    string
}

// BoardPost is one row of a board listing.
type BoardPost struct {
	BoardID  string
	ID       string
	Floor    int
	URL      string
	Title    string
	Brief    string
	GP       int
	Replies  int
	EditTime string
	Category Category
}

// Ref returns the thread reference for the row.
func (p BoardPost) Ref() PostRef {
	return PostRef{BoardID: p.BoardID, PostID: p.ID, Floor: p.Floor}
}

// Board is one page of a board listing.
type Board struct {
	ID         string
	Name       string
	Categories map[string]Category
	Posts      []BoardPost
}

// BoardSource pages through board listings. Resource ids are board ids
// (bsn).
type BoardSource struct {
	client *Client
}

var _ paging.Source[Board] = (*BoardSource)(nil)

func NewBoardSource(client *Client) *BoardSource {
	return &BoardSource{client: client}
}

func (s *BoardSource) FetchPage(ctx context.Context, id string, page paging.Page) (paging.Raw, error) {
	q := url.Values{}
	q.Set("bsn", id)
	q.Set("page", strconv.Itoa(int(page)))
	return s.client.Document(ctx, "B.php", q)
}

func (s *BoardSource) ExtractMax(first paging.Raw) (paging.MaxPage, bool) {
	return extractMax(first)
}

func (s *BoardSource) Parse(raw paging.Raw) (Board, error) {
	id := queryParam(raw.URL, "bsn")
	if id == "" {
		return Board{}, fmt.Errorf("%w: %s: no board id", ErrParse, raw.URL)
	}
	doc, err := parseDocument(raw)
	if err != nil {
		return Board{}, err
	}

	b := Board{
		ID:         id,
		Name:       boardName(doc),
		Categories: make(map[string]Category),
	}
	doc.Find(".b-tags__item a").Each(func(_ int, a *goquery.Selection) {
		c, ok := s.category(a, id)
		if ok {
			b.Categories[c.ID] = c
		}
	})
	doc.Find(".b-list__row").Each(func(_ int, row *goquery.Selection) {
		if p, ok := s.boardPost(row, id); ok {
			b.Posts = append(b.Posts, p)
		}
	})
	return b, nil
}

func boardName(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("head title").First().Text())
	name, _, _ := strings.Cut(title, " ")
	return name
}

func (s *BoardSource) category(a *goquery.Selection, boardID string) (Category, bool) {
	href, ok := a.Attr("href")
	if !ok {
		return Category{}, false
	}
	sub := queryParam(s.absolute(href), "subbsn")
	if sub == "" {
		return Category{}, false
	}
	bsn := queryParam(s.absolute(href), "bsn")
	if bsn == "" {
		bsn = boardID
	}
	return Category{BoardID: bsn, ID: sub, Name: strings.TrimSpace(a.Text())}, true
}

// boardPost decodes one listing row. Rows without a title are
// advertisements and are skipped.
func (s *BoardSource) boardPost(row *goquery.Selection, boardID string) (BoardPost, bool) {
	title := row.Find(".b-list__main__title").First()
	if title.Length() == 0 {
		return BoardPost{}, false
	}
	p := BoardPost{
		BoardID:  boardID,
		Title:    strings.TrimSpace(title.Text()),
		Brief:    strings.TrimSpace(row.Find(".b-list__brief").First().Text()),
		GP:       atoi(row.Find(".b-list__summary__gp").First().Text()),
		Replies:  atoi(row.Find(".b-list__count__number span").First().Text()),
		EditTime: strings.TrimSpace(row.Find(".b-list__time__edittime a").First().Text()),
	}
	if href, ok := row.Find(".b-list__main a").First().Attr("href"); ok {
		p.URL = s.absolute(href)
		p.ID = queryParam(p.URL, "snA")
		p.Floor = atoi(queryParam(p.URL, "tnum"))
	}
	if a := row.Find(".b-list__summary__sort a").First(); a.Length() > 0 {
		if c, ok := s.category(a, boardID); ok {
			p.Category = c
		} else {
			p.Category = Category{BoardID: boardID, Name: strings.TrimSpace(a.Text())}
		}
	}
	return p, true
}

func (s *BoardSource) absolute(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return s.client.BaseURL.ResolveReference(ref).String()
}
