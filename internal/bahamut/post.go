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

// User is the author shown next to a floor.
type User struct {
	ID     string
	Name   string
	Career string
	Race   string
	Level  int
}

// PostContent is a single floor of a thread.
type PostContent struct {
	// ID is the floor's comment set id (snB).
	ID       string
	Floor    int
	EditTime string
	Author   User
	// Lines holds the body: plain text lines, embedded video sources and
	// image sources, in document order.
	Lines []string
}

// Post is one page of a thread.
type Post struct {
	ID       string
	Title    string
	Floor    int
	Contents []PostContent
}

// PostSource pages through threads. Resource ids are PostRef keys.
type PostSource struct {
	client *Client
}

var _ paging.Source[Post] = (*PostSource)(nil)

func NewPostSource(client *Client) *PostSource {
	return &PostSource{client: client}
}

func (s *PostSource) FetchPage(ctx context.Context, id string, page paging.Page) (paging.Raw, error) {
	ref, err := ParsePostRef(id)
	if err != nil {
		return paging.Raw{}, err
	}
	q := url.Values{}
	q.Set("bsn", ref.BoardID)
	q.Set("snA", ref.PostID)
	q.Set("page", strconv.Itoa(int(page)))
	q.Set("tnum", strconv.Itoa(ref.Floor))
	return s.client.Document(ctx, "C.php", q)
}

func (s *PostSource) ExtractMax(first paging.Raw) (paging.MaxPage, bool) {
	return extractMax(first)
}

func (s *PostSource) Parse(raw paging.Raw) (Post, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return Post{}, err
	}
	sections := doc.Find(".c-section[id]")
	if sections.Length() == 0 {
		return Post{}, fmt.Errorf("%w: %s: no floors", ErrParse, raw.URL)
	}
	id := queryParam(raw.URL, "snA")
	if id == "" {
		return Post{}, fmt.Errorf("%w: %s: no thread id", ErrParse, raw.URL)
	}

	p := Post{
		ID:    id,
		Title: strings.TrimSpace(sections.First().Find(".c-post__header__title").First().Text()),
		Floor: atoi(queryParam(raw.URL, "tnum")),
	}
	sections.Each(func(_ int, section *goquery.Selection) {
		if c, ok := postContent(section); ok {
			p.Contents = append(p.Contents, c)
		}
	})
	return p, nil
}

// postContent decodes one floor. Sections without an article id or a floor
// number are not floors.
func postContent(section *goquery.Selection) (PostContent, bool) {
	articleID, ok := section.Find(".c-article").First().Attr("id")
	if !ok {
		return PostContent{}, false
	}
	floor, ok := section.Find(".floor").First().Attr("data-floor")
	if !ok {
		return PostContent{}, false
	}
	return PostContent{
		ID:       strings.ReplaceAll(articleID, "cf", ""),
		Floor:    atoi(floor),
		EditTime: firstText(section.Find(".edittime").First()),
		Author:   author(section.Find(".c-post__header__author").First()),
		Lines:    contentLines(section.Find(".c-article__content")),
	}, true
}

func author(sel *goquery.Selection) User {
	u := User{
		ID:   strings.TrimSpace(sel.Find(".userid").First().Text()),
		Name: strings.TrimSpace(sel.Find(".username").First().Text()),
	}
	u.Career, _ = sel.Attr("data-career")
	u.Race, _ = sel.Attr("data-race")
	if lv, ok := sel.Attr("data-lv"); ok {
		u.Level = atoi(lv)
	}
	return u
}

// contentLines flattens article bodies. A body without block children is
// split into its text nodes; otherwise each child block becomes a video
// source, its image sources, or its text.
func contentLines(bodies *goquery.Selection) []string {
	var lines []string
	bodies.Each(func(_ int, body *goquery.Selection) {
		blocks := body.Children().Filter("div")
		if blocks.Length() == 0 {
			for _, t := range textNodes(body.Nodes[0]) {
				lines = append(lines, strings.TrimSpace(t))
			}
			return
		}
		blocks.Each(func(_ int, block *goquery.Selection) {
			if src, ok := block.Find(".video-youtube iframe").First().Attr("data-src"); ok {
				lines = append(lines, src)
				return
			}
			if imgs := block.Find("a img"); imgs.Length() > 0 {
				imgs.Each(func(_ int, img *goquery.Selection) {
					if src, ok := img.Attr("data-src"); ok {
						lines = append(lines, src)
					}
				})
				return
			}
			lines = append(lines, strings.TrimSpace(block.Text()))
		})
	})
	return lines
}
