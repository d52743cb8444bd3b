package bahamut

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// SearchResult is a board matched by a search.
type SearchResult struct {
	ID       string
	Name     string
	Platform string
}

// Searcher runs board searches.
type Searcher struct {
	client *Client
}

func NewSearcher(client *Client) *Searcher {
	return &Searcher{client: client}
}

// NormalizeQuery folds full-width and compatibility forms so the same board
// name typed through different input methods yields the same request.
func NormalizeQuery(q string) string {
	return strings.TrimSpace(norm.NFKC.String(q))
}

// Search returns the boards matching query. An empty query returns nothing
// without a request.
func (s *Searcher) Search(ctx context.Context, query string) ([]SearchResult, error) {
	q := NormalizeQuery(query)
	if q == "" {
		return nil, nil
	}
	v := url.Values{}
	v.Set("qt", "board")
	v.Set("search", q)
	raw, err := s.client.Document(ctx, "searchb.php", v)
	if err != nil {
		return nil, err
	}
	doc, err := parseDocument(raw)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	doc.Find(".BH-table tr").Each(func(_ int, row *goquery.Selection) {
		cell := row.Find("td").Eq(2)
		if r, ok := searchResult(cell); ok {
			results = append(results, r)
		}
	})
	return results, nil
}

// searchResult reads a result cell: the link target ends with the board id,
// the first text node is the platform and the remainder is the board name.
func searchResult(cell *goquery.Selection) (SearchResult, bool) {
	a := cell.Find("a").First()
	href, ok := a.Attr("href")
	if !ok {
		return SearchResult{}, false
	}
	id := href[strings.LastIndex(href, "=")+1:]
	if id == "" {
		return SearchResult{}, false
	}

	var texts []string
	for _, t := range textNodes(a.Nodes[0]) {
		if s := strings.TrimSpace(t); s != "" {
			texts = append(texts, s)
		}
	}
	r := SearchResult{ID: id}
	if len(texts) > 0 {
		r.Platform = texts[0]
		r.Name = strings.Join(texts[1:], "")
	}
	return r, true
}
