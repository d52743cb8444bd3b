package bahamut

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/jask/bahaterm/internal/paging"
)

// Comment is a short reply attached to a floor.
type Comment struct {
	BoardID string
	SN      string
	UserID  string
	Nick    string
	Content string
	GP      int
	BP      int
	// WrittenAt and ModifiedAt are the raw timestamps the forum sends.
	WrittenAt  string
	ModifiedAt string
	Time       string
	State      string
	Floor      int
}

// CommentSource loads the comment set of a floor. Resource ids come from
// CommentKey. A comment set is a single page.
type CommentSource struct {
	client *Client
}

var _ paging.Source[[]Comment] = (*CommentSource)(nil)

func NewCommentSource(client *Client) *CommentSource {
	return &CommentSource{client: client}
}

func (s *CommentSource) FetchPage(ctx context.Context, id string, _ paging.Page) (paging.Raw, error) {
	boardID, contentID, err := parseCommentKey(id)
	if err != nil {
		return paging.Raw{}, err
	}
	q := url.Values{}
	q.Set("bsn", boardID)
	q.Set("snB", contentID)
	return s.client.Document(ctx, "ajax/moreCommend.php", q)
}

func (s *CommentSource) ExtractMax(paging.Raw) (paging.MaxPage, bool) {
	return 1, true
}

// Parse decodes the comment object. Every member except next_snC is a
// comment; the result is ordered by floor.
func (s *CommentSource) Parse(raw paging.Raw) ([]Comment, error) {
	if !gjson.ValidBytes(raw.Body) {
		return nil, fmt.Errorf("%w: %s: invalid json", ErrParse, raw.URL)
	}
	doc := gjson.ParseBytes(raw.Body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: %s: expected an object", ErrParse, raw.URL)
	}

	comments := []Comment{}
	doc.ForEach(func(key, value gjson.Result) bool {
		if key.String() == "next_snC" || !value.IsObject() {
			return true
		}
		comments = append(comments, Comment{
			BoardID:    value.Get("bsn").String(),
			SN:         value.Get("sn").String(),
			UserID:     value.Get("userid").String(),
			Nick:       value.Get("nick").String(),
			Content:    value.Get("content").String(),
			GP:         int(value.Get("gp").Int()),
			BP:         int(value.Get("bp").Int()),
			WrittenAt:  value.Get("wtime").String(),
			ModifiedAt: value.Get("mtime").String(),
			Time:       value.Get("time").String(),
			State:      value.Get("state").String(),
			Floor:      int(value.Get("floor").Int()),
		})
		return true
	})
	slices.SortStableFunc(comments, func(a, b Comment) int {
		return cmp.Compare(a.Floor, b.Floor)
	})
	return comments, nil
}
