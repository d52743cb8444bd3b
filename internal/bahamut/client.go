// Package bahamut reads boards, threads, floor comments and board search
// results from the Bahamut forum (forum.gamer.com.tw).
package bahamut

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jask/bahaterm/internal/paging"
)

// DefaultBaseURL is the forum root every path is resolved against.
const DefaultBaseURL = "https://forum.gamer.com.tw/"

var (
	// ErrStatus is returned when the forum answers with a non-2xx status.
	ErrStatus = errors.New("bahamut: unexpected status")
	// ErrParse is returned when a payload does not have the expected shape.
	ErrParse = errors.New("bahamut: unexpected document")
	// ErrInvalidRef is returned when a thread reference lacks a board or
	// thread id.
	ErrInvalidRef = errors.New("bahamut: invalid thread reference")
)

// maxBody caps how much of a response is read.
const maxBody = 16 << 20

// Client performs GET requests against the forum.
type Client struct {
	BaseURL   *url.URL
	HTTP      *http.Client
	UserAgent string
}

// NewClient builds a client rooted at baseURL. An empty baseURL means
// DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, userAgent string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", baseURL)
	}
	return &Client{
		BaseURL:   u,
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}, nil
}

// Resolve turns a path relative to the forum root into an absolute URL.
func (c *Client) Resolve(path string, query url.Values) *url.URL {
	ref := &url.URL{Path: path}
	if query != nil {
		ref.RawQuery = query.Encode()
	}
	return c.BaseURL.ResolveReference(ref)
}

// Document fetches path with query and returns the response body.
func (c *Client) Document(ctx context.Context, path string, query url.Values) (paging.Raw, error) {
	target := c.Resolve(path, query).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return paging.Raw{}, fmt.Errorf("build request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return paging.Raw{}, fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return paging.Raw{}, fmt.Errorf("%w: get %s: %d", ErrStatus, target, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return paging.Raw{}, fmt.Errorf("read %s: %w", target, err)
	}
	return paging.Raw{URL: target, Body: body}, nil
}

func parseDocument(raw paging.Raw) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, raw.URL, err)
	}
	return doc, nil
}

// extractMax reads the last pagination link of a listing or thread page.
func extractMax(raw paging.Raw) (paging.MaxPage, bool) {
	doc, err := parseDocument(raw)
	if err != nil {
		return paging.MaxUnknown, false
	}
	last := doc.Find(".BH-pagebtnA a").Last()
	if last.Length() == 0 {
		return paging.MaxUnknown, false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(last.Text()), 10, 16)
	if err != nil || n == 0 {
		return paging.MaxUnknown, false
	}
	return paging.MaxPage(n), true
}

// queryParam returns key from the query string of rawURL.
func queryParam(rawURL, key string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// textNodes returns the text nodes below n in document order.
func textNodes(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			out = append(out, n.Data)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return out
}

func firstText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	for _, t := range textNodes(sel.Nodes[0]) {
		if s := strings.TrimSpace(t); s != "" {
			return s
		}
	}
	return ""
}
