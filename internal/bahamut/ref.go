package bahamut

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// PostRef identifies a thread: the board it lives on, the thread id (snA)
// and the floor count the listing reported (tnum).
type PostRef struct {
	BoardID string
	PostID  string
	Floor   int
}

// Key encodes the reference as an opaque resource id.
func (r PostRef) Key() string {
	return r.values().Encode()
}

func (r PostRef) values() url.Values {
	v := url.Values{}
	v.Set("bsn", r.BoardID)
	v.Set("snA", r.PostID)
	v.Set("tnum", strconv.Itoa(r.Floor))
	return v
}

func (r PostRef) valid() bool {
	return r.BoardID != "" && r.PostID != ""
}

// ParsePostRef decodes a key produced by PostRef.Key.
func ParsePostRef(key string) (PostRef, error) {
	v, err := url.ParseQuery(key)
	if err != nil {
		return PostRef{}, fmt.Errorf("%w: %v", ErrInvalidRef, err)
	}
	return refFromValues(v)
}

// ParsePostURL builds a reference from a thread URL such as
// https://forum.gamer.com.tw/C.php?bsn=60076&snA=123&tnum=4.
func ParsePostURL(raw string) (PostRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return PostRef{}, fmt.Errorf("%w: %v", ErrInvalidRef, err)
	}
	return refFromValues(u.Query())
}

func refFromValues(v url.Values) (PostRef, error) {
	ref := PostRef{
		BoardID: v.Get("bsn"),
		PostID:  v.Get("snA"),
		Floor:   atoi(v.Get("tnum")),
	}
	if !ref.valid() {
		return PostRef{}, fmt.Errorf("%w: missing bsn or snA", ErrInvalidRef)
	}
	return ref, nil
}

// CommentKey encodes the comment set of one floor as a resource id.
func CommentKey(boardID, contentID string) string {
	v := url.Values{}
	v.Set("bsn", boardID)
	v.Set("snB", contentID)
	return v.Encode()
}

func parseCommentKey(key string) (boardID, contentID string, err error) {
	v, err := url.ParseQuery(key)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidRef, err)
	}
	boardID, contentID = v.Get("bsn"), v.Get("snB")
	if boardID == "" || contentID == "" {
		return "", "", fmt.Errorf("%w: missing bsn or snB", ErrInvalidRef)
	}
	return boardID, contentID, nil
}
