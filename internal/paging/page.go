package paging

import "context"

// Page is a cursor position within a resource. Page 0 is the boundary below
// the first page; real pages start at 1.
type Page uint16

// FirstPage is the page every resource is anchored on.
const FirstPage Page = 1

// MaxPage is the inclusive upper bound of a resource.
type MaxPage uint16

// MaxUnknown marks a bound that has not been discovered yet.
const MaxUnknown MaxPage = 0

// Known reports whether the bound has been discovered.
func (m MaxPage) Known() bool { return m != MaxUnknown }

// Admits reports whether p is within the bound. An unknown bound admits
// every page.
func (m MaxPage) Admits(p Page) bool {
	return !m.Known() || uint16(p) <= uint16(m)
}

// Last returns the bound as a cursor position, or FirstPage while unknown.
func (m MaxPage) Last() Page {
	if !m.Known() {
		return FirstPage
	}
	return Page(m)
}

// Raw is the undecoded payload of one fetched page.
type Raw struct {
	URL  string
	Body []byte
}

// Source retrieves and decodes pages of one resource kind.
type Source[T any] interface {
	// FetchPage retrieves page of the resource identified by id.
	FetchPage(ctx context.Context, id string, page Page) (Raw, error)
	// ExtractMax reads the upper page bound from a first-page payload.
	ExtractMax(first Raw) (MaxPage, bool)
	// Parse decodes a fetched payload.
	Parse(raw Raw) (T, error)
}

// PageData pairs a page's contents with its pagination metadata.
type PageData[T any] struct {
	Page  Page
	Max   MaxPage
	Items T
	// Found is false when the page could not be fetched or decoded.
	Found bool
}
