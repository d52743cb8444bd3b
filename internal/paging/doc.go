// Package paging contains the page cache shared by every paginated resource.
//
// A PagedCache owns the cursor, the discovered upper bound and the
// page → result map of one resource. It is generic over the parsed page type
// and talks to the network only through a Source. Caches are created by a
// Registry and are not safe for concurrent use: a single owner (the fetch
// dispatcher) is expected to drive them.
package paging
