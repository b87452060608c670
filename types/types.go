// Package types holds the identifiers shared by every storage-core package:
// page ids, frame ids, and the page size all of them agree on.
package types

// PageID identifies a page on disk. It is signed so InvalidPageID can be
// represented without a separate "valid" flag.
type PageID int32

// InvalidPageID marks "no page" — an empty tree's header, a frame on the
// free list, a leaf with no right sibling.
const InvalidPageID PageID = -1

// FrameID identifies an in-memory slot of the buffer pool, in [0, pool size).
type FrameID int32

// PageSize is the fixed size of every page and frame buffer.
const PageSize = 4096

// AccessType hints at why a page was touched. The LRU-K replacer
// (buffer/replacer) does not special-case any value; it exists so callers (e.g. a scan vs. a
// point lookup) can be distinguished by future replacement policies without
// changing the RecordAccess signature.
type AccessType int

const (
	AccessUnknown AccessType = iota
	AccessLookup
	AccessScan
)
