// Package page defines the in-memory Frame the buffer pool owns and the
// on-disk header page layout the B+ tree uses to find its root.
package page

import (
	"sync"

	"daemoncore/storage/disk"
	"daemoncore/types"
)

// Frame is one slot of the buffer pool: a fixed-size byte buffer plus the
// bookkeeping the BPM and replacer need. Frames are identified by a stable
// FrameID for the life of the pool; only the page id, contents, pin count,
// and dirty bit change as pages are evicted and fetched in.
//
// Grounded on ShubhamNegi4-DaemonDB/storage_engine/page/page.go (Page struct
// with an embedded sync.RWMutex and Lock/Unlock/RLock/RUnlock accessors),
// generalized to the spec's frame (one reader-writer latch guarding page
// contents, separate from the BPM's own latch over frame bookkeeping).
type Frame struct {
	ID       types.FrameID
	PageID   types.PageID
	Data     [disk.PayloadSize]byte
	PinCount int32
	IsDirty  bool

	latch sync.RWMutex
}

// NewFrame returns a frame with no resident page.
func NewFrame(id types.FrameID) *Frame {
	return &Frame{ID: id, PageID: types.InvalidPageID}
}

// Reset clears a frame back to its free-list state. Callers must hold the
// BPM's latch; Reset does not touch the page latch.
func (f *Frame) Reset() {
	f.PageID = types.InvalidPageID
	f.PinCount = 0
	f.IsDirty = false
	f.Data = [disk.PayloadSize]byte{}
}

// RLock/RUnlock/Lock/Unlock expose the frame's content latch directly so
// page guards can acquire it without reaching into an unexported field.
func (f *Frame) RLock()   { f.latch.RLock() }
func (f *Frame) RUnlock() { f.latch.RUnlock() }
func (f *Frame) Lock()    { f.latch.Lock() }
func (f *Frame) Unlock()  { f.latch.Unlock() }
