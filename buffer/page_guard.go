package buffer

import (
	"daemoncore/storage/page"
	"daemoncore/types"
)

// BasicPageGuard holds a pin on a frame and releases it exactly once, on
// Drop. It acquires no content latch; callers that need one should use
// ReadPageGuard or WritePageGuard instead.
//
// Grounded on the guard semantics described in spec §4.3; the teacher has no
// direct Go analogue (bufferpool.BufferPool callers call
// FetchPage/UnpinPage directly), so the move-only, release-on-Drop shape
// follows the spec text itself rather than a transcribed Go source.
type BasicPageGuard struct {
	bpm   *Manager
	frame *page.Frame
	dirty bool
}

// FetchPageBasic pins pageID and wraps it in a BasicPageGuard.
func (m *Manager) FetchPageBasic(pageID types.PageID) (BasicPageGuard, error) {
	fr, err := m.FetchPage(pageID)
	if err != nil {
		return BasicPageGuard{}, err
	}
	return BasicPageGuard{bpm: m, frame: fr}, nil
}

// NewPageGuarded allocates a fresh page and wraps it in a BasicPageGuard.
func (m *Manager) NewPageGuarded() (BasicPageGuard, types.PageID, error) {
	fr, err := m.NewPage()
	if err != nil {
		return BasicPageGuard{}, types.InvalidPageID, err
	}
	return BasicPageGuard{bpm: m, frame: fr}, fr.PageID, nil
}

// PageID returns the page this guard is pinning.
func (g BasicPageGuard) PageID() types.PageID { return g.frame.PageID }

// Data exposes the frame's raw payload buffer for callers that want to
// interpret it as a typed on-page layout (the spec's "as<T>/as_mut<T>").
func (g BasicPageGuard) Data() []byte { return g.frame.Data[:] }

// MarkDirty records that the guard's holder mutated the page, so Drop
// forwards the dirty hint on unpin. Preferred over treating every write as
// dirty unconditionally (§4.3, §9 — "avoid treating every write-guard drop
// as dirty").
func (g *BasicPageGuard) MarkDirty() { g.dirty = true }

// Drop releases the pin this guard holds. Safe to call multiple times; the
// second and later calls are no-ops.
func (g *BasicPageGuard) Drop() {
	if g.bpm == nil {
		return
	}
	g.bpm.UnpinPage(g.frame.PageID, g.dirty)
	g.bpm = nil
	g.frame = nil
}

// ReadPageGuard holds a pin plus the frame's reader latch.
type ReadPageGuard struct {
	bpm   *Manager
	frame *page.Frame
}

// FetchPageRead pins pageID and acquires its reader latch. The latch is
// acquired after the pin, and without the BPM's own latch held, so a long
// page-content hold never blocks unrelated pool operations (§4.2).
func (m *Manager) FetchPageRead(pageID types.PageID) (ReadPageGuard, error) {
	fr, err := m.FetchPage(pageID)
	if err != nil {
		return ReadPageGuard{}, err
	}
	fr.RLock()
	return ReadPageGuard{bpm: m, frame: fr}, nil
}

func (g ReadPageGuard) PageID() types.PageID { return g.frame.PageID }
func (g ReadPageGuard) Data() []byte         { return g.frame.Data[:] }

// Drop releases the reader latch, then unpins (clean — a reader never
// dirties a page). Safe to call multiple times.
func (g *ReadPageGuard) Drop() {
	if g.bpm == nil {
		return
	}
	g.frame.RUnlock()
	g.bpm.UnpinPage(g.frame.PageID, false)
	g.bpm = nil
	g.frame = nil
}

// WritePageGuard holds a pin plus the frame's writer latch.
type WritePageGuard struct {
	bpm   *Manager
	frame *page.Frame
	dirty bool
}

// FetchPageWrite pins pageID and acquires its writer latch, following the
// same latch-after-pin, latch-without-BPM-latch discipline as
// FetchPageRead.
func (m *Manager) FetchPageWrite(pageID types.PageID) (WritePageGuard, error) {
	fr, err := m.FetchPage(pageID)
	if err != nil {
		return WritePageGuard{}, err
	}
	fr.Lock()
	return WritePageGuard{bpm: m, frame: fr}, nil
}

func (g WritePageGuard) PageID() types.PageID { return g.frame.PageID }
func (g WritePageGuard) Data() []byte         { return g.frame.Data[:] }

// MarkDirty records that this guard's holder mutated the page.
func (g *WritePageGuard) MarkDirty() { g.dirty = true }

// Drop releases the writer latch, then unpins, forwarding whatever dirty
// hint MarkDirty recorded.
func (g *WritePageGuard) Drop() {
	if g.bpm == nil {
		return
	}
	g.frame.Unlock()
	g.bpm.UnpinPage(g.frame.PageID, g.dirty)
	g.bpm = nil
	g.frame = nil
}
