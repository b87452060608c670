package bplustree

import (
	"sync"

	"daemoncore/buffer"
	"daemoncore/storage/page"
	"daemoncore/types"
)

// Comparator orders two keys the way bytes.Compare does: negative if a < b,
// zero if equal, positive if a > b.
type Comparator func(a, b []byte) int

// Config mirrors §6's B+ tree configuration: { name, header_page_id, bpm,
// comparator, leaf_max_size, internal_max_size }.
type Config struct {
	Name            string
	HeaderPageID    types.PageID
	BPM             *buffer.Manager
	Comparator      Comparator
	LeafMaxSize     int
	InternalMaxSize int
}

// Tree is a B+ tree index layered entirely on buffer pool page guards — it
// owns no in-memory pages itself (§3, "The tree owns no in-memory pages;
// all nodes live in the BPM").
//
// Grounded on ShubhamNegi4-DaemonDB/storage_engine/access/indexfile_manager/bplustree/struct.go
// (BPlusTree holding a shared bufferPool/diskManager/cmp), with the tree's
// own root-id field replaced by the header page the spec requires (§6).
type Tree struct {
	name            string
	headerPageID    types.PageID
	bpm             *buffer.Manager
	cmp             Comparator
	leafMaxSize     int
	internalMaxSize int

	// structureMu serializes structural changes (insert/remove) at the
	// whole-tree level; individual reads still crab down through page
	// guards without holding this lock, matching the spec's latching
	// discipline for the header-page root pointer specifically.
	structureMu sync.Mutex
}

// New wraps an already-created header page (see CreateHeaderPage) as a
// B+ tree index.
func New(cfg Config) *Tree {
	return &Tree{
		name:            cfg.Name,
		headerPageID:    cfg.HeaderPageID,
		bpm:             cfg.BPM,
		cmp:             cfg.Comparator,
		leafMaxSize:     cfg.LeafMaxSize,
		internalMaxSize: cfg.InternalMaxSize,
	}
}

// CreateHeaderPage allocates a fresh page initialized to an empty tree
// (RootPageID = InvalidPageID) and returns its id, ready to pass as
// Config.HeaderPageID.
func CreateHeaderPage(bpm *buffer.Manager) (types.PageID, error) {
	g, pid, err := bpm.NewPageGuarded()
	if err != nil {
		return types.InvalidPageID, err
	}
	defer g.Drop()

	copy(g.Data(), page.HeaderPage{RootPageID: types.InvalidPageID}.Encode())
	g.MarkDirty()
	return pid, nil
}

// Name returns the index's configured name (used only for debug output).
func (t *Tree) Name() string { return t.name }

func (t *Tree) readHeader() (page.HeaderPage, error) {
	g, err := t.bpm.FetchPageRead(t.headerPageID)
	if err != nil {
		return page.HeaderPage{}, err
	}
	defer g.Drop()
	return page.DecodeHeaderPage(g.Data()), nil
}

func (t *Tree) writeHeader(h page.HeaderPage) error {
	g, err := t.bpm.FetchPageWrite(t.headerPageID)
	if err != nil {
		return err
	}
	defer g.Drop()
	copy(g.Data(), h.Encode())
	g.MarkDirty()
	return nil
}

// GetRootPageID returns the current root page id, or InvalidPageID for an
// empty tree.
func (t *Tree) GetRootPageID() (types.PageID, error) {
	h, err := t.readHeader()
	if err != nil {
		return types.InvalidPageID, err
	}
	return h.RootPageID, nil
}

// IsEmpty reports whether the tree has no root yet.
func (t *Tree) IsEmpty() (bool, error) {
	root, err := t.GetRootPageID()
	if err != nil {
		return false, err
	}
	return root == types.InvalidPageID, nil
}

func (t *Tree) setRoot(id types.PageID) error {
	return t.writeHeader(page.HeaderPage{RootPageID: id})
}

// fetchNodeRead pins id with a read guard and decodes it. Callers must Drop
// the returned guard.
func (t *Tree) fetchNodeRead(id types.PageID) (*node, *buffer.ReadPageGuard, error) {
	g, err := t.bpm.FetchPageRead(id)
	if err != nil {
		return nil, nil, err
	}
	n, err := decodeNode(g.Data())
	if err != nil {
		g.Drop()
		return nil, nil, err
	}
	return n, &g, nil
}

// fetchNodeWrite pins id with a write guard and decodes it. Callers must
// Drop the returned guard; saveNode must be called first if n was mutated.
func (t *Tree) fetchNodeWrite(id types.PageID) (*node, *buffer.WritePageGuard, error) {
	g, err := t.bpm.FetchPageWrite(id)
	if err != nil {
		return nil, nil, err
	}
	n, err := decodeNode(g.Data())
	if err != nil {
		g.Drop()
		return nil, nil, err
	}
	return n, &g, nil
}

// saveNode encodes n back into the page g is guarding and marks it dirty.
func (t *Tree) saveNode(g *buffer.WritePageGuard, n *node) error {
	buf, err := n.encode()
	if err != nil {
		return err
	}
	copy(g.Data(), buf)
	g.MarkDirty()
	return nil
}

// allocNode allocates a fresh page and returns it decoded as an empty node
// of the requested kind, plus the write guard holding it.
func (t *Tree) allocNode(leaf bool) (*node, *buffer.WritePageGuard, error) {
	g, pid, err := t.bpm.NewPageGuarded()
	if err != nil {
		return nil, nil, err
	}
	// NewPageGuarded returns a BasicPageGuard; promote to a write guard by
	// fetching write access on the same page (the basic pin is released
	// immediately — FetchPageWrite takes its own pin).
	g.Drop()

	wg, err := t.bpm.FetchPageWrite(pid)
	if err != nil {
		return nil, nil, err
	}

	var n *node
	if leaf {
		n = newLeaf(pid, t.leafMaxSize)
	} else {
		n = newInternal(pid, t.internalMaxSize)
	}
	return n, &wg, nil
}
