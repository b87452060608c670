// Package bplustree implements the B+ tree index: on-page leaf/internal
// node layouts, search, insert-with-split, and remove-with-borrow/merge,
// all layered on buffer pool page guards.
//
// Grounded on ShubhamNegi4-DaemonDB/storage_engine/access/indexfile_manager/bplustree
// (the teacher's BPM-backed tree, architecturally the closer match to this
// spec than the standalone bplustree/ package with its own pager) for
// node/tree shape, and the standalone ShubhamNegi4-DaemonDB/bplustree
// package for the split/borrow/merge algorithms, adapted to acquire pages
// through WritePageGuard/ReadPageGuard instead of direct BufferPool calls.
package bplustree

import (
	"encoding/binary"
	"fmt"

	"daemoncore/storage/disk"
	"daemoncore/types"
)

type nodeKind uint8

const (
	kindInternal nodeKind = iota
	kindLeaf
)

// Common on-page header (§3, "B+ Tree Page (on-disk image)"):
// {page_type, size, max_size, parent_page_id, self_page_id, is_root}
// followed, for leaves, by next_page_id.
const headerSize = 1 /*kind*/ + 2 /*size*/ + 2 /*maxSize*/ + 4 /*parent*/ + 4 /*self*/ + 1 /*isRoot*/ + 4 /*next*/

// MaxKeyLen and MaxValLen bound a single slot's variable-length payload, the
// same guardrail ShubhamNegi4-DaemonDB/bplustree/struct.go declares
// (MaxKeyLen/MaxValLen), scaled down to leave room for several slots in a
// single 4088-byte page payload.
const (
	MaxKeyLen = 256
	MaxValLen = 512
)

// node is the in-memory decoding of one B+ tree page. Internal nodes carry
// children (len = size) and keys (len = size, slot 0 unused/sentinel per
// §4.4); leaves carry keys and values (len = size each) plus a right
// sibling pointer.
type node struct {
	kind     nodeKind
	self     types.PageID
	parent   types.PageID
	isRoot   bool
	maxSize  int
	keys     [][]byte
	values   [][]byte       // leaf only
	children []types.PageID // internal only
	next     types.PageID   // leaf only
}

func newLeaf(self types.PageID, maxSize int) *node {
	return &node{kind: kindLeaf, self: self, maxSize: maxSize, next: types.InvalidPageID}
}

func newInternal(self types.PageID, maxSize int) *node {
	return &node{kind: kindInternal, self: self, maxSize: maxSize}
}

func (n *node) isLeaf() bool { return n.kind == kindLeaf }
func (n *node) size() int    { return len(n.keys) }

// encode serializes n into a disk.PayloadSize buffer.
func (n *node) encode() ([]byte, error) {
	buf := make([]byte, disk.PayloadSize)
	off := 0

	buf[off] = byte(n.kind)
	off++
	binary.LittleEndian.PutUint16(buf[off:], uint16(n.size()))
	off += 2
	binary.LittleEndian.PutUint16(buf[off:], uint16(n.maxSize))
	off += 2
	binary.LittleEndian.PutUint32(buf[off:], uint32(n.parent))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(n.self))
	off += 4
	if n.isRoot {
		buf[off] = 1
	}
	off++
	binary.LittleEndian.PutUint32(buf[off:], uint32(n.next))
	off += 4

	for i := 0; i < n.size(); i++ {
		key := n.keys[i]
		if len(key) > MaxKeyLen {
			return nil, fmt.Errorf("bplustree: key %d too long: %d bytes (max %d)", i, len(key), MaxKeyLen)
		}
		if off+2+len(key) > disk.PayloadSize {
			return nil, fmt.Errorf("bplustree: node %d overflows page payload", n.self)
		}
		binary.LittleEndian.PutUint16(buf[off:], uint16(len(key)))
		off += 2
		off += copy(buf[off:], key)

		if n.isLeaf() {
			val := n.values[i]
			if len(val) > MaxValLen {
				return nil, fmt.Errorf("bplustree: value %d too long: %d bytes (max %d)", i, len(val), MaxValLen)
			}
			if off+2+len(val) > disk.PayloadSize {
				return nil, fmt.Errorf("bplustree: node %d overflows page payload", n.self)
			}
			binary.LittleEndian.PutUint16(buf[off:], uint16(len(val)))
			off += 2
			off += copy(buf[off:], val)
		} else {
			if off+4 > disk.PayloadSize {
				return nil, fmt.Errorf("bplustree: node %d overflows page payload", n.self)
			}
			binary.LittleEndian.PutUint32(buf[off:], uint32(n.children[i]))
			off += 4
		}
	}
	return buf, nil
}

// decodeNode deserializes a node from a page payload.
func decodeNode(buf []byte) (*node, error) {
	if len(buf) != disk.PayloadSize {
		return nil, fmt.Errorf("bplustree: decode: payload size mismatch: got %d, want %d", len(buf), disk.PayloadSize)
	}
	n := &node{}
	off := 0

	n.kind = nodeKind(buf[off])
	off++
	size := int(binary.LittleEndian.Uint16(buf[off:]))
	off += 2
	n.maxSize = int(binary.LittleEndian.Uint16(buf[off:]))
	off += 2
	n.parent = types.PageID(int32(binary.LittleEndian.Uint32(buf[off:])))
	off += 4
	n.self = types.PageID(int32(binary.LittleEndian.Uint32(buf[off:])))
	off += 4
	n.isRoot = buf[off] != 0
	off++
	n.next = types.PageID(int32(binary.LittleEndian.Uint32(buf[off:])))
	off += 4

	n.keys = make([][]byte, 0, size)
	if n.kind == kindLeaf {
		n.values = make([][]byte, 0, size)
	} else {
		n.children = make([]types.PageID, 0, size)
	}

	for i := 0; i < size; i++ {
		if off+2 > disk.PayloadSize {
			return nil, fmt.Errorf("bplustree: decode: overflow reading key %d length", i)
		}
		keyLen := int(binary.LittleEndian.Uint16(buf[off:]))
		off += 2
		if off+keyLen > disk.PayloadSize {
			return nil, fmt.Errorf("bplustree: decode: overflow reading key %d", i)
		}
		key := make([]byte, keyLen)
		copy(key, buf[off:off+keyLen])
		off += keyLen
		n.keys = append(n.keys, key)

		if n.kind == kindLeaf {
			if off+2 > disk.PayloadSize {
				return nil, fmt.Errorf("bplustree: decode: overflow reading value %d length", i)
			}
			valLen := int(binary.LittleEndian.Uint16(buf[off:]))
			off += 2
			if off+valLen > disk.PayloadSize {
				return nil, fmt.Errorf("bplustree: decode: overflow reading value %d", i)
			}
			val := make([]byte, valLen)
			copy(val, buf[off:off+valLen])
			off += valLen
			n.values = append(n.values, val)
		} else {
			if off+4 > disk.PayloadSize {
				return nil, fmt.Errorf("bplustree: decode: overflow reading child %d", i)
			}
			n.children = append(n.children, types.PageID(int32(binary.LittleEndian.Uint32(buf[off:]))))
			off += 4
		}
	}

	return n, nil
}
