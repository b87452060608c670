package bplustree

import "daemoncore/types"

// Iterator walks leaf entries in key order by following next-leaf pointers
// (§4.5, "Leaves are additionally linked left-to-right via next_page_id").
// It holds a read guard on at most one leaf at a time.
//
// Grounded on ShubhamNegi4-DaemonDB/bplustree/iterator.go.
type Iterator struct {
	t    *Tree
	leaf *node
	pos  int
	err  error
	done bool
}

// Iterator returns an iterator positioned at the first entry of the tree.
func (t *Tree) Iterator() (*Iterator, error) {
	return t.IteratorFrom(nil)
}

// IteratorFrom returns an iterator positioned at the first entry whose key
// is >= startKey, or at the first entry at all if startKey is nil.
func (t *Tree) IteratorFrom(startKey []byte) (*Iterator, error) {
	root, err := t.GetRootPageID()
	if err != nil {
		return nil, err
	}
	if root == types.InvalidPageID {
		return &Iterator{done: true}, nil
	}

	n, g, err := t.fetchNodeRead(root)
	if err != nil {
		return nil, err
	}
	defer g.Drop()

	for !n.isLeaf() {
		var idx int
		if startKey == nil {
			idx = 0
		} else {
			idx = n.findChildIndex(startKey, t.cmp)
		}
		childNode, childGuard, err := t.fetchNodeRead(n.children[idx])
		if err != nil {
			return nil, err
		}
		g.Drop()
		n, g = childNode, childGuard
	}

	pos := 0
	if startKey != nil {
		pos = n.findPosition(startKey, t.cmp)
	}

	it := &Iterator{t: t, leaf: n, pos: pos}
	it.advance()
	return it, nil
}

// Valid reports whether Key/Value may be called.
func (it *Iterator) Valid() bool {
	return !it.done && it.err == nil
}

// Err returns the first error encountered while advancing, if any.
func (it *Iterator) Err() error { return it.err }

func (it *Iterator) Key() []byte   { return it.leaf.keys[it.pos] }
func (it *Iterator) Value() []byte { return it.leaf.values[it.pos] }

// Next advances to the following entry, crossing leaf boundaries via
// next_page_id as needed.
func (it *Iterator) Next() {
	if it.done || it.err != nil {
		return
	}
	it.pos++
	it.advance()
}

// advance walks forward across leaf boundaries while the current position
// has run off the end of it.leaf, so the iterator never rests on an
// out-of-range position — whether reached by Next() or by IteratorFrom
// routing to a "gap key" past the last entry of its leaf.
func (it *Iterator) advance() {
	for it.pos >= it.leaf.size() {
		if it.leaf.next == types.InvalidPageID {
			it.done = true
			return
		}
		n, g, err := it.t.fetchNodeRead(it.leaf.next)
		if err != nil {
			it.err = err
			return
		}
		g.Drop()
		it.leaf = n
		it.pos = 0
	}
}
