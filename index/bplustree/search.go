package bplustree

import (
	"daemoncore/buffer"
	"daemoncore/types"
)

// GetValue descends from the root to the leaf that would hold key and
// returns its value, if present. Descent uses read-crabbing (§4.2): the
// child is latched before the parent is released, so a concurrent writer
// never observes a half-released path.
//
// Grounded on ShubhamNegi4-DaemonDB/bplustree/find_leaf.go's FindLeaf,
// adapted from direct BufferPool pin/unpin calls to ReadPageGuard.
func (t *Tree) GetValue(key []byte) ([]byte, bool, error) {
	root, err := t.GetRootPageID()
	if err != nil {
		return nil, false, err
	}
	if root == types.InvalidPageID {
		return nil, false, nil
	}

	n, g, err := t.fetchNodeRead(root)
	if err != nil {
		return nil, false, err
	}
	defer g.Drop()

	for !n.isLeaf() {
		idx := n.findChildIndex(key, t.cmp)
		childID := n.children[idx]

		childNode, childGuard, err := t.fetchNodeRead(childID)
		if err != nil {
			return nil, false, err
		}
		g.Drop()
		n, g = childNode, childGuard
	}

	pos := findExact(n.keys, key, t.cmp)
	if pos < 0 {
		return nil, false, nil
	}
	return n.values[pos], true, nil
}

// findLeafForWrite descends holding write guards the whole way down —
// pessimistic latch-crabbing (§4.2): every ancestor stays latched until the
// structural change completes, so a split or merge can always walk back up
// the path it already holds. Returns the root-to-leaf node path and the
// guard pinning each one, in the same order.
func (t *Tree) findLeafForWrite(key []byte) ([]*node, []*buffer.WritePageGuard, error) {
	root, err := t.GetRootPageID()
	if err != nil {
		return nil, nil, err
	}
	if root == types.InvalidPageID {
		return nil, nil, nil
	}

	n, g, err := t.fetchNodeWrite(root)
	if err != nil {
		return nil, nil, err
	}
	path := []*node{n}
	guards := []*buffer.WritePageGuard{g}

	for !n.isLeaf() {
		idx := n.findChildIndex(key, t.cmp)
		childID := n.children[idx]

		childNode, childGuard, err := t.fetchNodeWrite(childID)
		if err != nil {
			dropAll(guards)
			return nil, nil, err
		}
		path = append(path, childNode)
		guards = append(guards, childGuard)
		n = childNode
	}

	return path, guards, nil
}

func dropAll(guards []*buffer.WritePageGuard) {
	for i := len(guards) - 1; i >= 0; i-- {
		guards[i].Drop()
	}
}
