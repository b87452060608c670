package bplustree

import "daemoncore/types"

// insertSlice and removeSlice are the generic slot-shift primitives §4.4
// describes ("insert_at(pos, ...) shifts slots [pos, size) right by one").
//
// Grounded on the generic insert[T]/remove[T] helpers in
// ShubhamNegi4-DaemonDB/storage_engine/access/indexfile_manager/bplustree/binary_search.go.
func insertSlice[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func removeSlice[T any](s []T, i int) []T {
	return append(s[:i], s[i+1:]...)
}

// lowerBound returns the first index whose key is not less than target
// (§4.4, leaf find_position / internal find_child_index's building block).
func lowerBound(keys [][]byte, target []byte, cmp func(a, b []byte) int) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if cmp(keys[mid], target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// findExact returns the index of target in keys, or -1 if absent.
func findExact(keys [][]byte, target []byte, cmp func(a, b []byte) int) int {
	i := lowerBound(keys, target, cmp)
	if i < len(keys) && cmp(keys[i], target) == 0 {
		return i
	}
	return -1
}

// findPosition is the leaf's insertion point: the first index whose key is
// not less than key.
func (n *node) findPosition(key []byte, cmp func(a, b []byte) int) int {
	return lowerBound(n.keys, key, cmp)
}

// insertLeaf places (key, value) at pos, shifting the tail right.
func (n *node) insertLeaf(pos int, key, value []byte) {
	n.keys = insertSlice(n.keys, pos, key)
	n.values = insertSlice(n.values, pos, value)
}

// removeLeaf deletes the entry at pos, shifting the tail left.
func (n *node) removeLeaf(pos int) {
	n.keys = removeSlice(n.keys, pos)
	n.values = removeSlice(n.values, pos)
}

// findChildIndex returns the index i such that key < KeyAt(i+1) (or
// size-1 if none), searching slots [1, size) and special-casing slot 0 per
// §4.4. Slot 0's key is a sentinel that never participates in comparisons.
func (n *node) findChildIndex(key []byte, cmp func(a, b []byte) int) int {
	if n.size() <= 1 {
		return 0
	}
	// Among separator keys[1:], find the last one <= key.
	lo, hi := 1, n.size()
	for lo < hi {
		mid := lo + (hi-lo)/2
		if cmp(n.keys[mid], key) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

// insertInternalAt inserts a (separatorKey, childID) pair at pos — the
// separator lands in keys[pos] and the child in children[pos]. Callers
// insert the new child immediately after its left sibling, i.e. at
// leftChildIndex+1.
func (n *node) insertInternalAt(pos int, separatorKey []byte, child types.PageID) {
	n.keys = insertSlice(n.keys, pos, separatorKey)
	n.children = insertSlice(n.children, pos, child)
}

func (n *node) removeInternalAt(pos int) {
	n.keys = removeSlice(n.keys, pos)
	n.children = removeSlice(n.children, pos)
}

// childIndexOf returns the slot holding childID, or -1.
func (n *node) childIndexOf(childID types.PageID) int {
	for i, c := range n.children {
		if c == childID {
			return i
		}
	}
	return -1
}
