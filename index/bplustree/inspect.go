package bplustree

import (
	"fmt"
	"io"

	"daemoncore/types"
)

// DrawBPlusTree writes a human-readable, level-by-level dump of the tree to
// w: root page id, then each node's keys (and, for leaves, key -> value
// pairs and the next-leaf pointer).
//
// Grounded on ShubhamNegi4-DaemonDB/bplustree/inspect.go's InspectIndexFileTo
// BFS dump, adapted to read nodes through ReadPageGuard instead of a raw
// Pager.
func (t *Tree) DrawBPlusTree(w io.Writer) error {
	root, err := t.GetRootPageID()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "B+ tree %q: root page id = %d\n", t.name, root)
	if root == types.InvalidPageID {
		fmt.Fprintln(w, "  (empty tree)")
		return nil
	}

	queue := []types.PageID{root}
	level := 0
	for len(queue) > 0 {
		fmt.Fprintf(w, "  level %d:\n", level)
		var next []types.PageID
		for _, pid := range queue {
			n, g, err := t.fetchNodeRead(pid)
			if err != nil {
				fmt.Fprintf(w, "    [page %d] read error: %v\n", pid, err)
				continue
			}
			if n.isLeaf() {
				fmt.Fprintf(w, "    [page %d] LEAF size=%d next=%d\n", pid, n.size(), n.next)
				for i := 0; i < n.size(); i++ {
					fmt.Fprintf(w, "      %q -> %q\n", n.keys[i], n.values[i])
				}
			} else {
				fmt.Fprintf(w, "    [page %d] INTERNAL keys=%s children=%v\n", pid, formatKeys(n.keys), n.children)
				next = append(next, n.children...)
			}
			g.Drop()
		}
		queue = next
		level++
	}
	return nil
}

// Draw writes a Graphviz DOT digraph of the tree to w, one node per page and
// one edge per parent-child link.
func (t *Tree) Draw(w io.Writer) error {
	root, err := t.GetRootPageID()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "digraph bplustree {")
	fmt.Fprintln(w, "  node [shape=record];")
	if root != types.InvalidPageID {
		if err := t.drawNode(w, root); err != nil {
			fmt.Fprintln(w, "}")
			return err
		}
	}
	fmt.Fprintln(w, "}")
	return nil
}

func (t *Tree) drawNode(w io.Writer, pid types.PageID) error {
	n, g, err := t.fetchNodeRead(pid)
	if err != nil {
		return err
	}
	defer g.Drop()

	if n.isLeaf() {
		fmt.Fprintf(w, "  p%d [label=\"{LEAF %d|%s}\"];\n", pid, pid, formatKeys(n.keys))
		return nil
	}

	fmt.Fprintf(w, "  p%d [label=\"{INTERNAL %d|%s}\"];\n", pid, pid, formatKeys(n.keys))
	children := append([]types.PageID(nil), n.children...)
	for _, c := range children {
		fmt.Fprintf(w, "  p%d -> p%d;\n", pid, c)
	}
	for _, c := range children {
		if err := t.drawNode(w, c); err != nil {
			return err
		}
	}
	return nil
}

func formatKeys(keys [][]byte) string {
	s := "["
	for i, k := range keys {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%q", k)
	}
	return s + "]"
}
