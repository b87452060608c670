// Package replacer implements the LRU-K victim-selection policy the buffer
// pool manager consults on eviction.
//
// Grounded algorithmically on original_source/src/buffer/lru_k_replacer.cpp
// (the BusTub reference this spec was distilled from); Go naming/shape
// (LRUKNode, history, isEvictable) borrowed from
// other_examples/ngina-wtfDB__evictionpolicy.go.
package replacer

import (
	"container/list"
	"fmt"
	"sync"

	"daemoncore/types"
)

// node tracks one frame's access history and evictability.
type node struct {
	history     []int64 // most recent access last, length capped at k
	isEvictable bool
}

// LRUK selects an eviction victim among tracked, evictable frames by largest
// backward k-distance, falling back to classical LRU among ties (§4.1).
//
// Frames are partitioned into two ordered doubly-linked lists instead of one:
// lessK holds frames with fewer than k recorded accesses (FIFO by
// first-access time), fullK holds frames with exactly k (ordered by
// k-th-most-recent access, oldest at the front). Evict always prefers lessK
// — per the spec's operational rule, a frame with infinite backward
// k-distance always beats one with a finite distance.
type LRUK struct {
	mu  sync.Mutex
	k   int
	cap int // replacer size — the valid frame id range is [0, cap)

	tick int64

	tracked map[types.FrameID]*node
	elem    map[types.FrameID]*list.Element // frame id -> its element in lessK or fullK
	lessK   *list.List                      // elements are types.FrameID
	fullK   *list.List
	size    int // count of tracked, evictable frames
}

// New returns a replacer over numFrames frame ids, each asked to remember up
// to k accesses.
func New(numFrames int, k int) *LRUK {
	return &LRUK{
		k:       k,
		cap:     numFrames,
		tracked: make(map[types.FrameID]*node),
		elem:    make(map[types.FrameID]*list.Element),
		lessK:   list.New(),
		fullK:   list.New(),
	}
}

func (r *LRUK) checkRange(f types.FrameID) {
	if f < 0 || int(f) >= r.cap {
		panic(fmt.Sprintf("replacer: frame id %d out of range [0, %d)", f, r.cap))
	}
}

// RecordAccess appends the current tick to f's history, trimmed to the last
// k entries, and moves f between the lessK/fullK lists as its history
// crosses the k threshold. It never changes evictability.
func (r *LRUK) RecordAccess(f types.FrameID, _ types.AccessType) {
	r.checkRange(f)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tick++

	n, ok := r.tracked[f]
	if !ok {
		n = &node{}
		r.tracked[f] = n
		r.elem[f] = r.lessK.PushBack(f)
	}

	n.history = append(n.history, r.tick)
	if len(n.history) > r.k {
		n.history = n.history[len(n.history)-r.k:]
	}

	switch {
	case len(n.history) < r.k:
		// Still in lessK; it keeps its first-access position there.
	case len(n.history) == r.k:
		// Re-insert f so fullK stays sorted by history[0], oldest first.
		r.lessK.Remove(r.elem[f])
		r.fullK.Remove(r.elem[f])
		at := r.fullK.Back()
		for at != nil && r.tracked[at.Value.(types.FrameID)].history[0] > n.history[0] {
			at = at.Prev()
		}
		if at == nil {
			r.elem[f] = r.fullK.PushFront(f)
		} else {
			r.elem[f] = r.fullK.InsertAfter(f, at)
		}
	}
}

func (r *LRUK) inList(l *list.List, f types.FrameID) bool {
	e, ok := r.elem[f]
	if !ok {
		return false
	}
	for cur := l.Front(); cur != nil; cur = cur.Next() {
		if cur == e {
			return true
		}
	}
	return false
}

// SetEvictable marks f evictable or pinned. f must already be tracked
// (i.e. RecordAccess has been called for it at least once).
func (r *LRUK) SetEvictable(f types.FrameID, evictable bool) {
	r.checkRange(f)

	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.tracked[f]
	if !ok {
		panic(fmt.Sprintf("replacer: SetEvictable on untracked frame %d", f))
	}
	if n.isEvictable == evictable {
		return
	}
	n.isEvictable = evictable
	if evictable {
		r.size++
	} else {
		r.size--
	}
}

// Evict returns the frame with the largest backward k-distance among
// evictable frames, per §4.1's policy: scan lessK in insertion order first
// (FIFO — the oldest first-seen frame wins among infinite-distance
// candidates), then fullK in least-recent-k-th-access order.
func (r *LRUK) Evict() (types.FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.evictFrom(r.lessK); ok {
		return f, true
	}
	return r.evictFrom(r.fullK)
}

func (r *LRUK) evictFrom(l *list.List) (types.FrameID, bool) {
	for e := l.Front(); e != nil; e = e.Next() {
		f := e.Value.(types.FrameID)
		if r.tracked[f].isEvictable {
			l.Remove(e)
			delete(r.elem, f)
			delete(r.tracked, f)
			r.size--
			return f, true
		}
	}
	return 0, false
}

// Remove untracks f unconditionally. The caller must ensure f is not
// currently pinned by a live guard.
func (r *LRUK) Remove(f types.FrameID) {
	r.checkRange(f)

	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.tracked[f]
	if !ok {
		return
	}
	if n.isEvictable {
		r.size--
	}
	if e, ok := r.elem[f]; ok {
		if r.inList(r.lessK, f) {
			r.lessK.Remove(e)
		} else {
			r.fullK.Remove(e)
		}
		delete(r.elem, f)
	}
	delete(r.tracked, f)
}

// Size returns the count of tracked frames currently marked evictable.
func (r *LRUK) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}
