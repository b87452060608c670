package trie

import (
	"sync"
	"testing"
)

func TestGetMissingKeyOnEmptyTrie(t *testing.T) {
	var tr Trie
	_, ok := Get[int](tr, "ab")
	if ok {
		t.Fatalf("expected absent key to report false")
	}
}

func TestPutThenGet(t *testing.T) {
	tr := Put(Trie{}, "ab", 1)
	v, ok := Get[int](tr, "ab")
	if !ok || v != 1 {
		t.Fatalf("Get: v=%v ok=%v", v, ok)
	}
}

func TestEmptyKeyAddressesRoot(t *testing.T) {
	tr := Put(Trie{}, "", "root-value")
	v, ok := Get[string](tr, "")
	if !ok || v != "root-value" {
		t.Fatalf("Get(\"\"): v=%v ok=%v", v, ok)
	}
}

func TestTypeMismatchReportsNotFound(t *testing.T) {
	tr := Put(Trie{}, "k", 42)
	_, ok := Get[string](tr, "k")
	if ok {
		t.Fatalf("expected type mismatch to report not found")
	}
	v, ok := Get[int](tr, "k")
	if !ok || v != 42 {
		t.Fatalf("correct type should still work: v=%v ok=%v", v, ok)
	}
}

// Scenario E: shared structure across versions.
func TestSharedStructureAcrossVersions(t *testing.T) {
	t0 := Trie{}
	t1 := Put(t0, "ab", 1)
	t2 := Put(t1, "ac", 2)

	if v, ok := Get[int](t1, "ab"); !ok || v != 1 {
		t.Fatalf("t1.Get(ab): v=%v ok=%v", v, ok)
	}
	if v, ok := Get[int](t2, "ab"); !ok || v != 1 {
		t.Fatalf("t2.Get(ab): v=%v ok=%v", v, ok)
	}
	if v, ok := Get[int](t2, "ac"); !ok || v != 2 {
		t.Fatalf("t2.Get(ac): v=%v ok=%v", v, ok)
	}
	if _, ok := Get[int](t0, "ab"); ok {
		t.Fatalf("t0.Get(ab) should be absent")
	}

	// The 'a' node itself is cloned (it gains a new 'c' child), but the
	// untouched 'b' subtree under it is shared structure, not copied.
	if t2.root.children['a'].children['b'] != t1.root.children['a'].children['b'] {
		t.Fatalf("expected t1 and t2 to share the 'ab' value node")
	}
}

func TestPutOverwritesExistingKey(t *testing.T) {
	tr := Put(Trie{}, "k", 1)
	tr = Put(tr, "k", 2)
	v, ok := Get[int](tr, "k")
	if !ok || v != 2 {
		t.Fatalf("expected overwritten value 2, got v=%v ok=%v", v, ok)
	}
}

func TestRemovePrunesEmptyNodes(t *testing.T) {
	tr := Put(Trie{}, "ab", 1)
	tr = tr.Remove("ab")
	if _, ok := Get[int](tr, "ab"); ok {
		t.Fatalf("expected key to be gone after remove")
	}
	if tr.root != nil {
		t.Fatalf("expected root to be pruned entirely (no other keys remain)")
	}
}

func TestRemoveKeepsSiblingBranches(t *testing.T) {
	tr := Put(Trie{}, "ab", 1)
	tr = Put(tr, "ac", 2)
	tr = tr.Remove("ab")

	if _, ok := Get[int](tr, "ab"); ok {
		t.Fatalf("expected ab to be gone")
	}
	if v, ok := Get[int](tr, "ac"); !ok || v != 2 {
		t.Fatalf("expected ac to survive: v=%v ok=%v", v, ok)
	}
}

func TestRemoveOfAbsentKeyIsIdentity(t *testing.T) {
	tr := Put(Trie{}, "ab", 1)
	after := tr.Remove("zz")
	if v, ok := Get[int](after, "ab"); !ok || v != 1 {
		t.Fatalf("removing an absent key should leave the trie unchanged")
	}
}

func TestPutRemoveRoundTrip(t *testing.T) {
	var tr Trie
	before := tr
	tr = Put(tr, "k", "v")
	tr = tr.Remove("k")
	if _, ok := Get[string](tr, "k"); ok {
		t.Fatalf("expected key absent after put-then-remove")
	}
	if tr.root != before.root {
		t.Fatalf("put-then-remove of a previously-absent key should restore an empty root")
	}
}

func TestStorePutGetRemove(t *testing.T) {
	s := NewStore()
	StorePut(s, "k", 7)

	g, ok := StoreGet[int](s, "k")
	if !ok || g.Value() != 7 {
		t.Fatalf("StoreGet: value=%v ok=%v", g.Value(), ok)
	}

	s.Remove("k")
	if _, ok := StoreGet[int](s, "k"); ok {
		t.Fatalf("expected key gone after Store.Remove")
	}
}

// Scenario F: concurrent reader against an alternating put/remove writer.
// Every returned guard must reference a single consistent value; the test
// asserts only the absence of a crash/race, which `go test -race` verifies.
func TestStoreConcurrentReadDuringWrites(t *testing.T) {
	s := NewStore()
	StorePut(s, "k", 0)

	var wg sync.WaitGroup
	wg.Add(2)

	stop := make(chan struct{})

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			StorePut(s, "k", i)
			s.Remove("k")
		}
		close(stop)
	}()

	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				if g, ok := StoreGet[int](s, "k"); ok {
					_ = g.Value()
				}
			}
		}
	}()

	wg.Wait()
}
