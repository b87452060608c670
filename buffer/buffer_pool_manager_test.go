package buffer

import (
	"path/filepath"
	"testing"

	"daemoncore/storage/disk"
	"daemoncore/types"
)

func newTestManager(t *testing.T, poolSize, k int) (*Manager, *disk.Manager) {
	t.Helper()
	dm, err := disk.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("disk.Open: %v", err)
	}
	t.Cleanup(func() { dm.Close() })
	return NewManager(poolSize, k, dm, nil), dm
}

// Scenario A: pool exhaustion.
func TestPoolExhaustion(t *testing.T) {
	bpm, _ := newTestManager(t, 3, 2)

	_, err := bpm.NewPage()
	if err != nil {
		t.Fatalf("NewPage p0: %v", err)
	}
	p1, err := bpm.NewPage()
	if err != nil {
		t.Fatalf("NewPage p1: %v", err)
	}
	_, err = bpm.NewPage()
	if err != nil {
		t.Fatalf("NewPage p2: %v", err)
	}

	if _, err := bpm.NewPage(); err == nil {
		t.Fatalf("expected pool exhaustion error")
	}

	if !bpm.UnpinPage(p1.PageID, false) {
		t.Fatalf("expected unpin of p1 to succeed")
	}

	p3, err := bpm.NewPage()
	if err != nil {
		t.Fatalf("NewPage p3 after unpin: %v", err)
	}
	if p3.PageID == types.InvalidPageID {
		t.Fatalf("expected valid page id for p3")
	}
}

// Scenario B: eviction with write-back.
func TestEvictionWritesBackDirtyPage(t *testing.T) {
	bpm, _ := newTestManager(t, 2, 2)

	p0, err := bpm.NewPage()
	if err != nil {
		t.Fatalf("NewPage p0: %v", err)
	}
	p0ID := p0.PageID // the frame p0 points at is reused after eviction
	copy(p0.Data[:], []byte("b0-payload"))
	if !bpm.UnpinPage(p0.PageID, true) {
		t.Fatalf("unpin p0")
	}

	p1, err := bpm.NewPage()
	if err != nil {
		t.Fatalf("NewPage p1: %v", err)
	}
	if !bpm.UnpinPage(p1.PageID, false) {
		t.Fatalf("unpin p1")
	}

	// p0 was accessed (and marked evictable) before p1, so the replacer's
	// less_k FIFO order evicts p0 first.
	if _, err := bpm.NewPage(); err != nil {
		t.Fatalf("NewPage p2 (evicts p0): %v", err)
	}

	fr, err := bpm.FetchPage(p0ID)
	if err != nil {
		t.Fatalf("FetchPage p0 after eviction: %v", err)
	}
	defer bpm.UnpinPage(p0ID, false)

	got := string(fr.Data[:len("b0-payload")])
	if got != "b0-payload" {
		t.Fatalf("expected write-back to survive eviction, got %q", got)
	}
}

func TestUnpinOverUnpinFails(t *testing.T) {
	bpm, _ := newTestManager(t, 2, 2)
	p0, err := bpm.NewPage()
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if !bpm.UnpinPage(p0.PageID, false) {
		t.Fatalf("first unpin should succeed")
	}
	if bpm.UnpinPage(p0.PageID, false) {
		t.Fatalf("second unpin should fail (over-unpin)")
	}
}

func TestFlushPageNotResident(t *testing.T) {
	bpm, _ := newTestManager(t, 2, 2)
	if bpm.FlushPage(42) {
		t.Fatalf("expected FlushPage on absent page to fail")
	}
}

func TestDeletePagePinnedFails(t *testing.T) {
	bpm, _ := newTestManager(t, 2, 2)
	p0, err := bpm.NewPage()
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	ok, err := bpm.DeletePage(p0.PageID)
	if err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if ok {
		t.Fatalf("expected DeletePage to fail while pinned")
	}
}

func TestDeletePageVacuousWhenAbsent(t *testing.T) {
	bpm, _ := newTestManager(t, 2, 2)
	ok, err := bpm.DeletePage(999)
	if err != nil || !ok {
		t.Fatalf("expected vacuous success, got ok=%v err=%v", ok, err)
	}
}

func TestDeletePageReturnsFrameToFreeList(t *testing.T) {
	bpm, _ := newTestManager(t, 1, 2)
	p0, err := bpm.NewPage()
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	p0ID := p0.PageID // p1 below reuses the same frame
	if !bpm.UnpinPage(p0.PageID, false) {
		t.Fatalf("unpin")
	}
	ok, err := bpm.DeletePage(p0.PageID)
	if err != nil || !ok {
		t.Fatalf("DeletePage: ok=%v err=%v", ok, err)
	}

	// Pool had only one frame; after delete it must be free again.
	p1, err := bpm.NewPage()
	if err != nil {
		t.Fatalf("NewPage after delete: %v", err)
	}
	if p1.PageID == p0ID {
		t.Fatalf("expected a fresh page id")
	}
}

func TestGuardRoundTripThroughWriteAndRead(t *testing.T) {
	bpm, _ := newTestManager(t, 4, 2)

	g, pid, err := bpm.NewPageGuarded()
	if err != nil {
		t.Fatalf("NewPageGuarded: %v", err)
	}
	wg, err := bpm.FetchPageWrite(pid)
	if err != nil {
		t.Fatalf("FetchPageWrite: %v", err)
	}
	copy(wg.Data(), []byte("guarded"))
	wg.MarkDirty()
	wg.Drop()
	g.Drop() // release the NewPageGuarded pin too

	rg, err := bpm.FetchPageRead(pid)
	if err != nil {
		t.Fatalf("FetchPageRead: %v", err)
	}
	defer rg.Drop()

	if got := string(rg.Data()[:len("guarded")]); got != "guarded" {
		t.Fatalf("expected %q, got %q", "guarded", got)
	}
}

func TestDropIsIdempotent(t *testing.T) {
	bpm, _ := newTestManager(t, 2, 2)
	g, _, err := bpm.NewPageGuarded()
	if err != nil {
		t.Fatalf("NewPageGuarded: %v", err)
	}
	g.Drop()
	g.Drop() // must not double-unpin or panic
}
