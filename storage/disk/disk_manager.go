// Package disk implements the on-disk collaborator the buffer pool consumes:
// a byte-addressable, single-file page store.
//
// The buffer pool manager is the only intended caller. DiskManager does not
// know about frames, pins, or latches — it reads and writes whole pages at a
// fixed offset and hands out fresh page ids on request.
package disk

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"

	"daemoncore/types"
)

// checksumSize is the trailing bytes of every on-disk page reserved for an
// xxhash of the payload that precedes it. PayloadSize is what callers of
// ReadPage/WritePage actually see; the checksum is this package's own
// bookkeeping and never leaks into the buffer returned to a frame.
const checksumSize = 8

// PayloadSize is the number of usable bytes in a page once the trailer
// checksum is accounted for.
const PayloadSize = types.PageSize - checksumSize

// Manager is a single-file, monotonically-growing page store. Page id 0 is
// conventionally reserved by callers for a header page (see storage/page),
// but Manager itself attaches no meaning to any particular id.
//
// Grounded on ShubhamNegi4-DaemonDB/bplustree/disk_pager.go (OnDiskPager):
// one os.File, WriteAt/ReadAt at pageID*PageSize, a monotonic next-id counter.
type Manager struct {
	mu       sync.RWMutex
	file     *os.File
	nextPage types.PageID
}

// Open opens or creates path and positions the next-allocation counter past
// whatever pages are already on disk.
func Open(path string) (*Manager, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("disk: stat %s: %w", path, err)
	}

	numPages := types.PageID(stat.Size() / types.PageSize)

	return &Manager{file: file, nextPage: numPages}, nil
}

// ReadPage reads the PayloadSize bytes stored at pageID into dst and
// verifies the trailing checksum. dst must have length PayloadSize.
func (m *Manager) ReadPage(pageID types.PageID, dst []byte) error {
	if len(dst) != PayloadSize {
		return fmt.Errorf("disk: read page %d: dst has length %d, want %d", pageID, len(dst), PayloadSize)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.file == nil {
		return fmt.Errorf("disk: manager is closed")
	}

	buf := make([]byte, types.PageSize)
	offset := int64(pageID) * types.PageSize

	n, err := m.file.ReadAt(buf, offset)
	if err != nil && n == 0 {
		return fmt.Errorf("disk: read page %d: %w", pageID, err)
	}
	// A short read (e.g. a page allocated but never written) reads as zeros.

	want := xxhash.Sum64(buf[:PayloadSize])
	got := uint64(0)
	for i := 0; i < checksumSize; i++ {
		got |= uint64(buf[PayloadSize+i]) << (8 * i)
	}
	if n == types.PageSize && got != want && got != 0 {
		return fmt.Errorf("disk: read page %d: checksum mismatch (page corrupt)", pageID)
	}

	copy(dst, buf[:PayloadSize])
	return nil
}

// WritePage writes the PayloadSize bytes in src to pageID, appending a fresh
// checksum. src must have length PayloadSize.
func (m *Manager) WritePage(pageID types.PageID, src []byte) error {
	if len(src) != PayloadSize {
		return fmt.Errorf("disk: write page %d: src has length %d, want %d", pageID, len(src), PayloadSize)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file == nil {
		return fmt.Errorf("disk: manager is closed")
	}

	buf := make([]byte, types.PageSize)
	copy(buf, src)
	sum := xxhash.Sum64(src)
	for i := 0; i < checksumSize; i++ {
		buf[PayloadSize+i] = byte(sum >> (8 * i))
	}

	offset := int64(pageID) * types.PageSize
	if _, err := m.file.WriteAt(buf, offset); err != nil {
		return fmt.Errorf("disk: write page %d: %w", pageID, err)
	}

	if pageID >= m.nextPage {
		m.nextPage = pageID + 1
	}
	return nil
}

// AllocatePage returns a fresh, monotonically increasing page id. It does
// not write anything to disk; the page exists on disk once the caller
// writes to it.
func (m *Manager) AllocatePage() types.PageID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextPage
	m.nextPage++
	return id
}

// DeallocatePage is a hint that pageID's storage may be reclaimed. This
// implementation does not reuse page ids or shrink the file; it exists so
// callers (notably the buffer pool's DeletePage) have somewhere to forward
// the hint.
func (m *Manager) DeallocatePage(types.PageID) error {
	return nil
}

// Sync flushes pending writes to stable storage.
func (m *Manager) Sync() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.file == nil {
		return fmt.Errorf("disk: manager is closed")
	}
	return m.file.Sync()
}

// Close syncs and closes the underlying file. Close is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file == nil {
		return nil
	}
	syncErr := m.file.Sync()
	closeErr := m.file.Close()
	m.file = nil
	if syncErr != nil {
		return fmt.Errorf("disk: sync before close: %w", syncErr)
	}
	if closeErr != nil {
		return fmt.Errorf("disk: close: %w", closeErr)
	}
	return nil
}
