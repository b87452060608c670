package page

import (
	"encoding/binary"

	"daemoncore/storage/disk"
	"daemoncore/types"
)

// HeaderPage is the entire payload of the page a B+ tree is rooted at: just
// the current root page id (§6, "Header page layout"). An empty tree stores
// InvalidPageID.
type HeaderPage struct {
	RootPageID types.PageID
}

// Encode writes h into a PayloadSize-length buffer suitable for
// disk.Manager.WritePage.
func (h HeaderPage) Encode() []byte {
	buf := make([]byte, disk.PayloadSize)
	binary.LittleEndian.PutUint32(buf, uint32(h.RootPageID))
	return buf
}

// DecodeHeaderPage reads a HeaderPage back out of a page payload.
func DecodeHeaderPage(buf []byte) HeaderPage {
	return HeaderPage{RootPageID: types.PageID(binary.LittleEndian.Uint32(buf))}
}
