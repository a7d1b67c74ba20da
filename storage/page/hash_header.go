package page

import "encoding/binary"

// HeaderMaxDepth mirrors BusTub's HTABLE_HEADER_MAX_DEPTH: the header
// page's directory-pointer array is always allocated at this size, even
// though a given table only uses the low max_depth_h bits of the hash.
const HeaderMaxDepth = 9

// HeaderArraySize is 2^HeaderMaxDepth.
const HeaderArraySize = 1 << HeaderMaxDepth

const headerPageEncodedSize = HeaderArraySize*4 + 4

func init() {
	if headerPageEncodedSize > Size {
		panic("hash header page layout exceeds page size")
	}
}

// HeaderPage is the decoded view of an extendible hash table header page.
//
// On-disk layout: directory_page_ids[HeaderArraySize] (4 bytes each)
// followed by max_depth (4 bytes).
type HeaderPage struct {
	DirectoryPageIDs [HeaderArraySize]ID
	MaxDepth         uint32
}

// Init fills the directory pointer array with InvalidID and records the
// configured max depth (must be <= HeaderMaxDepth).
func (h *HeaderPage) Init(maxDepth uint32) {
	for i := range h.DirectoryPageIDs {
		h.DirectoryPageIDs[i] = InvalidID
	}
	h.MaxDepth = maxDepth
}

// HashToDirectoryIndex returns the top MaxDepth bits of hash.
func (h *HeaderPage) HashToDirectoryIndex(hash uint32) uint32 {
	if h.MaxDepth == 0 {
		return 0
	}
	return hash >> (32 - h.MaxDepth)
}

// MaxSize returns 2^MaxDepth, the number of directory slots in use.
func (h *HeaderPage) MaxSize() uint32 {
	return 1 << h.MaxDepth
}

// Encode serializes h into buf, which must be at least headerPageEncodedSize
// bytes (callers pass a page's Data()).
func (h *HeaderPage) Encode(buf []byte) {
	off := 0
	for _, id := range h.DirectoryPageIDs {
		binary.LittleEndian.PutUint32(buf[off:], uint32(id))
		off += 4
	}
	binary.LittleEndian.PutUint32(buf[off:], h.MaxDepth)
}

// Decode populates h from buf, the inverse of Encode.
func (h *HeaderPage) Decode(buf []byte) {
	off := 0
	for i := range h.DirectoryPageIDs {
		h.DirectoryPageIDs[i] = ID(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
	}
	h.MaxDepth = binary.LittleEndian.Uint32(buf[off:])
}
