// Package diskmanager implements the blocking, single-page-addressed
// read_page/write_page contract the rest of the core treats as an
// external collaborator (spec §6 "DiskManager (consumed)").
//
// Grounded on the teacher's storage_engine/disk_manager package for its
// file-handle management and fmt.Errorf("...: %w", err) wrapping style,
// simplified to the single global 32-bit page-id space this core's
// contract specifies — no per-file id encoding.
package diskmanager

import (
	"fmt"
	"os"
	"sync"

	"coredb/dberrors"
	"coredb/storage/page"
)

// DiskManager persists pages to a single backing file, addressed by
// page id directly (offset = id * page.Size).
type DiskManager struct {
	mu       sync.Mutex
	file     *os.File
	nextID   int32
	numFlush int64
}

// Open creates or opens path as the backing store for a DiskManager.
func Open(path string) (*DiskManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open disk file %q: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat disk file %q: %w", path, err)
	}
	return &DiskManager{
		file:   f,
		nextID: int32(info.Size() / page.Size),
	}, nil
}

// AllocatePage returns a fresh monotonically increasing page id. It does
// not write anything; the caller is expected to write the page's
// content before it is ever read back.
func (dm *DiskManager) AllocatePage() page.ID {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	id := dm.nextID
	dm.nextID++
	return page.ID(id)
}

// ReadPage blocks reading exactly page.Size bytes for id into dst.
func (dm *DiskManager) ReadPage(id page.ID, dst []byte) error {
	if len(dst) != page.Size {
		return fmt.Errorf("read page %d: buffer is %d bytes, want %d", id, len(dst), page.Size)
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()

	off := int64(id) * int64(page.Size)
	n, err := dm.file.ReadAt(dst, off)
	if err != nil && n == 0 {
		// Reading a page that was allocated but never written: treat as
		// a zeroed page rather than an IO error, matching NewPage's own
		// zero-initialized content.
		for i := range dst {
			dst[i] = 0
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read page %d: %v", dberrors.ErrIOError, id, err)
	}
	return nil
}

// WritePage blocks writing exactly page.Size bytes from src for id.
func (dm *DiskManager) WritePage(id page.ID, src []byte) error {
	if len(src) != page.Size {
		return fmt.Errorf("write page %d: buffer is %d bytes, want %d", id, len(src), page.Size)
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()

	off := int64(id) * int64(page.Size)
	if _, err := dm.file.WriteAt(src, off); err != nil {
		return fmt.Errorf("%w: write page %d: %v", dberrors.ErrIOError, id, err)
	}
	dm.numFlush++
	return nil
}

// NumFlushes returns the number of completed WritePage calls, useful in
// tests asserting that flush_all actually touched disk.
func (dm *DiskManager) NumFlushes() int64 {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.numFlush
}

// Close closes the backing file.
func (dm *DiskManager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.file.Close()
}
