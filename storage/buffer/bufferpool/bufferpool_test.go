package bufferpool

import (
	"bytes"
	"path/filepath"
	"testing"

	"coredb/storage/disk/diskmanager"
	"coredb/storage/disk/scheduler"
	"coredb/storage/page"
)

func newTestPool(t *testing.T, poolSize, k int) (*Pool, *diskmanager.DiskManager) {
	t.Helper()
	dir := t.TempDir()
	dm, err := diskmanager.Open(filepath.Join(dir, "bp.db"))
	if err != nil {
		t.Fatalf("diskmanager.Open: %v", err)
	}
	t.Cleanup(func() { dm.Close() })

	sched := scheduler.New(dm, 16, nil)
	t.Cleanup(sched.Shutdown)

	return New(poolSize, 2, dm, sched, nil), dm
}

func TestNewPageIsPinnedAndDirty(t *testing.T) {
	p, _ := newTestPool(t, 4, 2)
	id, pg, err := p.NewPage()
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if pg.ID() != id {
		t.Fatalf("page.ID() = %v, want %v", pg.ID(), id)
	}
	if pg.PinCount() != 1 {
		t.Fatalf("PinCount() = %d, want 1", pg.PinCount())
	}
	if !pg.IsDirty() {
		t.Fatalf("a freshly allocated page should be dirty")
	}
}

func TestFetchPageHitReturnsSameContent(t *testing.T) {
	p, _ := newTestPool(t, 4, 2)
	id, pg, err := p.NewPage()
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	copy(pg.Data(), []byte("hello"))
	p.Unpin(id, true)

	fetched, err := p.FetchPage(id)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if !bytes.HasPrefix(fetched.Data(), []byte("hello")) {
		t.Fatalf("fetched page content does not match what was written")
	}
}

func TestFetchPageMissLoadsFromDisk(t *testing.T) {
	p, _ := newTestPool(t, 4, 2)
	id, pg, err := p.NewPage()
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	copy(pg.Data(), []byte("on-disk"))
	p.Flush(id)
	p.Unpin(id, false)
	if !p.DeletePage(id) {
		t.Fatalf("DeletePage should succeed on an unpinned page")
	}

	fetched, err := p.FetchPage(id)
	if err != nil {
		t.Fatalf("FetchPage after evicting from the pool: %v", err)
	}
	if !bytes.HasPrefix(fetched.Data(), []byte("on-disk")) {
		t.Fatalf("re-fetched page did not load persisted content from disk")
	}
}

func TestUnpinToZeroMakesFrameEvictable(t *testing.T) {
	p, _ := newTestPool(t, 1, 2)
	id1, _, err := p.NewPage()
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if ok := p.Unpin(id1, false); !ok {
		t.Fatalf("Unpin should succeed on a pinned page")
	}

	// Pool has exactly one frame; with id1 unpinned and evictable, a
	// second NewPage should succeed by evicting it.
	id2, _, err := p.NewPage()
	if err != nil {
		t.Fatalf("NewPage after freeing the only frame: %v", err)
	}
	if id2 == id1 {
		t.Fatalf("second page should get a distinct id")
	}
}

func TestPoolFullWhenNoFrameIsEvictable(t *testing.T) {
	p, _ := newTestPool(t, 1, 2)
	if _, _, err := p.NewPage(); err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	// The only frame is still pinned.
	if _, _, err := p.NewPage(); err == nil {
		t.Fatalf("expected ErrFull when the only frame is pinned")
	}
}

func TestUnpinUnknownPageReturnsFalse(t *testing.T) {
	p, _ := newTestPool(t, 4, 2)
	if p.Unpin(page.ID(999), false) {
		t.Fatalf("Unpin of an unmapped page should return false")
	}
}

func TestDeletePagePinnedFails(t *testing.T) {
	p, _ := newTestPool(t, 4, 2)
	id, _, err := p.NewPage()
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if p.DeletePage(id) {
		t.Fatalf("DeletePage should fail while the page is pinned")
	}
}

func TestDeleteUnmappedPageIsNoop(t *testing.T) {
	p, _ := newTestPool(t, 4, 2)
	if !p.DeletePage(page.ID(12345)) {
		t.Fatalf("DeletePage of an unmapped id should report success (no-op)")
	}
}

func TestFlushAllWritesEveryDirtyPage(t *testing.T) {
	p, dm := newTestPool(t, 4, 2)
	for i := 0; i < 3; i++ {
		id, pg, err := p.NewPage()
		if err != nil {
			t.Fatalf("NewPage: %v", err)
		}
		copy(pg.Data(), []byte("row"))
		p.Unpin(id, true)
	}
	before := dm.NumFlushes()
	p.FlushAll()
	if got := dm.NumFlushes(); got <= before {
		t.Fatalf("NumFlushes did not increase after FlushAll: before=%d after=%d", before, got)
	}
}

func TestEvictionFlushesDirtyVictim(t *testing.T) {
	p, dm := newTestPool(t, 1, 2)
	id1, pg1, err := p.NewPage()
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	copy(pg1.Data(), []byte("dirty-victim"))
	p.Unpin(id1, true)

	before := dm.NumFlushes()
	id2, _, err := p.NewPage()
	if err != nil {
		t.Fatalf("NewPage forcing eviction: %v", err)
	}
	if got := dm.NumFlushes(); got <= before {
		t.Fatalf("evicting a dirty victim should flush it: before=%d after=%d", before, got)
	}
	p.Unpin(id2, false)

	// The flushed content should still be readable from disk.
	fetched, err := p.FetchPage(id1)
	if err != nil {
		t.Fatalf("FetchPage after eviction: %v", err)
	}
	if !bytes.HasPrefix(fetched.Data(), []byte("dirty-victim")) {
		t.Fatalf("evicted dirty page content was not preserved on disk")
	}
}
