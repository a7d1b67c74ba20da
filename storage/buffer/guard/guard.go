// Package guard implements the scoped RAII-style page guards of spec
// §4.3, grounded on original_source's
// src/storage/page/page_guard.cpp: move-only basic/read/write guards
// with atomic upgrade transforms.
//
// Go has no destructors, so "drop on scope exit" becomes an explicit
// Drop() call; callers are expected to `defer g.Drop()` the way the
// teacher's code defers Unlock()/UnpinPage calls.
package guard

import "coredb/storage/page"

// unpinner is the subset of the buffer pool a guard needs to release
// its pin on drop. Defined here (not imported from bufferpool) to avoid
// a storage/buffer/guard <-> storage/buffer/bufferpool import cycle —
// bufferpool.Pool satisfies this implicitly.
type unpinner interface {
	Unpin(id page.ID, dirty bool) bool
}

// Basic holds a frame pinned. Drop unpins it with the currently
// recorded dirty flag.
type Basic struct {
	bp      unpinner
	pg      *page.Page
	dirty   bool
	dropped bool
}

// NewBasic wraps an already-pinned page. Ownership of the pin transfers
// to the guard.
func NewBasic(bp unpinner, pg *page.Page) *Basic {
	return &Basic{bp: bp, pg: pg}
}

// Page returns the underlying page, or nil if this guard has been
// dropped or moved from.
func (b *Basic) Page() *page.Page { return b.pg }

// SetDirty marks the page dirty for the eventual unpin; it does not
// write through immediately.
func (b *Basic) SetDirty(dirty bool) { b.dirty = dirty }

// Drop unpins the page. Safe to call more than once; a no-op after the
// first call or after a move/upgrade.
func (b *Basic) Drop() {
	if b.dropped || b.pg == nil {
		return
	}
	b.dropped = true
	b.bp.Unpin(b.pg.ID(), b.dirty)
	b.pg = nil
	b.bp = nil
}

// take transfers ownership out of b (used by Move and the Upgrade*
// helpers) so the source guard's own Drop becomes a no-op.
func (b *Basic) take() (unpinner, *page.Page, bool) {
	bp, pg, dirty := b.bp, b.pg, b.dirty
	b.dropped = true
	b.pg = nil
	b.bp = nil
	return bp, pg, dirty
}

// Move transfers b's pin to a new Basic guard and neutralizes b,
// matching the move constructor/assignment semantics of the original:
// moving drops the prior target of the destination first if it already
// held one.
func (b *Basic) Move(dst *Basic) {
	dst.Drop()
	bp, pg, dirty := b.take()
	dst.bp, dst.pg, dst.dirty, dst.dropped = bp, pg, dirty, false
}

// Read additionally holds the page's shared latch.
type Read struct {
	basic Basic
}

// UpgradeRead latches b for reading and constructs a Read guard,
// transferring pin ownership atomically: b is left in the dropped
// state so its own Drop becomes a no-op rather than a double-unpin.
func (b *Basic) UpgradeRead() *Read {
	bp, pg, dirty := b.take()
	pg.RLock()
	return &Read{basic: Basic{bp: bp, pg: pg, dirty: dirty}}
}

// Page returns the underlying page.
func (r *Read) Page() *page.Page { return r.basic.pg }

// Drop releases the shared latch then unpins.
func (r *Read) Drop() {
	if r.basic.pg == nil {
		return
	}
	pg := r.basic.pg
	pg.RUnlock()
	r.basic.Drop()
}

// Write additionally holds the page's exclusive latch and forces dirty
// on drop.
type Write struct {
	basic Basic
}

// UpgradeWrite latches b for writing and constructs a Write guard, with
// the same atomic-transfer semantics as UpgradeRead.
func (b *Basic) UpgradeWrite() *Write {
	bp, pg, dirty := b.take()
	pg.Lock()
	return &Write{basic: Basic{bp: bp, pg: pg, dirty: dirty}}
}

// Page returns the underlying page.
func (w *Write) Page() *page.Page { return w.basic.pg }

// SetDirty marks the page dirty for the eventual unpin; Drop forces it
// true regardless, so this only matters if a caller checks the flag
// before dropping.
func (w *Write) SetDirty(dirty bool) { w.basic.dirty = dirty }

// Drop forces the dirty flag, releases the exclusive latch, then
// unpins — matching WritePageGuard::Drop() unconditionally setting
// is_dirty_ = true before dropping its inner BasicPageGuard.
func (w *Write) Drop() {
	if w.basic.pg == nil {
		return
	}
	w.basic.dirty = true
	pg := w.basic.pg
	pg.Unlock()
	w.basic.Drop()
}
