// Package tableheap implements the §6 "TableHeap (consumed)" contract
// concretely: make_iterator/get_tuple/insert_tuple/update_tuple_meta
// over a chain of buffer-pool-resident slotted pages.
//
// Grounded on the teacher's storage_engine/access/heapfile_manager
// slotted-page layout (records grow forward from a fixed header, the
// slot directory grows backward from the page's end) but simplified:
// no LSN/FileID/PageNo header fields (this core has no WAL and a single
// global page-id space already tracked by the page itself), and a
// NextPageID header field replacing the teacher's catalog-driven
// multi-page bookkeeping so a heap can span pages without catalog
// involvement.
package tableheap

import (
	"encoding/binary"

	"coredb/dberrors"
	"coredb/storage/buffer/bufferpool"
	"coredb/storage/page"
	"coredb/types"
)

const (
	offNumSlots        = 0  // uint16
	offRecordEnd       = 2  // uint16
	offSlotRegionStart = 4  // uint16
	offNextPageID      = 6  // uint32 (int32 two's-complement, InvalidID included)
	headerSize         = 10
	slotEntrySize       = 4 // offset(2) + length(2)
	metaSize            = 9 // TxnID(8) + IsDeleted(1)
)

func initPage(data []byte) {
	for i := range data {
		data[i] = 0
	}
	binary.LittleEndian.PutUint16(data[offRecordEnd:], headerSize)
	binary.LittleEndian.PutUint16(data[offSlotRegionStart:], uint16(page.Size))
	invalidID := page.InvalidID
	binary.LittleEndian.PutUint32(data[offNextPageID:], uint32(invalidID))
}

func numSlots(data []byte) uint16           { return binary.LittleEndian.Uint16(data[offNumSlots:]) }
func setNumSlots(data []byte, n uint16)     { binary.LittleEndian.PutUint16(data[offNumSlots:], n) }
func recordEnd(data []byte) uint16          { return binary.LittleEndian.Uint16(data[offRecordEnd:]) }
func setRecordEnd(data []byte, v uint16)    { binary.LittleEndian.PutUint16(data[offRecordEnd:], v) }
func slotRegionStart(data []byte) uint16    { return binary.LittleEndian.Uint16(data[offSlotRegionStart:]) }
func setSlotRegionStart(data []byte, v uint16) {
	binary.LittleEndian.PutUint16(data[offSlotRegionStart:], v)
}
func nextPageID(data []byte) page.ID { return page.ID(binary.LittleEndian.Uint32(data[offNextPageID:])) }
func setNextPageID(data []byte, id page.ID) {
	binary.LittleEndian.PutUint32(data[offNextPageID:], uint32(id))
}

func slotOffset(slot uint16) uint16 { return uint16(page.Size) - (slot+1)*slotEntrySize }

func getSlotEntry(data []byte, slot uint16) (offset, length uint16) {
	so := slotOffset(slot)
	return binary.LittleEndian.Uint16(data[so:]), binary.LittleEndian.Uint16(data[so+2:])
}

func setSlotEntry(data []byte, slot, offset, length uint16) {
	so := slotOffset(slot)
	binary.LittleEndian.PutUint16(data[so:], offset)
	binary.LittleEndian.PutUint16(data[so+2:], length)
}

func recordFits(data []byte, needed int) bool {
	free := int(slotRegionStart(data)) - int(recordEnd(data))
	return free >= needed+slotEntrySize
}

// appendRecord writes record into the free space between the records
// region and the slot directory, installing a new slot entry for it.
func appendRecord(data, record []byte) (slot uint16, ok bool) {
	if !recordFits(data, len(record)) {
		return 0, false
	}
	offset := recordEnd(data)
	copy(data[offset:], record)
	setRecordEnd(data, offset+uint16(len(record)))
	setSlotRegionStart(data, slotRegionStart(data)-slotEntrySize)
	slot = numSlots(data)
	setSlotEntry(data, slot, offset, uint16(len(record)))
	setNumSlots(data, slot+1)
	return slot, true
}

func encodeMetaInto(buf []byte, meta types.TupleMeta) {
	binary.LittleEndian.PutUint64(buf[0:], meta.TxnID)
	if meta.IsDeleted {
		buf[8] = 1
	} else {
		buf[8] = 0
	}
}

func decodeMeta(buf []byte) types.TupleMeta {
	return types.TupleMeta{TxnID: binary.LittleEndian.Uint64(buf[0:]), IsDeleted: buf[8] != 0}
}

func encodeRecord(meta types.TupleMeta, tuple types.Tuple, schema *types.Schema) []byte {
	buf := make([]byte, metaSize)
	encodeMetaInto(buf, meta)
	return append(buf, tuple.Encode(schema)...)
}

// Heap is a chain of buffer-pool-resident pages holding one table's
// tuples.
type Heap struct {
	bp          *bufferpool.Pool
	schema      *types.Schema
	firstPageID page.ID
	lastPageID  page.ID
}

// New allocates a fresh, single-page heap for schema.
func New(bp *bufferpool.Pool, schema *types.Schema) (*Heap, error) {
	id, g, err := bp.NewPageGuarded()
	if err != nil {
		return nil, err
	}
	initPage(g.Page().Data())
	g.SetDirty(true)
	g.Drop()
	return &Heap{bp: bp, schema: schema, firstPageID: id, lastPageID: id}, nil
}

// InsertTuple appends tuple to the heap, allocating a new page if the
// current last page has no room. Returns the tuple's RID.
func (h *Heap) InsertTuple(meta types.TupleMeta, tuple types.Tuple) (types.RID, error) {
	record := encodeRecord(meta, tuple, h.schema)

	g, err := h.bp.FetchPageWrite(h.lastPageID)
	if err != nil {
		return types.RID{}, err
	}
	if slot, ok := appendRecord(g.Page().Data(), record); ok {
		g.Drop()
		return types.RID{PageID: int32(h.lastPageID), Slot: uint32(slot)}, nil
	}
	g.Drop()

	newID, newGuard, err := h.bp.NewPageGuarded()
	if err != nil {
		return types.RID{}, err
	}
	initPage(newGuard.Page().Data())
	slot, ok := appendRecord(newGuard.Page().Data(), record)
	newGuard.SetDirty(true)
	newGuard.Drop()
	if !ok {
		return types.RID{}, dberrors.ErrFull
	}

	if oldGuard, err := h.bp.FetchPageWrite(h.lastPageID); err == nil {
		setNextPageID(oldGuard.Page().Data(), newID)
		oldGuard.Drop()
	}
	h.lastPageID = newID
	return types.RID{PageID: int32(newID), Slot: uint32(slot)}, nil
}

// GetTuple returns the meta and tuple stored at rid.
func (h *Heap) GetTuple(rid types.RID) (types.TupleMeta, types.Tuple, error) {
	g, err := h.bp.FetchPageRead(page.ID(rid.PageID))
	if err != nil {
		return types.TupleMeta{}, types.Tuple{}, err
	}
	defer g.Drop()
	data := g.Page().Data()
	if uint32(rid.Slot) >= uint32(numSlots(data)) {
		return types.TupleMeta{}, types.Tuple{}, dberrors.ErrNotFound
	}
	offset, length := getSlotEntry(data, uint16(rid.Slot))
	record := data[offset : offset+length]
	meta := decodeMeta(record)
	tuple := types.DecodeTuple(h.schema, record[metaSize:])
	return meta, tuple, nil
}

// UpdateTupleMeta overwrites the meta prefix of the record at rid
// in-place, without moving or resizing the tuple bytes after it.
func (h *Heap) UpdateTupleMeta(meta types.TupleMeta, rid types.RID) error {
	g, err := h.bp.FetchPageWrite(page.ID(rid.PageID))
	if err != nil {
		return err
	}
	defer g.Drop()
	data := g.Page().Data()
	offset, _ := getSlotEntry(data, uint16(rid.Slot))
	encodeMetaInto(data[offset:], meta)
	return nil
}

// MakeIterator snapshots every RID currently in the heap, walking the
// page chain once. Executors (SeqScan, Delete, Update) all operate over
// this snapshot rather than a live cursor — see DESIGN.md's Open
// Question 2 resolution.
func (h *Heap) MakeIterator() ([]types.RID, error) {
	var rids []types.RID
	pid := h.firstPageID
	for pid != page.InvalidID {
		g, err := h.bp.FetchPageRead(pid)
		if err != nil {
			return nil, err
		}
		data := g.Page().Data()
		n := numSlots(data)
		for s := uint16(0); s < n; s++ {
			rids = append(rids, types.RID{PageID: int32(pid), Slot: uint32(s)})
		}
		next := nextPageID(data)
		g.Drop()
		pid = next
	}
	return rids, nil
}

// Schema returns the heap's tuple schema.
func (h *Heap) Schema() *types.Schema { return h.schema }
