package page

import (
	"encoding/binary"

	"coredb/types"
)

// bucketEntrySize is HashKeySize (16) + RID (4 + 4).
const bucketEntrySize = HashKeySize + 8

// BucketArraySize is the maximum number of entries a bucket page's fixed
// array can hold; a table's configured bucket_capacity must not exceed
// this. (Size - size/max_size header) / bucketEntrySize, floored.
const BucketArraySize = (Size - 8) / bucketEntrySize

func init() {
	if 8+BucketArraySize*bucketEntrySize > Size {
		panic("hash bucket page layout exceeds page size")
	}
}

type bucketEntry struct {
	key   HashKey
	value types.RID
}

// BucketPage is the decoded view of an extendible hash table bucket
// page.
//
// On-disk layout: size (4 bytes), max_size (4 bytes), then
// size*bucketEntrySize bytes of packed (key, rid) entries.
type BucketPage struct {
	maxSize uint32
	entries []bucketEntry
}

// Init sets the bucket's configured capacity (must be <= BucketArraySize).
func (b *BucketPage) Init(maxSize uint32) {
	b.maxSize = maxSize
	b.entries = b.entries[:0]
}

// Size returns the current number of entries.
func (b *BucketPage) Size() uint32 { return uint32(len(b.entries)) }

// MaxSize returns the configured capacity.
func (b *BucketPage) MaxSize() uint32 { return b.maxSize }

// IsFull reports whether Size == MaxSize.
func (b *BucketPage) IsFull() bool { return b.Size() >= b.maxSize }

// IsEmpty reports whether the bucket holds no entries.
func (b *BucketPage) IsEmpty() bool { return len(b.entries) == 0 }

// Lookup returns the value for key and true if present.
func (b *BucketPage) Lookup(key HashKey) (types.RID, bool) {
	for _, e := range b.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return types.RID{}, false
}

// Insert appends (key, value). Returns false if the bucket is full or
// key is already present (duplicates are rejected at this layer too,
// mirroring the original's bucket-level duplicate check).
func (b *BucketPage) Insert(key HashKey, value types.RID) bool {
	if b.IsFull() {
		return false
	}
	if _, found := b.Lookup(key); found {
		return false
	}
	b.entries = append(b.entries, bucketEntry{key: key, value: value})
	return true
}

// Remove deletes the entry for key, shifting subsequent entries left.
// Returns false if key was not present.
func (b *BucketPage) Remove(key HashKey) bool {
	for i, e := range b.entries {
		if e.key == key {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}

// KeyAt returns the key at index i.
func (b *BucketPage) KeyAt(i uint32) HashKey { return b.entries[i].key }

// ValueAt returns the value at index i.
func (b *BucketPage) ValueAt(i uint32) types.RID { return b.entries[i].value }

// Entries returns every (key, value) pair currently stored, used when
// redistributing entries during a split.
func (b *BucketPage) Entries() []struct {
	Key   HashKey
	Value types.RID
} {
	out := make([]struct {
		Key   HashKey
		Value types.RID
	}, len(b.entries))
	for i, e := range b.entries {
		out[i].Key = e.key
		out[i].Value = e.value
	}
	return out
}

// Clear empties the bucket without changing its configured capacity.
func (b *BucketPage) Clear() {
	b.entries = b.entries[:0]
}

// Encode serializes b into buf.
func (b *BucketPage) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], b.Size())
	binary.LittleEndian.PutUint32(buf[4:], b.maxSize)
	off := 8
	for _, e := range b.entries {
		copy(buf[off:], e.key[:])
		off += HashKeySize
		binary.LittleEndian.PutUint32(buf[off:], uint32(e.value.PageID))
		off += 4
		binary.LittleEndian.PutUint32(buf[off:], e.value.Slot)
		off += 4
	}
}

// Decode populates b from buf, the inverse of Encode.
func (b *BucketPage) Decode(buf []byte) {
	size := binary.LittleEndian.Uint32(buf[0:])
	b.maxSize = binary.LittleEndian.Uint32(buf[4:])
	b.entries = make([]bucketEntry, size)
	off := 8
	for i := uint32(0); i < size; i++ {
		var k HashKey
		copy(k[:], buf[off:off+HashKeySize])
		off += HashKeySize
		pid := int32(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
		slot := binary.LittleEndian.Uint32(buf[off:])
		off += 4
		b.entries[i] = bucketEntry{key: k, value: types.RID{PageID: pid, Slot: slot}}
	}
}
