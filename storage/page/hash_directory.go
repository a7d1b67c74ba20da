package page

import "encoding/binary"

// DirectoryMaxDepth mirrors BusTub's HTABLE_DIRECTORY_MAX_DEPTH: the
// fixed array capacity backing local_depths/bucket_page_ids. A table's
// configured max_depth_d may be smaller; only the low 2^max_depth_d
// slots are ever addressed.
const DirectoryMaxDepth = 9

// DirectoryArraySize is 2^DirectoryMaxDepth.
const DirectoryArraySize = 1 << DirectoryMaxDepth

const directoryPageEncodedSize = 4 + 4 + DirectoryArraySize + DirectoryArraySize*4

func init() {
	if directoryPageEncodedSize > Size {
		panic("hash directory page layout exceeds page size")
	}
}

// DirectoryPage is the decoded view of an extendible hash table
// directory page.
//
// On-disk layout: global_depth (4 bytes), max_depth (4 bytes),
// local_depths[DirectoryArraySize] (1 byte each),
// bucket_page_ids[DirectoryArraySize] (4 bytes each).
type DirectoryPage struct {
	GlobalDepth   uint32
	MaxDepth      uint32
	LocalDepths   [DirectoryArraySize]uint8
	BucketPageIDs [DirectoryArraySize]ID
}

// Init zeroes local depths and fills bucket pointers with InvalidID.
func (d *DirectoryPage) Init(maxDepth uint32) {
	d.GlobalDepth = 0
	d.MaxDepth = maxDepth
	for i := range d.LocalDepths {
		d.LocalDepths[i] = 0
	}
	for i := range d.BucketPageIDs {
		d.BucketPageIDs[i] = InvalidID
	}
}

// Size returns 2^GlobalDepth, the number of directory slots in use.
func (d *DirectoryPage) Size() uint32 {
	return 1 << d.GlobalDepth
}

// globalDepthMask returns the low GlobalDepth bits set.
func (d *DirectoryPage) globalDepthMask() uint32 {
	if d.GlobalDepth == 0 {
		return 0
	}
	return (1 << d.GlobalDepth) - 1
}

// HashToBucketIndex returns the directory slot a hash maps to: the low
// GlobalDepth bits of hash.
func (d *DirectoryPage) HashToBucketIndex(hash uint32) uint32 {
	return hash & d.globalDepthMask()
}

// GetBucketPageID returns the bucket page id at a directory slot.
func (d *DirectoryPage) GetBucketPageID(idx uint32) ID {
	return d.BucketPageIDs[idx]
}

// SetBucketPageID installs a bucket page id at a directory slot.
func (d *DirectoryPage) SetBucketPageID(idx uint32, id ID) {
	d.BucketPageIDs[idx] = id
}

// GetLocalDepth returns the local depth of the bucket at a directory slot.
func (d *DirectoryPage) GetLocalDepth(idx uint32) uint32 {
	return uint32(d.LocalDepths[idx])
}

// SetLocalDepth sets the local depth of the bucket at a directory slot.
func (d *DirectoryPage) SetLocalDepth(idx uint32, depth uint32) {
	d.LocalDepths[idx] = uint8(depth)
}

// IncrLocalDepth increments a slot's local depth, clamped at GlobalDepth.
func (d *DirectoryPage) IncrLocalDepth(idx uint32) {
	if uint32(d.LocalDepths[idx]) < d.GlobalDepth {
		d.LocalDepths[idx]++
	}
}

// DecrLocalDepth decrements a slot's local depth, clamped at 0.
func (d *DirectoryPage) DecrLocalDepth(idx uint32) {
	if d.LocalDepths[idx] > 0 {
		d.LocalDepths[idx]--
	}
}

// GetSplitImageIndex returns the slot that will share this bucket's
// local-depth group once the bucket splits: bucket_idx XOR 2^(global_depth-1).
// XOR, not +, keeps the result within [0, Size()) regardless of which
// half of a just-doubled directory bucket_idx happens to land in.
func (d *DirectoryPage) GetSplitImageIndex(bucketIdx uint32) uint32 {
	return bucketIdx ^ (1 << (d.GlobalDepth - 1))
}

// GetLocalDepthMask returns 1 << (local_depth[bucket_idx] - 1), the bit
// that distinguishes a bucket from its merge image. Callers must not
// call this when the bucket's local depth is 0.
func (d *DirectoryPage) GetLocalDepthMask(bucketIdx uint32) uint32 {
	ld := d.GetLocalDepth(bucketIdx)
	return 1 << (ld - 1)
}

// UpdateAfterSplit repoints every directory slot that currently shares
// oldID at newLocalDepth: slots whose bit (newLocalDepth-1) is set move
// to newID, the rest stay on oldID, and every matching slot's local
// depth is stamped to newLocalDepth. A bucket whose local depth is below
// global depth is shared by more than one slot pair, so a split must
// walk the whole active range rather than touch a single computed index.
func (d *DirectoryPage) UpdateAfterSplit(oldID, newID ID, newLocalDepth uint32) {
	bit := uint32(1) << (newLocalDepth - 1)
	size := d.Size()
	for i := uint32(0); i < size; i++ {
		if d.BucketPageIDs[i] != oldID {
			continue
		}
		if i&bit != 0 {
			d.BucketPageIDs[i] = newID
		}
		d.LocalDepths[i] = uint8(newLocalDepth)
	}
}

// UpdateAfterMerge repoints every directory slot pointing at either
// bucketID or imageID to survivorID and stamps newLocalDepth, mirroring
// UpdateAfterSplit for the delete path: a merge below global depth joins
// groups spanning more than two slots, so every member of both groups
// needs updating, not just one representative pair.
func (d *DirectoryPage) UpdateAfterMerge(bucketID, imageID, survivorID ID, newLocalDepth uint32) {
	size := d.Size()
	for i := uint32(0); i < size; i++ {
		if d.BucketPageIDs[i] != bucketID && d.BucketPageIDs[i] != imageID {
			continue
		}
		d.BucketPageIDs[i] = survivorID
		d.LocalDepths[i] = uint8(newLocalDepth)
	}
}

// IncrGlobalDepth doubles the directory: slot i's bucket pointer and
// local depth are copied into slot i + 2^(old global depth), then
// GlobalDepth is incremented. No-op if already at MaxDepth.
func (d *DirectoryPage) IncrGlobalDepth() {
	if d.GlobalDepth >= d.MaxDepth {
		return
	}
	h := uint32(1) << d.GlobalDepth
	for i := uint32(0); i < h; i++ {
		d.BucketPageIDs[i+h] = d.BucketPageIDs[i]
		d.LocalDepths[i+h] = d.LocalDepths[i]
	}
	d.GlobalDepth++
}

// DecrGlobalDepth halves the directory. No-op if already at 0.
func (d *DirectoryPage) DecrGlobalDepth() {
	if d.GlobalDepth == 0 {
		return
	}
	d.GlobalDepth--
}

// CanShrink reports whether no active bucket's local depth equals the
// current global depth, i.e. the directory may be halved.
func (d *DirectoryPage) CanShrink() bool {
	if d.GlobalDepth == 0 {
		return false
	}
	size := d.Size()
	for i := uint32(0); i < size; i++ {
		if uint32(d.LocalDepths[i]) == d.GlobalDepth {
			return false
		}
	}
	return true
}

// Encode serializes d into buf.
func (d *DirectoryPage) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], d.GlobalDepth)
	binary.LittleEndian.PutUint32(buf[4:], d.MaxDepth)
	off := 8
	for i := range d.LocalDepths {
		buf[off+i] = d.LocalDepths[i]
	}
	off += DirectoryArraySize
	for i, id := range d.BucketPageIDs {
		binary.LittleEndian.PutUint32(buf[off+i*4:], uint32(id))
	}
}

// Decode populates d from buf, the inverse of Encode.
func (d *DirectoryPage) Decode(buf []byte) {
	d.GlobalDepth = binary.LittleEndian.Uint32(buf[0:])
	d.MaxDepth = binary.LittleEndian.Uint32(buf[4:])
	off := 8
	for i := range d.LocalDepths {
		d.LocalDepths[i] = buf[off+i]
	}
	off += DirectoryArraySize
	for i := range d.BucketPageIDs {
		d.BucketPageIDs[i] = ID(binary.LittleEndian.Uint32(buf[off+i*4:]))
	}
}
