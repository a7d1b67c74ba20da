// Package replacer implements the LRU-K page replacement policy of
// spec §4.2, grounded on original_source's
// src/buffer/lru_k_replacer.cpp: two logical partitions, a "history"
// list for frames with fewer than k recorded accesses (evicted from its
// tail, oldest first) and a "cache" list for frames with k or more,
// ordered by backward k-distance (evict the largest).
package replacer

import (
	"sync"

	"coredb/dberrors"
)

// FrameID identifies a buffer pool frame.
type FrameID int32

type frameState struct {
	id        FrameID
	history   []int64 // timestamps, oldest first; length <= k once promoted
	evictable bool
	inHistory bool // true while counted in the history list, false once promoted to the cache list
}

// kDistanceTimestamp returns the timestamp that determines this frame's
// rank in the cache list: its k-th most recent access.
func (f *frameState) kDistanceTimestamp() int64 {
	return f.history[0]
}

// Replacer tracks per-frame access history up to numFrames and picks
// the evictable frame with the largest backward k-distance.
type Replacer struct {
	mu sync.Mutex

	numFrames        int
	k                int
	currentTimestamp int64
	curSize          int // count of evictable frames

	frames map[FrameID]*frameState

	// historyOrder holds frame ids with < k accesses, oldest-arrival
	// first; Evict scans it from the front, so the earliest-arrived
	// evictable frame is chosen.
	historyOrder []FrameID

	// cacheOrder holds frame ids with >= k accesses, sorted ascending by
	// k-distance timestamp: front has the oldest k-th-recent timestamp,
	// i.e. the largest backward k-distance, and is the first eviction
	// candidate.
	cacheOrder []FrameID
}

// New constructs a Replacer for a buffer pool of numFrames frames,
// using k recent accesses to compute backward k-distance.
func New(numFrames, k int) *Replacer {
	return &Replacer{
		numFrames: numFrames,
		k:         k,
		frames:    make(map[FrameID]*frameState),
	}
}

func removeFrameID(s []FrameID, id FrameID) []FrameID {
	for i, v := range s {
		if v == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// RecordAccess appends the current timestamp to frame's history. An
// unknown frame is created with is_evictable = false. Fails with
// ErrInvalidFrame when frame is outside [0, numFrames).
func (r *Replacer) RecordAccess(frame FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if int(frame) < 0 || int(frame) >= r.numFrames {
		return dberrors.ErrInvalidFrame
	}

	r.currentTimestamp++
	ts := r.currentTimestamp

	f, ok := r.frames[frame]
	if !ok {
		f = &frameState{id: frame, inHistory: true}
		r.frames[frame] = f
		r.historyOrder = append(r.historyOrder, frame)
	}

	f.history = append(f.history, ts)

	if f.inHistory {
		if len(f.history) >= r.k {
			// Promote history -> cache.
			r.historyOrder = removeFrameID(r.historyOrder, frame)
			f.inHistory = false
			// Trim to exactly k entries (drop everything before the k-th
			// most recent) so kDistanceTimestamp() is always history[0].
			if len(f.history) > r.k {
				f.history = f.history[len(f.history)-r.k:]
			}
			r.cacheInsertSorted(frame)
		}
		return nil
	}

	// Already in the cache list: drop the oldest timestamp, keep k, and
	// re-sort this frame's position since its k-distance timestamp moved.
	if len(f.history) > r.k {
		f.history = f.history[len(f.history)-r.k:]
	}
	r.cacheOrder = removeFrameID(r.cacheOrder, frame)
	r.cacheInsertSorted(frame)
	return nil
}

// cacheInsertSorted inserts frame into cacheOrder keeping ascending
// order by k-distance timestamp.
func (r *Replacer) cacheInsertSorted(frame FrameID) {
	ts := r.frames[frame].kDistanceTimestamp()
	i := 0
	for ; i < len(r.cacheOrder); i++ {
		if r.frames[r.cacheOrder[i]].kDistanceTimestamp() > ts {
			break
		}
	}
	r.cacheOrder = append(r.cacheOrder, 0)
	copy(r.cacheOrder[i+1:], r.cacheOrder[i:])
	r.cacheOrder[i] = frame
}

// SetEvictable toggles frame's evictable flag, updating size only on a
// real transition. Unknown frames are ignored.
func (r *Replacer) SetEvictable(frame FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.frames[frame]
	if !ok {
		return
	}
	if f.evictable == evictable {
		return
	}
	f.evictable = evictable
	if evictable {
		r.curSize++
	} else {
		r.curSize--
	}
}

// Evict picks the evictable frame with the largest backward k-distance
// (history-list frames, which have +infinity distance, are preferred
// over any cache-list frame; ties among them broken by earliest
// access). On success it clears the chosen frame's state and decrements
// size.
func (r *Replacer) Evict() (FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// History list first: the original reverse-iterates (most recent
	// arrival first) but still wants the earliest-arrived evictable
	// frame, so scan in arrival order here.
	for _, id := range r.historyOrder {
		if r.frames[id].evictable {
			r.removeFrameLocked(id, true)
			return id, true
		}
	}
	for _, id := range r.cacheOrder {
		if r.frames[id].evictable {
			r.removeFrameLocked(id, false)
			return id, true
		}
	}
	return 0, false
}

func (r *Replacer) removeFrameLocked(id FrameID, fromHistory bool) {
	if fromHistory {
		r.historyOrder = removeFrameID(r.historyOrder, id)
	} else {
		r.cacheOrder = removeFrameID(r.cacheOrder, id)
	}
	delete(r.frames, id)
	r.curSize--
}

// Remove drops frame's state outright. Requires the frame be evictable,
// else fails with ErrNonEvictable. Removing an untracked frame is a
// no-op.
func (r *Replacer) Remove(frame FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.frames[frame]
	if !ok {
		return nil
	}
	if !f.evictable {
		return dberrors.ErrNonEvictable
	}
	r.removeFrameLocked(frame, f.inHistory)
	return nil
}

// Size returns the number of evictable frames.
func (r *Replacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.curSize
}
