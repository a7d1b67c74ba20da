// Package dberrors defines the sentinel error taxonomy shared across the
// storage and execution layers.
package dberrors

import "errors"

var (
	// ErrFull means no evictable frame was available, or a hash directory
	// is already at its configured maximum depth.
	ErrFull = errors.New("full")

	// ErrNotFound means a page identifier is absent from the buffer pool,
	// or a bucket page pointed to by a directory slot is invalid.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate means a hash index insert targeted a key already present.
	ErrDuplicate = errors.New("duplicate key")

	// ErrInvalidFrame means a frame identifier given to the replacer is
	// outside its configured capacity.
	ErrInvalidFrame = errors.New("invalid frame id")

	// ErrNonEvictable means Remove was called on a frame that is not
	// currently marked evictable.
	ErrNonEvictable = errors.New("frame is not evictable")

	// ErrIOError wraps a failure surfaced by the disk scheduler's worker.
	ErrIOError = errors.New("disk io error")

	// ErrTypeMismatch means a trie lookup found a value node whose stored
	// type does not match the requested type parameter.
	ErrTypeMismatch = errors.New("value type mismatch")
)
