// Package config centralizes the tunables the teacher repo hardcoded as
// package-level constants (types.PageSize, HeapPageHeaderSize, ...).
// Here they are constructor arguments with sensible defaults, since a
// buffer pool size or an LRU-K "k" is a deployment choice, not a fact
// about the page format.
package config

// Config bundles every tunable the storage and index layers need at
// construction time.
type Config struct {
	// BufferPoolSize is the number of frames the buffer pool manages.
	BufferPoolSize int

	// ReplacerK is the "k" in LRU-K: the number of recent accesses
	// tracked per frame before it graduates from the history list to
	// the cache list.
	ReplacerK int

	// SchedulerQueueCapacity bounds the disk scheduler's request queue.
	SchedulerQueueCapacity int

	// HashBucketCapacity is the maximum number of entries a hash index
	// bucket page holds before it must split.
	HashBucketCapacity uint32

	// HashHeaderMaxDepth is max_depth_h: log2 of the header page's
	// directory-pointer array size.
	HashHeaderMaxDepth uint32

	// HashDirectoryMaxDepth is max_depth_d: the directory's maximum
	// global depth, i.e. the point at which Insert returns ErrFull
	// instead of doubling further.
	HashDirectoryMaxDepth uint32
}

// Default returns the configuration used by cmd/ tools and by tests that
// don't care about exercising boundary conditions.
func Default() Config {
	return Config{
		BufferPoolSize:         64,
		ReplacerK:              2,
		SchedulerQueueCapacity: 256,
		HashBucketCapacity:     128,
		HashHeaderMaxDepth:     9,
		HashDirectoryMaxDepth:  9,
	}
}
