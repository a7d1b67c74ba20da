// Package triestore implements the multi-reader/single-writer façade
// over primer/trie described in spec §4.5, grounded on
// original_source's src/primer/trie_store.cpp: two disjoint critical
// sections — a short "root" section for swapping the root pointer, and
// a long "writer" section serializing writers — so readers never block
// writers and writers never block readers except for the brief root
// swap.
package triestore

import (
	"sync"

	"coredb/primer/trie"
)

// ValueGuard keeps a snapshotted trie root alive for as long as the
// guard itself is held, which is what keeps its Value() reference
// valid: Go's garbage collector cannot reclaim any node the snapshotted
// root still reaches, so a concurrent Remove/Put on the store cannot
// invalidate a guard a reader is still holding.
type ValueGuard[T any] struct {
	root  trie.Trie
	value T
}

// Value returns the guarded value.
func (g *ValueGuard[T]) Value() T { return g.value }

// Store wraps a trie.Trie with the locking discipline above.
type Store struct {
	rootMu  sync.Mutex
	writeMu sync.Mutex
	root    trie.Trie
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

func (s *Store) snapshot() trie.Trie {
	s.rootMu.Lock()
	defer s.rootMu.Unlock()
	return s.root
}

func (s *Store) publish(root trie.Trie) {
	s.rootMu.Lock()
	s.root = root
	s.rootMu.Unlock()
}

// Get snapshots the current root under the short root section, then
// looks up key outside it. On a hit, the returned guard keeps the
// snapshotted root (and therefore the value) alive indefinitely.
func Get[T any](s *Store, key string) (*ValueGuard[T], bool) {
	root := s.snapshot()
	v, ok := trie.Get[T](root, key)
	if !ok {
		return nil, false
	}
	return &ValueGuard[T]{root: root, value: v}, true
}

// Put takes the writer-exclusion lock, snapshots the root, computes the
// new trie outside any lock, then publishes it under the root lock.
func Put[T any](s *Store, key string, value T) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	root := s.snapshot()
	newRoot := trie.Put(root, key, value)
	s.publish(newRoot)
}

// Remove is Put's mirror for deletion.
func Remove(s *Store, key string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	root := s.snapshot()
	newRoot := trie.Remove(root, key)
	s.publish(newRoot)
}
