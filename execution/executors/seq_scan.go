package executors

import (
	"coredb/execution/expression"
	"coredb/storage/tableheap"
	"coredb/types"
)

// SeqScan walks a snapshot of a table heap's record identifiers,
// skipping deleted rows and rows a pushed-down filter rejects.
//
// Grounded on original_source's src/execution/seq_scan_executor.cpp.
// The RID snapshot is taken once in Init, via Heap.MakeIterator — this
// is the resolution to the spec's self-referential-update open
// question (option (a): snapshot record identifiers before mutating).
type SeqScan struct {
	heap   *tableheap.Heap
	filter expression.Expr

	rids []types.RID
	pos  int
}

func NewSeqScan(heap *tableheap.Heap, filter expression.Expr) *SeqScan {
	return &SeqScan{heap: heap, filter: filter}
}

func (s *SeqScan) Init() error {
	rids, err := s.heap.MakeIterator()
	if err != nil {
		return err
	}
	s.rids = rids
	s.pos = 0
	return nil
}

func (s *SeqScan) Next() (types.Tuple, types.RID, bool, error) {
	schema := s.heap.Schema()
	for s.pos < len(s.rids) {
		rid := s.rids[s.pos]
		s.pos++

		meta, tuple, err := s.heap.GetTuple(rid)
		if err != nil {
			return types.Tuple{}, types.RID{}, false, err
		}
		if meta.IsDeleted {
			continue
		}
		if s.filter != nil {
			v := s.filter.Evaluate(tuple, schema)
			if v.IsNull() || !v.AsBoolean() {
				continue
			}
		}
		return tuple, rid, true, nil
	}
	return types.Tuple{}, types.RID{}, false, nil
}
