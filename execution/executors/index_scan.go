package executors

import (
	"coredb/catalog"
	"coredb/container/hash"
	"coredb/execution/expression"
	"coredb/storage/tableheap"
	"coredb/types"
)

// IndexScan probes a single hash index with a constant key instead of
// walking every row, the executor the optimizer's
// SeqScan+equality->IndexScan rule targets.
type IndexScan struct {
	heap   *tableheap.Heap
	index  *catalog.IndexInfo
	key    types.Value
	filter expression.Expr

	rids []types.RID
	pos  int
}

func NewIndexScan(heap *tableheap.Heap, index *catalog.IndexInfo, key types.Value, filter expression.Expr) *IndexScan {
	return &IndexScan{heap: heap, index: index, key: key, filter: filter}
}

func (s *IndexScan) Init() error {
	k := hash.NewKeyFromValues([]types.Value{s.key})
	rids, err := s.index.Index.GetValue(k)
	if err != nil {
		s.rids = nil
	} else {
		s.rids = rids
	}
	s.pos = 0
	return nil
}

func (s *IndexScan) Next() (types.Tuple, types.RID, bool, error) {
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
