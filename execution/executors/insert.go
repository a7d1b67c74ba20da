package executors

import (
	"coredb/catalog"
	"coredb/container/hash"
	"coredb/storage/tableheap"
	"coredb/types"
)

// indexKeyValues projects a tuple down to an index's key columns.
func indexKeyValues(tuple types.Tuple, keyAttrs []int) []types.Value {
	values := make([]types.Value, len(keyAttrs))
	for i, attr := range keyAttrs {
		values[i] = tuple.GetValue(attr)
	}
	return values
}

// Insert reads every tuple its child produces into a table heap and
// every secondary index over it, then produces a single result tuple
// holding the inserted row count. Idempotent: a second Next call
// returns false.
//
// Grounded on original_source's src/execution/insert_executor.cpp.
type Insert struct {
	child     Executor
	heap      *tableheap.Heap
	indexes   []*catalog.IndexInfo
	resultOut bool
}

func NewInsert(child Executor, heap *tableheap.Heap, indexes []*catalog.IndexInfo) *Insert {
	return &Insert{child: child, heap: heap, indexes: indexes}
}

func (in *Insert) Init() error {
	in.resultOut = false
	return in.child.Init()
}

func (in *Insert) Next() (types.Tuple, types.RID, bool, error) {
	if in.resultOut {
		return types.Tuple{}, types.RID{}, false, nil
	}

	var count int64
	for {
		tuple, _, ok, err := in.child.Next()
		if err != nil {
			return types.Tuple{}, types.RID{}, false, err
		}
		if !ok {
			break
		}
		rid, err := in.heap.InsertTuple(types.TupleMeta{}, tuple)
		if err != nil {
			return types.Tuple{}, types.RID{}, false, err
		}
		for _, idx := range in.indexes {
			key := hash.NewKeyFromValues(indexKeyValues(tuple, idx.KeyAttrs))
			if _, err := idx.Index.Insert(key, rid); err != nil {
				return types.Tuple{}, types.RID{}, false, err
			}
		}
		count++
	}

	in.resultOut = true
	return types.NewTuple(types.NewInteger(count)), types.RID{}, true, nil
}
