package executors

import (
	"coredb/catalog"
	"coredb/container/hash"
	"coredb/storage/tableheap"
	"coredb/types"
)

// Delete marks every tuple its child produces deleted via a tuple-meta
// update and removes the corresponding entries from every secondary
// index, then produces a single result tuple holding the deleted row
// count.
//
// Grounded on original_source's src/execution/delete_executor.cpp.
type Delete struct {
	child     Executor
	heap      *tableheap.Heap
	indexes   []*catalog.IndexInfo
	resultOut bool
}

func NewDelete(child Executor, heap *tableheap.Heap, indexes []*catalog.IndexInfo) *Delete {
	return &Delete{child: child, heap: heap, indexes: indexes}
}

func (d *Delete) Init() error {
	d.resultOut = false
	return d.child.Init()
}

func (d *Delete) Next() (types.Tuple, types.RID, bool, error) {
	if d.resultOut {
		return types.Tuple{}, types.RID{}, false, nil
	}

	var count int64
	for {
		tuple, rid, ok, err := d.child.Next()
		if err != nil {
			return types.Tuple{}, types.RID{}, false, err
		}
		if !ok {
			break
		}
		if err := d.heap.UpdateTupleMeta(types.TupleMeta{IsDeleted: true}, rid); err != nil {
			return types.Tuple{}, types.RID{}, false, err
		}
		for _, idx := range d.indexes {
			key := hash.NewKeyFromValues(indexKeyValues(tuple, idx.KeyAttrs))
			if _, err := idx.Index.Remove(key); err != nil {
				return types.Tuple{}, types.RID{}, false, err
			}
		}
		count++
	}

	d.resultOut = true
	return types.NewTuple(types.NewInteger(count)), types.RID{}, true, nil
}
