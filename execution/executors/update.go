package executors

import (
	"coredb/catalog"
	"coredb/container/hash"
	"coredb/execution/expression"
	"coredb/storage/tableheap"
	"coredb/types"
)

// Update is semantically "delete then insert": marks each child
// tuple's original row deleted, evaluates TargetExprs against it to
// build the replacement row, inserts that row under a fresh record id,
// and rewrites every index entry (delete the old key, insert the new
// one). Produces a single result tuple holding the updated row count.
//
// Grounded on original_source's src/execution/update_executor.cpp. The
// child is SeqScan, whose RID snapshot (taken before any mutation)
// is this package's resolution to the self-referential-update open
// question.
type Update struct {
	child       Executor
	heap        *tableheap.Heap
	indexes     []*catalog.IndexInfo
	targetExprs []expression.Expr
	schema      *types.Schema
	resultOut   bool
}

func NewUpdate(child Executor, heap *tableheap.Heap, indexes []*catalog.IndexInfo, targetExprs []expression.Expr) *Update {
	return &Update{child: child, heap: heap, indexes: indexes, targetExprs: targetExprs, schema: heap.Schema()}
}

func (u *Update) Init() error {
	u.resultOut = false
	return u.child.Init()
}

func (u *Update) Next() (types.Tuple, types.RID, bool, error) {
	if u.resultOut {
		return types.Tuple{}, types.RID{}, false, nil
	}

	var count int64
	for {
		oldTuple, oldRID, ok, err := u.child.Next()
		if err != nil {
			return types.Tuple{}, types.RID{}, false, err
		}
		if !ok {
			break
		}

		newValues := make([]types.Value, len(u.targetExprs))
		for i, expr := range u.targetExprs {
			newValues[i] = expr.Evaluate(oldTuple, u.schema)
		}
		newTuple := types.NewTuple(newValues...)

		if err := u.heap.UpdateTupleMeta(types.TupleMeta{IsDeleted: true}, oldRID); err != nil {
			return types.Tuple{}, types.RID{}, false, err
		}
		newRID, err := u.heap.InsertTuple(types.TupleMeta{}, newTuple)
		if err != nil {
			return types.Tuple{}, types.RID{}, false, err
		}

		for _, idx := range u.indexes {
			oldKey := hash.NewKeyFromValues(indexKeyValues(oldTuple, idx.KeyAttrs))
			if _, err := idx.Index.Remove(oldKey); err != nil {
				return types.Tuple{}, types.RID{}, false, err
			}
			newKey := hash.NewKeyFromValues(indexKeyValues(newTuple, idx.KeyAttrs))
			if _, err := idx.Index.Insert(newKey, newRID); err != nil {
				return types.Tuple{}, types.RID{}, false, err
			}
		}
		count++
	}

	u.resultOut = true
	return types.NewTuple(types.NewInteger(count)), types.RID{}, true, nil
}
