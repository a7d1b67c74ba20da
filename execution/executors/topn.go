package executors

import (
	"container/heap"

	"coredb/execution/plan"
	"coredb/types"
)

// topNHeap is a max-heap (by the final ascending order) of at most N
// tuples: Less is inverted so heap.Pop always removes the current
// worst (largest) element, the Go container/heap analogue of the
// original's std::priority_queue with a custom comparator. No
// third-party priority-queue library appears anywhere in this corpus,
// so this one component falls back to the standard library — see
// DESIGN.md.
type topNHeap struct {
	tuples   []types.Tuple
	orderBys []plan.OrderBy
	schema   *types.Schema
}

func lessAscending(a, b types.Tuple, orderBys []plan.OrderBy, schema *types.Schema) bool {
	for _, ob := range orderBys {
		va := ob.Expr.Evaluate(a, schema)
		vb := ob.Expr.Evaluate(b, schema)
		if va.LessThan(vb) {
			return ob.Type != plan.Desc
		}
		if vb.LessThan(va) {
			return ob.Type == plan.Desc
		}
	}
	return false
}

func (h *topNHeap) Len() int { return len(h.tuples) }
func (h *topNHeap) Less(i, j int) bool {
	return lessAscending(h.tuples[j], h.tuples[i], h.orderBys, h.schema)
}
func (h *topNHeap) Swap(i, j int) { h.tuples[i], h.tuples[j] = h.tuples[j], h.tuples[i] }
func (h *topNHeap) Push(x any)    { h.tuples = append(h.tuples, x.(types.Tuple)) }
func (h *topNHeap) Pop() any {
	n := len(h.tuples)
	v := h.tuples[n-1]
	h.tuples = h.tuples[:n-1]
	return v
}

// TopN drains its child into a bounded max-heap of size N during Init,
// then drains the heap and emits tuples in ascending order.
//
// Grounded on original_source's src/execution/topn_executor.cpp.
type TopN struct {
	child    Executor
	orderBys []plan.OrderBy
	n        int
	schema   *types.Schema

	tuples []types.Tuple // ascending, filled by Init
	pos    int
}

func NewTopN(child Executor, orderBys []plan.OrderBy, n int, childSchema *types.Schema) *TopN {
	return &TopN{child: child, orderBys: orderBys, n: n, schema: childSchema}
}

func (t *TopN) Init() error {
	if err := t.child.Init(); err != nil {
		return err
	}
	h := &topNHeap{orderBys: t.orderBys, schema: t.schema}
	for {
		tuple, _, ok, err := t.child.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		heap.Push(h, tuple)
		if h.Len() > t.n {
			heap.Pop(h)
		}
	}
	desc := make([]types.Tuple, 0, h.Len())
	for h.Len() > 0 {
		desc = append(desc, heap.Pop(h).(types.Tuple))
	}
	t.tuples = make([]types.Tuple, len(desc))
	for i, tp := range desc {
		t.tuples[len(desc)-1-i] = tp
	}
	t.pos = 0
	return nil
}

func (t *TopN) Next() (types.Tuple, types.RID, bool, error) {
	if t.pos >= len(t.tuples) {
		return types.Tuple{}, types.RID{}, false, nil
	}
	tuple := t.tuples[t.pos]
	t.pos++
	return tuple, types.RID{}, true, nil
}

// NumInHeap reports how many tuples remain to be drained, mirroring
// the original's GetNumInHeap debug accessor.
func (t *TopN) NumInHeap() int { return len(t.tuples) - t.pos }
