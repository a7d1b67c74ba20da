package executors

import (
	"path/filepath"
	"testing"

	"coredb/catalog"
	"coredb/config"
	"coredb/container/hash"
	"coredb/execution/expression"
	"coredb/execution/plan"
	"coredb/storage/buffer/bufferpool"
	"coredb/storage/disk/diskmanager"
	"coredb/storage/disk/scheduler"
	"coredb/storage/tableheap"
	"coredb/types"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	dm, err := diskmanager.Open(filepath.Join(dir, "exec.db"))
	if err != nil {
		t.Fatalf("diskmanager.Open: %v", err)
	}
	t.Cleanup(func() { dm.Close() })

	cfg := config.Default()
	sched := scheduler.New(dm, cfg.SchedulerQueueCapacity, nil)
	t.Cleanup(sched.Shutdown)

	bp := bufferpool.New(cfg.BufferPoolSize, cfg.ReplacerK, dm, sched, nil)

	cat, err := catalog.New(bp)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

func peopleSchema() *types.Schema {
	return types.NewSchema(
		types.Column{Name: "id", Type: types.Integer},
		types.Column{Name: "name", Type: types.Varchar},
	)
}

// seedPeople creates a "people" table, an index over its id column, and
// inserts rows directly via the heap (bypassing the Insert executor) so
// executor tests that aren't themselves testing Insert start from known
// state.
func seedPeople(t *testing.T, cat *catalog.Catalog, rows [][2]any) (*tableheap.Heap, *catalog.IndexInfo) {
	t.Helper()
	ti, err := cat.CreateTable("people", peopleSchema())
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	idx, err := hash.New(cat.Pool(), config.Default())
	if err != nil {
		t.Fatalf("hash.New: %v", err)
	}
	ii, err := cat.CreateIndex("idx_people_id", "people", []int{0}, idx)
	if err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	for _, row := range rows {
		tuple := types.NewTuple(types.NewInteger(int64(row[0].(int))), types.NewVarchar(row[1].(string)))
		rid, err := ti.Heap.InsertTuple(types.TupleMeta{}, tuple)
		if err != nil {
			t.Fatalf("InsertTuple: %v", err)
		}
		key := hash.NewKeyFromValues(indexKeyValues(tuple, ii.KeyAttrs))
		if _, err := ii.Index.Insert(key, rid); err != nil {
			t.Fatalf("index Insert: %v", err)
		}
	}
	return ti.Heap, ii
}

func drain(t *testing.T, ex Executor) []types.Tuple {
	t.Helper()
	if err := ex.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	var out []types.Tuple
	for {
		tuple, _, ok, err := ex.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			return out
		}
		out = append(out, tuple)
	}
}

func idColumn() expression.Expr { return expression.NewColumnValue(0, 0, types.Integer) }

func TestSeqScanReturnsAllLiveRows(t *testing.T) {
	cat := newTestCatalog(t)
	heap, _ := seedPeople(t, cat, [][2]any{{1, "a"}, {2, "b"}, {3, "c"}})

	out := drain(t, NewSeqScan(heap, nil))
	if len(out) != 3 {
		t.Fatalf("got %d rows, want 3", len(out))
	}
}

func TestSeqScanAppliesFilter(t *testing.T) {
	cat := newTestCatalog(t)
	heap, _ := seedPeople(t, cat, [][2]any{{1, "a"}, {2, "b"}, {3, "c"}})

	filter := expression.NewComparison(expression.Gt, idColumn(), expression.NewConstant(types.NewInteger(1)))
	out := drain(t, NewSeqScan(heap, filter))
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	for _, tp := range out {
		if tp.GetValue(0).AsInteger() <= 1 {
			t.Fatalf("filter did not exclude id<=1: %v", tp)
		}
	}
}

func TestSeqScanSkipsDeletedRows(t *testing.T) {
	cat := newTestCatalog(t)
	heap, _ := seedPeople(t, cat, [][2]any{{1, "a"}, {2, "b"}})

	rids, err := heap.MakeIterator()
	if err != nil {
		t.Fatalf("MakeIterator: %v", err)
	}
	if err := heap.UpdateTupleMeta(types.TupleMeta{IsDeleted: true}, rids[0]); err != nil {
		t.Fatalf("UpdateTupleMeta: %v", err)
	}

	out := drain(t, NewSeqScan(heap, nil))
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1 (one deleted)", len(out))
	}
}

func TestInsertExecutorWritesHeapAndIndex(t *testing.T) {
	cat := newTestCatalog(t)
	ti, err := cat.CreateTable("people", peopleSchema())
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	idx, err := hash.New(cat.Pool(), config.Default())
	if err != nil {
		t.Fatalf("hash.New: %v", err)
	}
	ii, err := cat.CreateIndex("idx_people_id", "people", []int{0}, idx)
	if err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}

	source := &literalSource{rows: []types.Tuple{
		types.NewTuple(types.NewInteger(1), types.NewVarchar("a")),
		types.NewTuple(types.NewInteger(2), types.NewVarchar("b")),
	}}
	ins := NewInsert(source, ti.Heap, []*catalog.IndexInfo{ii})

	out := drain(t, ins)
	if len(out) != 1 || out[0].GetValue(0).AsInteger() != 2 {
		t.Fatalf("Insert result = %v, want a single row with count 2", out)
	}

	scanned := drain(t, NewSeqScan(ti.Heap, nil))
	if len(scanned) != 2 {
		t.Fatalf("heap has %d rows after insert, want 2", len(scanned))
	}

	key := hash.NewKeyFromValues([]types.Value{types.NewInteger(1)})
	if _, err := ii.Index.GetValue(key); err != nil {
		t.Fatalf("index lookup after insert: %v", err)
	}
}

func TestInsertExecutorIsIdempotent(t *testing.T) {
	cat := newTestCatalog(t)
	ti, _ := cat.CreateTable("people", peopleSchema())
	source := &literalSource{rows: []types.Tuple{types.NewTuple(types.NewInteger(1), types.NewVarchar("a"))}}
	ins := NewInsert(source, ti.Heap, nil)

	if err := ins.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	_, _, ok, err := ins.Next()
	if err != nil || !ok {
		t.Fatalf("first Next() = %v, %v", ok, err)
	}
	_, _, ok, err = ins.Next()
	if err != nil || ok {
		t.Fatalf("second Next() should report end-of-stream, got ok=%v err=%v", ok, err)
	}
}

func TestDeleteExecutorMarksRowsDeletedAndRemovesIndexEntries(t *testing.T) {
	cat := newTestCatalog(t)
	heap, idx := seedPeople(t, cat, [][2]any{{1, "a"}, {2, "b"}})

	filter := expression.NewComparison(expression.Eq, idColumn(), expression.NewConstant(types.NewInteger(1)))
	scan := NewSeqScan(heap, filter)
	del := NewDelete(scan, heap, []*catalog.IndexInfo{idx})

	out := drain(t, del)
	if len(out) != 1 || out[0].GetValue(0).AsInteger() != 1 {
		t.Fatalf("Delete result = %v, want a single row with count 1", out)
	}

	remaining := drain(t, NewSeqScan(heap, nil))
	if len(remaining) != 1 {
		t.Fatalf("heap has %d live rows after delete, want 1", len(remaining))
	}

	key := hash.NewKeyFromValues([]types.Value{types.NewInteger(1)})
	if _, err := idx.Index.GetValue(key); err == nil {
		t.Fatalf("deleted row's index entry should be gone")
	}
}

func TestUpdateExecutorReplacesRowAndIndexEntries(t *testing.T) {
	cat := newTestCatalog(t)
	heap, idx := seedPeople(t, cat, [][2]any{{1, "a"}})

	scan := NewSeqScan(heap, nil)
	targets := []expression.Expr{
		expression.NewArithmetic(expression.Add, idColumn(), expression.NewConstant(types.NewInteger(100))),
		expression.NewColumnValue(0, 1, types.Varchar),
	}
	upd := NewUpdate(scan, heap, []*catalog.IndexInfo{idx}, targets)

	out := drain(t, upd)
	if len(out) != 1 || out[0].GetValue(0).AsInteger() != 1 {
		t.Fatalf("Update result = %v, want a single row with count 1", out)
	}

	remaining := drain(t, NewSeqScan(heap, nil))
	if len(remaining) != 1 || remaining[0].GetValue(0).AsInteger() != 101 {
		t.Fatalf("remaining rows = %v, want a single row with id=101", remaining)
	}

	oldKey := hash.NewKeyFromValues([]types.Value{types.NewInteger(1)})
	if _, err := idx.Index.GetValue(oldKey); err == nil {
		t.Fatalf("old index entry should be gone after update")
	}
	newKey := hash.NewKeyFromValues([]types.Value{types.NewInteger(101)})
	if _, err := idx.Index.GetValue(newKey); err != nil {
		t.Fatalf("new index entry missing after update: %v", err)
	}
}

func TestProjectionEvaluatesExprsPerRow(t *testing.T) {
	cat := newTestCatalog(t)
	heap, _ := seedPeople(t, cat, [][2]any{{1, "a"}, {2, "b"}})

	proj := NewProjection(NewSeqScan(heap, nil), []expression.Expr{idColumn()}, peopleSchema())
	out := drain(t, proj)
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	for _, tp := range out {
		if tp.Len() != 1 {
			t.Fatalf("projected row has %d columns, want 1: %v", tp.Len(), tp)
		}
	}
}

func TestIndexScanFindsMatchingRow(t *testing.T) {
	cat := newTestCatalog(t)
	heap, idx := seedPeople(t, cat, [][2]any{{1, "a"}, {2, "b"}, {3, "c"}})

	scan := NewIndexScan(heap, idx, types.NewInteger(2), nil)
	out := drain(t, scan)
	if len(out) != 1 || out[0].GetValue(1).AsVarchar() != "b" {
		t.Fatalf("IndexScan result = %v, want the row with id=2", out)
	}
}

func TestIndexScanMissReturnsNoRows(t *testing.T) {
	cat := newTestCatalog(t)
	heap, idx := seedPeople(t, cat, [][2]any{{1, "a"}})

	scan := NewIndexScan(heap, idx, types.NewInteger(999), nil)
	out := drain(t, scan)
	if len(out) != 0 {
		t.Fatalf("got %d rows for a missing key, want 0", len(out))
	}
}

func TestTopNOrdersAndBounds(t *testing.T) {
	cat := newTestCatalog(t)
	heap, _ := seedPeople(t, cat, [][2]any{{3, "c"}, {1, "a"}, {4, "d"}, {2, "b"}})

	orderBys := []plan.OrderBy{{Type: plan.Desc, Expr: idColumn()}}
	top := NewTopN(NewSeqScan(heap, nil), orderBys, 2, peopleSchema())
	out := drain(t, top)

	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	if out[0].GetValue(0).AsInteger() != 4 || out[1].GetValue(0).AsInteger() != 3 {
		t.Fatalf("TopN order wrong: got ids %d, %d, want 4, 3", out[0].GetValue(0).AsInteger(), out[1].GetValue(0).AsInteger())
	}
}

func TestAggregationCountStarGroupsByColumn(t *testing.T) {
	cat := newTestCatalog(t)
	heap, _ := seedPeople(t, cat, [][2]any{{1, "a"}, {1, "a"}, {2, "b"}})

	groupBys := []expression.Expr{idColumn()}
	aggs := []expression.Expr{expression.NewConstant(types.NewInteger(0))}
	aggTypes := []plan.AggregateType{plan.CountStar}
	agg := NewAggregation(NewSeqScan(heap, nil), groupBys, aggs, aggTypes, peopleSchema())

	out := drain(t, agg)
	if len(out) != 2 {
		t.Fatalf("got %d groups, want 2", len(out))
	}
	counts := map[int64]int64{}
	for _, tp := range out {
		counts[tp.GetValue(0).AsInteger()] = tp.GetValue(1).AsInteger()
	}
	if counts[1] != 2 || counts[2] != 1 {
		t.Fatalf("group counts = %v, want {1:2, 2:1}", counts)
	}
}

func TestAggregationEmptyInputWithNoGroupBysEmitsOneRow(t *testing.T) {
	cat := newTestCatalog(t)
	ti, err := cat.CreateTable("empty", peopleSchema())
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	aggs := []expression.Expr{expression.NewConstant(types.NewInteger(0))}
	aggTypes := []plan.AggregateType{plan.CountStar}
	agg := NewAggregation(NewSeqScan(ti.Heap, nil), nil, aggs, aggTypes, peopleSchema())

	out := drain(t, agg)
	if len(out) != 1 {
		t.Fatalf("got %d rows for empty input with no GROUP BY, want exactly 1", len(out))
	}
	if out[0].GetValue(0).AsInteger() != 0 {
		t.Fatalf("COUNT(*) over empty input = %d, want 0", out[0].GetValue(0).AsInteger())
	}
}

func TestAggregationEmptyInputWithGroupBysEmitsNoRows(t *testing.T) {
	cat := newTestCatalog(t)
	ti, err := cat.CreateTable("empty", peopleSchema())
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	groupBys := []expression.Expr{idColumn()}
	aggs := []expression.Expr{expression.NewConstant(types.NewInteger(0))}
	aggTypes := []plan.AggregateType{plan.CountStar}
	agg := NewAggregation(NewSeqScan(ti.Heap, nil), groupBys, aggs, aggTypes, peopleSchema())

	out := drain(t, agg)
	if len(out) != 0 {
		t.Fatalf("got %d rows for empty input with GROUP BY, want 0", len(out))
	}
}

// literalSource is a minimal Executor yielding a fixed row set, standing
// in for whatever plan subtree actually feeds Insert in a real query.
type literalSource struct {
	rows []types.Tuple
	pos  int
}

func (l *literalSource) Init() error { l.pos = 0; return nil }
func (l *literalSource) Next() (types.Tuple, types.RID, bool, error) {
	if l.pos >= len(l.rows) {
		return types.Tuple{}, types.RID{}, false, nil
	}
	tp := l.rows[l.pos]
	l.pos++
	return tp, types.RID{}, true, nil
}
