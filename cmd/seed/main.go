// Seed program: wires a disk manager, buffer pool and catalog together,
// creates three tables (two of them with a hash index), and runs inserts
// and scans through the Volcano executors. Not a SQL front end — the
// parser/binder stay out of scope.
//
// Run: go run ./cmd/seed
// Then inspect: databases/demp.db (the single backing page file).
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"coredb/catalog"
	"coredb/config"
	"coredb/container/hash"
	"coredb/execution/executors"
	"coredb/storage/buffer/bufferpool"
	"coredb/storage/disk/diskmanager"
	"coredb/storage/disk/scheduler"
	"coredb/types"
)

const baseDir = "databases"

// rowsSource is a fixed in-memory Executor, standing in for whatever
// upstream plan subtree would feed a real Insert (a VALUES list, in SQL
// terms).
type rowsSource struct {
	rows []types.Tuple
	pos  int
}

func (r *rowsSource) Init() error { r.pos = 0; return nil }

func (r *rowsSource) Next() (types.Tuple, types.RID, bool, error) {
	if r.pos >= len(r.rows) {
		return types.Tuple{}, types.RID{}, false, nil
	}
	t := r.rows[r.pos]
	r.pos++
	return t, types.RID{}, true, nil
}

func mustCreateTable(cat *catalog.Catalog, name string, schema *types.Schema) *catalog.TableInfo {
	ti, err := cat.CreateTable(name, schema)
	if err != nil {
		log.Fatalf("create table %s: %v", name, err)
	}
	return ti
}

func mustCreateIndex(cat *catalog.Catalog, name, table string, keyAttrs []int, cfg config.Config) *catalog.IndexInfo {
	idx, err := hash.New(cat.Pool(), cfg)
	if err != nil {
		log.Fatalf("hash.New for %s: %v", name, err)
	}
	ii, err := cat.CreateIndex(name, table, keyAttrs, idx)
	if err != nil {
		log.Fatalf("create index %s: %v", name, err)
	}
	return ii
}

func insertRows(ti *catalog.TableInfo, indexes []*catalog.IndexInfo, rows ...types.Tuple) int64 {
	ins := executors.NewInsert(&rowsSource{rows: rows}, ti.Heap, indexes)
	if err := ins.Init(); err != nil {
		log.Fatalf("insert init: %v", err)
	}
	result, _, ok, err := ins.Next()
	if err != nil {
		log.Fatalf("insert: %v", err)
	}
	if !ok {
		log.Fatalf("insert produced no result row")
	}
	return result.GetValue(0).AsInteger()
}

func dumpTable(name string, ti *catalog.TableInfo) {
	fmt.Printf("\n--- %s ---\n", name)
	scan := executors.NewSeqScan(ti.Heap, nil)
	if err := scan.Init(); err != nil {
		log.Fatalf("scan init: %v", err)
	}
	for {
		tuple, _, ok, err := scan.Next()
		if err != nil {
			log.Fatalf("scan: %v", err)
		}
		if !ok {
			break
		}
		row := make([]types.Value, tuple.Len())
		for i := range row {
			row[i] = tuple.GetValue(i)
		}
		fmt.Println(row)
	}
}

func main() {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	dbPath := filepath.Join(baseDir, "demp.db")
	dm, err := diskmanager.Open(dbPath)
	if err != nil {
		log.Fatalf("open disk manager: %v", err)
	}
	defer dm.Close()

	cfg := config.Default()
	sched := scheduler.New(dm, cfg.SchedulerQueueCapacity, nil)
	defer sched.Shutdown()

	bp := bufferpool.New(cfg.BufferPoolSize, cfg.ReplacerK, dm, sched, nil)

	cat, err := catalog.New(bp)
	if err != nil {
		log.Fatalf("catalog.New: %v", err)
	}

	fmt.Println("Creating tables students, courses, grades...")

	students := mustCreateTable(cat, "students", types.NewSchema(
		types.Column{Name: "id", Type: types.Varchar},
		types.Column{Name: "name", Type: types.Varchar},
		types.Column{Name: "age", Type: types.Integer},
	))
	studentsIdx := []*catalog.IndexInfo{mustCreateIndex(cat, "idx_students_id", "students", []int{0}, cfg)}
	insertRows(students, studentsIdx,
		types.NewTuple(types.NewVarchar("S001"), types.NewVarchar("Alice"), types.NewInteger(20)),
		types.NewTuple(types.NewVarchar("S002"), types.NewVarchar("Bob"), types.NewInteger(21)),
		types.NewTuple(types.NewVarchar("S003"), types.NewVarchar("Carol"), types.NewInteger(19)),
	)

	courses := mustCreateTable(cat, "courses", types.NewSchema(
		types.Column{Name: "code", Type: types.Varchar},
		types.Column{Name: "title", Type: types.Varchar},
	))
	insertRows(courses, nil,
		types.NewTuple(types.NewVarchar("CS101"), types.NewVarchar("Intro to CS")),
		types.NewTuple(types.NewVarchar("CS102"), types.NewVarchar("Data Structures")),
	)

	grades := mustCreateTable(cat, "grades", types.NewSchema(
		types.Column{Name: "id", Type: types.Integer},
		types.Column{Name: "course_code", Type: types.Varchar},
		types.Column{Name: "grade", Type: types.Varchar},
	))
	gradesIdx := []*catalog.IndexInfo{mustCreateIndex(cat, "idx_grades_id", "grades", []int{0}, cfg)}
	insertRows(grades, gradesIdx,
		types.NewTuple(types.NewInteger(1), types.NewVarchar("CS101"), types.NewVarchar("A")),
		types.NewTuple(types.NewInteger(2), types.NewVarchar("CS102"), types.NewVarchar("B")),
		types.NewTuple(types.NewInteger(3), types.NewVarchar("CS101"), types.NewVarchar("A")),
	)

	dumpTable("students", students)
	dumpTable("courses", courses)
	dumpTable("grades", grades)

	bp.FlushAll()
	fmt.Println("\nDone. Inspect:")
	fmt.Println("  - Backing page file:", dbPath)
	fmt.Println("  - Run: go run ./cmd/inspect_idx", dbPath, "<page-id> <header|directory|bucket>  to dump a hash index page")
}
