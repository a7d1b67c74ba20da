// Package executors implements the §4.7 Volcano-model operators:
// SeqScan, Insert, Update, Delete, Projection, TopN, Aggregation.
//
// Each executor exposes Init() and Next(), grounded on
// original_source's src/execution/*_executor.cpp's Init()/Next(tuple*,
// rid*) -> bool shape, adapted to Go's (value, ok, error) idiom instead
// of output parameters plus a bool return.
package executors

import (
	"coredb/catalog"
	"coredb/types"
)

// Executor is the capability every Volcano operator implements.
type Executor interface {
	// Init prepares the executor to be pulled from, recursively
	// initializing any child executor.
	Init() error

	// Next pulls one tuple. ok is false (with a nil error) at
	// end-of-stream.
	Next() (tuple types.Tuple, rid types.RID, ok bool, err error)
}

// Context bundles the collaborators every executor needs: the catalog
// for table/index lookups. Query-wide transaction/lock state is out of
// scope per §1.
type Context struct {
	Catalog *catalog.Catalog
}
