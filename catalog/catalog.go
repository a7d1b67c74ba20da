// Package catalog implements the §6 "Catalog (consumed)" contract: look
// up TableInfo by OID or name, list IndexInfo by table name, with each
// IndexInfo exposing its key schema, key-attribute list, and underlying
// index handle.
//
// Grounded on the teacher's storage_engine/catalog.CatalogManager for
// the table/index bookkeeping shape, but that manager persists a
// name->file-id mapping to JSON for the VM/heapfile front end; this
// catalog instead holds live *tableheap.Heap and *hash.Table handles
// directly, and fronts repeated by-name/by-OID lookups with a
// ristretto cache (see DESIGN.md's domain-stack rationale: ristretto
// belongs here, not in the buffer pool, because its admission policy
// would conflict with the buffer pool's precise pin/evict contract).
package catalog

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto/v2"

	"coredb/container/hash"
	"coredb/dberrors"
	"coredb/storage/buffer/bufferpool"
	"coredb/storage/tableheap"
	"coredb/types"
)

// OID identifies a table or index within a catalog.
type OID uint32

// IndexInfo describes one index over a table: its name, the key schema
// projected out of the table's tuples, which table columns (by index
// into the table's schema) make up the key, and the underlying Index
// handle Insert/GetValue/Remove are called on.
type IndexInfo struct {
	OID        OID
	Name       string
	TableName  string
	KeySchema  *types.Schema
	KeyAttrs   []int
	Index      *hash.Table
}

// GetKeyAttrs returns the table-column indices that make up this
// index's key, the lookup the SeqScan->IndexScan optimizer rule and
// executors use to build a HashKey from a table tuple.
func (ii *IndexInfo) GetKeyAttrs() []int { return ii.KeyAttrs }

// TableInfo describes one table: its name, schema, and underlying
// heap handle.
type TableInfo struct {
	OID    OID
	Name   string
	Schema *types.Schema
	Heap   *tableheap.Heap
}

// Catalog owns every table and index and a ristretto cache fronting
// repeated by-name/by-OID TableInfo/IndexInfo lookups.
type Catalog struct {
	mu sync.Mutex

	bp *bufferpool.Pool

	tablesByOID  map[OID]*TableInfo
	tablesByName map[string]*TableInfo
	nextTableOID OID

	indexesByOID  map[OID]*IndexInfo
	indexesByName map[string]*IndexInfo
	indexesByTable map[string][]*IndexInfo
	nextIndexOID  OID

	cache *ristretto.Cache[string, any]
}

// Pool returns the buffer pool backing this catalog's tables, the
// collaborator callers building a new index need to pass to
// container/hash.New so the index lives in the same page store.
func (c *Catalog) Pool() *bufferpool.Pool { return c.bp }

// New constructs an empty catalog backed by bp for table/index storage.
func New(bp *bufferpool.Pool) (*Catalog, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("construct catalog cache: %w", err)
	}
	return &Catalog{
		bp:             bp,
		tablesByOID:    make(map[OID]*TableInfo),
		tablesByName:   make(map[string]*TableInfo),
		indexesByOID:   make(map[OID]*IndexInfo),
		indexesByName:  make(map[string]*IndexInfo),
		indexesByTable: make(map[string][]*IndexInfo),
		cache:          cache,
	}, nil
}

// CreateTable allocates a fresh heap for schema and registers it under
// name.
func (c *Catalog) CreateTable(name string, schema *types.Schema) (*TableInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tablesByName[name]; exists {
		return nil, fmt.Errorf("table %q: %w", name, dberrors.ErrDuplicate)
	}
	heap, err := tableheap.New(c.bp, schema)
	if err != nil {
		return nil, err
	}
	ti := &TableInfo{OID: c.nextTableOID, Name: name, Schema: schema, Heap: heap}
	c.nextTableOID++
	c.tablesByOID[ti.OID] = ti
	c.tablesByName[name] = ti
	c.cacheInvalidate(name)
	return ti, nil
}

// GetTableByName returns the TableInfo registered under name, checking
// the cache first.
func (c *Catalog) GetTableByName(name string) (*TableInfo, error) {
	if v, ok := c.cache.Get(tableCacheKey(name)); ok {
		return v.(*TableInfo), nil
	}
	c.mu.Lock()
	ti, ok := c.tablesByName[name]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, dberrors.ErrNotFound)
	}
	c.cache.Set(tableCacheKey(name), ti, 1)
	return ti, nil
}

// GetTableByOID returns the TableInfo registered under oid.
func (c *Catalog) GetTableByOID(oid OID) (*TableInfo, error) {
	c.mu.Lock()
	ti, ok := c.tablesByOID[oid]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("table oid %d: %w", oid, dberrors.ErrNotFound)
	}
	return ti, nil
}

// CreateIndex registers the caller-built extendible hash index idx under
// name, keyed on tableName's columns at positions keyAttrs.
func (c *Catalog) CreateIndex(name, tableName string, keyAttrs []int, idx *hash.Table) (*IndexInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ti, ok := c.tablesByName[tableName]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", tableName, dberrors.ErrNotFound)
	}
	if _, exists := c.indexesByName[name]; exists {
		return nil, fmt.Errorf("index %q: %w", name, dberrors.ErrDuplicate)
	}
	keyCols := make([]types.Column, len(keyAttrs))
	for i, attr := range keyAttrs {
		keyCols[i] = ti.Schema.Columns[attr]
	}
	ii := &IndexInfo{
		OID:       c.nextIndexOID,
		Name:      name,
		TableName: tableName,
		KeySchema: types.NewSchema(keyCols...),
		KeyAttrs:  keyAttrs,
		Index:     idx,
	}
	c.nextIndexOID++
	c.indexesByOID[ii.OID] = ii
	c.indexesByName[name] = ii
	c.indexesByTable[tableName] = append(c.indexesByTable[tableName], ii)
	c.cacheInvalidate(indexListCacheKey(tableName))
	return ii, nil
}

// GetIndexesByTable returns every IndexInfo registered over tableName,
// checking the cache first.
func (c *Catalog) GetIndexesByTable(tableName string) []*IndexInfo {
	key := indexListCacheKey(tableName)
	if v, ok := c.cache.Get(key); ok {
		return v.([]*IndexInfo)
	}
	c.mu.Lock()
	list := c.indexesByTable[tableName]
	c.mu.Unlock()
	c.cache.Set(key, list, int64(len(list))+1)
	return list
}

// GetIndexByName returns the IndexInfo registered under name.
func (c *Catalog) GetIndexByName(name string) (*IndexInfo, error) {
	c.mu.Lock()
	ii, ok := c.indexesByName[name]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("index %q: %w", name, dberrors.ErrNotFound)
	}
	return ii, nil
}

func (c *Catalog) cacheInvalidate(key string) { c.cache.Del(key) }

func tableCacheKey(name string) string     { return "table:" + name }
func indexListCacheKey(table string) string { return "indexes:" + table }
