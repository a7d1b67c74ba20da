// Package plan defines the plan-node taxonomy executors pull from and
// the optimizer rewrites: SeqScan, Insert, Update, Delete, Projection,
// TopN, Aggregation, NestedLoopJoin, HashJoin, IndexScan, Sort, Limit.
//
// Grounded on original_source's src/include/execution/plans/*.h and
// the "tagged variant, not open inheritance" design note: every node
// is a concrete struct carrying a Type() tag, which the optimizer
// matches with Go type assertions in place of dynamic_cast chains.
package plan

import (
	"coredb/catalog"
	"coredb/execution/expression"
	"coredb/types"
)

// Type tags a concrete plan node kind.
type Type int

const (
	SeqScan Type = iota
	Insert
	Update
	Delete
	Projection
	TopN
	Aggregation
	NestedLoopJoin
	HashJoin
	IndexScan
	Sort
	Limit
)

// Node is the capability every plan node implements.
type Node interface {
	Type() Type
	OutputSchema() *types.Schema
	Children() []Node
	// CloneWithChildren returns a structurally identical node with its
	// children replaced, the mechanism every optimizer rule uses to
	// rebuild a tree bottom-up without special-casing unchanged nodes.
	CloneWithChildren(children []Node) Node
}

// OrderByType is ASC or DESC for one Sort/TopN key.
type OrderByType int

const (
	Asc OrderByType = iota
	Desc
)

// OrderBy pairs a sort direction with the expression to sort by.
type OrderBy struct {
	Type OrderByType
	Expr expression.Expr
}

// AggregateType enumerates the aggregate functions Aggregation
// supports.
type AggregateType int

const (
	CountStar AggregateType = iota
	Count
	Sum
	Min
	Max
)

// JoinType is inner or left-outer, the two join semantics
// NestedLoopJoin/HashJoin support.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
)

// SeqScanNode scans every tuple of a table, optionally filtering by a
// pushed-down predicate.
type SeqScanNode struct {
	Schema          *types.Schema
	TableOID        catalog.OID
	TableName       string
	FilterPredicate expression.Expr
}

func (n *SeqScanNode) Type() Type                   { return SeqScan }
func (n *SeqScanNode) OutputSchema() *types.Schema   { return n.Schema }
func (n *SeqScanNode) Children() []Node              { return nil }
func (n *SeqScanNode) CloneWithChildren(_ []Node) Node {
	cp := *n
	return &cp
}

// InsertNode inserts every tuple its child produces into a table and
// its indexes.
type InsertNode struct {
	Schema    *types.Schema
	TableOID  catalog.OID
	TableName string
	Child     Node
}

func (n *InsertNode) Type() Type                 { return Insert }
func (n *InsertNode) OutputSchema() *types.Schema { return n.Schema }
func (n *InsertNode) Children() []Node            { return []Node{n.Child} }
func (n *InsertNode) CloneWithChildren(children []Node) Node {
	cp := *n
	cp.Child = children[0]
	return &cp
}

// DeleteNode marks every tuple its child produces deleted and removes
// the corresponding index entries.
type DeleteNode struct {
	Schema    *types.Schema
	TableOID  catalog.OID
	TableName string
	Child     Node
}

func (n *DeleteNode) Type() Type                 { return Delete }
func (n *DeleteNode) OutputSchema() *types.Schema { return n.Schema }
func (n *DeleteNode) Children() []Node            { return []Node{n.Child} }
func (n *DeleteNode) CloneWithChildren(children []Node) Node {
	cp := *n
	cp.Child = children[0]
	return &cp
}

// UpdateNode replaces every tuple its child produces: delete the old
// row, evaluate TargetExprs against it, insert the result as a new
// row, rewriting index entries accordingly.
type UpdateNode struct {
	Schema      *types.Schema
	TableOID    catalog.OID
	TableName   string
	Child       Node
	TargetExprs []expression.Expr
}

func (n *UpdateNode) Type() Type                 { return Update }
func (n *UpdateNode) OutputSchema() *types.Schema { return n.Schema }
func (n *UpdateNode) Children() []Node            { return []Node{n.Child} }
func (n *UpdateNode) CloneWithChildren(children []Node) Node {
	cp := *n
	cp.Child = children[0]
	return &cp
}

// ProjectionNode evaluates Exprs against each child tuple and emits the
// resulting row.
type ProjectionNode struct {
	Schema *types.Schema
	Exprs  []expression.Expr
	Child  Node
}

func (n *ProjectionNode) Type() Type                 { return Projection }
func (n *ProjectionNode) OutputSchema() *types.Schema { return n.Schema }
func (n *ProjectionNode) Children() []Node            { return []Node{n.Child} }
func (n *ProjectionNode) CloneWithChildren(children []Node) Node {
	cp := *n
	cp.Child = children[0]
	return &cp
}

// TopNNode keeps the N rows that sort first by OrderBys.
type TopNNode struct {
	Schema   *types.Schema
	Child    Node
	OrderBys []OrderBy
	N        int
}

func (n *TopNNode) Type() Type                 { return TopN }
func (n *TopNNode) OutputSchema() *types.Schema { return n.Schema }
func (n *TopNNode) Children() []Node            { return []Node{n.Child} }
func (n *TopNNode) CloneWithChildren(children []Node) Node {
	cp := *n
	cp.Child = children[0]
	return &cp
}

// SortNode orders every child row by OrderBys, fully materializing its
// child's output.
type SortNode struct {
	Schema   *types.Schema
	Child    Node
	OrderBys []OrderBy
}

func (n *SortNode) Type() Type                 { return Sort }
func (n *SortNode) OutputSchema() *types.Schema { return n.Schema }
func (n *SortNode) Children() []Node            { return []Node{n.Child} }
func (n *SortNode) CloneWithChildren(children []Node) Node {
	cp := *n
	cp.Child = children[0]
	return &cp
}

// LimitNode caps the child's output at N rows.
type LimitNode struct {
	Schema *types.Schema
	Child  Node
	N      int
}

func (n *LimitNode) Type() Type                 { return Limit }
func (n *LimitNode) OutputSchema() *types.Schema { return n.Schema }
func (n *LimitNode) Children() []Node            { return []Node{n.Child} }
func (n *LimitNode) CloneWithChildren(children []Node) Node {
	cp := *n
	cp.Child = children[0]
	return &cp
}

// AggregationNode groups child rows by GroupBys and computes Aggregates
// per group.
type AggregationNode struct {
	Schema         *types.Schema
	Child          Node
	GroupBys       []expression.Expr
	Aggregates     []expression.Expr
	AggregateTypes []AggregateType
}

func (n *AggregationNode) Type() Type                 { return Aggregation }
func (n *AggregationNode) OutputSchema() *types.Schema { return n.Schema }
func (n *AggregationNode) Children() []Node            { return []Node{n.Child} }
func (n *AggregationNode) CloneWithChildren(children []Node) Node {
	cp := *n
	cp.Child = children[0]
	return &cp
}

// NestedLoopJoinNode joins Left and Right by a row-by-row predicate
// test, the form the optimizer's NLJ->HashJoin rule rewrites when
// Predicate is a conjunction of column equalities.
type NestedLoopJoinNode struct {
	Schema      *types.Schema
	Left, Right Node
	Predicate   expression.Expr
	JoinType    JoinType
}

func (n *NestedLoopJoinNode) Type() Type                 { return NestedLoopJoin }
func (n *NestedLoopJoinNode) OutputSchema() *types.Schema { return n.Schema }
func (n *NestedLoopJoinNode) Children() []Node            { return []Node{n.Left, n.Right} }
func (n *NestedLoopJoinNode) CloneWithChildren(children []Node) Node {
	cp := *n
	cp.Left, cp.Right = children[0], children[1]
	return &cp
}

// HashJoinNode joins Left and Right by building a hash table over
// RightKeys and probing it with LeftKeys, the optimized form of an
// equi-NestedLoopJoin.
type HashJoinNode struct {
	Schema                 *types.Schema
	Left, Right            Node
	LeftKeys, RightKeys     []expression.Expr
	JoinType               JoinType
}

func (n *HashJoinNode) Type() Type                 { return HashJoin }
func (n *HashJoinNode) OutputSchema() *types.Schema { return n.Schema }
func (n *HashJoinNode) Children() []Node            { return []Node{n.Left, n.Right} }
func (n *HashJoinNode) CloneWithChildren(children []Node) Node {
	cp := *n
	cp.Left, cp.Right = children[0], children[1]
	return &cp
}

// IndexScanNode looks up rows by probing a hash index with a constant
// key, the optimized form of a SeqScan with a single equality filter.
type IndexScanNode struct {
	Schema    *types.Schema
	TableOID  catalog.OID
	IndexOID  catalog.OID
	Predicate expression.Expr
	PredKey   types.Value
}

func (n *IndexScanNode) Type() Type                 { return IndexScan }
func (n *IndexScanNode) OutputSchema() *types.Schema { return n.Schema }
func (n *IndexScanNode) Children() []Node            { return nil }
func (n *IndexScanNode) CloneWithChildren(_ []Node) Node {
	cp := *n
	return &cp
}
