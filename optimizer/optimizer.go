// Package optimizer implements the §4.8 algebraic rewrite rules as
// post-order plan-tree transforms: Sort+Limit->TopN, equi-NLJ->HashJoin,
// SeqScan+equality->IndexScan.
//
// Grounded on original_source's src/optimizer/sort_limit_as_topn.cpp,
// nlj_as_hash_join.cpp, and seqscan_as_indexscan.cpp: each rule
// recursively rewrites children first via CloneWithChildren, then
// pattern-matches the rewritten node itself.
package optimizer

import (
	"coredb/catalog"
	"coredb/execution/expression"
	"coredb/execution/plan"
)

// Optimizer applies the three rewrite rules in sequence, needing the
// catalog to look up indexes for the SeqScan->IndexScan rule.
type Optimizer struct {
	Catalog *catalog.Catalog
}

func New(cat *catalog.Catalog) *Optimizer { return &Optimizer{Catalog: cat} }

// Optimize applies every rule once, in the order the rules most
// naturally compose: join rewriting first (so any join shape is
// settled), then index-scan rewriting, then TopN folding last (Limit
// sits above everything else in a typical tree).
func (o *Optimizer) Optimize(root plan.Node) plan.Node {
	root = o.optimizeNLJAsHashJoin(root)
	root = o.optimizeSeqScanAsIndexScan(root)
	root = o.optimizeSortLimitAsTopN(root)
	return root
}

func rewriteChildren(n plan.Node, rewrite func(plan.Node) plan.Node) plan.Node {
	children := n.Children()
	if len(children) == 0 {
		return n
	}
	rewritten := make([]plan.Node, len(children))
	for i, c := range children {
		rewritten[i] = rewrite(c)
	}
	return n.CloneWithChildren(rewritten)
}

// optimizeSortLimitAsTopN replaces Limit(Sort(child)) with
// TopN(order, N)(child).
func (o *Optimizer) optimizeSortLimitAsTopN(n plan.Node) plan.Node {
	n = rewriteChildren(n, o.optimizeSortLimitAsTopN)

	limitNode, ok := n.(*plan.LimitNode)
	if !ok {
		return n
	}
	sortNode, ok := limitNode.Child.(*plan.SortNode)
	if !ok {
		return n
	}
	return &plan.TopNNode{
		Schema:   limitNode.Schema,
		Child:    sortNode.Child,
		OrderBys: sortNode.OrderBys,
		N:        limitNode.N,
	}
}

// parseAndExpression walks a conjunction (AND-tree) of equality
// comparisons whose left operand is a column reference, appending each comparison's left/right operand to the
// key-expression vector for the side (tuple index 0 vs 1) it belongs
// to. Any comparison whose left operand isn't tuple-side 0 is treated
// as reversed, mirroring the original's single dynamic_cast check.
func parseAndExpression(predicate expression.Expr, leftKeys, rightKeys *[]expression.Expr) {
	if logic, ok := predicate.(*expression.Logic); ok && logic.Op == expression.And {
		parseAndExpression(logic.Left, leftKeys, rightKeys)
		parseAndExpression(logic.Right, leftKeys, rightKeys)
		return
	}
	cmp, ok := predicate.(*expression.Comparison)
	if !ok || cmp.Op != expression.Eq {
		return
	}
	leftOperand, ok := cmp.Left.(*expression.ColumnValue)
	if !ok {
		return
	}
	if leftOperand.TupleIdx == 0 {
		*leftKeys = append(*leftKeys, cmp.Left)
		*rightKeys = append(*rightKeys, cmp.Right)
	} else {
		*leftKeys = append(*leftKeys, cmp.Right)
		*rightKeys = append(*rightKeys, cmp.Left)
	}
}

// isConjunctionOfEqualities reports whether predicate is exactly an
// AND-tree of equality comparisons whose left operand is a column
// reference (a single non-AND equality also counts). The right operand
// is not checked.
func isConjunctionOfEqualities(predicate expression.Expr) bool {
	if predicate == nil {
		return false
	}
	if logic, ok := predicate.(*expression.Logic); ok {
		return logic.Op == expression.And &&
			isConjunctionOfEqualities(logic.Left) &&
			isConjunctionOfEqualities(logic.Right)
	}
	cmp, ok := predicate.(*expression.Comparison)
	if !ok || cmp.Op != expression.Eq {
		return false
	}
	_, leftIsColumn := cmp.Left.(*expression.ColumnValue)
	return leftIsColumn
}

// optimizeNLJAsHashJoin replaces a NestedLoopJoin whose predicate is a
// conjunction of column-equality comparisons with a HashJoin over the
// extracted key-expression vectors.
func (o *Optimizer) optimizeNLJAsHashJoin(n plan.Node) plan.Node {
	n = rewriteChildren(n, o.optimizeNLJAsHashJoin)

	joinNode, ok := n.(*plan.NestedLoopJoinNode)
	if !ok || !isConjunctionOfEqualities(joinNode.Predicate) {
		return n
	}
	var leftKeys, rightKeys []expression.Expr
	parseAndExpression(joinNode.Predicate, &leftKeys, &rightKeys)
	return &plan.HashJoinNode{
		Schema:    joinNode.Schema,
		Left:      joinNode.Left,
		Right:     joinNode.Right,
		LeftKeys:  leftKeys,
		RightKeys: rightKeys,
		JoinType:  joinNode.JoinType,
	}
}

// optimizeSeqScanAsIndexScan replaces a SeqScan whose filter is a
// single column = constant comparison with an IndexScan, when an
// index exists whose key attributes are exactly that column.
func (o *Optimizer) optimizeSeqScanAsIndexScan(n plan.Node) plan.Node {
	n = rewriteChildren(n, o.optimizeSeqScanAsIndexScan)

	scanNode, ok := n.(*plan.SeqScanNode)
	if !ok || scanNode.FilterPredicate == nil {
		return n
	}
	cmp, ok := scanNode.FilterPredicate.(*expression.Comparison)
	if !ok || cmp.Op != expression.Eq {
		return n
	}
	columnExpr, ok := cmp.Left.(*expression.ColumnValue)
	if !ok {
		return n
	}
	constExpr, ok := cmp.Right.(*expression.Constant)
	if !ok {
		return n
	}

	for _, idx := range o.Catalog.GetIndexesByTable(scanNode.TableName) {
		if len(idx.KeyAttrs) == 1 && idx.KeyAttrs[0] == columnExpr.ColIdx {
			return &plan.IndexScanNode{
				Schema:    scanNode.Schema,
				TableOID:  scanNode.TableOID,
				IndexOID:  idx.OID,
				Predicate: scanNode.FilterPredicate,
				PredKey:   constExpr.Value,
			}
		}
	}
	return n
}
